package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/agbru/fizzcalc/internal/cli"
	apperrors "github.com/agbru/fizzcalc/internal/errors"
	"github.com/agbru/fizzcalc/internal/fizzbuzz"
	"github.com/agbru/fizzcalc/internal/logging"
	"github.com/agbru/fizzcalc/internal/ui"
)

// runSequence computes and prints one sequence.
func (a *Application) runSequence(ctx context.Context, out io.Writer) int {
	// Setup lifecycle (timeout + signals)
	ctx, cancelTimeout := context.WithTimeout(ctx, a.Config.Timeout)
	defer cancelTimeout()
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	rules := a.Config.Rules
	if a.Config.Tokens > 0 {
		var res fizzbuzz.FetchResult
		rules, res = a.fetchRules(ctx, out)
		// A timeout keeps whatever was fetched; an interrupt aborts, and so
		// does a timeout that left nothing to keep.
		if err := ctx.Err(); apperrors.IsContextError(err) {
			switch {
			case errors.Is(err, context.Canceled):
				fmt.Fprintln(a.ErrWriter, "Canceled.")
				return apperrors.ExitCodeFor(err)
			case len(res.Rules) == 0:
				fmt.Fprintf(a.ErrWriter, "%sTimed out after %s before any token arrived.%s\n",
					ui.ColorError(), a.Config.Timeout, ui.ColorReset())
				return apperrors.ExitCodeFor(err)
			}
		}
		if res.Partial() && !a.Config.Quiet && !a.Config.JSON {
			fmt.Fprintf(out, "%sReceived %d of %d tokens.%s\n",
				ui.ColorWarning(), len(res.Rules), res.Requested, ui.ColorReset())
		}
	}

	start := time.Now()
	var report fizzbuzz.Report
	if a.Config.HasNumbers() {
		report = fizzbuzz.NewNumbersReport(a.Config.Numbers, rules)
	} else {
		report = fizzbuzz.NewRangeReport(a.Config.Start, a.Config.End, rules)
	}

	outputCfg := cli.OutputConfig{
		OutputFile: a.Config.OutputFile,
		Quiet:      a.Config.Quiet,
		JSON:       a.Config.JSON,
		Columns:    a.Config.Columns,
	}
	return a.printReport(report, time.Since(start), outputCfg, out)
}

// fetchRules obtains rules from the token source, behind a spinner when the
// output is decorated. The raw fetch result is returned alongside.
func (a *Application) fetchRules(ctx context.Context, out io.Writer) (fizzbuzz.RuleSet, fizzbuzz.FetchResult) {
	processor := fizzbuzz.NewRemoteProcessor(a.Source, fizzbuzz.WithLogger(a.Logger))
	var (
		rules fizzbuzz.RuleSet
		res   fizzbuzz.FetchResult
	)
	fetch := func() {
		start := time.Now()
		rules, res = processor.Fetch(ctx, a.Config.Tokens)
		a.Logger.Debug("token fetch finished",
			logging.Int("rules", len(rules)),
			logging.Duration("elapsed", time.Since(start)))
	}

	if a.Config.Quiet || a.Config.JSON {
		fetch()
	} else {
		cli.RunWithSpinner(out, fmt.Sprintf("Fetching %d tokens...", a.Config.Tokens), fetch)
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		a.Logger.Info("timeout reached while fetching tokens",
			logging.Int("received", len(res.Rules)))
	}
	return rules, res
}

// printReport writes report to out in the configured format and saves it
// to the output file, if any.
func (a *Application) printReport(report fizzbuzz.Report, elapsed time.Duration, cfg cli.OutputConfig, out io.Writer) int {
	switch {
	case cfg.JSON:
		if err := cli.DisplayJSON(out, report); err != nil {
			a.Logger.Error("failed to print report", err)
			return apperrors.ExitErrorGeneric
		}
	case cfg.Quiet:
		cli.DisplayQuietResults(out, report.Results)
	default:
		cli.PrintExecutionConfig(out, report)
		cli.DisplayResults(out, report.Results, cfg.Columns)
		cli.DisplaySummary(out, report.Count, elapsed)
	}

	if err := cli.WriteResultsToFile(report, cfg); err != nil {
		fmt.Fprintf(a.ErrWriter, "%sError saving results: %v%s\n", ui.ColorError(), err, ui.ColorReset())
		return apperrors.ExitErrorGeneric
	}
	if cfg.OutputFile != "" && !cfg.Quiet && !cfg.JSON {
		fmt.Fprintf(out, "%sResults saved to %s%s\n", ui.ColorSuccess(), cfg.OutputFile, ui.ColorReset())
	}
	return apperrors.ExitSuccess
}
