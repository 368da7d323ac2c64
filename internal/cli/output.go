// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Display* functions write formatted output to an [io.Writer].
//     They handle presentation logic and colorization.
//     Examples: [DisplayResults], [DisplayQuietResults], [DisplayJSON].
//
//   - Format* functions return a formatted string without performing I/O.
//     Examples: [FormatResults].
//
//   - Write* functions write data to files on the filesystem.
//     Examples: [WriteResultsToFile].

package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/agbru/fizzcalc/internal/errors"
	"github.com/agbru/fizzcalc/internal/fizzbuzz"
	"github.com/agbru/fizzcalc/internal/format"
	"github.com/agbru/fizzcalc/internal/ui"
)

// OutputConfig holds configuration for result output.
type OutputConfig struct {
	// OutputFile is the path to save the results (empty for no file output).
	OutputFile string
	// Quiet prints one bare value per line.
	Quiet bool
	// JSON prints the report as JSON.
	JSON bool
	// Columns is the number of values per line in table output.
	Columns int
}

// FormatResults lays results out as comma separated values, starting a new
// line after every columns entries. columns <= 0 keeps everything on one line.
// The output carries no color and ends with a newline unless empty.
func FormatResults(results []string, columns int) string {
	return formatResults(results, columns, func(s string) string { return s })
}

func formatResults(results []string, columns int, paint func(string) string) string {
	if len(results) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, r := range results {
		sb.WriteString(paint(r))
		if i == len(results)-1 {
			break
		}
		sb.WriteString(",")
		if columns > 0 && (i+1)%columns == 0 {
			sb.WriteString("\n")
		} else {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("\n")
	return sb.String()
}

// isNumber reports whether a sequence value is the decimal fallback rather
// than a token.
func isNumber(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '-' {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// DisplayResults writes results in table layout, coloring tokens and plain
// numbers with the active theme.
func DisplayResults(out io.Writer, results []string, columns int) {
	paint := func(s string) string {
		if isNumber(s) {
			return ui.ColorNumber() + s + ui.ColorReset()
		}
		return ui.ColorToken() + s + ui.ColorReset()
	}
	fmt.Fprint(out, formatResults(results, columns, paint))
}

// DisplayQuietResults writes one bare value per line, for scripting.
func DisplayQuietResults(out io.Writer, results []string) {
	w := bufio.NewWriter(out)
	for _, r := range results {
		w.WriteString(r)
		w.WriteByte('\n')
	}
	w.Flush()
}

// DisplayJSON writes report as indented JSON.
func DisplayJSON(out io.Writer, report fizzbuzz.Report) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return apperrors.WrapError(err, "failed to encode report")
	}
	return nil
}

// WriteResultsToFile writes a report to config.OutputFile, creating parent
// directories as needed. It is a no-op when no file is configured.
//
// The file starts with '#' header lines describing the run, followed by one
// value per line, or by the JSON report when config.JSON is set.
func WriteResultsToFile(report fizzbuzz.Report, config OutputConfig) error {
	if config.OutputFile == "" {
		return nil
	}

	dir := filepath.Dir(config.OutputFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return apperrors.WrapError(err, "failed to create directory %s", dir)
		}
	}

	file, err := os.Create(config.OutputFile)
	if err != nil {
		return apperrors.WrapError(err, "failed to create output file")
	}
	defer file.Close()

	if config.JSON {
		return DisplayJSON(file, report)
	}

	w := bufio.NewWriter(file)
	fmt.Fprintf(w, "# FizzBuzz Sequence\n")
	fmt.Fprintf(w, "# Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(w, "# Rules: %s\n", report.Rules)
	fmt.Fprintf(w, "# Input: %s\n", describeInput(report))
	fmt.Fprintf(w, "# Count: %d\n", report.Count)
	fmt.Fprintf(w, "\n")
	DisplayQuietResults(w, report.Results)
	if err := w.Flush(); err != nil {
		return apperrors.WrapError(err, "failed to write output file")
	}
	return nil
}

// describeInput summarizes the evaluated input of a report.
func describeInput(report fizzbuzz.Report) string {
	if report.Start != nil && report.End != nil {
		return fmt.Sprintf("%d..%d", *report.Start, *report.End)
	}
	parts := make([]string, len(report.Numbers))
	for i, n := range report.Numbers {
		parts[i] = fmt.Sprint(n)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// PrintExecutionConfig writes a short banner describing the run.
func PrintExecutionConfig(out io.Writer, report fizzbuzz.Report) {
	fmt.Fprintln(out, ui.TitleStyle().Render("FizzBuzz"))
	fmt.Fprintf(out, "Rules: %s\n", describeRules(report.Rules))
	fmt.Fprintf(out, "Input: %s (%s values)\n\n", describeInput(report), format.Count(uint64(report.Count)))
}

// DisplaySummary writes the closing line of a decorated run.
func DisplaySummary(out io.Writer, count int, elapsed time.Duration) {
	fmt.Fprintf(out, "\n%sEvaluated %s values in %s%s\n",
		ui.ColorSuccess(), format.Count(uint64(count)), format.Duration(elapsed), ui.ColorReset())
}

// describeRules renders rules as "3 → Fizz, 5 → Buzz".
func describeRules(rules fizzbuzz.RuleSet) string {
	parts := make([]string, len(rules))
	for i, r := range rules {
		parts[i] = fmt.Sprintf("%d → %q", r.Divisor, r.Token)
	}
	return strings.Join(parts, ", ")
}
