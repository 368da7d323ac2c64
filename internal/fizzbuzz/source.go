//go:generate mockgen -source=source.go -destination=mocks/mock_source.go -package=mocks

package fizzbuzz

import (
	"context"

	"github.com/agbru/fizzcalc/internal/logging"
)

// FetchResult is the outcome of a TokenSource fetch. It always carries the
// rules that were fetched successfully, even when some attempts failed.
type FetchResult struct {
	// Requested is the number of rules asked for.
	Requested int
	// Rules holds the successfully fetched rules, possibly fewer than
	// Requested and possibly none.
	Rules RuleSet
	// Err aggregates the failures of individual attempts. It is
	// informational: a non-nil Err does not invalidate Rules.
	Err error
}

// Partial reports whether fewer rules than requested were returned.
func (r FetchResult) Partial() bool {
	return len(r.Rules) < r.Requested
}

// TokenSource supplies rules from an external collaborator.
//
// Implementations must not panic and must normalize every failure into a
// FetchResult with whatever succeeded so far.
type TokenSource interface {
	// FetchTokens requests count rules. A count <= 0 yields an empty result.
	FetchTokens(ctx context.Context, count int) FetchResult
}

// RemoteProcessor evaluates sequences with rules obtained from a
// TokenSource, falling back to the default rules when the source is
// unavailable or returned nothing.
type RemoteProcessor struct {
	source TokenSource
	logger logging.Logger
}

// RemoteOption configures a RemoteProcessor.
type RemoteOption func(*RemoteProcessor)

// WithLogger sets the logger used to report degraded fetches.
func WithLogger(l logging.Logger) RemoteOption {
	return func(p *RemoteProcessor) { p.logger = l }
}

// NewRemoteProcessor creates a RemoteProcessor backed by source.
func NewRemoteProcessor(source TokenSource, opts ...RemoteOption) *RemoteProcessor {
	p := &RemoteProcessor{source: source, logger: logging.NewNopLogger()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Rules fetches count rules and returns the rule set to evaluate with.
// The source is not consulted when count <= 0 or no source is configured.
func (p *RemoteProcessor) Rules(ctx context.Context, count int) RuleSet {
	rules, _ := p.Fetch(ctx, count)
	return rules
}

// Fetch is Rules that also returns the raw outcome of the source, so
// callers can tell a short fetch from a complete one. The zero FetchResult
// is returned when the source was not consulted.
func (p *RemoteProcessor) Fetch(ctx context.Context, count int) (RuleSet, FetchResult) {
	if count <= 0 || p.source == nil {
		return DefaultRules(), FetchResult{}
	}

	res := p.source.FetchTokens(ctx, count)
	if res.Partial() {
		p.logger.Error("token source degraded", res.Err,
			logging.Int("requested", count),
			logging.Int("received", len(res.Rules)))
	}
	if len(res.Rules) == 0 {
		p.logger.Info("token source returned no rules, using default rules")
		return DefaultRules(), res
	}

	p.logger.Debug("fetched rules",
		logging.Int("requested", count),
		logging.String("rules", res.Rules.String()))
	return res.Rules, res
}

// ProcessRange fetches count rules and evaluates the inclusive range
// [start, end] with them. See ProcessRange for range semantics.
func (p *RemoteProcessor) ProcessRange(ctx context.Context, start, end, count int) []string {
	return ProcessRange(start, end, p.Rules(ctx, count))
}

// ProcessNumbers fetches count rules and evaluates numbers with them.
// An empty input skips the fetch entirely.
func (p *RemoteProcessor) ProcessNumbers(ctx context.Context, numbers []int, count int) []string {
	if len(numbers) == 0 {
		return []string{}
	}
	return ProcessNumbers(numbers, p.Rules(ctx, count))
}
