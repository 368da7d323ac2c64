package wordapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	apperrors "github.com/agbru/fizzcalc/internal/errors"
	"github.com/agbru/fizzcalc/internal/fizzbuzz"
	"github.com/agbru/fizzcalc/internal/logging"
)

const (
	// DefaultEndpoint is the public word service.
	DefaultEndpoint = "https://pie-healthy-swift.glitch.me/word"
	// DefaultUserAgent identifies fizzcalc to the word service.
	DefaultUserAgent = "fizzcalc/1.0"
	// DefaultTimeout bounds a single request round-trip.
	DefaultTimeout = 10 * time.Second
	// DefaultRequestsPerSecond is the default request pacing.
	DefaultRequestsPerSecond = 5

	// maxErrorBody caps how much of an error response body is kept.
	maxErrorBody = 512
)

// Fetch outcomes reported to a Recorder.
const (
	OutcomeSuccess        = "success"
	OutcomeTransportError = "transport_error"
	OutcomeStatusError    = "status_error"
	OutcomeDecodeError    = "decode_error"
	OutcomeEmptyWord      = "empty_word"
)

// ErrEmptyWord is returned when the service answers without a word.
var ErrEmptyWord = errors.New("response contained an empty word")

var tracer = otel.Tracer("github.com/agbru/fizzcalc/internal/wordapi")

// Recorder observes the outcome and latency of every request.
type Recorder interface {
	RecordFetch(outcome string, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RecordFetch(string, time.Duration) {}

// wordResponse is the wire format of the word service.
type wordResponse struct {
	Word   string `json:"word"`
	Number int    `json:"number"`
}

// Client fetches rules from the word service.
type Client struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     logging.Logger
	recorder   Recorder
}

var _ fizzbuzz.TokenSource = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the service URL.
func WithEndpoint(url string) Option {
	return func(c *Client) { c.endpoint = url }
}

// WithHTTPClient replaces the HTTP client, including its timeout. A nil
// client keeps the default.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit paces requests to rps per second. A non-positive rps
// disables pacing.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithLogger sets the logger used for per-request diagnostics.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a word service client with sensible defaults.
func NewClient(opts ...Option) *Client {
	c := &Client{
		endpoint:   DefaultEndpoint,
		userAgent:  DefaultUserAgent,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), 1),
		logger:     logging.NewNopLogger(),
		recorder:   nopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if c.recorder == nil {
		c.recorder = nopRecorder{}
	}
	return c
}

// FetchTokens performs up to count sequential requests and returns the rules
// built from the successful ones. Failed attempts are joined into the
// result's Err as apperrors.FetchError values. Cancellation of ctx stops
// the loop early.
func (c *Client) FetchTokens(ctx context.Context, count int) fizzbuzz.FetchResult {
	res := fizzbuzz.FetchResult{Requested: max(count, 0)}
	if count <= 0 {
		return res
	}

	ctx, span := tracer.Start(ctx, "wordapi.FetchTokens",
		trace.WithAttributes(attribute.Int("fizzcalc.tokens.requested", count)))
	defer span.End()

	rules := make(fizzbuzz.RuleSet, 0, count)
	var errs []error
	for attempt := 1; attempt <= count; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			errs = append(errs, apperrors.FetchError{Attempt: attempt, Cause: err})
			break
		}

		rule, err := c.fetchOne(ctx, attempt)
		if err != nil {
			errs = append(errs, apperrors.FetchError{Attempt: attempt, Cause: err})
			c.logger.Debug("word request failed",
				logging.Int("attempt", attempt), logging.Err(err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		c.logger.Debug("word fetched",
			logging.Int("attempt", attempt),
			logging.String("word", rule.Token),
			logging.Int("number", rule.Divisor))
		rules = append(rules, rule)
	}

	res.Rules = rules
	res.Err = errors.Join(errs...)

	span.SetAttributes(attribute.Int("fizzcalc.tokens.received", len(rules)))
	if res.Err != nil {
		span.RecordError(res.Err)
		if len(rules) == 0 {
			span.SetStatus(codes.Error, "no tokens fetched")
		}
	}
	return res
}

// fetchOne performs a single request and reports its outcome.
func (c *Client) fetchOne(ctx context.Context, attempt int) (fizzbuzz.Rule, error) {
	ctx, span := tracer.Start(ctx, "wordapi.fetchOne",
		trace.WithAttributes(attribute.Int("fizzcalc.tokens.attempt", attempt)))
	defer span.End()

	start := time.Now()
	rule, outcome, err := c.do(ctx)
	c.recorder.RecordFetch(outcome, time.Since(start))

	span.SetAttributes(attribute.String("fizzcalc.tokens.outcome", outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	return rule, err
}

func (c *Client) do(ctx context.Context) (fizzbuzz.Rule, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, http.NoBody)
	if err != nil {
		return fizzbuzz.Rule{}, OutcomeTransportError, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fizzbuzz.Rule{}, OutcomeTransportError, fmt.Errorf("word request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fizzbuzz.Rule{}, OutcomeStatusError, apperrors.StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	var payload wordResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fizzbuzz.Rule{}, OutcomeDecodeError, fmt.Errorf("failed to decode response: %w", err)
	}
	if payload.Word == "" {
		return fizzbuzz.Rule{}, OutcomeEmptyWord, ErrEmptyWord
	}

	return fizzbuzz.Rule{Divisor: payload.Number, Token: payload.Word}, OutcomeSuccess, nil
}
