package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/fizzcalc/internal/errors"
	"github.com/agbru/fizzcalc/internal/fizzbuzz"
	"github.com/agbru/fizzcalc/internal/logging"
)

// Server timeouts.
const (
	ReadHeaderTimeout = 5 * time.Second
	// WriteTimeout leaves room for a full remote token fetch.
	WriteTimeout    = 60 * time.Second
	IdleTimeout     = 90 * time.Second
	ShutdownTimeout = 10 * time.Second
)

// Server serves the HTTP API.
type Server struct {
	addr     string
	security SecurityConfig
	source   fizzbuzz.TokenSource
	metrics  *Metrics
	logger   logging.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithSecurityConfig replaces the default security configuration.
func WithSecurityConfig(cfg SecurityConfig) Option {
	return func(s *Server) { s.security = cfg }
}

// WithTokenSource enables the tokens query parameter.
func WithTokenSource(src fizzbuzz.TokenSource) Option {
	return func(s *Server) { s.source = src }
}

// WithMetrics shares an existing Metrics instance, typically one that is
// also the Recorder of the token source.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithLogger sets the server logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer creates a server listening on addr once started.
func NewServer(addr string, opts ...Option) *Server {
	s := &Server{
		addr:     addr,
		security: DefaultSecurityConfig(),
		logger:   logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/fizzbuzz", s.wrap(s.handleFizzBuzz))
	mux.HandleFunc("/health", s.wrap(s.handleHealth))
	mux.HandleFunc("/metrics", s.wrap(s.handleMetrics))
	return mux
}

func (s *Server) wrap(h http.HandlerFunc) http.HandlerFunc {
	return SecurityMiddleware(s.security, s.requestIDMiddleware(s.metricsMiddleware(h)))
}

// Run listens on the configured address and serves until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled, then shuts down gracefully,
// letting in-flight requests complete within ShutdownTimeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.security.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, s.security.MaxConnections)
	}

	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("server listening", logging.String("addr", ln.Addr().String()))
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		s.logger.Info("server shutting down")
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestIDHeader carries the request correlation ID.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLen bounds client supplied request IDs.
const maxRequestIDLen = 128

// requestIDMiddleware echoes the client's X-Request-ID, or assigns a new
// UUID, and logs the request under that ID.
func (s *Server) requestIDMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		start := time.Now()
		next(w, r)
		s.logger.Debug("request served",
			logging.String("request_id", id),
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Duration("duration", time.Since(start)))
	}
}

// metricsMiddleware tracks active and finished requests.
func (s *Server) metricsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.metrics.IncrementActiveRequests()
		defer s.metrics.DecrementActiveRequests()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		s.metrics.RecordRequest(r.URL.Path, rec.status)
	}
}

// handleFizzBuzz evaluates a range or a number list.
func (s *Server) handleFizzBuzz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}

	req, err := s.parseRequest(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	rules := req.rules
	if req.tokens > 0 {
		remote := fizzbuzz.NewRemoteProcessor(s.source, fizzbuzz.WithLogger(s.logger))
		rules = remote.Rules(r.Context(), req.tokens)
	}

	var report fizzbuzz.Report
	if req.numbers != nil {
		report = fizzbuzz.NewNumbersReport(req.numbers, rules)
	} else {
		report = fizzbuzz.NewRangeReport(req.start, req.end, rules)
	}
	s.metrics.ObserveNumbers(report.Count)
	s.writeJSON(w, http.StatusOK, report)
}

// sequenceRequest is a validated /fizzbuzz query.
type sequenceRequest struct {
	start, end int
	// numbers is non-nil for list requests.
	numbers []int
	rules   fizzbuzz.RuleSet
	tokens  int
}

// parseRequest validates the /fizzbuzz query parameters against the
// security limits. Errors are ValidationErrors naming the parameter.
func (s *Server) parseRequest(r *http.Request) (sequenceRequest, error) {
	q := r.URL.Query()
	var req sequenceRequest

	rules, err := fizzbuzz.ParseRuleSet(q.Get("rules"))
	if err != nil {
		return req, apperrors.ValidationError{Field: "rules", Message: err.Error()}
	}
	req.rules = rules

	if q.Has("tokens") {
		tokens, err := strconv.Atoi(q.Get("tokens"))
		if err != nil || tokens < 0 || tokens > s.security.MaxTokens {
			return req, apperrors.ValidationError{
				Field:   "tokens",
				Message: fmt.Sprintf("must be an integer between 0 and %d", s.security.MaxTokens),
			}
		}
		req.tokens = tokens
	}
	switch {
	case req.tokens > 0 && s.source == nil:
		return req, apperrors.ValidationError{Field: "tokens", Message: "no token source is configured"}
	case req.tokens > 0 && len(req.rules) > 0:
		return req, apperrors.ValidationError{Field: "tokens", Message: "cannot be combined with rules"}
	}

	if q.Has("numbers") {
		numbers, err := fizzbuzz.ParseNumbers(q.Get("numbers"))
		if err != nil {
			return req, apperrors.ValidationError{Field: "numbers", Message: err.Error()}
		}
		if uint64(len(numbers)) > s.security.MaxResults {
			return req, apperrors.ValidationError{
				Field:   "numbers",
				Message: fmt.Sprintf("at most %d numbers are allowed", s.security.MaxResults),
			}
		}
		req.numbers = numbers
		return req, nil
	}

	if req.start, err = intParam(q.Get("start"), "start"); err != nil {
		return req, err
	}
	if req.end, err = intParam(q.Get("end"), "end"); err != nil {
		return req, err
	}
	if size := fizzbuzz.RangeSize(req.start, req.end); size > s.security.MaxResults {
		return req, apperrors.ValidationError{
			Field:   "end",
			Message: fmt.Sprintf("range of %d values exceeds the limit of %d", size, s.security.MaxResults),
		}
	}
	return req, nil
}

func intParam(v, field string) (int, error) {
	if v == "" {
		return 0, apperrors.ValidationError{Field: field, Message: "is required"}
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, apperrors.ValidationError{Field: field, Message: "must be an integer"}
	}
	return n, nil
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleMetrics serves the Prometheus metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	s.metrics.WritePrometheus(w, r)
}

// errorResponse is the body of every error response.
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", "GET, OPTIONS")
	s.writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	resp := errorResponse{Error: err.Error()}
	var validationErr apperrors.ValidationError
	if errors.As(err, &validationErr) {
		resp = errorResponse{Error: validationErr.Message, Field: validationErr.Field}
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", err)
	}
}
