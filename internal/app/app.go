package app

import (
	"context"
	"errors"
	"flag"
	"io"

	"github.com/agbru/fizzcalc/internal/config"
	apperrors "github.com/agbru/fizzcalc/internal/errors"
	"github.com/agbru/fizzcalc/internal/fizzbuzz"
	"github.com/agbru/fizzcalc/internal/logging"
	"github.com/agbru/fizzcalc/internal/server"
	"github.com/agbru/fizzcalc/internal/ui"
	"github.com/agbru/fizzcalc/internal/wordapi"
)

// Application represents the fizzcalc application instance.
type Application struct {
	Config config.AppConfig
	// Source supplies remote rules. It defaults to a word service client
	// built from Config.
	Source fizzbuzz.TokenSource
	// Metrics is set in serve mode and shared with the default Source.
	Metrics   *server.Metrics
	Logger    logging.Logger
	ErrWriter io.Writer
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithTokenSource replaces the word service client.
func WithTokenSource(src fizzbuzz.TokenSource) AppOption {
	return func(a *Application) { a.Source = src }
}

// WithLogger replaces the console logger.
func WithLogger(l logging.Logger) AppOption {
	return func(a *Application) { a.Logger = l }
}

// New creates a new Application instance by parsing command-line arguments.
// args[0] is the program name.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	programName := "fizzcalc"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}

	app := &Application{Config: cfg, ErrWriter: errWriter}
	for _, opt := range opts {
		opt(app)
	}
	if app.Logger == nil {
		app.Logger = logging.NewConsoleLogger(errWriter, cfg.Verbose)
	}
	if cfg.ServeAddr != "" {
		app.Metrics = server.NewMetrics()
	}
	if app.Source == nil {
		app.Source = app.newWordClient()
	}
	return app, nil
}

func (a *Application) newWordClient() *wordapi.Client {
	opts := []wordapi.Option{
		wordapi.WithEndpoint(a.Config.APIURL),
		wordapi.WithRateLimit(a.Config.APIRPS),
		wordapi.WithLogger(a.Logger),
		wordapi.WithUserAgent("fizzcalc/" + Version),
	}
	if a.Metrics != nil {
		opts = append(opts, wordapi.WithRecorder(a.Metrics))
	}
	return wordapi.NewClient(opts...)
}

// Run executes the application based on the configured mode and returns the
// process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	ui.InitTheme(a.Config.NoColor)

	if a.Config.ServeAddr != "" {
		return a.runServe(ctx)
	}
	return a.runSequence(ctx, out)
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

// ExitCode returns the process exit code for an error returned by New.
func ExitCode(err error) int {
	if IsHelpError(err) {
		return apperrors.ExitSuccess
	}
	return apperrors.ExitCodeFor(err)
}
