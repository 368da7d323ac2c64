package app

import (
	"context"
	"os/signal"
	"syscall"

	apperrors "github.com/agbru/fizzcalc/internal/errors"
	"github.com/agbru/fizzcalc/internal/logging"
	"github.com/agbru/fizzcalc/internal/server"
)

// runServe runs the HTTP API until ctx is canceled or a signal arrives.
func (a *Application) runServe(ctx context.Context) int {
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	srv := server.NewServer(a.Config.ServeAddr,
		server.WithTokenSource(a.Source),
		server.WithMetrics(a.Metrics),
		server.WithLogger(logging.NewLogger(a.ErrWriter, "server")),
	)
	if err := srv.Run(ctx); err != nil {
		a.Logger.Error("server failed", err, logging.String("addr", a.Config.ServeAddr))
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}
