package server

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"IndexScope/internal/usecase"
	"IndexScope/pkg/config"
	xhttp "IndexScope/pkg/http"
	applogger "IndexScope/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	loader     *usecase.StoreLoader
	reloader   *usecase.Reloader
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	loader *usecase.StoreLoader,
	reloader *usecase.Reloader,
	httpServer *xhttp.Server,
) *App {
	return &App{
		cfg:        cfg,
		logger:     logger,
		loader:     loader,
		reloader:   reloader,
		httpServer: httpServer,
	}
}

// Run loads the store when store.load_on_start is set, starts the reload
// schedule and the HTTP server, and blocks until ctx ends or the process is
// interrupted. A failed initial load aborts startup.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.cfg.Store.LoadOnStart {
		if _, err := a.loader.Load(ctx); err != nil {
			return fmt.Errorf("initial store load: %w", err)
		}
	}

	a.reloader.Start()
	if err := a.httpServer.Start(); err != nil {
		return fmt.Errorf("http server start: %w", err)
	}
	a.logger.Info("indexscope started",
		applogger.String("env", a.cfg.Environment),
		applogger.String("addr", a.httpServer.Addr()),
	)

	<-ctx.Done()
	a.logger.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout+5*time.Second)
	defer cancel()

	a.reloader.Stop(ctx)
	if err := a.httpServer.Stop(ctx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
		return err
	}
	a.logger.Info("shutdown complete")
	return nil
}
