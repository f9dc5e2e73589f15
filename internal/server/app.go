// Package server initializes and runs the equipment tracker server.
// It opens the configured storage backend, wires the allocation window,
// services and HTTP API together, and handles graceful shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/equiptracker/internal/logging"
	"github.com/dmitrijs2005/equiptracker/internal/server/api"
	"github.com/dmitrijs2005/equiptracker/internal/server/catalog"
	"github.com/dmitrijs2005/equiptracker/internal/server/config"
	"github.com/dmitrijs2005/equiptracker/internal/server/metrics"
	"github.com/dmitrijs2005/equiptracker/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/equiptracker/internal/server/services"
	"github.com/dmitrijs2005/equiptracker/internal/server/window"
	"github.com/dmitrijs2005/equiptracker/internal/timex"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	manager *repomanager.Manager
	http    *api.HTTPServer
}

// openStorage is a seam for tests.
var openStorage = repomanager.Open

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	manager, err := openStorage(ctx, c, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	clock := timex.SystemClock{}
	m := metrics.New()

	store := window.NewStore(manager.State(), clock, c.ResetInterval, logger)
	store.OnReset(m.WindowReset)

	srv := api.NewHTTPServer(c.EndpointAddrHTTP, logger, api.Services{
		Entries: services.NewEntryService(store, clock, logger),
		Export:  services.NewExportService(store, clock, logger),
		Catalog: catalog.Default(),
		Metrics: m,
	}, c.StaticDir)

	return &App{config: c, logger: logger, manager: manager, http: srv}, nil
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM/SIGQUIT arrives, then
// closes storage.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...", "backend", app.manager.Backend(), "reset_interval", app.config.ResetInterval.String())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.http.Run(gctx)
	})

	err := g.Wait()
	if cerr := app.manager.Close(); cerr != nil {
		app.logger.Error(ctx, "storage close", "error", cerr)
	}
	app.logger.Info(ctx, "App stopped")
	return err
}

// NewLogger builds the process logger: JSON lines on stdout at the
// configured level.
func NewLogger(c *config.Config) logging.Logger {
	return logging.NewJSONLogger(os.Stdout, c.LogLevel)
}
