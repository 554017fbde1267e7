// Package server wires the configured store, the services and the HTTP,
// gRPC health and janitor loops into one application with a shared
// shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/siegesync/internal/logging"
	"github.com/dmitrijs2005/siegesync/internal/server/config"
	gs "github.com/dmitrijs2005/siegesync/internal/server/grpc"
	"github.com/dmitrijs2005/siegesync/internal/server/httpapi"
	"github.com/dmitrijs2005/siegesync/internal/server/janitor"
	"github.com/dmitrijs2005/siegesync/internal/server/repositories/kv"
	"github.com/dmitrijs2005/siegesync/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/siegesync/internal/server/services"
)

// App owns the store and the HTTP, gRPC health and janitor components.
type App struct {
	config  *config.Config
	logger  logging.Logger
	manager repomanager.RepositoryManager
	board   *services.Board
	signals *services.Signals
	admin   *services.Admin
}

var newRepositoryManager = repomanager.New

// NewApp opens the configured store and wires the services around it.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	rm, err := newRepositoryManager(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	store := rm.Store()
	signals := services.NewSignals(store, c, logger)

	return &App{
		config:  c,
		logger:  logger,
		manager: rm,
		board:   services.NewBoard(store, c, logger),
		signals: signals,
		admin:   services.NewAdmin(store, signals, c, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) handlers() *httpapi.Handlers {
	pinger, _ := app.manager.Store().(kv.Pinger)
	return httpapi.NewHandlers(app.board, app.signals, app.admin, pinger, app.logger)
}

// Run starts every loop and blocks until ctx is cancelled, a signal
// arrives or one of the loops fails. The store is closed on the way out.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	app.logger.Info(ctx, "Starting app...", "backend", app.config.StoreBackend, "dev_routes", app.config.EnableDevRoutes)
	if app.config.EnableDevRoutes && app.config.AdminSecret == "" {
		app.logger.Warn(ctx, "dev routes are enabled without an admin secret; /admin/clear is open to anyone")
	}

	store := app.manager.Store()
	pinger, _ := store.(kv.Pinger)

	router := httpapi.NewRouter(app.handlers(), httpapi.RouterOptions{
		EnableDevRoutes: app.config.EnableDevRoutes,
		AdminSecret:     app.config.AdminSecret,
	}, app.logger)

	httpServer := httpapi.NewServer(app.config.EndpointAddrHTTP, router, app.logger, app.config.ShutdownTimeout)
	healthServer := gs.NewHealthServer(app.config.EndpointAddrGRPC, pinger, app.config.HealthInterval, app.logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return httpServer.Run(gctx) })
	g.Go(func() error { return healthServer.Run(gctx) })
	if purger, ok := store.(kv.Purger); ok {
		j := janitor.New(purger, app.config.PurgeInterval, app.logger)
		g.Go(func() error { return j.Run(gctx) })
	}

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "app stopped with error", "error", err)
	}

	if cerr := app.manager.Close(); cerr != nil {
		app.logger.Error(ctx, "store close error", "error", cerr)
	}

	app.logger.Info(ctx, "App stopped")
	return err
}
