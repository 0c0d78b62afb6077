// Package server ties the application together: HTTP surface, event
// relay, and graceful shutdown of every owned resource.
package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"StockPulse/internal/domain/repository"
	"StockPulse/internal/handler/api"
	"StockPulse/internal/querycache"
	"StockPulse/internal/usecase"
	"StockPulse/pkg/cache"
	"StockPulse/pkg/config"
	xhttp "StockPulse/pkg/http"
	applogger "StockPulse/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	logger      *applogger.Logger
	store       *querycache.Store
	ledgerStore cache.Service
	sink        repository.EventSink
	dash        *usecase.Dashboard
	relay       *usecase.ActivityRelay
	httpServer  *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	store *querycache.Store,
	ledgerStore cache.Service,
	sink repository.EventSink,
	dash *usecase.Dashboard,
	relay *usecase.ActivityRelay,
) *App {
	return &App{
		cfg:         cfg,
		logger:      logger,
		store:       store,
		ledgerStore: ledgerStore,
		sink:        sink,
		dash:        dash,
		relay:       relay,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := xhttp.Handlers(
		api.NewDashboardEchoHandler(a.logger, a.dash),
		api.NewStatusWSHandler(a.logger, a.dash),
	)

	a.httpServer = xhttp.NewServer(handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	if a.relay != nil {
		a.relay.Start(ctx)
		a.logger.Info("activity relay started", applogger.String("topic", a.cfg.Events.Topic))
	}

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if a.relay != nil {
		a.relay.Stop()
	}

	a.store.Close()

	if a.ledgerStore != nil {
		if err := a.ledgerStore.Close(); err != nil {
			a.logger.Warn("ledger store close error", applogger.Error(err))
		}
	}

	if a.sink != nil {
		if err := a.sink.Close(); err != nil {
			a.logger.Warn("event sink close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
