package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/frontdesk-supervisor/internal/api/http"
	"github.com/spec-kit/frontdesk-supervisor/internal/api/http/handlers"
	"github.com/spec-kit/frontdesk-supervisor/internal/app"
	"github.com/spec-kit/frontdesk-supervisor/internal/config"
	"github.com/spec-kit/frontdesk-supervisor/internal/observability"
	"github.com/spec-kit/frontdesk-supervisor/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to build services", zap.Error(err))
	}
	defer c.Close()

	sweeper := worker.NewSweepWorker(c.Tickets, logger.Named("sweep"))
	if err := sweeper.Start(cfg.Ticket.SweepSchedule); err != nil {
		logger.Fatal("failed to schedule sweep", zap.Error(err))
	}
	defer sweeper.Stop()

	fiberApp := httptransport.NewApp(cfg.App.Name, logger, c.Metrics, cfg.App.RequestTimeout(), httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, c.Postgres, c.Redis, c.Metrics),
		Tickets:   handlers.NewTicketsHandler(c.Tickets),
		Knowledge: handlers.NewKnowledgeHandler(c.Knowledge),
		Calls:     handlers.NewCallsHandler(c.FrontDesk),
		Dashboard: handlers.NewDashboardHandler(c.Tickets, c.Knowledge),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.Duration("ticket_timeout", cfg.Ticket.Timeout()))
		if err := fiberApp.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = fiberApp.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
