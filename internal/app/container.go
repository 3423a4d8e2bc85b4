// Package app wires configuration, storage and services together.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/frontdesk-supervisor/internal/config"
	"github.com/spec-kit/frontdesk-supervisor/internal/events"
	"github.com/spec-kit/frontdesk-supervisor/internal/lock"
	"github.com/spec-kit/frontdesk-supervisor/internal/observability"
	"github.com/spec-kit/frontdesk-supervisor/internal/persistence"
	"github.com/spec-kit/frontdesk-supervisor/internal/repository"
	"github.com/spec-kit/frontdesk-supervisor/internal/service"
)

// Container holds the long-lived dependencies of a process.
type Container struct {
	Config        *config.Config
	Logger        *zap.Logger
	Metrics       *observability.Metrics
	Postgres      *persistence.Postgres
	Redis         *persistence.Redis
	Stores        repository.Stores
	Dispatcher    events.Dispatcher
	Knowledge     *service.KnowledgeService
	Tickets       *service.TicketService
	FrontDesk     *service.FrontDeskService
	Notifications *service.NotificationService
}

// Build connects storage and constructs services. Without POSTGRES_DSN the
// in-memory store is used.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	c := &Container{
		Config:     cfg,
		Logger:     logger,
		Metrics:    observability.NewMetrics(),
		Dispatcher: events.NewInMemoryDispatcher(),
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger.Named("postgres"))
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	c.Postgres = pg
	if pg.Enabled() {
		c.Stores = repository.NewPostgresStores(pg.Pool)
	} else {
		c.Stores = repository.NewMemoryStore().Stores()
	}

	redisRequired := cfg.Lock.Backend == config.LockBackendRedis
	c.Redis, err = persistence.NewRedis(ctx, cfg.Redis, redisRequired, logger.Named("redis"))
	if err != nil {
		pg.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	var locker lock.Locker = lock.NewLocal()
	if redisRequired {
		locker = lock.NewRedis(c.Redis.Client, cfg.Lock.TTL())
	}

	overrides, err := config.LoadRuleAnswers(cfg.Knowledge.RulesFile)
	if err != nil {
		c.Close()
		return nil, err
	}

	c.Knowledge = service.NewKnowledgeService(service.KnowledgeDependencies{
		Rules:       service.DefaultRules().WithAnswers(overrides),
		LearnedRepo: c.Stores.LearnedAnswers,
		Dispatcher:  c.Dispatcher,
		Logger:      logger.Named("knowledge"),
	})
	c.Tickets = service.NewTicketService(service.TicketDependencies{
		TicketRepo:      c.Stores.Tickets,
		MessageRepo:     c.Stores.MessageLogs,
		Knowledge:       c.Knowledge,
		Locker:          locker,
		Dispatcher:      c.Dispatcher,
		Logger:          logger.Named("tickets"),
		Timeout:         cfg.Ticket.Timeout(),
		DefaultCategory: cfg.Ticket.DefaultCategory,
	})
	c.FrontDesk = service.NewFrontDeskService(c.Knowledge, c.Tickets, logger.Named("frontdesk"))
	c.Notifications = service.NewNotificationService(c.Dispatcher, logger.Named("notify"), c.Metrics, cfg.Notification)
	c.Notifications.RegisterHandlers()

	return c, nil
}

// Close releases storage connections.
func (c *Container) Close() {
	c.Redis.Close()
	c.Postgres.Close()
}
