package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/frontdesk-supervisor/internal/config"
	"github.com/spec-kit/frontdesk-supervisor/internal/events"
	"github.com/spec-kit/frontdesk-supervisor/internal/observability"
)

// WebhookSender delivers an event to a supervisor endpoint.
type WebhookSender interface {
	Send(ctx context.Context, event events.Event) error
}

// NotificationService is the supervisor notification port. Its handlers run
// inside Publish, so a failing webhook is reported back to the publisher.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	webhook    WebhookSender
}

// NewNotificationService creates the service. A webhook is used only when
// cfg.WebhookURL is set.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics, cfg config.NotificationConfig) *NotificationService {
	n := &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
	}
	if strings.TrimSpace(cfg.WebhookURL) != "" {
		n.webhook = NewFiberWebhook(cfg.WebhookURL, cfg.Timeout())
	}
	return n
}

// WithWebhook replaces the webhook sender.
func (n *NotificationService) WithWebhook(sender WebhookSender) *NotificationService {
	n.webhook = sender
	return n
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketResolved, n.handleTicketClosed)
	n.dispatcher.Subscribe(events.EventTicketTimedOut, n.handleTicketClosed)
	n.dispatcher.Subscribe(events.EventAnswerLearned, n.handleAnswerLearned)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.metrics.RecordEvent(string(event.Type))
	fields := []zap.Field{zap.String("ticket_id", event.TicketID)}
	if p, ok := event.Payload.(events.TicketCreatedPayload); ok {
		fields = append(fields, zap.String("question", p.Question), zap.Time("timeout_at", p.TimeoutAt))
	}
	n.logger.Info("supervisor help needed", fields...)
	return n.sendWebhook(ctx, event)
}

func (n *NotificationService) handleTicketClosed(ctx context.Context, event events.Event) error {
	n.metrics.RecordEvent(string(event.Type))
	n.logger.Info(string(event.Type), zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return n.sendWebhook(ctx, event)
}

func (n *NotificationService) handleAnswerLearned(_ context.Context, event events.Event) error {
	n.metrics.RecordEvent(string(event.Type))
	return nil
}

func (n *NotificationService) sendWebhook(ctx context.Context, event events.Event) error {
	if n.webhook == nil {
		return nil
	}
	if err := n.webhook.Send(ctx, event); err != nil {
		n.metrics.RecordEvent("notification_failed")
		return fmt.Errorf("webhook %s: %w", event.Type, err)
	}
	n.logger.Debug("webhook delivered",
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
	return nil
}

// FiberWebhook posts events as JSON using fiber's HTTP client.
type FiberWebhook struct {
	url     string
	timeout time.Duration
}

// NewFiberWebhook creates a sender for url.
func NewFiberWebhook(url string, timeout time.Duration) *FiberWebhook {
	return &FiberWebhook{url: url, timeout: timeout}
}

// Send posts the event. The request is bounded by the configured timeout or
// by ctx's deadline, whichever is sooner.
func (w *FiberWebhook) Send(ctx context.Context, event events.Event) error {
	timeout, err := requestTimeout(ctx, w.timeout)
	if err != nil {
		return err
	}
	agent := fiber.Post(w.url)
	agent.JSON(event)
	if timeout > 0 {
		agent.Timeout(timeout)
	}
	if err := agent.Parse(); err != nil {
		return err
	}
	code, _, errs := agent.Bytes()
	if len(errs) > 0 {
		return errs[0]
	}
	if code < 200 || code >= 300 {
		return fmt.Errorf("unexpected status %d", code)
	}
	return nil
}

func requestTimeout(ctx context.Context, configured time.Duration) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		return configured, nil
	}
	left := time.Until(deadline)
	if left <= 0 {
		return 0, context.DeadlineExceeded
	}
	if configured <= 0 || left < configured {
		return left, nil
	}
	return configured, nil
}
