package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/frontdesk-supervisor/internal/config"
	"github.com/spec-kit/frontdesk-supervisor/internal/domain"
	"github.com/spec-kit/frontdesk-supervisor/internal/events"
	"github.com/spec-kit/frontdesk-supervisor/internal/observability"
	"github.com/spec-kit/frontdesk-supervisor/internal/service"
	apperrors "github.com/spec-kit/frontdesk-supervisor/pkg/util/errorutil"
)

func TestHandleQuestion_AnsweredFromRules(t *testing.T) {
	f := newFixture(t)
	out, err := f.frontDesk.HandleQuestion(context.Background(), "555-0101", "sid-1", "What are your hours?")
	require.NoError(t, err)
	assert.True(t, out.Answered)
	assert.Nil(t, out.Ticket)
	assert.Contains(t, out.Reply, "Monday to Saturday")

	creates, _ := f.tickets.counts()
	assert.Zero(t, creates)
}

func TestHandleQuestion_EscalatesAndLearns(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.frontDesk.HandleQuestion(ctx, "555-0101", "sid-1", "Do you do eyebrow tattoos?")
	require.NoError(t, err)
	assert.False(t, out.Answered)
	assert.Equal(t, service.HoldMessage, out.Reply)
	require.NotNil(t, out.Ticket)
	assert.Equal(t, "sid-1", out.Ticket.SessionID)

	_, err = f.svc.ResolveTicket(ctx, out.Ticket.ID, "Yes, on Tuesdays.", "supervisor")
	require.NoError(t, err)

	again, err := f.frontDesk.HandleQuestion(ctx, "555-0202", "sid-2", "eyebrow tattoos?")
	require.NoError(t, err)
	assert.True(t, again.Answered)
	assert.Equal(t, "Yes, on Tuesdays.", again.Reply)
	require.NotNil(t, again.Match)
	assert.Equal(t, service.SourceLearned, again.Match.Source)

	pending, err := f.svc.PendingTickets(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestHandleQuestion_EscalatesWhenKnowledgeStoreFails(t *testing.T) {
	f := newFixture(t, withLearnedRepo(failingLearned{}))
	out, err := f.frontDesk.HandleQuestion(context.Background(), "555-0101", "", "Do you sell gift cards?")
	require.NoError(t, err)
	assert.False(t, out.Answered)
	require.NotNil(t, out.Ticket)
	assert.Equal(t, domain.TicketStatusPending, out.Ticket.Status)
}

func TestHandleQuestion_RequiresCallerAndQuestion(t *testing.T) {
	f := newFixture(t)
	_, err := f.frontDesk.HandleQuestion(context.Background(), "", "", "What are your hours?")
	assert.True(t, apperrors.IsValidation(err))
	_, err = f.frontDesk.HandleQuestion(context.Background(), "555-0101", "", "")
	assert.True(t, apperrors.IsValidation(err))
}

type recordingWebhook struct {
	sent []events.Event
	err  error
}

func (w *recordingWebhook) Send(_ context.Context, e events.Event) error {
	w.sent = append(w.sent, e)
	return w.err
}

func TestNotificationService_WebhookFailureSurfacesAsSideEffect(t *testing.T) {
	f := newFixture(t)
	metrics := observability.NewMetrics()
	hook := &recordingWebhook{err: errors.New("connection refused")}
	service.NewNotificationService(f.dispatcher, zap.NewNop(), metrics, config.NotificationConfig{}).
		WithWebhook(hook).
		RegisterHandlers()

	ticket := f.create(t, "Do you sell gift cards?")
	require.Len(t, hook.sent, 1)
	assert.Equal(t, ticket.ID, hook.sent[0].TicketID)

	res, err := f.svc.CreateTicket(context.Background(), service.TicketCreateInput{Question: "Another?", Caller: "555-0102"})
	require.NoError(t, err)
	assert.Error(t, res.SideEffects.Notify)

	snap := metrics.Snapshot()
	assert.Equal(t, int64(2), snap.Events[string(events.EventTicketCreated)])
	assert.Equal(t, int64(2), snap.Events["notification_failed"])
}

func TestNotificationService_NoWebhookConfigured(t *testing.T) {
	f := newFixture(t)
	service.NewNotificationService(f.dispatcher, zap.NewNop(), nil, config.NotificationConfig{}).RegisterHandlers()

	res, err := f.svc.CreateTicket(context.Background(), service.TicketCreateInput{Question: "Gift cards?", Caller: "555-0101"})
	require.NoError(t, err)
	assert.NoError(t, res.SideEffects.Notify)

	f.clock.Advance(testTTL + time.Second)
	swept, err := f.svc.SweepTimeouts(context.Background())
	require.NoError(t, err)
	assert.Len(t, swept, 1)
}
