package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/frontdesk-supervisor/internal/domain"
	"github.com/spec-kit/frontdesk-supervisor/internal/events"
	"github.com/spec-kit/frontdesk-supervisor/internal/service"
	apperrors "github.com/spec-kit/frontdesk-supervisor/pkg/util/errorutil"
)

func TestCreateTicket_StartsPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.CreateTicket(ctx, service.TicketCreateInput{
		Question:  "Do you sell gift cards?",
		Caller:    "555-0101",
		SessionID: "sid-1",
	})
	require.NoError(t, err)
	ticket := res.Ticket

	assert.NotEmpty(t, ticket.ID)
	assert.Equal(t, domain.TicketStatusPending, ticket.Status)
	assert.Equal(t, domain.DefaultCategory, ticket.Category)
	assert.Equal(t, "sid-1", ticket.SessionID)
	assert.Equal(t, f.clock.Now(), ticket.CreatedAt)
	assert.Equal(t, ticket.CreatedAt.Add(testTTL), ticket.TimeoutAt)
	assert.Nil(t, ticket.Answer)
	assert.Nil(t, ticket.ResolvedAt)
	assert.Nil(t, ticket.ResolvedBy)
	assert.False(t, res.SideEffects.Failed())

	stored, err := f.svc.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket, stored)
	f.requireInvariants(t)
}

func TestCreateTicket_UniqueIDs(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, "first question")
	b := f.create(t, "first question")
	assert.NotEqual(t, a.ID, b.ID)
}

func TestCreateTicket_RejectsMissingInput(t *testing.T) {
	cases := []struct {
		name     string
		question string
		caller   string
	}{
		{"empty question", "", "555-0101"},
		{"blank question", "   ", "555-0101"},
		{"empty caller", "Do you sell gift cards?", ""},
		{"both empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			notified := false
			f.dispatcher.Subscribe(events.EventTicketCreated, func(context.Context, events.Event) error {
				notified = true
				return nil
			})

			res, err := f.svc.CreateTicket(context.Background(), service.TicketCreateInput{
				Question: tc.question,
				Caller:   tc.caller,
			})
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, apperrors.IsValidation(err))

			creates, _ := f.tickets.counts()
			assert.Zero(t, creates)
			assert.False(t, notified)
		})
	}
}

func TestCreateTicket_NotificationFailureDoesNotRollBack(t *testing.T) {
	f := newFixture(t)
	f.dispatcher.Subscribe(events.EventTicketCreated, func(context.Context, events.Event) error {
		return errors.New("webhook down")
	})

	res, err := f.svc.CreateTicket(context.Background(), service.TicketCreateInput{
		Question: "Can I bring my dog?",
		Caller:   "555-0102",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Ticket)
	require.Error(t, res.SideEffects.Notify)
	assert.True(t, apperrors.HasCode(res.SideEffects.Notify, apperrors.CodeSideEffect))

	pending, err := f.svc.PendingTickets(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, res.Ticket.ID, pending[0].ID)
}

func TestCreateTicket_PersistenceFailureSkipsNotification(t *testing.T) {
	f := newFixture(t)
	f.tickets.failCreate = true
	notified := false
	f.dispatcher.Subscribe(events.EventTicketCreated, func(context.Context, events.Event) error {
		notified = true
		return nil
	})

	_, err := f.svc.CreateTicket(context.Background(), service.TicketCreateInput{
		Question: "Can I bring my dog?",
		Caller:   "555-0102",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsPersistence(err))
	assert.ErrorIs(t, err, errStoreDown)
	assert.False(t, notified)
}

func TestCreateTicket_NotifiesWithTicketDetails(t *testing.T) {
	f := newFixture(t)
	var got events.Event
	f.dispatcher.Subscribe(events.EventTicketCreated, func(_ context.Context, e events.Event) error {
		got = e
		return nil
	})

	ticket := f.create(t, "Do you do eyebrow tattoos?")

	assert.Equal(t, ticket.ID, got.TicketID)
	payload, ok := got.Payload.(events.TicketCreatedPayload)
	require.True(t, ok)
	assert.Equal(t, "Do you do eyebrow tattoos?", payload.Question)
	assert.Equal(t, ticket.TimeoutAt, payload.TimeoutAt)
}

func TestResolveTicket_RecordsAnswerAndFollowUp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.create(t, "Do you do eyebrow tattoos?")
	f.clock.Advance(time.Minute)

	res, err := f.svc.ResolveTicket(ctx, ticket.ID, "We do eyebrow tattoos on request.", "supervisor")
	require.NoError(t, err)
	assert.False(t, res.SideEffects.Failed())

	resolved := res.Ticket
	assert.Equal(t, domain.TicketStatusResolved, resolved.Status)
	require.NotNil(t, resolved.Answer)
	assert.Equal(t, "We do eyebrow tattoos on request.", *resolved.Answer)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, "supervisor", *resolved.ResolvedBy)
	require.NotNil(t, resolved.ResolvedAt)
	assert.Equal(t, f.clock.Now(), *resolved.ResolvedAt)

	stored, err := f.svc.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, resolved, stored)

	msgs, err := f.store.MessageLogs().ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "555-0101", msgs[0].Recipient)
	assert.Equal(t, "Answer to your question: We do eyebrow tattoos on request.", msgs[0].Body)
	f.requireInvariants(t)
}

func TestResolveTicket_DefaultsResolver(t *testing.T) {
	f := newFixture(t)
	ticket := f.create(t, "Is parking free?")

	res, err := f.svc.ResolveTicket(context.Background(), ticket.ID, "Yes, behind the building.", "")
	require.NoError(t, err)
	require.NotNil(t, res.Ticket.ResolvedBy)
	assert.Equal(t, service.DefaultResolver, *res.Ticket.ResolvedBy)
}

func TestResolveTicket_ValidatesInput(t *testing.T) {
	f := newFixture(t)
	ticket := f.create(t, "Is parking free?")

	_, err := f.svc.ResolveTicket(context.Background(), "", "answer", "supervisor")
	assert.True(t, apperrors.IsValidation(err))

	_, err = f.svc.ResolveTicket(context.Background(), ticket.ID, "  ", "supervisor")
	assert.True(t, apperrors.IsValidation(err))

	_, replaces := f.tickets.counts()
	assert.Zero(t, replaces)
}

func TestResolveTicket_UnknownIDIsNotFound(t *testing.T) {
	f := newFixture(t)
	ticket := f.create(t, "Is parking free?")

	res, err := f.svc.ResolveTicket(context.Background(), "does-not-exist", "Yes.", "supervisor")
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, apperrors.IsNotFound(err))

	_, replaces := f.tickets.counts()
	assert.Zero(t, replaces)
	stored, err := f.svc.GetTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusPending, stored.Status)

	learned, err := f.knowledge.ListLearned(context.Background())
	require.NoError(t, err)
	assert.Empty(t, learned)
}

func TestResolveTicket_TerminalTicketIsNeverOverwritten(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resolved := f.create(t, "Is parking free?")
	_, err := f.svc.ResolveTicket(ctx, resolved.ID, "Yes.", "alice")
	require.NoError(t, err)

	_, err = f.svc.ResolveTicket(ctx, resolved.ID, "No.", "bob")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	stored, err := f.svc.GetTicket(ctx, resolved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Yes.", *stored.Answer)
	assert.Equal(t, "alice", *stored.ResolvedBy)

	expired := f.create(t, "Do you validate parking?")
	f.clock.Advance(testTTL + time.Second)
	timedOut, err := f.svc.SweepTimeouts(ctx)
	require.NoError(t, err)
	require.Len(t, timedOut, 1)

	_, err = f.svc.ResolveTicket(ctx, expired.ID, "Late answer.", "alice")
	assert.True(t, apperrors.IsNotFound(err))
	stored, err = f.svc.GetTicket(ctx, expired.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusUnresolved, stored.Status)
	assert.Nil(t, stored.ResolvedBy)

	learned, err := f.knowledge.ListLearned(ctx)
	require.NoError(t, err)
	assert.Len(t, learned, 1, "only the first resolution teaches")
	f.requireInvariants(t)
}

func TestResolveTicket_LearnFailureKeepsResolution(t *testing.T) {
	f := newFixture(t, withLearnedRepo(failingLearned{}))
	ticket := f.create(t, "Is parking free?")

	res, err := f.svc.ResolveTicket(context.Background(), ticket.ID, "Yes.", "supervisor")
	require.NoError(t, err)
	require.Error(t, res.SideEffects.Learn)
	assert.ErrorIs(t, res.SideEffects.Learn, errStoreDown)
	assert.NoError(t, res.SideEffects.FollowUp)

	stored, err := f.svc.GetTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, stored.Status)
}

func TestResolveTicket_FollowUpFailureKeepsResolution(t *testing.T) {
	f := newFixture(t, withMessageRepo(failingMessages{}))
	ticket := f.create(t, "Is parking free?")

	res, err := f.svc.ResolveTicket(context.Background(), ticket.ID, "Yes.", "supervisor")
	require.NoError(t, err)
	require.Error(t, res.SideEffects.FollowUp)
	assert.NoError(t, res.SideEffects.Learn)

	stored, err := f.svc.GetTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, stored.Status)
}

func TestSweepTimeouts_TransitionsOnlyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	old1 := f.create(t, "question one")
	old2 := f.create(t, "question two")
	f.clock.Advance(2 * time.Minute)
	fresh := f.create(t, "question three")

	f.clock.Advance(testTTL - time.Minute)
	first, err := f.svc.SweepTimeouts(ctx)
	require.NoError(t, err)
	require.Len(t, first, 2)
	ids := []string{first[0].ID, first[1].ID}
	assert.ElementsMatch(t, []string{old1.ID, old2.ID}, ids)
	for _, ticket := range first {
		assert.Equal(t, domain.TicketStatusUnresolved, ticket.Status)
		require.NotNil(t, ticket.ResolvedAt)
		assert.Equal(t, f.clock.Now(), *ticket.ResolvedAt)
		assert.Nil(t, ticket.ResolvedBy)
	}

	second, err := f.svc.SweepTimeouts(ctx)
	require.NoError(t, err)
	assert.Empty(t, second)

	stillPending, err := f.svc.GetTicket(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusPending, stillPending.Status)

	unresolved, err := f.svc.UnresolvedTickets(ctx)
	require.NoError(t, err)
	assert.Len(t, unresolved, 2)
	f.requireInvariants(t)
}

func TestSweepTimeouts_LongOverdueTicketsTransitionOnce(t *testing.T) {
	f := newFixture(t)
	f.create(t, "question one")
	f.clock.Advance(100 * testTTL)

	first, err := f.svc.SweepTimeouts(context.Background())
	require.NoError(t, err)
	assert.Len(t, first, 1)

	f.clock.Advance(100 * testTTL)
	second, err := f.svc.SweepTimeouts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestSweepTimeouts_BoundaryIsStrict(t *testing.T) {
	f := newFixture(t)
	ticket := f.create(t, "question one")

	f.clock.Set(ticket.TimeoutAt)
	swept, err := f.svc.SweepTimeouts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, swept, "deadline equal to now is not yet expired")

	f.clock.Advance(time.Microsecond)
	swept, err = f.svc.SweepTimeouts(context.Background())
	require.NoError(t, err)
	require.Len(t, swept, 1)
	assert.Equal(t, ticket.ID, swept[0].ID)
}

func TestSweepTimeouts_EmptyStore(t *testing.T) {
	f := newFixture(t)
	swept, err := f.svc.SweepTimeouts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, swept)
	assert.Empty(t, swept)
}

func TestSweepTimeouts_SkipsTicketsWithoutDeadline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	broken := &domain.Ticket{
		ID:        "broken-1",
		Question:  "legacy question",
		Caller:    "555-0199",
		Category:  domain.DefaultCategory,
		Status:    domain.TicketStatusPending,
		CreatedAt: f.clock.Now(),
	}
	require.NoError(t, f.store.Tickets().Create(ctx, broken))
	good := f.create(t, "question one")

	f.clock.Advance(testTTL + time.Second)
	swept, err := f.svc.SweepTimeouts(ctx)
	require.NoError(t, err)
	require.Len(t, swept, 1)
	assert.Equal(t, good.ID, swept[0].ID)

	stored, err := f.svc.GetTicket(ctx, broken.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusPending, stored.Status)
}

func TestSweepTimeouts_ListFailureIsPersistenceError(t *testing.T) {
	f := newFixture(t)
	f.tickets.failList = true
	_, err := f.svc.SweepTimeouts(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsPersistence(err))
}

func TestSweepTimeouts_PublishesTimeoutEvents(t *testing.T) {
	f := newFixture(t)
	var got []string
	f.dispatcher.Subscribe(events.EventTicketTimedOut, func(_ context.Context, e events.Event) error {
		got = append(got, e.TicketID)
		return errors.New("listener failure is ignored")
	})
	ticket := f.create(t, "question one")
	f.clock.Advance(testTTL + time.Second)

	swept, err := f.svc.SweepTimeouts(context.Background())
	require.NoError(t, err)
	require.Len(t, swept, 1)
	assert.Equal(t, []string{ticket.ID}, got)
}

func TestListByStatus_RejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ListByStatus(context.Background(), domain.TicketStatus("closed"))
	assert.True(t, apperrors.IsValidation(err))
}

func TestStatusQueries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.create(t, "question a")
	f.create(t, "question b")
	_, err := f.svc.ResolveTicket(ctx, a.ID, "answer a", "supervisor")
	require.NoError(t, err)

	pending, err := f.svc.PendingTickets(ctx)
	require.NoError(t, err)
	resolved, err := f.svc.ResolvedTickets(ctx)
	require.NoError(t, err)
	unresolved, err := f.svc.UnresolvedTickets(ctx)
	require.NoError(t, err)

	assert.Len(t, pending, 1)
	assert.Len(t, resolved, 1)
	assert.Empty(t, unresolved)
	assert.Equal(t, a.ID, resolved[0].ID)

	recent, err := f.svc.ListRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "question b", recent[0].Question)
}

func TestResolveAndSweepRaceHasOneWinner(t *testing.T) {
	for round := 0; round < 25; round++ {
		f := newFixture(t)
		ctx := context.Background()
		ticket := f.create(t, "racy question")
		f.clock.Advance(testTTL + time.Second)

		var (
			wg          sync.WaitGroup
			resolveWins int
			sweepWins   int
			mu          sync.Mutex
		)
		for i := 0; i < 4; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				if _, err := f.svc.ResolveTicket(ctx, ticket.ID, "late answer", "supervisor"); err == nil {
					mu.Lock()
					resolveWins++
					mu.Unlock()
				}
			}()
			go func() {
				defer wg.Done()
				swept, err := f.svc.SweepTimeouts(ctx)
				if err == nil && len(swept) == 1 {
					mu.Lock()
					sweepWins++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		require.Equal(t, 1, resolveWins+sweepWins, "round %d", round)
		stored, err := f.svc.GetTicket(ctx, ticket.ID)
		require.NoError(t, err)
		if resolveWins == 1 {
			assert.Equal(t, domain.TicketStatusResolved, stored.Status)
		} else {
			assert.Equal(t, domain.TicketStatusUnresolved, stored.Status)
		}
		f.requireInvariants(t)
	}
}
