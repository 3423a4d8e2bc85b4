package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/frontdesk-supervisor/internal/domain"
	"github.com/spec-kit/frontdesk-supervisor/internal/events"
	"github.com/spec-kit/frontdesk-supervisor/internal/lock"
	"github.com/spec-kit/frontdesk-supervisor/internal/repository"
	"github.com/spec-kit/frontdesk-supervisor/internal/service"
)

var errStoreDown = errors.New("store unavailable")

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// countingTickets records write attempts and can be told to fail them.
type countingTickets struct {
	repository.TicketRepository
	mu         sync.Mutex
	creates    int
	replaces   int
	failCreate bool
	failList   bool
	// failReplace makes writes to these ticket ids fail.
	failReplace map[string]bool
}

func (r *countingTickets) Create(ctx context.Context, t *domain.Ticket) error {
	r.mu.Lock()
	r.creates++
	fail := r.failCreate
	r.mu.Unlock()
	if fail {
		return errStoreDown
	}
	return r.TicketRepository.Create(ctx, t)
}

func (r *countingTickets) Replace(ctx context.Context, t *domain.Ticket, expected domain.TicketStatus) (bool, error) {
	r.mu.Lock()
	r.replaces++
	fail := r.failReplace[t.ID]
	r.mu.Unlock()
	if fail {
		return false, errStoreDown
	}
	return r.TicketRepository.Replace(ctx, t, expected)
}

func (r *countingTickets) failWritesTo(ids ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failReplace == nil {
		r.failReplace = map[string]bool{}
	}
	for _, id := range ids {
		r.failReplace[id] = true
	}
}

func (r *countingTickets) ListByStatus(ctx context.Context, s domain.TicketStatus) ([]domain.Ticket, error) {
	if r.failList {
		return nil, errStoreDown
	}
	return r.TicketRepository.ListByStatus(ctx, s)
}

func (r *countingTickets) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.creates, r.replaces
}

type failingLearned struct{}

func (failingLearned) Append(context.Context, *domain.LearnedAnswer) error { return errStoreDown }

func (failingLearned) List(context.Context) ([]domain.LearnedAnswer, error) { return nil, errStoreDown }

var errLockDown = errors.New("lock backend unavailable")

// failingLocker refuses the listed keys and delegates the rest.
type failingLocker struct {
	lock.Locker
	keys map[string]bool
}

func (l failingLocker) Lock(ctx context.Context, key string) (func(), error) {
	if l.keys[key] {
		return nil, errLockDown
	}
	return l.Locker.Lock(ctx, key)
}

type failingMessages struct{}

func (failingMessages) Append(context.Context, *domain.MessageLog) error { return errStoreDown }

func (failingMessages) ListByTicket(context.Context, string) ([]domain.MessageLog, error) {
	return nil, errStoreDown
}

type fixture struct {
	store      *repository.MemoryStore
	tickets    *countingTickets
	clock      *fakeClock
	dispatcher events.Dispatcher
	knowledge  *service.KnowledgeService
	svc        *service.TicketService
	frontDesk  *service.FrontDeskService
}

type fixtureOption func(*service.TicketDependencies, *service.KnowledgeDependencies)

func withLearnedRepo(repo repository.LearnedAnswerRepository) fixtureOption {
	return func(_ *service.TicketDependencies, k *service.KnowledgeDependencies) { k.LearnedRepo = repo }
}

func withLocker(l lock.Locker) fixtureOption {
	return func(t *service.TicketDependencies, _ *service.KnowledgeDependencies) { t.Locker = l }
}

func withMessageRepo(repo repository.MessageLogRepository) fixtureOption {
	return func(t *service.TicketDependencies, _ *service.KnowledgeDependencies) { t.MessageRepo = repo }
}

const testTTL = 5 * time.Minute

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	f := &fixture{
		store:      store,
		tickets:    &countingTickets{TicketRepository: store.Tickets()},
		clock:      newFakeClock(),
		dispatcher: events.NewInMemoryDispatcher(),
	}
	kdeps := service.KnowledgeDependencies{
		LearnedRepo: store.LearnedAnswers(),
		Dispatcher:  f.dispatcher,
		Logger:      zap.NewNop(),
		Clock:       f.clock.Now,
	}
	tdeps := service.TicketDependencies{
		TicketRepo:  f.tickets,
		MessageRepo: store.MessageLogs(),
		Dispatcher:  f.dispatcher,
		Logger:      zap.NewNop(),
		Clock:       f.clock.Now,
		Timeout:     testTTL,
	}
	for _, opt := range opts {
		opt(&tdeps, &kdeps)
	}
	f.knowledge = service.NewKnowledgeService(kdeps)
	tdeps.Knowledge = f.knowledge
	f.svc = service.NewTicketService(tdeps)
	f.frontDesk = service.NewFrontDeskService(f.knowledge, f.svc, zap.NewNop())
	return f
}

func (f *fixture) create(t *testing.T, question string) *domain.Ticket {
	t.Helper()
	res, err := f.svc.CreateTicket(context.Background(), service.TicketCreateInput{
		Question: question,
		Caller:   "555-0101",
	})
	require.NoError(t, err)
	return res.Ticket
}

// requireInvariants checks every stored ticket.
func (f *fixture) requireInvariants(t *testing.T) {
	t.Helper()
	all, err := f.store.Tickets().List(context.Background(), 1000)
	require.NoError(t, err)
	for i := range all {
		require.NoError(t, all[i].Validate())
	}
}
