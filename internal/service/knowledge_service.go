package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/frontdesk-supervisor/internal/domain"
	"github.com/spec-kit/frontdesk-supervisor/internal/events"
	"github.com/spec-kit/frontdesk-supervisor/internal/repository"
	apperrors "github.com/spec-kit/frontdesk-supervisor/pkg/util/errorutil"
)

// MatchSource tells which tier produced an answer.
type MatchSource string

const (
	SourceStatic  MatchSource = "static"
	SourceLearned MatchSource = "learned"
)

// Match is a resolved answer with its provenance.
type Match struct {
	Answer string
	Source MatchSource
	// Topic is set for static matches.
	Topic Topic
	// Question is the stored question for learned matches.
	Question string
}

// KnowledgeService answers questions from the static rule table, then from
// answers taught by supervisors.
type KnowledgeService struct {
	rules      Rules
	learned    repository.LearnedAnswerRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// KnowledgeDependencies bundles collaborators for the knowledge service.
type KnowledgeDependencies struct {
	Rules       Rules
	LearnedRepo repository.LearnedAnswerRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Clock       func() time.Time
}

// NewKnowledgeService constructs the service. A nil rule table means DefaultRules.
func NewKnowledgeService(deps KnowledgeDependencies) *KnowledgeService {
	s := &KnowledgeService{
		rules:      deps.Rules,
		learned:    deps.LearnedRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		now:        deps.Clock,
	}
	if s.rules == nil {
		s.rules = DefaultRules()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Lookup returns the answer for question, if any tier knows one.
func (s *KnowledgeService) Lookup(ctx context.Context, question string) (string, bool, error) {
	m, err := s.Resolve(ctx, question)
	if err != nil || m == nil {
		return "", false, err
	}
	return m.Answer, true, nil
}

// Resolve is Lookup with provenance. It returns nil when nothing matches.
func (s *KnowledgeService) Resolve(ctx context.Context, question string) (*Match, error) {
	q := normalize(question)
	if q == "" {
		return nil, nil
	}
	if rule, ok := s.rules.Match(q); ok {
		return &Match{Answer: rule.Answer, Source: SourceStatic, Topic: rule.Topic}, nil
	}

	entries, err := s.learned.List(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceFailure("list learned answers", err)
	}
	// Newest first so later teaching shadows earlier entries. The bidirectional
	// substring test is loose: a short stored question matches many inputs.
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		stored := normalize(e.Question)
		if stored == "" || e.Answer == "" {
			continue
		}
		if strings.Contains(q, stored) || strings.Contains(stored, q) {
			return &Match{Answer: e.Answer, Source: SourceLearned, Question: e.Question}, nil
		}
	}
	return nil, nil
}

// Learn appends a taught answer. Duplicates are kept; the newest wins on lookup.
func (s *KnowledgeService) Learn(ctx context.Context, question, answer, category string) (*domain.LearnedAnswer, error) {
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)
	if question == "" || answer == "" {
		return nil, apperrors.NewValidationError("question and answer are required", nil)
	}
	if strings.TrimSpace(category) == "" {
		category = domain.DefaultCategory
	}

	entry := &domain.LearnedAnswer{
		ID:        uuid.NewString(),
		Question:  question,
		Answer:    answer,
		Category:  category,
		CreatedAt: s.now().UTC(),
	}
	if err := s.learned.Append(ctx, entry); err != nil {
		return nil, apperrors.NewPersistenceFailure("append learned answer", err)
	}
	s.logger.Info("answer learned", zap.String("entry_id", entry.ID), zap.String("category", category))

	if s.dispatcher != nil {
		err := s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventAnswerLearned,
			Timestamp: entry.CreatedAt,
			Payload:   events.AnswerLearnedPayload{Question: question, Category: category},
		})
		if err != nil {
			s.logger.Warn("notification failed",
				zap.String("event", string(events.EventAnswerLearned)),
				zap.String("entry_id", entry.ID),
				zap.Error(err))
		}
	}
	return entry, nil
}

// ListLearned returns every learned answer in insertion order.
func (s *KnowledgeService) ListLearned(ctx context.Context) ([]domain.LearnedAnswer, error) {
	entries, err := s.learned.List(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceFailure("list learned answers", err)
	}
	return entries, nil
}

func normalize(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}
