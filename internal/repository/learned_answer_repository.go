package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/frontdesk-supervisor/internal/domain"
)

// LearnedAnswerRepository stores supervisor-taught answers. Append-only.
type LearnedAnswerRepository interface {
	Append(ctx context.Context, entry *domain.LearnedAnswer) error
	// List returns entries in insertion order.
	List(ctx context.Context) ([]domain.LearnedAnswer, error)
}

type learnedAnswerRepository struct {
	pool *pgxpool.Pool
}

// NewLearnedAnswerRepository builds repository.
func NewLearnedAnswerRepository(pool *pgxpool.Pool) LearnedAnswerRepository {
	return &learnedAnswerRepository{pool: pool}
}

func (r *learnedAnswerRepository) Append(ctx context.Context, entry *domain.LearnedAnswer) error {
	if err := validateLearnedAnswer(entry); err != nil {
		return err
	}
	const query = `
        INSERT INTO learned_answers (id, question, answer, category, created_at)
        VALUES ($1,$2,$3,$4,$5)`
	_, err := r.pool.Exec(ctx, query, entry.ID, entry.Question, entry.Answer, entry.Category, entry.CreatedAt)
	return err
}

func (r *learnedAnswerRepository) List(ctx context.Context) ([]domain.LearnedAnswer, error) {
	const query = `
        SELECT id, question, answer, category, created_at
        FROM learned_answers ORDER BY seq ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.LearnedAnswer{}
	for rows.Next() {
		var entry domain.LearnedAnswer
		if err := rows.Scan(
			&entry.ID,
			&entry.Question,
			&entry.Answer,
			&entry.Category,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
