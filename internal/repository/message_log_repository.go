package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/frontdesk-supervisor/internal/domain"
)

// MessageLogRepository is the outbound follow-up audit trail.
type MessageLogRepository interface {
	Append(ctx context.Context, msg *domain.MessageLog) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.MessageLog, error)
}

type messageLogRepository struct {
	pool *pgxpool.Pool
}

// NewMessageLogRepository builds repository.
func NewMessageLogRepository(pool *pgxpool.Pool) MessageLogRepository {
	return &messageLogRepository{pool: pool}
}

func (r *messageLogRepository) Append(ctx context.Context, msg *domain.MessageLog) error {
	if err := validateMessageLog(msg); err != nil {
		return err
	}
	const query = `
        INSERT INTO message_logs (id, ticket_id, recipient, body, created_at)
        VALUES ($1,$2,$3,$4,$5)`
	_, err := r.pool.Exec(ctx, query, msg.ID, msg.TicketID, msg.Recipient, msg.Body, msg.CreatedAt)
	return err
}

func (r *messageLogRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.MessageLog, error) {
	const query = `
        SELECT id, ticket_id, recipient, body, created_at
        FROM message_logs WHERE ticket_id=$1 ORDER BY seq ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.MessageLog{}
	for rows.Next() {
		var msg domain.MessageLog
		if err := rows.Scan(&msg.ID, &msg.TicketID, &msg.Recipient, &msg.Body, &msg.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}
