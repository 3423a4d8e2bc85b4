package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/frontdesk-supervisor/internal/domain"
)

// ErrNotFound is returned by reads that target an absent record.
var ErrNotFound = errors.New("record not found")

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	// Replace overwrites the mutable fields of ticket only while the stored
	// status still equals expected. It reports false when the ticket is absent
	// or has already moved on.
	Replace(ctx context.Context, ticket *domain.Ticket, expected domain.TicketStatus) (bool, error)
	ListByStatus(ctx context.Context, status domain.TicketStatus) ([]domain.Ticket, error)
	List(ctx context.Context, limit int) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the Postgres-backed repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, question, caller, session_id, category, status,
               created_at, timeout_at, answer, resolved_at, resolved_by`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	if err := validateTicket(ticket); err != nil {
		return err
	}
	const query = `
        INSERT INTO tickets (id, question, caller, session_id, category, status, created_at, timeout_at, answer, resolved_at, resolved_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	_, err := r.pool.Exec(ctx, query,
		ticket.ID,
		ticket.Question,
		ticket.Caller,
		ticket.SessionID,
		ticket.Category,
		ticket.Status,
		ticket.CreatedAt,
		ticket.TimeoutAt,
		ticket.Answer,
		ticket.ResolvedAt,
		ticket.ResolvedBy,
	)
	return err
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) Replace(ctx context.Context, ticket *domain.Ticket, expected domain.TicketStatus) (bool, error) {
	if err := validateTicket(ticket); err != nil {
		return false, err
	}
	const query = `
        UPDATE tickets SET status=$2, answer=$3, resolved_at=$4, resolved_by=$5
        WHERE id=$1 AND status=$6`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.ID,
		ticket.Status,
		ticket.Answer,
		ticket.ResolvedAt,
		ticket.ResolvedBy,
		expected,
	)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *ticketRepository) ListByStatus(ctx context.Context, status domain.TicketStatus) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE status=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) List(ctx context.Context, limit int) ([]domain.Ticket, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	query := fmt.Sprintf(`SELECT %s FROM tickets ORDER BY created_at DESC, id DESC LIMIT %d`, ticketColumns, limit)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// DefaultListLimit bounds List when the caller passes no limit.
const DefaultListLimit = 100

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.Question,
		&ticket.Caller,
		&ticket.SessionID,
		&ticket.Category,
		&ticket.Status,
		&ticket.CreatedAt,
		&ticket.TimeoutAt,
		&ticket.Answer,
		&ticket.ResolvedAt,
		&ticket.ResolvedBy,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	result := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}
