package repository

import "github.com/jackc/pgx/v5/pgxpool"

// Stores bundles the repositories backing the knowledge store.
type Stores struct {
	Tickets        TicketRepository
	LearnedAnswers LearnedAnswerRepository
	MessageLogs    MessageLogRepository
}

// NewPostgresStores wires every repository to the same pool.
func NewPostgresStores(pool *pgxpool.Pool) Stores {
	return Stores{
		Tickets:        NewTicketRepository(pool),
		LearnedAnswers: NewLearnedAnswerRepository(pool),
		MessageLogs:    NewMessageLogRepository(pool),
	}
}

// Stores returns the in-memory repositories.
func (m *MemoryStore) Stores() Stores {
	return Stores{
		Tickets:        m.Tickets(),
		LearnedAnswers: m.LearnedAnswers(),
		MessageLogs:    m.MessageLogs(),
	}
}
