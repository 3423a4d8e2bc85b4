package domain

import "time"

// LearnedAnswer is a question/answer pair taught by a supervisor resolution.
type LearnedAnswer struct {
	ID        string
	Question  string
	Answer    string
	Category  string
	CreatedAt time.Time
}

// MessageLog is an outbound follow-up addressed to a caller.
type MessageLog struct {
	ID        string
	TicketID  string
	Recipient string
	Body      string
	CreatedAt time.Time
}
