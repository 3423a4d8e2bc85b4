package dto

import "time"

// LearnRequest teaches an answer directly.
type LearnRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category"`
}

// LearnedAnswerResponse renders a learned entry.
type LearnedAnswerResponse struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// LookupResponse reports a knowledge lookup.
type LookupResponse struct {
	Found    bool   `json:"found"`
	Answer   string `json:"answer,omitempty"`
	Source   string `json:"source,omitempty"`
	Topic    string `json:"topic,omitempty"`
	Question string `json:"matched_question,omitempty"`
}
