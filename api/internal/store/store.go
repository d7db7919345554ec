package store

import (
	"context"
	"time"
)

const (
	Collection   = "math_problems"
	HistoryLimit = 20
)

// Record is one solved problem in a user's history. The store assigns ID and Timestamp.
type Record struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"user_id"`
	Timestamp          time.Time `json:"timestamp"`
	ProblemDescription *string   `json:"problem_description"`
	Solution           string    `json:"solution"`
	Steps              []string  `json:"steps"`
	Answer             string    `json:"answer"`
	ProcessingTime     float64   `json:"processing_time"`
	Engine             string    `json:"engine,omitempty"`
	Model              string    `json:"model,omitempty"`
}

// Store is an append-only per-user history log.
type Store interface {
	Save(ctx context.Context, rec Record) (string, error)
	// ListByUser returns at most limit records for userID, newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]Record, error)
	Close() error
}

// Optional is a Store that may be absent. Presence is decided once at startup.
type Optional struct {
	s      Store
	reason string
}

func Enabled(s Store) Optional { return Optional{s: s} }

func Disabled(reason string) Optional { return Optional{reason: reason} }

func (o Optional) Get() (Store, bool) { return o.s, o.s != nil }

// Reason explains why the store is disabled; empty when enabled.
func (o Optional) Reason() string { return o.reason }

func (o Optional) Close() error {
	if o.s == nil {
		return nil
	}
	return o.s.Close()
}
