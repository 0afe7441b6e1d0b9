// Package store provides session storage backends for savocore.
//
// It includes a JSON-snapshot file store (the default single-robot
// deployment), SQLite and PostgreSQL stores for installations that need a
// real database, and an in-memory store for tests.
package store

import (
	"time"

	"github.com/savo-robotics/savocore/internal/models"
)

// SessionStore tracks bounded conversation history and last-known
// intent/goal per session.
//
// Single-writer contract: implementations serialize in-process access, but
// none of them coordinates between processes. Running two writer processes
// against the same file store corrupts nothing (writes are atomic) but
// loses updates; use the Postgres store behind an external lock if the
// deployment ever needs multiple writers.
type SessionStore interface {
	// GetOrCreate returns the session for id, creating it when absent, and
	// refreshes its last-seen timestamp.
	GetOrCreate(id string) (*models.SessionRecord, error)
	// Get returns the session for id or models.ErrSessionNotFound.
	Get(id string) (*models.SessionRecord, error)
	// Delete removes a session. Deleting a missing session is not an error.
	Delete(id string) error
	// UpdateFromTurn appends the user and/or assistant turn, updates last
	// intent and goal, trims history to models.MaxHistoryTurns (oldest
	// first), and persists the change. Empty userText/assistantText skips
	// that turn; an empty intent or goal leaves the previous value.
	UpdateFromTurn(id, userText, assistantText string, intent models.Intent, navGoal string) (*models.SessionRecord, error)
	// HistoryAsMessages returns the session history as provider-facing
	// chat messages; a missing session yields an empty slice.
	HistoryAsMessages(id string) ([]models.ChatMessage, error)
	// PruneStale removes sessions whose last-seen timestamp is older than
	// maxAge and reports how many were removed.
	PruneStale(maxAge time.Duration) (int, error)
	// Close releases any underlying resources.
	Close() error
}

// Opts holds configuration for store constructors.
type Opts struct {
	// Path is the snapshot file path (file store) or DSN (database stores).
	Path string
	// MaxHistoryTurns overrides models.MaxHistoryTurns when positive.
	MaxHistoryTurns int
}

// Option configures a store constructor.
type Option func(*Opts)

// WithPath sets the snapshot file path or database DSN.
func WithPath(path string) Option {
	return func(o *Opts) { o.Path = path }
}

// WithMaxHistoryTurns overrides the per-session history cap.
func WithMaxHistoryTurns(n int) Option {
	return func(o *Opts) { o.MaxHistoryTurns = n }
}

func (o *Opts) historyCap() int {
	if o.MaxHistoryTurns > 0 {
		return o.MaxHistoryTurns
	}
	return models.MaxHistoryTurns
}
