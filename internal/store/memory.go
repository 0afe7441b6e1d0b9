package store

import (
	"sync"
	"time"

	"github.com/savo-robotics/savocore/internal/models"
)

// InMemoryStore is a SessionStore without persistence, for tests and
// ephemeral deployments.
type InMemoryStore struct {
	maxTurns int

	mu       sync.Mutex
	sessions map[string]*models.SessionRecord
}

// NewInMemoryStore creates an empty in-memory session store.
func NewInMemoryStore(opts ...Option) *InMemoryStore {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	return &InMemoryStore{
		maxTurns: cfg.historyCap(),
		sessions: make(map[string]*models.SessionRecord),
	}
}

// GetOrCreate returns the session for id, creating it when absent.
func (s *InMemoryStore) GetOrCreate(id string) (*models.SessionRecord, error) {
	if id == "" {
		return nil, models.ErrEmptySessionID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneRecord(s.getOrCreateLocked(id)), nil
}

// Get returns the session for id or models.ErrSessionNotFound.
func (s *InMemoryStore) Get(id string) (*models.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[id]
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	return cloneRecord(rec), nil
}

// Delete removes a session.
func (s *InMemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// UpdateFromTurn records one processed chat turn.
func (s *InMemoryStore) UpdateFromTurn(id, userText, assistantText string, intent models.Intent, navGoal string) (*models.SessionRecord, error) {
	if id == "" {
		return nil, models.ErrEmptySessionID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.getOrCreateLocked(id)
	applyTurn(rec, userText, assistantText, intent, navGoal, time.Now().UTC(), s.maxTurns)
	return cloneRecord(rec), nil
}

// HistoryAsMessages returns the session history in chat-message form.
func (s *InMemoryStore) HistoryAsMessages(id string) ([]models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[id]
	if !ok {
		return []models.ChatMessage{}, nil
	}
	return historyToMessages(rec.History), nil
}

// PruneStale drops sessions not seen within maxAge.
func (s *InMemoryStore) PruneStale(maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().Add(-maxAge)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, rec := range s.sessions {
		if rec.LastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error { return nil }

func (s *InMemoryStore) getOrCreateLocked(id string) *models.SessionRecord {
	rec, ok := s.sessions[id]
	if !ok {
		now := time.Now().UTC()
		rec = &models.SessionRecord{SessionID: id, CreatedAt: now, LastSeen: now}
		s.sessions[id] = rec
	} else {
		rec.LastSeen = time.Now().UTC()
	}
	return rec
}
