// Package store provides session storage backends for savocore.
//
// This file implements the JSON-snapshot session store used on a single
// robot: all sessions live in memory and the whole map is rewritten
// atomically after every mutation.
package store

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/savo-robotics/savocore/internal/models"
	"github.com/savo-robotics/savocore/internal/util"
)

// snapshot is the on-disk shape of the file store.
type snapshot struct {
	Sessions map[string]*models.SessionRecord `json:"sessions"`
}

// FileStore keeps all sessions in memory and mirrors them to a single JSON
// file. Loading is tolerant: a missing or corrupt snapshot starts empty
// rather than failing the process.
type FileStore struct {
	path     string
	maxTurns int

	mu    sync.Mutex
	state snapshot
}

// NewFileStore creates a file store and loads any existing snapshot.
func NewFileStore(opts ...Option) (*FileStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("session snapshot path not set")
	}

	s := &FileStore{
		path:     cfg.Path,
		maxTurns: cfg.historyCap(),
		state:    snapshot{Sessions: make(map[string]*models.SessionRecord)},
	}
	if util.ReadJSONSafely(s.path, &s.state) {
		if s.state.Sessions == nil {
			s.state.Sessions = make(map[string]*models.SessionRecord)
		}
		slog.Info("FileStore: loaded session snapshot", "path", s.path, "sessions", len(s.state.Sessions))
	} else {
		slog.Info("FileStore: starting with empty session state", "path", s.path)
	}
	return s, nil
}

// GetOrCreate returns the session for id, creating it when absent.
func (s *FileStore) GetOrCreate(id string) (*models.SessionRecord, error) {
	if id == "" {
		return nil, models.ErrEmptySessionID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.getOrCreateLocked(id)
	if err := s.syncLocked(); err != nil {
		return nil, err
	}
	return cloneRecord(rec), nil
}

// Get returns the session for id or models.ErrSessionNotFound.
func (s *FileStore) Get(id string) (*models.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.state.Sessions[id]
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	return cloneRecord(rec), nil
}

// Delete removes a session and persists the change.
func (s *FileStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.Sessions[id]; !ok {
		return nil
	}
	delete(s.state.Sessions, id)
	slog.Debug("FileStore.Delete: session removed", "session_id", id)
	return s.syncLocked()
}

// UpdateFromTurn records one processed chat turn and persists the result.
func (s *FileStore) UpdateFromTurn(id, userText, assistantText string, intent models.Intent, navGoal string) (*models.SessionRecord, error) {
	if id == "" {
		return nil, models.ErrEmptySessionID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.getOrCreateLocked(id)
	applyTurn(rec, userText, assistantText, intent, navGoal, time.Now().UTC(), s.maxTurns)
	if err := s.syncLocked(); err != nil {
		return nil, err
	}
	return cloneRecord(rec), nil
}

// HistoryAsMessages returns the session history in chat-message form.
func (s *FileStore) HistoryAsMessages(id string) ([]models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.state.Sessions[id]
	if !ok {
		return []models.ChatMessage{}, nil
	}
	return historyToMessages(rec.History), nil
}

// PruneStale drops sessions not seen within maxAge.
func (s *FileStore) PruneStale(maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, rec := range s.state.Sessions {
		if rec.LastSeen.Before(cutoff) {
			slog.Info("FileStore.PruneStale: pruning stale session", "session_id", id, "last_seen", rec.LastSeen)
			delete(s.state.Sessions, id)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, s.syncLocked()
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) getOrCreateLocked(id string) *models.SessionRecord {
	rec, ok := s.state.Sessions[id]
	if !ok {
		now := time.Now().UTC()
		rec = &models.SessionRecord{SessionID: id, CreatedAt: now, LastSeen: now}
		s.state.Sessions[id] = rec
		slog.Debug("FileStore: created new session", "session_id", id)
	} else {
		rec.LastSeen = time.Now().UTC()
	}
	return rec
}

func (s *FileStore) syncLocked() error {
	if err := util.WriteJSONAtomic(s.path, s.state); err != nil {
		slog.Error("FileStore: failed to persist session snapshot", "path", s.path, "error", err)
		return fmt.Errorf("failed to persist sessions: %w", err)
	}
	return nil
}

// cloneRecord returns a copy so callers cannot mutate store-owned state.
func cloneRecord(rec *models.SessionRecord) *models.SessionRecord {
	out := *rec
	out.History = append([]models.SessionTurn(nil), rec.History...)
	return &out
}
