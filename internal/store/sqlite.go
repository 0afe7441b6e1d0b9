// Package store provides session storage backends for savocore.
//
// This file implements the SQLite-backed session store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	_ "github.com/mattn/go-sqlite3"

	"github.com/savo-robotics/savocore/internal/models"
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists sessions in a local SQLite database. Same contract
// as the file store, for installations where the JSON snapshot becomes a
// bottleneck or audit history matters.
type SQLiteStore struct {
	db       *sql.DB
	maxTurns int
}

// NewSQLiteStore creates an SQLite session store. The path option is the
// database file; its directory is created when missing.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("SQLite ping failed: %w", err)
	}
	if _, err := db.Exec(sqliteMigrations); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("SQLiteStore: opened session database", "path", cfg.Path)
	return &SQLiteStore{db: db, maxTurns: cfg.historyCap()}, nil
}

// GetOrCreate returns the session for id, creating it when absent.
func (s *SQLiteStore) GetOrCreate(id string) (*models.SessionRecord, error) {
	if id == "" {
		return nil, models.ErrEmptySessionID
	}
	now := time.Now().UTC()
	_, err := s.db.Exec(`INSERT INTO sessions (session_id, created_at, last_seen) VALUES (?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET last_seen = excluded.last_seen`, id, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert session %s: %w", id, err)
	}
	return s.Get(id)
}

// Get returns the session for id or models.ErrSessionNotFound.
func (s *SQLiteStore) Get(id string) (*models.SessionRecord, error) {
	rec := &models.SessionRecord{}
	row := s.db.QueryRow(`SELECT session_id, created_at, last_seen, last_intent, last_nav_goal, summary
		FROM sessions WHERE session_id = ?`, id)
	var intent string
	err := row.Scan(&rec.SessionID, &rec.CreatedAt, &rec.LastSeen, &intent, &rec.LastNavGoal, &rec.Summary)
	if err == sql.ErrNoRows {
		return nil, models.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan session %s: %w", id, err)
	}
	rec.LastIntent = models.Intent(intent)

	rows, err := s.db.Query(`SELECT role, text, ts FROM session_turns WHERE session_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns for %s: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var turn models.SessionTurn
		if err := rows.Scan(&turn.Role, &turn.Text, &turn.Ts); err != nil {
			return nil, fmt.Errorf("failed to scan turn row: %w", err)
		}
		rec.History = append(rec.History, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate turn rows: %w", err)
	}
	return rec, nil
}

// Delete removes a session and its turns.
func (s *SQLiteStore) Delete(id string) error {
	if _, err := s.db.Exec(`DELETE FROM session_turns WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete turns for %s: %w", id, err)
	}
	if _, err := s.db.Exec(`DELETE FROM sessions WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	return nil
}

// UpdateFromTurn records one processed chat turn.
func (s *SQLiteStore) UpdateFromTurn(id, userText, assistantText string, intent models.Intent, navGoal string) (*models.SessionRecord, error) {
	if id == "" {
		return nil, models.ErrEmptySessionID
	}
	now := time.Now().UTC()
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO sessions (session_id, created_at, last_seen) VALUES (?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET last_seen = excluded.last_seen`, id, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert session %s: %w", id, err)
	}
	if intent != "" {
		if _, err := tx.Exec(`UPDATE sessions SET last_intent = ? WHERE session_id = ?`, string(intent), id); err != nil {
			return nil, fmt.Errorf("failed to update intent for %s: %w", id, err)
		}
	}
	if navGoal != "" {
		if _, err := tx.Exec(`UPDATE sessions SET last_nav_goal = ? WHERE session_id = ?`, navGoal, id); err != nil {
			return nil, fmt.Errorf("failed to update nav goal for %s: %w", id, err)
		}
	}
	if userText != "" {
		if _, err := tx.Exec(`INSERT INTO session_turns (session_id, role, text, ts) VALUES (?, 'user', ?, ?)`, id, userText, now); err != nil {
			return nil, fmt.Errorf("failed to insert user turn for %s: %w", id, err)
		}
	}
	if assistantText != "" {
		if _, err := tx.Exec(`INSERT INTO session_turns (session_id, role, text, ts) VALUES (?, 'assistant', ?, ?)`, id, assistantText, now); err != nil {
			return nil, fmt.Errorf("failed to insert assistant turn for %s: %w", id, err)
		}
	}
	// Trim to the newest maxTurns rows, oldest first.
	_, err = tx.Exec(`DELETE FROM session_turns WHERE session_id = ? AND id NOT IN (
		SELECT id FROM session_turns WHERE session_id = ? ORDER BY id DESC LIMIT ?)`, id, id, s.maxTurns)
	if err != nil {
		return nil, fmt.Errorf("failed to trim history for %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit turn update for %s: %w", id, err)
	}
	return s.Get(id)
}

// HistoryAsMessages returns the session history in chat-message form.
func (s *SQLiteStore) HistoryAsMessages(id string) ([]models.ChatMessage, error) {
	rec, err := s.Get(id)
	if err == models.ErrSessionNotFound {
		return []models.ChatMessage{}, nil
	}
	if err != nil {
		return nil, err
	}
	return historyToMessages(rec.History), nil
}

// PruneStale drops sessions not seen within maxAge.
func (s *SQLiteStore) PruneStale(maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().Add(-maxAge)
	if _, err := s.db.Exec(`DELETE FROM session_turns WHERE session_id IN (
		SELECT session_id FROM sessions WHERE last_seen < ?)`, cutoff); err != nil {
		return 0, fmt.Errorf("failed to prune stale turns: %w", err)
	}
	res, err := s.db.Exec(`DELETE FROM sessions WHERE last_seen < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune stale sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		slog.Info("SQLiteStore.PruneStale: removed stale sessions", "count", n)
	}
	return int(n), nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
