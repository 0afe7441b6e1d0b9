// Package models defines the core data structures for savocore.
//
// It includes the inbound utterance, the intent enumeration, generation
// attempt results, the final turn result, session records, and the known
// location directory entries. These types are shared across modules.
package models

import (
	"errors"
	"time"
)

// Validation constants shared across the pipeline.
const (
	// MaxUserTextLength defines the maximum number of characters of user
	// text accepted into the pipeline. Longer input is truncated, not
	// rejected, because speech-to-text noise must never block a turn.
	MaxUserTextLength = 512
	// MaxReplyLength defines the maximum length of a spoken reply. Replies
	// are clamped to this length before they reach text-to-speech.
	MaxReplyLength = 512
	// MaxGoalWords defines the maximum number of words kept in an extracted
	// navigation goal phrase.
	MaxGoalWords = 4
	// MaxHistoryTurns defines how many conversation turns are retained per
	// session. Older turns are dropped first.
	MaxHistoryTurns = 8
)

// Error variables for input validation and store operations.
var (
	ErrEmptyUserText   = errors.New("user text cannot be empty")
	ErrInvalidSource   = errors.New("invalid utterance source")
	ErrEmptySessionID  = errors.New("session id cannot be empty")
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidIntent   = errors.New("invalid intent label")
)

// Source identifies where an utterance originally came from.
type Source string

const (
	// SourceMic marks text transcribed from the robot microphone.
	SourceMic Source = "mic"
	// SourceKeyboard marks manual operator input.
	SourceKeyboard Source = "keyboard"
	// SourceSystem marks internally generated messages.
	SourceSystem Source = "system"
	// SourceTest marks automated tests and health checks.
	SourceTest Source = "test"
)

// IsValidSource checks if the given source is supported.
func IsValidSource(s Source) bool {
	switch s {
	case SourceMic, SourceKeyboard, SourceSystem, SourceTest:
		return true
	default:
		return false
	}
}

// Utterance is one inbound chat turn. It is immutable once validated;
// sanitization produces a derived value, never mutates the original text.
type Utterance struct {
	UserText  string         `json:"user_text"`
	Source    Source         `json:"source,omitempty"`
	Language  string         `json:"language,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
}

// Validate checks the utterance before the pipeline starts. This is the only
// point where a turn may be rejected outright.
func (u *Utterance) Validate() error {
	if u.UserText == "" {
		return ErrEmptyUserText
	}
	if u.Source != "" && !IsValidSource(u.Source) {
		return ErrInvalidSource
	}
	return nil
}

// Attempt is the output of one generation run: either non-empty text from a
// provider or nothing at all. It is never partially valid.
type Attempt struct {
	Text     string         `json:"text"`
	Tier     string         `json:"tier"`
	Provider string         `json:"provider,omitempty"`
	Meta     map[string]any `json:"meta,omitempty"`
}

// TurnResult is the final structured outcome of one chat turn.
//
// Intent always comes from the deterministic classifier unless the generated
// payload carried a valid label; NavGoal is empty unless the final intent is
// FOLLOW or NAVIGATE. ParseError is a diagnostic code, never an error the
// caller has to handle.
type TurnResult struct {
	ReplyText  string `json:"reply_text"`
	Intent     Intent `json:"intent"`
	NavGoal    string `json:"nav_goal,omitempty"`
	SessionID  string `json:"session_id,omitempty"`
	TierUsed   string `json:"tier_used"`
	ParseError string `json:"parse_error,omitempty"`
}

// ChatMessage is one provider-facing chat message in OpenAI style.
type ChatMessage struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

// SessionTurn is one entry in a session's conversation history.
type SessionTurn struct {
	Role string    `json:"role"` // "user" or "assistant"
	Text string    `json:"text"`
	Ts   time.Time `json:"ts"`
}

// SessionRecord is the per-session aggregate owned by the session store.
// It must only be mutated through the store's update operations.
type SessionRecord struct {
	SessionID   string        `json:"session_id"`
	CreatedAt   time.Time     `json:"created_at"`
	LastSeen    time.Time     `json:"last_seen"`
	LastIntent  Intent        `json:"last_intent,omitempty"`
	LastNavGoal string        `json:"last_nav_goal,omitempty"`
	History     []SessionTurn `json:"history,omitempty"`
	Summary     string        `json:"summary,omitempty"`
}
