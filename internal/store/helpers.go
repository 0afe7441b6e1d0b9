package store

import (
	"time"

	"github.com/savo-robotics/savocore/internal/models"
)

// applyTurn mutates a session record for one processed chat turn: appends
// turns, refreshes bookkeeping fields, and trims history oldest-first.
// Shared by the in-memory and file stores; the database stores express the
// same rules in SQL.
func applyTurn(rec *models.SessionRecord, userText, assistantText string, intent models.Intent, navGoal string, now time.Time, maxTurns int) {
	rec.LastSeen = now
	if userText != "" {
		rec.History = append(rec.History, models.SessionTurn{Role: "user", Text: userText, Ts: now})
	}
	if assistantText != "" {
		rec.History = append(rec.History, models.SessionTurn{Role: "assistant", Text: assistantText, Ts: now})
	}
	if intent != "" {
		rec.LastIntent = intent
	}
	if navGoal != "" {
		rec.LastNavGoal = navGoal
	}
	if len(rec.History) > maxTurns {
		rec.History = rec.History[len(rec.History)-maxTurns:]
	}
}

// historyToMessages converts stored turns to provider-facing messages.
func historyToMessages(turns []models.SessionTurn) []models.ChatMessage {
	messages := make([]models.ChatMessage, 0, len(turns))
	for _, turn := range turns {
		messages = append(messages, models.ChatMessage{Role: turn.Role, Content: turn.Text})
	}
	return messages
}
