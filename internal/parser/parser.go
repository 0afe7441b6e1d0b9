// Package parser turns raw generated text into a structured turn result.
//
// Generators are asked to end their reply with a small JSON object carrying
// reply_text, intent and nav_goal. The parser scans for that suffix, but
// every field has a deterministic fallback: missing or malformed model
// output degrades the reply, never the turn.
package parser

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/savo-robotics/savocore/internal/models"
	"github.com/savo-robotics/savocore/internal/safety"
)

// Diagnostic codes carried in TurnResult.ParseError. They are for logs and
// dashboards only; callers never branch on them.
const (
	// ParseErrJSONMissing means no structured suffix was found at all.
	ParseErrJSONMissing = "json_missing"
	// ParseErrJSONInvalid means a suffix candidate existed but did not parse.
	ParseErrJSONInvalid = "json_invalid"
	// ParseErrIntentInvalid means the payload carried an unknown intent label.
	ParseErrIntentInvalid = "intent_invalid"
)

// defaultGreeting is spoken when a generator produced nothing usable.
const defaultGreeting = "Hello, I am Robot Savo. How can I help you?"

// payload is the structured suffix shape generators are instructed to emit.
type payload struct {
	ReplyText string  `json:"reply_text"`
	Intent    string  `json:"intent"`
	NavGoal   *string `json:"nav_goal"`
}

// Parse extracts the structured result from one generation attempt.
//
// fallbackIntent is the deterministic classifier's verdict and always wins
// over an invalid payload label. fallbackGoal is the resolved or guessed
// navigation goal; when it is set, a payload nav_goal is ignored (the
// canonical value wins). The final nav goal is cleared unless the final
// intent can carry one. The reply is clamped to limit characters.
func Parse(attempt models.Attempt, fallbackIntent models.Intent, fallbackGoal string, limit int) models.TurnResult {
	result := models.TurnResult{
		Intent:   fallbackIntent,
		NavGoal:  fallbackGoal,
		TierUsed: attempt.Tier,
	}

	raw := attempt.Text
	idx := strings.LastIndex(raw, "{")
	if idx == -1 {
		result.ParseError = ParseErrJSONMissing
		result.ReplyText = fallbackReply(raw, "")
	} else {
		var p payload
		if err := json.Unmarshal([]byte(raw[idx:]), &p); err != nil {
			slog.Warn("parser.Parse: structured suffix did not decode", "tier", attempt.Tier, "error", err)
			result.ParseError = ParseErrJSONInvalid
			result.ReplyText = fallbackReply(raw, "")
		} else {
			result.ReplyText = fallbackReply(raw[:idx], p.ReplyText)
			if label := strings.TrimSpace(p.Intent); label != "" {
				if intent, ok := models.ParseIntent(label); ok {
					result.Intent = intent
				} else {
					slog.Warn("parser.Parse: payload intent rejected", "label", label, "fallback", fallbackIntent)
					result.ParseError = ParseErrIntentInvalid
				}
			}
			if fallbackGoal == "" && p.NavGoal != nil {
				result.NavGoal = strings.TrimSpace(*p.NavGoal)
			}
		}
	}

	if !result.Intent.IsNav() {
		result.NavGoal = ""
	}
	result.ReplyText = safety.ClampReply(result.ReplyText, limit)
	return result
}

// fallbackReply picks the spoken text: the payload value when present, then
// the surrounding raw text, then a safe greeting.
func fallbackReply(raw, fromPayload string) string {
	if text := strings.TrimSpace(fromPayload); text != "" {
		return text
	}
	if text := strings.TrimSpace(raw); text != "" {
		return text
	}
	return defaultGreeting
}
