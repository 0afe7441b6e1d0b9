package models

import "strings"

// Intent is the high-level action category derived from user text.
//
// The set is closed. Priority ordering STOP > FOLLOW > NAVIGATE > STATUS >
// CHATBOT is enforced by the classifier and is the source of truth
// downstream; generated output can never override it with an unknown label.
type Intent string

const (
	// IntentStop means the user wants the robot to stop, freeze, or wait.
	IntentStop Intent = "STOP"
	// IntentFollow means the user wants the robot to follow them.
	IntentFollow Intent = "FOLLOW"
	// IntentNavigate means the user wants to be guided to a place.
	IntentNavigate Intent = "NAVIGATE"
	// IntentStatus means the user is asking for robot status or explanation.
	IntentStatus Intent = "STATUS"
	// IntentChatbot is normal talk, the safe default fallback.
	IntentChatbot Intent = "CHATBOT"
)

// IsValidIntent checks if the given intent is one of the five labels.
func IsValidIntent(i Intent) bool {
	switch i {
	case IntentStop, IntentFollow, IntentNavigate, IntentStatus, IntentChatbot:
		return true
	default:
		return false
	}
}

// ParseIntent converts an arbitrary string into an Intent. Matching is
// case-insensitive. The second return value reports whether the input was a
// known label; callers must fall back to their own intent when it is false.
func ParseIntent(s string) (Intent, bool) {
	i := Intent(strings.ToUpper(strings.TrimSpace(s)))
	if IsValidIntent(i) {
		return i, true
	}
	return IntentChatbot, false
}

// IsNav reports whether this intent requires a navigation goal. STOP affects
// motion urgently but carries no destination.
func (i Intent) IsNav() bool {
	return i == IntentFollow || i == IntentNavigate
}
