// Package intent decides what the user wants the robot to do, based on the
// text that came from speech-to-text.
//
// Classification is deterministic and keyword-based. The priority order
// STOP > FOLLOW > NAVIGATE > STATUS > CHATBOT is a safety choice: a stop
// request must never be shadowed by a navigation phrase in the same
// sentence. There is no learning and no ranking here on purpose.
package intent

import (
	"strings"

	"github.com/savo-robotics/savocore/internal/models"
)

// Normalize lowercases, trims, and collapses whitespace for matching.
// Punctuation is kept because phrases like "go to" depend on it staying put.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// Classify maps user text to one of the five intent labels. Empty or
// unmatched input falls back to CHATBOT, never to a motion intent.
func Classify(text string) models.Intent {
	t := Normalize(text)
	if t == "" {
		return models.IntentChatbot
	}
	switch {
	case containsAny(t, stopKeywords):
		return models.IntentStop
	case containsAny(t, followKeywords):
		return models.IntentFollow
	case containsAny(t, navigateKeywords):
		return models.IntentNavigate
	case containsAny(t, statusKeywords):
		return models.IntentStatus
	default:
		return models.IntentChatbot
	}
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// ExtractGoal tries to pull a target location phrase ("A201", "info desk")
// out of the user's sentence by string slicing after a trigger phrase.
//
// The result is a guess, not a validated destination: callers must resolve
// it against the location directory before trusting it. Returns "" when no
// trigger matches or the remainder collapses to nothing.
func ExtractGoal(text string) string {
	t := Normalize(text)
	if t == "" {
		return ""
	}

	for _, trig := range triggerPhrases {
		idx := strings.Index(t, trig)
		if idx == -1 {
			continue
		}
		after := strings.TrimSpace(t[idx+len(trig):])

		// "take me to the info desk please" -> cut at the politeness word.
		for _, stopper := range politenessWords {
			if cut := strings.Index(after, stopper); cut != -1 {
				after = strings.TrimSpace(after[:cut])
			}
		}

		// Strip leading filler words: "the room a201" -> "a201".
		tokens := strings.Fields(after)
		for len(tokens) > 0 && isFiller(tokens[0]) {
			tokens = tokens[1:]
		}
		if len(tokens) == 0 {
			continue
		}

		// Long remainders are likely junk; keep the first few words only.
		if len(tokens) > models.MaxGoalWords {
			tokens = tokens[:models.MaxGoalWords]
		}

		candidate := strings.Trim(strings.Join(tokens, " "), ",.?!:;")
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

func isFiller(word string) bool {
	for _, f := range fillerWords {
		if word == f {
			return true
		}
	}
	return false
}
