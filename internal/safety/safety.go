// Package safety cleans user text before it reaches intent classification or
// generation, and clamps reply text before it reaches text-to-speech.
//
// All functions here are pure: no I/O, total over their string inputs.
package safety

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/savo-robotics/savocore/internal/models"
)

// SanitizedText is the result of Sanitize. Empty=true means the input
// collapsed to nothing; downstream treats that like an empty chat opener,
// not an error.
type SanitizedText struct {
	Original  string
	Sanitized string
	Truncated bool
	Empty     bool
}

// Sanitize cleans raw user text: strips non-printable control characters,
// collapses whitespace runs to single spaces, trims the ends, and truncates
// to models.MaxUserTextLength.
func Sanitize(raw string) SanitizedText {
	cleaned := stripControlChars(raw)
	// strings.Fields collapses any whitespace runs, including newlines.
	cleaned = strings.Join(strings.Fields(cleaned), " ")

	truncated := false
	if len(cleaned) > models.MaxUserTextLength {
		cleaned = cutAtRuneBoundary(cleaned, models.MaxUserTextLength)
		truncated = true
	}
	sanitized := strings.TrimSpace(cleaned)

	if truncated {
		slog.Debug("Sanitize: truncated user text", "original_len", len(raw), "sanitized_len", len(sanitized))
	}
	if sanitized == "" && raw != "" {
		slog.Debug("Sanitize: text became empty after cleaning", "original", raw)
	}

	return SanitizedText{
		Original:  raw,
		Sanitized: sanitized,
		Truncated: truncated,
		Empty:     sanitized == "",
	}
}

// stripControlChars removes non-printable control characters while keeping
// whitespace for the collapse step that follows.
func stripControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' || r == ' ' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}

// ClampReply ensures reply text never exceeds limit bytes. Text longer than
// the limit is cut to limit-3 and "..." is appended so the total length
// equals the limit exactly; when the cut would split a multi-byte rune it
// backs up to the previous rune boundary, leaving the result up to three
// bytes short. A limit too small for the marker degrades to a plain cut; a
// non-positive limit yields an empty string.
func ClampReply(text string, limit int) string {
	if limit <= 0 {
		slog.Warn("ClampReply: non-positive limit, returning empty reply", "limit", limit)
		return ""
	}
	if len(text) <= limit {
		return text
	}
	if limit > 3 {
		return cutAtRuneBoundary(text, limit-3) + "..."
	}
	return cutAtRuneBoundary(text, limit)
}

// cutAtRuneBoundary truncates s to at most limit bytes without splitting a
// multi-byte rune.
func cutAtRuneBoundary(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
