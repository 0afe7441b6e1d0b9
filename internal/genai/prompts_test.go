package genai

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/savo-robotics/savocore/internal/models"
)

func writePromptFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestSystemPromptComposition(t *testing.T) {
	dir := t.TempDir()
	writePromptFile(t, dir, systemPromptFile, "Base prompt.")
	writePromptFile(t, dir, styleGuidelinesFile, "Short sentences.")
	writePromptFile(t, dir, navigationPromptFile, "Guide carefully.")
	writePromptFile(t, dir, statusPromptFile, "Report status.")

	lib := NewPromptLibrary(WithPromptsDir(dir))

	nav := lib.SystemPrompt(models.IntentNavigate)
	if !strings.Contains(nav, "Base prompt.") || !strings.Contains(nav, "Short sentences.") || !strings.Contains(nav, "Guide carefully.") {
		t.Errorf("navigation prompt missing parts: %q", nav)
	}
	if strings.Contains(nav, "Report status.") {
		t.Errorf("navigation prompt picked up status mode: %q", nav)
	}

	status := lib.SystemPrompt(models.IntentStatus)
	if !strings.Contains(status, "Report status.") {
		t.Errorf("status prompt missing mode part: %q", status)
	}

	// STOP and FOLLOW share the navigation mode prompt.
	if stop := lib.SystemPrompt(models.IntentStop); !strings.Contains(stop, "Guide carefully.") {
		t.Errorf("stop prompt should use navigation mode: %q", stop)
	}
}

func TestSystemPromptBuiltinFallback(t *testing.T) {
	lib := NewPromptLibrary(WithPromptsDir(t.TempDir()))
	got := lib.SystemPrompt(models.IntentChatbot)
	if got != builtinSystemPrompt {
		t.Errorf("prompt = %q, want built-in fallback", got)
	}
	if !strings.Contains(got, "reply_text") {
		t.Error("built-in prompt should describe the structured reply suffix")
	}

	// No directory configured at all behaves the same.
	bare := NewPromptLibrary()
	if bare.SystemPrompt(models.IntentStatus) != builtinSystemPrompt {
		t.Error("library without a directory should use the built-in prompt")
	}
}

func TestPromptLibraryReload(t *testing.T) {
	dir := t.TempDir()
	lib := NewPromptLibrary(WithPromptsDir(dir))

	// First read caches the miss.
	if got := lib.SystemPrompt(models.IntentChatbot); got != builtinSystemPrompt {
		t.Fatalf("prompt = %q, want built-in fallback", got)
	}

	writePromptFile(t, dir, systemPromptFile, "Edited base.")
	if got := lib.SystemPrompt(models.IntentChatbot); got != builtinSystemPrompt {
		t.Fatalf("cache should hold the miss until reload, got %q", got)
	}

	lib.Reload()
	if got := lib.SystemPrompt(models.IntentChatbot); !strings.Contains(got, "Edited base.") {
		t.Errorf("prompt after reload = %q, want edited content", got)
	}
}

func TestUserPrompt(t *testing.T) {
	lib := NewPromptLibrary()
	got := lib.UserPrompt("take me to a201", models.IntentNavigate, "a201", models.SourceMic, "en", map[string]any{"battery": 80})

	for _, want := range []string{
		"USER_TEXT: take me to a201",
		"INTENT_HINT: NAVIGATE",
		"NAV_GOAL_GUESS: a201",
		"SOURCE: mic",
		"LANGUAGE_HINT: en",
		"META: {\"battery\":80}",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("user prompt missing %q:\n%s", want, got)
		}
	}

	minimal := lib.UserPrompt("hello", models.IntentChatbot, "", "", "", nil)
	if strings.Contains(minimal, "NAV_GOAL_GUESS") || strings.Contains(minimal, "META") {
		t.Errorf("minimal prompt carries empty optional lines:\n%s", minimal)
	}
}
