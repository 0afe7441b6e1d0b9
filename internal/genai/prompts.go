package genai

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/savo-robotics/savocore/internal/models"
)

// Prompt file names looked up under the prompts directory.
const (
	systemPromptFile     = "system_prompt.txt"
	styleGuidelinesFile  = "style_guidelines.txt"
	navigationPromptFile = "navigation_prompt.txt"
	statusPromptFile     = "status_prompt.txt"
	chatbotPromptFile    = "chatbot_prompt.txt"
)

// builtinSystemPrompt is used when every prompt file is missing. It keeps the
// robot safe and keeps the structured reply contract intact.
const builtinSystemPrompt = "You are Robot Savo, a polite indoor guide robot. " +
	"Speak in short B1 English sentences and be safe. " +
	"End every reply with one JSON object on its own line in the form " +
	`{"reply_text": "...", "intent": "STOP|FOLLOW|NAVIGATE|STATUS|CHATBOT", "nav_goal": "..." or null}.`

// PromptLibrary loads and caches prompt text files. A missing file yields an
// empty string with a warning; the cache holds the miss so the disk is not
// probed on every turn.
type PromptLibrary struct {
	dir string

	mu    sync.RWMutex
	cache map[string]string
}

// NewPromptLibrary creates a prompt library over the given directory. An
// empty directory means only the built-in system prompt is available.
func NewPromptLibrary(opts ...Option) *PromptLibrary {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	return &PromptLibrary{dir: cfg.PromptsDir, cache: make(map[string]string)}
}

// Reload drops the cache so edited prompt files take effect without a
// process restart.
func (p *PromptLibrary) Reload() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache = make(map[string]string)
	slog.Info("PromptLibrary.Reload: prompt cache cleared", "dir", p.dir)
}

func (p *PromptLibrary) read(name string) string {
	p.mu.RLock()
	text, ok := p.cache[name]
	p.mu.RUnlock()
	if ok {
		return text
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if text, ok := p.cache[name]; ok {
		return text
	}
	text = ""
	if p.dir != "" {
		data, err := os.ReadFile(filepath.Join(p.dir, name))
		if err != nil {
			slog.Warn("PromptLibrary: prompt file not readable", "file", name, "error", err)
		} else {
			text = string(data)
		}
	}
	p.cache[name] = text
	return text
}

// SystemPrompt composes the system prompt for an intent: base prompt, style
// guidelines, then the intent-specific mode prompt. When all files are
// missing the built-in safe prompt is returned.
func (p *PromptLibrary) SystemPrompt(intent models.Intent) string {
	base := p.read(systemPromptFile)
	style := p.read(styleGuidelinesFile)

	var mode string
	switch intent {
	case models.IntentNavigate, models.IntentFollow, models.IntentStop:
		mode = p.read(navigationPromptFile)
	case models.IntentStatus:
		mode = p.read(statusPromptFile)
	default:
		mode = p.read(chatbotPromptFile)
	}

	var parts []string
	for _, part := range []string{base, style, mode} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return builtinSystemPrompt
	}
	return strings.Join(parts, "\n\n")
}

// UserPrompt renders the user-role content for one turn: the sanitized text
// plus the classifier's verdict and any goal guess, so the model never has
// to re-derive what the deterministic stages already decided.
func (p *PromptLibrary) UserPrompt(userText string, intent models.Intent, goalGuess string, source models.Source, language string, meta map[string]any) string {
	lines := []string{
		"USER_TEXT: " + userText,
		"INTENT_HINT: " + string(intent),
	}
	if goalGuess != "" {
		lines = append(lines, "NAV_GOAL_GUESS: "+goalGuess)
	}
	if source != "" {
		lines = append(lines, "SOURCE: "+string(source))
	}
	if language != "" {
		lines = append(lines, "LANGUAGE_HINT: "+language)
	}
	if len(meta) > 0 {
		if data, err := json.Marshal(meta); err == nil {
			lines = append(lines, "META: "+string(data))
		} else {
			slog.Warn("PromptLibrary.UserPrompt: meta not serializable, dropping", "error", err)
		}
	}
	return strings.Join(lines, "\n")
}
