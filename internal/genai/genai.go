// Package genai generates spoken replies through a tiered provider chain:
// online models first, a local model next, deterministic templates last.
//
// Providers return a tagged Outcome instead of an error. A recoverable
// outcome moves the orchestrator to the next provider; only the template
// tier is allowed to be assumed non-failing.
package genai

import (
	"context"
	"net/http"
	"time"

	"github.com/savo-robotics/savocore/internal/models"
)

// DefaultTier1Timeout bounds one online model call. The robot speaks within
// a couple of seconds or falls back, so this stays tight.
const DefaultTier1Timeout = 1800 * time.Millisecond

// DefaultTier2Timeout bounds one local model call. Local inference on the
// robot's hardware is slow but has no network failure mode.
const DefaultTier2Timeout = 60 * time.Second

// Request carries everything a provider may need for one generation run.
// Tier 1 and tier 2 consume Messages; the template tier works from the
// classified intent, the goal and the sanitized text alone.
type Request struct {
	Messages []models.ChatMessage
	Intent   models.Intent
	UserText string
	NavGoal  string
}

// Outcome is the tagged result of one provider call: generated text, or a
// recoverable failure reason. It is never both and never neither.
type Outcome struct {
	Text   string
	Reason string
}

// OK reports whether the provider produced usable text.
func (o Outcome) OK() bool { return o.Reason == "" }

// Ok wraps generated text in a successful outcome.
func Ok(text string) Outcome { return Outcome{Text: text} }

// Recoverable marks a provider failure the orchestrator may skip past.
func Recoverable(reason string) Outcome { return Outcome{Reason: reason} }

// Provider is one generation backend in the tier chain.
type Provider interface {
	// Name identifies the provider for tier labels and logs.
	Name() string
	// Generate produces a reply outcome. It must respect ctx and must not
	// panic; all failures are reported as recoverable outcomes.
	Generate(ctx context.Context, req Request) Outcome
}

// Opts holds configuration for genai constructors.
type Opts struct {
	// APIKey authenticates the online provider.
	APIKey string
	// BaseURL overrides the provider endpoint.
	BaseURL string
	// Model is the model identifier to request.
	Model string
	// Timeout bounds one provider call.
	Timeout time.Duration
	// HTTPClient overrides the HTTP client used for plain-HTTP providers.
	HTTPClient *http.Client
	// PromptsDir is the directory holding prompt text files.
	PromptsDir string
}

// Option configures a genai constructor.
type Option func(*Opts)

// WithAPIKey sets the online provider API key.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithBaseURL overrides the provider endpoint URL.
func WithBaseURL(url string) Option {
	return func(o *Opts) { o.BaseURL = url }
}

// WithModel sets the model identifier.
func WithModel(model string) Option {
	return func(o *Opts) { o.Model = model }
}

// WithTimeout bounds one provider call.
func WithTimeout(d time.Duration) Option {
	return func(o *Opts) { o.Timeout = d }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Opts) { o.HTTPClient = c }
}

// WithPromptsDir sets the prompt file directory.
func WithPromptsDir(dir string) Option {
	return func(o *Opts) { o.PromptsDir = dir }
}
