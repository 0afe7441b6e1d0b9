package genai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/savo-robotics/savocore/internal/models"
)

// DefaultOpenRouterBaseURL is the OpenAI-compatible OpenRouter endpoint.
// Pointing BaseURL at api.openai.com works unchanged.
const DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// chatCompleter is the slice of the OpenAI client the provider needs.
type chatCompleter interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// OpenRouterProvider is one online tier-1 model spoken through the
// OpenAI-compatible chat completions API. One provider per candidate model;
// the orchestrator owns the fallback order.
type OpenRouterProvider struct {
	chat    chatCompleter
	model   string
	timeout time.Duration
}

// NewOpenRouterProvider creates a tier-1 provider for one model. The API key
// and model are required.
func NewOpenRouterProvider(opts ...Option) (*OpenRouterProvider, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("online provider API key not set")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("online provider model not set")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultOpenRouterBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTier1Timeout
	}

	client := openai.NewClient(option.WithAPIKey(cfg.APIKey), option.WithBaseURL(baseURL))
	return &OpenRouterProvider{chat: &client.Chat.Completions, model: cfg.Model, timeout: timeout}, nil
}

// Name returns the candidate model identifier.
func (p *OpenRouterProvider) Name() string { return p.model }

// Generate runs one bounded chat completion against the candidate model.
func (p *OpenRouterProvider) Generate(ctx context.Context, req Request) Outcome {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(p.model),
		Messages: toOpenAIMessages(req.Messages),
	}
	resp, err := p.chat.New(ctx, params)
	if err != nil {
		slog.Warn("OpenRouterProvider.Generate: completion failed", "model", p.model, "error", err)
		return Recoverable(fmt.Sprintf("completion failed: %v", err))
	}
	if len(resp.Choices) == 0 {
		return Recoverable("no choices returned")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return Recoverable("empty content returned")
	}
	return Ok(content)
}

// toOpenAIMessages converts internal chat messages to API params. Unknown
// roles are sent as user messages rather than dropped.
func toOpenAIMessages(messages []models.ChatMessage) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			out = append(out, openai.SystemMessage(msg.Content))
		case "assistant":
			out = append(out, openai.AssistantMessage(msg.Content))
		default:
			out = append(out, openai.UserMessage(msg.Content))
		}
	}
	return out
}
