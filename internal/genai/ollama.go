package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/savo-robotics/savocore/internal/models"
)

// DefaultOllamaURL is the local Ollama chat endpoint.
const DefaultOllamaURL = "http://localhost:11434/api/chat"

// OllamaProvider is the tier-2 local model backend. It talks to an Ollama
// daemon on the robot; no network beyond localhost is involved.
type OllamaProvider struct {
	http    *http.Client
	url     string
	model   string
	timeout time.Duration
}

// NewOllamaProvider creates a tier-2 provider. The model is required; URL
// and timeout default to the local daemon and 60 seconds.
func NewOllamaProvider(opts ...Option) (*OllamaProvider, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("local provider model not set")
	}
	url := cfg.BaseURL
	if url == "" {
		url = DefaultOllamaURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTier2Timeout
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &OllamaProvider{http: client, url: url, model: cfg.Model, timeout: timeout}, nil
}

// Name identifies the local backend and model.
func (p *OllamaProvider) Name() string { return "ollama:" + p.model }

// ollamaChatRequest is the /api/chat request body. Streaming is forced off
// so the response is a single JSON object.
type ollamaChatRequest struct {
	Model    string               `json:"model"`
	Messages []models.ChatMessage `json:"messages"`
	Stream   bool                 `json:"stream"`
}

type ollamaChatResponse struct {
	Message models.ChatMessage `json:"message"`
	Done    bool               `json:"done"`
}

// Generate runs one non-streaming chat call against the local model.
func (p *OllamaProvider) Generate(ctx context.Context, req Request) Outcome {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	body, err := json.Marshal(ollamaChatRequest{Model: p.model, Messages: req.Messages, Stream: false})
	if err != nil {
		return Recoverable(fmt.Sprintf("failed to encode request: %v", err))
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return Recoverable(fmt.Sprintf("failed to build request: %v", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(httpReq)
	if err != nil {
		slog.Warn("OllamaProvider.Generate: request failed", "model", p.model, "error", err)
		return Recoverable(fmt.Sprintf("request failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		preview, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return Recoverable(fmt.Sprintf("HTTP %d: %s", resp.StatusCode, strings.ReplaceAll(string(preview), "\n", " ")))
	}

	var out ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Recoverable(fmt.Sprintf("non-JSON response: %v", err))
	}
	content := strings.TrimSpace(out.Message.Content)
	if content == "" {
		return Recoverable("empty content returned")
	}
	return Ok(content)
}
