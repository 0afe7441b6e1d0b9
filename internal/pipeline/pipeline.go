// Package pipeline runs one chat turn end to end: validate, sanitize,
// classify, resolve the navigation goal, enrich, generate, parse, and
// record the turn in the session store.
//
// Only input validation may reject a turn. Everything after it degrades
// instead of failing, so the robot always has something to say.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/savo-robotics/savocore/internal/enrich"
	"github.com/savo-robotics/savocore/internal/genai"
	"github.com/savo-robotics/savocore/internal/intent"
	"github.com/savo-robotics/savocore/internal/locations"
	"github.com/savo-robotics/savocore/internal/models"
	"github.com/savo-robotics/savocore/internal/parser"
	"github.com/savo-robotics/savocore/internal/safety"
	"github.com/savo-robotics/savocore/internal/store"
)

// Pipeline owns the per-turn processing chain. All collaborators are
// injected; the orchestrator and store are required, the rest optional.
type Pipeline struct {
	resolver     *locations.Resolver
	enricher     *enrich.Enricher
	prompts      *genai.PromptLibrary
	orchestrator *genai.Orchestrator
	sessions     store.SessionStore
	replyLimit   int
}

// Opts holds configuration for the pipeline.
type Opts struct {
	Resolver     *locations.Resolver
	Enricher     *enrich.Enricher
	Prompts      *genai.PromptLibrary
	Orchestrator *genai.Orchestrator
	Sessions     store.SessionStore
	ReplyLimit   int
}

// Option configures the pipeline.
type Option func(*Opts)

// WithResolver sets the location resolver.
func WithResolver(r *locations.Resolver) Option {
	return func(o *Opts) { o.Resolver = r }
}

// WithEnricher sets the context enricher.
func WithEnricher(e *enrich.Enricher) Option {
	return func(o *Opts) { o.Enricher = e }
}

// WithPrompts sets the prompt library.
func WithPrompts(p *genai.PromptLibrary) Option {
	return func(o *Opts) { o.Prompts = p }
}

// WithOrchestrator sets the generation orchestrator.
func WithOrchestrator(g *genai.Orchestrator) Option {
	return func(o *Opts) { o.Orchestrator = g }
}

// WithSessions sets the session store.
func WithSessions(s store.SessionStore) Option {
	return func(o *Opts) { o.Sessions = s }
}

// WithReplyLimit overrides the reply length cap.
func WithReplyLimit(n int) Option {
	return func(o *Opts) { o.ReplyLimit = n }
}

// NewPipeline creates a pipeline. The orchestrator and session store are
// required; prompts default to the built-in library.
func NewPipeline(opts ...Option) (*Pipeline, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Orchestrator == nil {
		return nil, fmt.Errorf("generation orchestrator not set")
	}
	if cfg.Sessions == nil {
		return nil, fmt.Errorf("session store not set")
	}
	if cfg.Prompts == nil {
		cfg.Prompts = genai.NewPromptLibrary()
	}
	if cfg.ReplyLimit <= 0 {
		cfg.ReplyLimit = models.MaxReplyLength
	}
	return &Pipeline{
		resolver:     cfg.Resolver,
		enricher:     cfg.Enricher,
		prompts:      cfg.Prompts,
		orchestrator: cfg.Orchestrator,
		sessions:     cfg.Sessions,
		replyLimit:   cfg.ReplyLimit,
	}, nil
}

// HandleTurn processes one utterance and returns the structured result.
// An empty session id mints a fresh one, echoed back in the result. A
// cancelled context abandons the turn without touching the session.
func (p *Pipeline) HandleTurn(ctx context.Context, utt models.Utterance) (models.TurnResult, error) {
	if err := utt.Validate(); err != nil {
		return models.TurnResult{}, err
	}

	sessionID := utt.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
		slog.Debug("Pipeline.HandleTurn: minted session id", "session_id", sessionID)
	}

	sanitized := safety.Sanitize(utt.UserText)
	turnIntent := intent.Classify(sanitized.Sanitized)

	// The raw guess and the canonical name stay distinct; the canonical
	// value is preferred everywhere downstream.
	var goalGuess, canonicalGoal string
	if turnIntent.IsNav() {
		goalGuess = intent.ExtractGoal(sanitized.Sanitized)
		if goalGuess != "" && p.resolver != nil {
			canonicalGoal = p.resolver.Resolve(goalGuess)
		}
	}
	finalGoal := canonicalGoal
	if finalGoal == "" {
		finalGoal = goalGuess
	}

	meta := utt.Meta
	if p.enricher != nil && (turnIntent == models.IntentChatbot || turnIntent == models.IntentStatus) {
		meta = p.enricher.Enrich(ctx, sanitized.Sanitized, meta, sessionID)
	}

	req := genai.Request{
		Messages: p.buildMessages(utt, sanitized.Sanitized, turnIntent, goalGuess, meta, sessionID),
		Intent:   turnIntent,
		UserText: sanitized.Sanitized,
		NavGoal:  finalGoal,
	}
	attempt := p.orchestrator.Generate(ctx, req)
	result := parser.Parse(attempt, turnIntent, finalGoal, p.replyLimit)
	result.SessionID = sessionID

	if err := ctx.Err(); err != nil {
		slog.Warn("Pipeline.HandleTurn: context cancelled, session not updated", "session_id", sessionID)
		return result, err
	}
	if _, err := p.sessions.UpdateFromTurn(sessionID, sanitized.Sanitized, result.ReplyText, result.Intent, result.NavGoal); err != nil {
		slog.Error("Pipeline.HandleTurn: session update failed", "session_id", sessionID, "error", err)
	}

	slog.Info("Pipeline.HandleTurn: turn complete",
		"session_id", sessionID,
		"intent", result.Intent,
		"nav_goal", result.NavGoal,
		"tier", result.TierUsed,
		"parse_error", result.ParseError)
	return result, nil
}

// buildMessages assembles the provider-facing conversation: system prompt,
// recent history, then the current turn.
func (p *Pipeline) buildMessages(utt models.Utterance, sanitized string, turnIntent models.Intent, goalGuess string, meta map[string]any, sessionID string) []models.ChatMessage {
	messages := []models.ChatMessage{
		{Role: "system", Content: p.prompts.SystemPrompt(turnIntent)},
	}
	if history, err := p.sessions.HistoryAsMessages(sessionID); err == nil {
		messages = append(messages, history...)
	}
	userPrompt := p.prompts.UserPrompt(sanitized, turnIntent, goalGuess, utt.Source, utt.Language, meta)
	return append(messages, models.ChatMessage{Role: "user", Content: userPrompt})
}
