package genai

import (
	"context"
	"log/slog"

	"github.com/savo-robotics/savocore/internal/models"
)

// Orchestrator walks the tier chain for one turn: every tier-1 candidate in
// order, then the tier-2 local model, then templates. Providers run strictly
// one at a time; a recoverable outcome moves to the next candidate and the
// template tier always terminates the chain.
type Orchestrator struct {
	tier1    []Provider
	tier2    Provider
	fallback Provider
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithTier1 sets the ordered online candidate providers.
func WithTier1(providers ...Provider) OrchestratorOption {
	return func(o *Orchestrator) { o.tier1 = providers }
}

// WithTier2 sets the local model provider.
func WithTier2(p Provider) OrchestratorOption {
	return func(o *Orchestrator) { o.tier2 = p }
}

// WithFallback overrides the template tier. Tests use this; production
// keeps the default.
func WithFallback(p Provider) OrchestratorOption {
	return func(o *Orchestrator) { o.fallback = p }
}

// NewOrchestrator creates an orchestrator. With no options it answers from
// templates alone, which is a valid fully-offline configuration.
func NewOrchestrator(opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{fallback: NewTemplateProvider()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Generate produces the reply attempt for one turn. It never fails: the
// template tier answers when everything above it declined.
func (o *Orchestrator) Generate(ctx context.Context, req Request) models.Attempt {
	for _, p := range o.tier1 {
		if ctx.Err() != nil {
			break
		}
		outcome := p.Generate(ctx, req)
		if outcome.OK() {
			return models.Attempt{Text: outcome.Text, Tier: "tier1:" + p.Name(), Provider: p.Name()}
		}
		slog.Warn("Orchestrator.Generate: tier1 candidate declined", "model", p.Name(), "reason", outcome.Reason)
	}

	if o.tier2 != nil && ctx.Err() == nil {
		outcome := o.tier2.Generate(ctx, req)
		if outcome.OK() {
			return models.Attempt{Text: outcome.Text, Tier: "tier2", Provider: o.tier2.Name()}
		}
		slog.Warn("Orchestrator.Generate: tier2 declined", "provider", o.tier2.Name(), "reason", outcome.Reason)
	}

	outcome := o.fallback.Generate(ctx, req)
	return models.Attempt{Text: outcome.Text, Tier: "tier3", Provider: o.fallback.Name()}
}
