package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/savo-robotics/savocore/internal/genai"
	"github.com/savo-robotics/savocore/internal/locations"
	"github.com/savo-robotics/savocore/internal/models"
	"github.com/savo-robotics/savocore/internal/store"
	"github.com/savo-robotics/savocore/internal/util"
)

// scriptedProvider answers with a fixed outcome and records the request.
type scriptedProvider struct {
	name    string
	outcome genai.Outcome
	lastReq genai.Request
	calls   int
}

func (s *scriptedProvider) Name() string { return s.name }

func (s *scriptedProvider) Generate(ctx context.Context, req genai.Request) genai.Outcome {
	s.calls++
	s.lastReq = req
	return s.outcome
}

func testResolver(t *testing.T) *locations.Resolver {
	t.Helper()
	path := filepath.Join(t.TempDir(), "known_locations.json")
	err := util.WriteJSONAtomic(path, map[string]any{
		"locations": map[string]models.Location{
			"A201":      {CanonicalName: "A201", DisplayName: "Classroom A201", Synonyms: []string{"a201", "room a201"}},
			"Info Desk": {CanonicalName: "Info Desk", Synonyms: []string{"info desk", "reception"}},
		},
	})
	if err != nil {
		t.Fatalf("failed to write locations file: %v", err)
	}
	return locations.NewResolver(path)
}

func templateOnlyPipeline(t *testing.T, opts ...Option) (*Pipeline, store.SessionStore) {
	t.Helper()
	sessions := store.NewInMemoryStore()
	all := append([]Option{
		WithOrchestrator(genai.NewOrchestrator()),
		WithSessions(sessions),
	}, opts...)
	p, err := NewPipeline(all...)
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	return p, sessions
}

func TestHandleTurnStopWithProvidersDisabled(t *testing.T) {
	p, _ := templateOnlyPipeline(t)

	result, err := p.HandleTurn(context.Background(), models.Utterance{UserText: "stop please", SessionID: "s1"})
	if err != nil {
		t.Fatalf("HandleTurn failed: %v", err)
	}
	if result.Intent != models.IntentStop {
		t.Errorf("Intent = %q, want STOP", result.Intent)
	}
	if result.NavGoal != "" {
		t.Errorf("NavGoal = %q, want empty", result.NavGoal)
	}
	if result.ReplyText != "Okay, I stop here and wait." {
		t.Errorf("ReplyText = %q", result.ReplyText)
	}
	if result.TierUsed != "tier3" {
		t.Errorf("TierUsed = %q, want tier3", result.TierUsed)
	}
}

func TestHandleTurnNavigateResolvesCanonicalGoal(t *testing.T) {
	p, _ := templateOnlyPipeline(t, WithResolver(testResolver(t)))

	result, err := p.HandleTurn(context.Background(), models.Utterance{UserText: "can you take me to A201", SessionID: "s1"})
	if err != nil {
		t.Fatalf("HandleTurn failed: %v", err)
	}
	if result.Intent != models.IntentNavigate {
		t.Errorf("Intent = %q, want NAVIGATE", result.Intent)
	}
	if result.NavGoal != "A201" {
		t.Errorf("NavGoal = %q, want canonical A201", result.NavGoal)
	}
	if !strings.Contains(result.ReplyText, "A201") {
		t.Errorf("ReplyText = %q, want it to reference the destination", result.ReplyText)
	}
}

func TestHandleTurnUnresolvedGoalKeepsGuess(t *testing.T) {
	p, _ := templateOnlyPipeline(t, WithResolver(testResolver(t)))

	result, err := p.HandleTurn(context.Background(), models.Utterance{UserText: "take me to the cafeteria", SessionID: "s1"})
	if err != nil {
		t.Fatalf("HandleTurn failed: %v", err)
	}
	if result.Intent != models.IntentNavigate {
		t.Errorf("Intent = %q, want NAVIGATE", result.Intent)
	}
	if result.NavGoal != "cafeteria" {
		t.Errorf("NavGoal = %q, want the raw guess", result.NavGoal)
	}
}

func TestHandleTurnRejectsInvalidInput(t *testing.T) {
	p, _ := templateOnlyPipeline(t)

	if _, err := p.HandleTurn(context.Background(), models.Utterance{}); !errors.Is(err, models.ErrEmptyUserText) {
		t.Errorf("empty text error = %v, want ErrEmptyUserText", err)
	}
	if _, err := p.HandleTurn(context.Background(), models.Utterance{UserText: "hi", Source: "carrier-pigeon"}); !errors.Is(err, models.ErrInvalidSource) {
		t.Errorf("invalid source error = %v, want ErrInvalidSource", err)
	}
}

func TestHandleTurnMintsSessionID(t *testing.T) {
	p, sessions := templateOnlyPipeline(t)

	result, err := p.HandleTurn(context.Background(), models.Utterance{UserText: "hello"})
	if err != nil {
		t.Fatalf("HandleTurn failed: %v", err)
	}
	if result.SessionID == "" {
		t.Fatal("SessionID not minted")
	}
	rec, err := sessions.Get(result.SessionID)
	if err != nil {
		t.Fatalf("minted session not stored: %v", err)
	}
	if len(rec.History) != 2 {
		t.Errorf("history length = %d, want user and assistant turns", len(rec.History))
	}
}

func TestHandleTurnRecordsSession(t *testing.T) {
	p, sessions := templateOnlyPipeline(t, WithResolver(testResolver(t)))

	if _, err := p.HandleTurn(context.Background(), models.Utterance{UserText: "take me to reception", SessionID: "s9"}); err != nil {
		t.Fatalf("HandleTurn failed: %v", err)
	}
	rec, err := sessions.Get("s9")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rec.LastIntent != models.IntentNavigate {
		t.Errorf("LastIntent = %q, want NAVIGATE", rec.LastIntent)
	}
	if rec.LastNavGoal != "Info Desk" {
		t.Errorf("LastNavGoal = %q, want Info Desk", rec.LastNavGoal)
	}
}

func TestHandleTurnModelCannotOverrideClassifier(t *testing.T) {
	provider := &scriptedProvider{
		name:    "test-model",
		outcome: genai.Ok(`{"reply_text": "I will dance.", "intent": "DANCE", "nav_goal": null}`),
	}
	p, _ := templateOnlyPipeline(t, WithOrchestrator(genai.NewOrchestrator(genai.WithTier1(provider))))

	result, err := p.HandleTurn(context.Background(), models.Utterance{UserText: "please stop now", SessionID: "s1"})
	if err != nil {
		t.Fatalf("HandleTurn failed: %v", err)
	}
	if result.Intent != models.IntentStop {
		t.Errorf("Intent = %q, classifier verdict must win", result.Intent)
	}
	if result.TierUsed != "tier1:test-model" {
		t.Errorf("TierUsed = %q", result.TierUsed)
	}
	if result.ParseError == "" {
		t.Error("unknown payload intent should leave a diagnostic code")
	}
}

func TestHandleTurnProviderSeesClassifierHints(t *testing.T) {
	provider := &scriptedProvider{
		name:    "test-model",
		outcome: genai.Ok(`{"reply_text": "Okay, this way.", "intent": "NAVIGATE", "nav_goal": "a201"}`),
	}
	p, _ := templateOnlyPipeline(t,
		WithResolver(testResolver(t)),
		WithOrchestrator(genai.NewOrchestrator(genai.WithTier1(provider))),
	)

	if _, err := p.HandleTurn(context.Background(), models.Utterance{UserText: "take me to room a201 please", SessionID: "s1"}); err != nil {
		t.Fatalf("HandleTurn failed: %v", err)
	}
	if provider.calls != 1 {
		t.Fatalf("provider ran %d times, want 1", provider.calls)
	}
	if provider.lastReq.Intent != models.IntentNavigate {
		t.Errorf("request intent = %q, want NAVIGATE", provider.lastReq.Intent)
	}
	if provider.lastReq.NavGoal != "A201" {
		t.Errorf("request goal = %q, want the canonical name", provider.lastReq.NavGoal)
	}
	last := provider.lastReq.Messages[len(provider.lastReq.Messages)-1]
	if !strings.Contains(last.Content, "INTENT_HINT: NAVIGATE") {
		t.Errorf("user prompt missing intent hint:\n%s", last.Content)
	}
	if provider.lastReq.Messages[0].Role != "system" {
		t.Error("first message should carry the system prompt")
	}
}

func TestHandleTurnCancelledContextSkipsSessionWrite(t *testing.T) {
	p, sessions := templateOnlyPipeline(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := p.HandleTurn(ctx, models.Utterance{UserText: "hello", SessionID: "s1"})
	if err == nil {
		t.Fatal("expected a context error")
	}
	if result.ReplyText == "" {
		t.Error("result should still carry the template reply")
	}
	if _, err := sessions.Get("s1"); !errors.Is(err, models.ErrSessionNotFound) {
		t.Errorf("session written despite cancellation: %v", err)
	}
}

func TestNewPipelineRequiresCoreParts(t *testing.T) {
	if _, err := NewPipeline(WithSessions(store.NewInMemoryStore())); err == nil {
		t.Error("expected error without orchestrator")
	}
	if _, err := NewPipeline(WithOrchestrator(genai.NewOrchestrator())); err == nil {
		t.Error("expected error without session store")
	}
}
