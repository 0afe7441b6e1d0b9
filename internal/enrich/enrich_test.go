package enrich

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/savo-robotics/savocore/internal/facts"
	"github.com/savo-robotics/savocore/internal/locations"
	"github.com/savo-robotics/savocore/internal/models"
	"github.com/savo-robotics/savocore/internal/store"
	"github.com/savo-robotics/savocore/internal/telemetry"
	"github.com/savo-robotics/savocore/internal/util"
)

// rewriteTransport sends every outbound request to the test server.
type rewriteTransport struct{ host string }

func (t rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	u, _ := url.Parse(t.host)
	req.URL.Scheme = u.Scheme
	req.URL.Host = u.Host
	return http.DefaultTransport.RoundTrip(req)
}

// factsOverHTTPTest returns a facts client whose lookups hit the handler.
func factsOverHTTPTest(t *testing.T, handler http.HandlerFunc) *facts.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return facts.NewClient(facts.WithHTTPClient(&http.Client{Transport: rewriteTransport{host: srv.URL}}))
}

func TestEnrichWeatherKeyword(t *testing.T) {
	client := factsOverHTTPTest(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "forecast") {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"current": map[string]any{"temperature_2m": -3.5}})
	})
	e := NewEnricher(WithFacts(client))

	out := e.Enrich(context.Background(), "what is the weather today", nil, "")
	live, ok := out["live_context"].(map[string]any)
	if !ok {
		t.Fatalf("live_context missing: %v", out)
	}
	weather, ok := live["weather"].(map[string]any)
	if !ok || weather["temperature_2m"] != -3.5 {
		t.Errorf("weather block = %v", live["weather"])
	}
	if _, ok := live["time"]; ok {
		t.Error("time should not trigger on a weather question")
	}
}

func TestEnrichTimeKeywordSkipsBatteryQuestions(t *testing.T) {
	client := factsOverHTTPTest(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r) // remote time fails, clock fallback still answers
	})
	e := NewEnricher(WithFacts(client))

	out := e.Enrich(context.Background(), "what time is it", nil, "")
	live, ok := out["live_context"].(map[string]any)
	if !ok {
		t.Fatalf("live_context missing: %v", out)
	}
	if _, ok := live["time"].(facts.TimeResult); !ok {
		t.Errorf("time block = %v, want clock fallback result", live["time"])
	}

	out = e.Enrich(context.Background(), "how much battery time is left", nil, "")
	if _, ok := out["live_context"]; ok {
		t.Error("battery time question should not trigger the clock lookup")
	}
}

func TestEnrichCryptoKeyword(t *testing.T) {
	client := factsOverHTTPTest(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "simple/price") {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]map[string]float64{"bitcoin": {"eur": 55000}})
	})
	e := NewEnricher(WithFacts(client))

	out := e.Enrich(context.Background(), "what is the bitcoin price", nil, "")
	live, ok := out["live_context"].(map[string]any)
	if !ok {
		t.Fatalf("live_context missing: %v", out)
	}
	price, ok := live["crypto"].(*facts.PriceResult)
	if !ok || price.Price != 55000 {
		t.Errorf("crypto block = %v", live["crypto"])
	}
}

func TestEnrichTelemetryOnlyWhenRecorded(t *testing.T) {
	rec := telemetry.NewRecorder(t.TempDir())
	e := NewEnricher(WithTelemetry(rec))

	out := e.Enrich(context.Background(), "how are you", nil, "")
	if _, ok := out["nav_state"]; ok {
		t.Error("nav_state present without a recorded snapshot")
	}

	if err := rec.RecordNavState(models.NavState{State: models.NavNavigating, NavGoal: "A201"}); err != nil {
		t.Fatalf("RecordNavState failed: %v", err)
	}
	out = e.Enrich(context.Background(), "how are you", nil, "")
	nav, ok := out["nav_state"].(*models.NavState)
	if !ok || nav.State != models.NavNavigating {
		t.Errorf("nav_state = %v", out["nav_state"])
	}
}

func TestEnrichLocationsAndHistory(t *testing.T) {
	dir := t.TempDir()
	locPath := filepath.Join(dir, "known_locations.json")
	err := util.WriteJSONAtomic(locPath, map[string]any{
		"locations": map[string]models.Location{
			"A201": {CanonicalName: "A201", DisplayName: "Classroom A201"},
		},
	})
	if err != nil {
		t.Fatalf("failed to write locations file: %v", err)
	}

	sessions := store.NewInMemoryStore()
	if _, err := sessions.UpdateFromTurn("s1", "hello", "Hello, I am Robot Savo. How can I help you?", models.IntentChatbot, ""); err != nil {
		t.Fatalf("UpdateFromTurn failed: %v", err)
	}

	e := NewEnricher(WithResolver(locations.NewResolver(locPath)), WithSessions(sessions))
	out := e.Enrich(context.Background(), "hello again", map[string]any{"lang": "en"}, "s1")

	summary, _ := out["locations"].(string)
	if !strings.Contains(summary, "A201") {
		t.Errorf("locations summary = %q", summary)
	}
	history, ok := out["history"].([]models.ChatMessage)
	if !ok || len(history) != 2 {
		t.Errorf("history = %v, want two messages", out["history"])
	}
	if out["lang"] != "en" {
		t.Error("caller metadata should be carried through")
	}
}

func TestEnrichNeverMutatesInput(t *testing.T) {
	e := NewEnricher()
	meta := map[string]any{"keep": true}
	out := e.Enrich(context.Background(), "what time is it", meta, "")
	out["added"] = true
	if _, ok := meta["added"]; ok {
		t.Error("input map was mutated")
	}
}

func TestEnrichBareEnricher(t *testing.T) {
	e := NewEnricher()
	out := e.Enrich(context.Background(), "weather and bitcoin and time", nil, "s1")
	if len(out) != 0 {
		t.Errorf("bare enricher produced %v, want nothing", out)
	}
}
