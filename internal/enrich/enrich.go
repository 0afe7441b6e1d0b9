// Package enrich assembles the context block a generator sees for one turn:
// live facts the user asked about, the latest robot telemetry, the known
// locations summary, and recent conversation history.
//
// Enrichment is strictly additive and fault-tolerant. Every source that
// fails or is absent contributes nothing; the turn always proceeds.
package enrich

import (
	"context"
	"log/slog"
	"strings"

	"github.com/savo-robotics/savocore/internal/facts"
	"github.com/savo-robotics/savocore/internal/locations"
	"github.com/savo-robotics/savocore/internal/store"
	"github.com/savo-robotics/savocore/internal/telemetry"
)

// Default fact-lookup parameters: the robot's home coordinates and the
// price pair users most often ask about.
const (
	DefaultLatitude  = 62.89
	DefaultLongitude = 27.68
	DefaultTimezone  = "Europe/Helsinki"
	DefaultCoin      = "bitcoin"
	DefaultFiat      = "eur"
)

// Enricher builds per-turn context maps. Any collaborator may be nil; its
// contribution is simply skipped.
type Enricher struct {
	facts     *facts.Client
	telemetry *telemetry.Recorder
	resolver  *locations.Resolver
	sessions  store.SessionStore

	latitude  float64
	longitude float64
	timezone  string
	coin      string
	fiat      string
}

// Opts holds configuration for the enricher.
type Opts struct {
	Facts     *facts.Client
	Telemetry *telemetry.Recorder
	Resolver  *locations.Resolver
	Sessions  store.SessionStore
	Latitude  float64
	Longitude float64
	Timezone  string
	Coin      string
	Fiat      string
}

// Option configures the enricher.
type Option func(*Opts)

// WithFacts sets the live-facts client.
func WithFacts(c *facts.Client) Option {
	return func(o *Opts) { o.Facts = c }
}

// WithTelemetry sets the telemetry recorder.
func WithTelemetry(r *telemetry.Recorder) Option {
	return func(o *Opts) { o.Telemetry = r }
}

// WithResolver sets the location resolver.
func WithResolver(r *locations.Resolver) Option {
	return func(o *Opts) { o.Resolver = r }
}

// WithSessions sets the session store used for history context.
func WithSessions(s store.SessionStore) Option {
	return func(o *Opts) { o.Sessions = s }
}

// WithCoordinates sets the weather lookup point.
func WithCoordinates(lat, lon float64) Option {
	return func(o *Opts) { o.Latitude, o.Longitude = lat, lon }
}

// WithTimezone sets the local-time lookup zone.
func WithTimezone(tz string) Option {
	return func(o *Opts) { o.Timezone = tz }
}

// WithPricePair sets the crypto price pair.
func WithPricePair(coin, fiat string) Option {
	return func(o *Opts) { o.Coin, o.Fiat = coin, fiat }
}

// NewEnricher creates an enricher with the given collaborators.
func NewEnricher(opts ...Option) *Enricher {
	cfg := Opts{
		Latitude:  DefaultLatitude,
		Longitude: DefaultLongitude,
		Timezone:  DefaultTimezone,
		Coin:      DefaultCoin,
		Fiat:      DefaultFiat,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Enricher{
		facts:     cfg.Facts,
		telemetry: cfg.Telemetry,
		resolver:  cfg.Resolver,
		sessions:  cfg.Sessions,
		latitude:  cfg.Latitude,
		longitude: cfg.Longitude,
		timezone:  cfg.Timezone,
		coin:      cfg.Coin,
		fiat:      cfg.Fiat,
	}
}

// Enrich returns a new metadata map: the caller's entries plus whatever
// context this turn warrants. The input map is never mutated.
func (e *Enricher) Enrich(ctx context.Context, sanitized string, meta map[string]any, sessionID string) map[string]any {
	out := make(map[string]any, len(meta)+5)
	for k, v := range meta {
		out[k] = v
	}

	if live := e.liveContext(ctx, sanitized); len(live) > 0 {
		out["live_context"] = live
	}
	if e.telemetry != nil {
		if nav := e.telemetry.NavState(); nav != nil {
			out["nav_state"] = nav
		}
		if status := e.telemetry.Status(); status != nil {
			out["robot_status"] = status
		}
	}
	if e.resolver != nil {
		out["locations"] = e.resolver.Directory().Summary()
	}
	if e.sessions != nil && sessionID != "" {
		history, err := e.sessions.HistoryAsMessages(sessionID)
		if err != nil {
			slog.Warn("Enricher.Enrich: history lookup failed", "session_id", sessionID, "error", err)
		} else if len(history) > 0 {
			out["history"] = history
		}
	}
	return out
}

// liveContext runs keyword-triggered fact lookups. Each lookup fails
// independently; a nil result is simply left out.
func (e *Enricher) liveContext(ctx context.Context, sanitized string) map[string]any {
	if e.facts == nil {
		return nil
	}
	text := strings.ToLower(sanitized)
	live := make(map[string]any)

	if strings.Contains(text, "weather") || strings.Contains(text, "temperature") {
		if weather := e.facts.Weather(ctx, e.latitude, e.longitude); weather != nil {
			live["weather"] = weather
		}
	}
	// "battery time" style questions are about the robot, not the clock.
	if strings.Contains(text, "time") && !strings.Contains(text, "battery") {
		live["time"] = e.facts.LocalTime(ctx, e.timezone)
	}
	if containsAny(text, "bitcoin", "btc", "crypto", "cryptocurrency") {
		if price := e.facts.Price(ctx, e.coin, e.fiat); price != nil {
			live["crypto"] = price
		}
	}
	return live
}

func containsAny(text string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
