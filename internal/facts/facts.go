// Package facts fetches small pieces of live external data the generator
// can ground its answers in: current weather, local time, and asset prices.
//
// Every lookup is fault-tolerant by design: a failed call contributes
// nothing and is logged, it never aborts the turn. Sources are limited to a
// fixed allow-list; there is no general web access here.
package facts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Default timeout for a single fact lookup.
const DefaultTimeout = 5 * time.Second

// Allow-listed price pairs. Anything outside these sets is rejected before
// a network call is made.
var (
	allowedCoins = map[string]bool{"bitcoin": true, "ethereum": true}
	allowedFiats = map[string]bool{"eur": true, "usd": true}
)

const (
	weatherURL = "https://api.open-meteo.com/v1/forecast"
	timeURL    = "https://worldtimeapi.org/api/timezone/"
	priceURL   = "https://api.coingecko.com/api/v3/simple/price"
)

// Client performs the allow-listed live lookups. The zero value is not
// usable; construct with NewClient.
type Client struct {
	http *http.Client
}

// Opts holds configuration for the facts client.
type Opts struct {
	HTTPClient *http.Client
}

// Option configures the facts client.
type Option func(*Opts)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Opts) { o.HTTPClient = c }
}

// NewClient creates a facts client with a bounded-timeout HTTP client.
func NewClient(opts ...Option) *Client {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{http: hc}
}

// Weather returns the current conditions block from Open-Meteo for the given
// coordinates, or nil when the lookup fails for any reason.
func (c *Client) Weather(ctx context.Context, lat, lon float64) map[string]any {
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.4f", lat))
	q.Set("longitude", fmt.Sprintf("%.4f", lon))
	q.Set("current", "temperature_2m,weathercode,windspeed_10m,winddirection_10m,is_day")
	q.Set("timezone", "auto")

	var payload struct {
		Current map[string]any `json:"current"`
	}
	if err := c.getJSON(ctx, weatherURL+"?"+q.Encode(), &payload); err != nil {
		slog.Warn("facts.Weather: lookup failed", "error", err)
		return nil
	}
	if payload.Current == nil {
		slog.Warn("facts.Weather: response missing current block")
		return nil
	}
	return payload.Current
}

// TimeResult is the outcome of a local time lookup.
type TimeResult struct {
	Datetime string `json:"datetime"`
	Timezone string `json:"timezone"`
}

// LocalTime returns the local time for a timezone name. When the remote
// lookup fails it falls back to the process clock, so it never fails.
func (c *Client) LocalTime(ctx context.Context, timezone string) TimeResult {
	var payload struct {
		Datetime     string `json:"datetime"`
		Abbreviation string `json:"abbreviation"`
	}
	err := c.getJSON(ctx, timeURL+escapeTimezonePath(timezone), &payload)
	if err == nil && payload.Datetime != "" {
		tz := payload.Abbreviation
		if tz == "" {
			tz = timezone
		}
		return TimeResult{Datetime: payload.Datetime, Timezone: tz}
	}
	slog.Warn("facts.LocalTime: lookup failed, using system clock", "timezone", timezone, "error", err)

	now := time.Now()
	zone, _ := now.Zone()
	if zone == "" {
		zone = "local"
	}
	return TimeResult{Datetime: now.Format(time.RFC3339), Timezone: zone}
}

// escapeTimezonePath escapes a timezone name segment by segment so the
// area/location slash survives as a path separator.
func escapeTimezonePath(timezone string) string {
	segments := strings.Split(timezone, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

// PriceResult is the outcome of a price lookup.
type PriceResult struct {
	Symbol     string  `json:"symbol"`
	VsCurrency string  `json:"vs_currency"`
	Price      float64 `json:"price"`
}

// Price returns the current price for an allow-listed coin in an
// allow-listed fiat currency, or nil for unsupported pairs and failures.
func (c *Client) Price(ctx context.Context, coin, fiat string) *PriceResult {
	if !allowedCoins[coin] || !allowedFiats[fiat] {
		slog.Debug("facts.Price: pair not allow-listed", "coin", coin, "fiat", fiat)
		return nil
	}

	q := url.Values{}
	q.Set("ids", coin)
	q.Set("vs_currencies", fiat)

	var payload map[string]map[string]float64
	if err := c.getJSON(ctx, priceURL+"?"+q.Encode(), &payload); err != nil {
		slog.Warn("facts.Price: lookup failed", "coin", coin, "fiat", fiat, "error", err)
		return nil
	}
	price, ok := payload[coin][fiat]
	if !ok {
		slog.Warn("facts.Price: price missing from response", "coin", coin, "fiat", fiat)
		return nil
	}
	return &PriceResult{Symbol: coin, VsCurrency: fiat, Price: price}
}

// getJSON performs a GET request and decodes a JSON body, treating non-200
// statuses and decode failures as errors.
func (c *Client) getJSON(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", rawURL, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed for %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		preview, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, rawURL, preview)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON from %s: %w", rawURL, err)
	}
	return nil
}
