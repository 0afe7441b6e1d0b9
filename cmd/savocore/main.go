// savocore is the chat-turn core for the Robot Savo guide robot. It reads
// one JSON utterance per line on stdin and writes one JSON turn result per
// line on stdout; the robot host process owns all real transports.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/savo-robotics/savocore/internal/enrich"
	"github.com/savo-robotics/savocore/internal/facts"
	"github.com/savo-robotics/savocore/internal/genai"
	"github.com/savo-robotics/savocore/internal/locations"
	"github.com/savo-robotics/savocore/internal/lockfile"
	"github.com/savo-robotics/savocore/internal/models"
	"github.com/savo-robotics/savocore/internal/pipeline"
	"github.com/savo-robotics/savocore/internal/store"
	"github.com/savo-robotics/savocore/internal/telemetry"
	"github.com/savo-robotics/savocore/internal/util"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for savocore state data
	DefaultStateDir = "/var/lib/savocore"
	// DefaultSessionFileName is the default session snapshot filename
	DefaultSessionFileName = "sessions.json"
	// DefaultLocationsFileName is the default known-locations filename
	DefaultLocationsFileName = "known_locations.json"
	// DefaultPruneAge is how long an idle session survives
	DefaultPruneAge = 30 * time.Minute
)

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	// Session snapshots and telemetry files assume one writer per state dir.
	lock, err := lockfile.Acquire(*flags.stateDir)
	if err != nil {
		slog.Error("Failed to lock state directory", "error", err)
		os.Exit(1)
	}
	defer lock.Release()

	sessions, err := buildSessionStore(flags)
	if err != nil {
		slog.Error("Failed to open session store", "error", err)
		os.Exit(1)
	}
	defer sessions.Close()

	orchestrator, err := buildOrchestrator(flags)
	if err != nil {
		slog.Error("Failed to configure generation tiers", "error", err)
		os.Exit(1)
	}

	resolver := locations.NewResolver(*flags.locationsFile)
	recorder := telemetry.NewRecorder(*flags.stateDir)
	enricher := enrich.NewEnricher(
		enrich.WithFacts(facts.NewClient()),
		enrich.WithTelemetry(recorder),
		enrich.WithResolver(resolver),
		enrich.WithSessions(sessions),
		enrich.WithCoordinates(
			util.ParseFloatEnv("WEATHER_LATITUDE", enrich.DefaultLatitude),
			util.ParseFloatEnv("WEATHER_LONGITUDE", enrich.DefaultLongitude)),
		enrich.WithTimezone(getenvDefault("LOCAL_TIMEZONE", enrich.DefaultTimezone)),
		enrich.WithPricePair(
			getenvDefault("PRICE_COIN", enrich.DefaultCoin),
			getenvDefault("PRICE_FIAT", enrich.DefaultFiat)),
	)

	pipe, err := pipeline.NewPipeline(
		pipeline.WithResolver(resolver),
		pipeline.WithEnricher(enricher),
		pipeline.WithPrompts(genai.NewPromptLibrary(genai.WithPromptsDir(*flags.promptsDir))),
		pipeline.WithOrchestrator(orchestrator),
		pipeline.WithSessions(sessions),
	)
	if err != nil {
		slog.Error("Failed to build pipeline", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pruneAge := time.Duration(*flags.pruneMinutes) * time.Minute
	go runSessionPruner(ctx, sessions, pruneAge)

	slog.Info("savocore ready",
		"state_dir", *flags.stateDir,
		"session_dsn_set", *flags.sessionDSN != "",
		"tier1_enabled", *flags.tier1Enabled,
		"tier2_enabled", *flags.tier2Enabled)
	if err := runConsoleLoop(ctx, pipe, recorder); err != nil {
		slog.Error("savocore console loop failed", "error", err)
		os.Exit(1)
	}
	slog.Info("savocore exited successfully")
}

// Config holds environment configuration
type Config struct {
	StateDir        string
	SessionDSN      string
	LocationsFile   string
	PromptsDir      string
	Tier1APIKey     string
	Tier1BaseURL    string
	Tier1Candidates string
	Tier2URL        string
	Tier2Model      string
}

// Flags holds command line flag values
type Flags struct {
	stateDir        *string
	sessionDSN      *string
	locationsFile   *string
	promptsDir      *string
	tier1Enabled    *bool
	tier1APIKey     *string
	tier1BaseURL    *string
	tier1Candidates *string
	tier1TimeoutMs  *int
	tier2Enabled    *bool
	tier2URL        *string
	tier2Model      *string
	pruneMinutes    *int
}

// initializeLogger sets up structured logging; LOG_LEVEL picks the floor.
func initializeLogger() {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		StateDir:        os.Getenv("SAVOCORE_STATE_DIR"),
		SessionDSN:      os.Getenv("SESSION_DB_DSN"),
		LocationsFile:   os.Getenv("LOCATIONS_FILE"),
		PromptsDir:      os.Getenv("PROMPTS_DIR"),
		Tier1APIKey:     os.Getenv("TIER1_API_KEY"),
		Tier1BaseURL:    os.Getenv("TIER1_BASE_URL"),
		Tier1Candidates: os.Getenv("TIER1_MODEL_CANDIDATES"),
		Tier2URL:        os.Getenv("TIER2_OLLAMA_URL"),
		Tier2Model:      os.Getenv("TIER2_OLLAMA_MODEL"),
	}

	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No SAVOCORE_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}
	if config.LocationsFile == "" {
		config.LocationsFile = filepath.Join(config.StateDir, DefaultLocationsFileName)
	}

	slog.Debug("environment variables loaded",
		"SAVOCORE_STATE_DIR", config.StateDir,
		"SESSION_DB_DSN_SET", config.SessionDSN != "",
		"LOCATIONS_FILE", config.LocationsFile,
		"PROMPTS_DIR", config.PromptsDir,
		"TIER1_API_KEY_SET", config.Tier1APIKey != "",
		"TIER1_MODEL_CANDIDATES", config.Tier1Candidates,
		"TIER2_OLLAMA_MODEL", config.Tier2Model)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		stateDir:        flag.String("state-dir", config.StateDir, "state directory for savocore data (overrides $SAVOCORE_STATE_DIR)"),
		sessionDSN:      flag.String("session-dsn", config.SessionDSN, "session database DSN, postgres or sqlite path (overrides $SESSION_DB_DSN)"),
		locationsFile:   flag.String("locations-file", config.LocationsFile, "known locations JSON file (overrides $LOCATIONS_FILE)"),
		promptsDir:      flag.String("prompts-dir", config.PromptsDir, "directory with prompt text files (overrides $PROMPTS_DIR)"),
		tier1Enabled:    flag.Bool("tier1-enabled", util.ParseBoolEnv("TIER1_ENABLED", false), "enable the online generation tier (overrides $TIER1_ENABLED)"),
		tier1APIKey:     flag.String("tier1-api-key", config.Tier1APIKey, "online provider API key (overrides $TIER1_API_KEY)"),
		tier1BaseURL:    flag.String("tier1-base-url", config.Tier1BaseURL, "online provider base URL (overrides $TIER1_BASE_URL)"),
		tier1Candidates: flag.String("tier1-models", config.Tier1Candidates, "comma-separated online model candidates in priority order (overrides $TIER1_MODEL_CANDIDATES)"),
		tier1TimeoutMs:  flag.Int("tier1-timeout-ms", util.ParseIntEnv("TIER1_TIMEOUT_MS", 1800), "timeout per online model call in milliseconds (overrides $TIER1_TIMEOUT_MS)"),
		tier2Enabled:    flag.Bool("tier2-enabled", util.ParseBoolEnv("TIER2_ENABLED", false), "enable the local generation tier (overrides $TIER2_ENABLED)"),
		tier2URL:        flag.String("tier2-url", config.Tier2URL, "Ollama chat endpoint URL (overrides $TIER2_OLLAMA_URL)"),
		tier2Model:      flag.String("tier2-model", config.Tier2Model, "Ollama model name (overrides $TIER2_OLLAMA_MODEL)"),
		pruneMinutes:    flag.Int("prune-minutes", util.ParseIntEnv("SESSION_PRUNE_MINUTES", int(DefaultPruneAge.Minutes())), "idle minutes before a session is pruned (overrides $SESSION_PRUNE_MINUTES)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"stateDir", *flags.stateDir,
		"sessionDSN_set", *flags.sessionDSN != "",
		"tier1Enabled", *flags.tier1Enabled,
		"tier1Candidates", *flags.tier1Candidates,
		"tier2Enabled", *flags.tier2Enabled,
		"pruneMinutes", *flags.pruneMinutes)

	return flags
}

// buildSessionStore selects the session backend from the DSN: postgres URLs
// get the Postgres store, .db paths get SQLite, no DSN means the JSON
// snapshot in the state directory.
func buildSessionStore(flags Flags) (store.SessionStore, error) {
	dsn := *flags.sessionDSN
	switch {
	case dsn == "":
		path := filepath.Join(*flags.stateDir, DefaultSessionFileName)
		if err := os.MkdirAll(*flags.stateDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
		slog.Debug("No session DSN provided, using file snapshot store", "path", path)
		return store.NewFileStore(store.WithPath(path))
	case strings.HasPrefix(dsn, "postgres://") || strings.Contains(dsn, "host="):
		slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL session store")
		return store.NewPostgresStore(store.WithPath(dsn))
	default:
		slog.Debug("Detected SQLite DSN, configuring SQLite session store", "db_path", dsn)
		return store.NewSQLiteStore(store.WithPath(dsn))
	}
}

// buildOrchestrator wires the enabled generation tiers. With everything
// disabled the template tier still answers, which is a valid offline setup.
func buildOrchestrator(flags Flags) (*genai.Orchestrator, error) {
	var opts []genai.OrchestratorOption

	if *flags.tier1Enabled {
		candidates := splitCandidates(*flags.tier1Candidates)
		if *flags.tier1APIKey == "" || len(candidates) == 0 {
			slog.Warn("Tier1 enabled but API key or model candidates missing, skipping tier1")
		} else {
			providers := make([]genai.Provider, 0, len(candidates))
			for _, model := range candidates {
				p, err := genai.NewOpenRouterProvider(
					genai.WithAPIKey(*flags.tier1APIKey),
					genai.WithBaseURL(*flags.tier1BaseURL),
					genai.WithModel(model),
					genai.WithTimeout(time.Duration(*flags.tier1TimeoutMs)*time.Millisecond),
				)
				if err != nil {
					return nil, fmt.Errorf("failed to configure tier1 model %s: %w", model, err)
				}
				providers = append(providers, p)
			}
			opts = append(opts, genai.WithTier1(providers...))
		}
	}

	if *flags.tier2Enabled {
		if *flags.tier2Model == "" {
			slog.Warn("Tier2 enabled but no Ollama model configured, skipping tier2")
		} else {
			p, err := genai.NewOllamaProvider(
				genai.WithBaseURL(*flags.tier2URL),
				genai.WithModel(*flags.tier2Model),
			)
			if err != nil {
				return nil, fmt.Errorf("failed to configure tier2: %w", err)
			}
			opts = append(opts, genai.WithTier2(p))
		}
	}

	return genai.NewOrchestrator(opts...), nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitCandidates(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if model := strings.TrimSpace(part); model != "" {
			out = append(out, model)
		}
	}
	return out
}

// runSessionPruner drops stale sessions on a fixed interval until ctx ends.
func runSessionPruner(ctx context.Context, sessions store.SessionStore, maxAge time.Duration) {
	if maxAge <= 0 {
		return
	}
	ticker := time.NewTicker(maxAge)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := sessions.PruneStale(maxAge); err != nil {
				slog.Warn("Session pruning failed", "error", err)
			} else if n > 0 {
				slog.Info("Pruned stale sessions", "count", n)
			}
		}
	}
}

// inputLine is one stdin line from the robot host: a chat utterance, a
// telemetry snapshot, or both.
type inputLine struct {
	models.Utterance
	NavState    *models.NavState    `json:"nav_state,omitempty"`
	RobotStatus *models.RobotStatus `json:"robot_status,omitempty"`
}

// runConsoleLoop reads one JSON line per turn on stdin and writes one JSON
// result per line on stdout. Telemetry-only lines are recorded silently.
// Bad input lines produce an error line, never a crash.
func runConsoleLoop(ctx context.Context, pipe *pipeline.Pipeline, recorder *telemetry.Recorder) error {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	out := json.NewEncoder(os.Stdout)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var in inputLine
		if err := json.Unmarshal([]byte(line), &in); err != nil {
			// Bare text lines are treated as keyboard input.
			in = inputLine{Utterance: models.Utterance{UserText: line, Source: models.SourceKeyboard}}
		}

		if in.NavState != nil {
			if err := recorder.RecordNavState(*in.NavState); err != nil {
				slog.Warn("Failed to record nav state", "error", err)
			}
		}
		if in.RobotStatus != nil {
			if err := recorder.RecordStatus(*in.RobotStatus); err != nil {
				slog.Warn("Failed to record robot status", "error", err)
			}
		}
		if in.UserText == "" {
			continue
		}

		result, err := pipe.HandleTurn(ctx, in.Utterance)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			out.Encode(map[string]string{"error": err.Error()})
			continue
		}
		out.Encode(result)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stdin read failed: %w", err)
	}
	return nil
}
