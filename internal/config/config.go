package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/injury-monitor/internal/platform/logging"
)

const (
	StateBackendFile     = "file"
	StateBackendRedis    = "redis"
	StateBackendPostgres = "postgres"
	StateBackendMemory   = "memory"
)

const defaultStateFileName = ".injury_monitor_state.json"

var defaultSoccerLeagues = []string{"premier-league", "la-liga", "champions-league", "mls"}

// Config stores runtime configuration for one monitor run.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	LogLevel       logging.Level
	LogFormat      logging.Format

	ShippAPIKey                string
	ShippBaseURL               string
	ShippTimeout               time.Duration
	ShippMaxRetries            int
	ShippRetryBackoff          time.Duration
	ShippCircuitEnabled        bool
	ShippCircuitFailureCount   int
	ShippCircuitOpenTimeout    time.Duration
	ShippCircuitHalfOpenMaxReq int

	StateBackend  string
	StatePath     string
	StateRedisURL string
	StateRedisKey string
	DBURL         string

	SourceTimeout     time.Duration
	SourceRetryDelay  time.Duration
	SourcePoliteDelay time.Duration
	SourceMaxWorkers  int
	SourcesDisabled   []string
	SoccerLeagues     []string

	UptraceEnabled bool
	UptraceDSN     string
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	logLevel, err := logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_LOG_LEVEL: %w", err)
	}

	logFormat, err := logging.ParseFormat(getEnv("APP_LOG_FORMAT", string(logging.FormatConsole)))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_LOG_FORMAT: %w", err)
	}

	cfg := Config{
		AppEnv:         appEnv,
		ServiceName:    getEnv("APP_SERVICE_NAME", "injury-monitor"),
		ServiceVersion: getEnv("APP_SERVICE_VERSION", "dev"),
		LogLevel:       logLevel,
		LogFormat:      logFormat,
	}

	if err := loadShipp(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadState(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadSources(&cfg); err != nil {
		return Config{}, err
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	cfg.UptraceEnabled = uptraceEnabled
	cfg.UptraceDSN = uptraceDSN

	return cfg, nil
}

func loadShipp(cfg *Config) error {
	cfg.ShippAPIKey = strings.TrimSpace(getEnv("SHIPP_API_KEY", ""))
	if cfg.ShippAPIKey == "" {
		return fmt.Errorf("SHIPP_API_KEY is required")
	}
	cfg.ShippBaseURL = strings.TrimRight(strings.TrimSpace(getEnv("SHIPP_BASE_URL", "https://api.shipp.ai/api/v1")), "/")

	timeout, err := time.ParseDuration(getEnv("SHIPP_TIMEOUT", "15s"))
	if err != nil {
		return fmt.Errorf("parse SHIPP_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return fmt.Errorf("SHIPP_TIMEOUT must be > 0")
	}

	maxRetries, err := getEnvAsInt("SHIPP_MAX_RETRIES", 2)
	if err != nil {
		return fmt.Errorf("parse SHIPP_MAX_RETRIES: %w", err)
	}
	if maxRetries < 0 {
		return fmt.Errorf("SHIPP_MAX_RETRIES must be >= 0")
	}

	backoff, err := time.ParseDuration(getEnv("SHIPP_RETRY_BACKOFF", "2s"))
	if err != nil {
		return fmt.Errorf("parse SHIPP_RETRY_BACKOFF: %w", err)
	}
	if backoff < 0 {
		return fmt.Errorf("SHIPP_RETRY_BACKOFF must be >= 0")
	}

	circuitEnabled, err := strconv.ParseBool(getEnv("SHIPP_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return fmt.Errorf("parse SHIPP_CIRCUIT_ENABLED: %w", err)
	}

	failureCount, err := getEnvAsInt("SHIPP_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return fmt.Errorf("parse SHIPP_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if failureCount < 1 {
		return fmt.Errorf("SHIPP_CIRCUIT_FAILURE_COUNT must be >= 1")
	}

	openTimeout, err := time.ParseDuration(getEnv("SHIPP_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return fmt.Errorf("parse SHIPP_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if openTimeout <= 0 {
		return fmt.Errorf("SHIPP_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}

	halfOpenMaxReq, err := getEnvAsInt("SHIPP_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return fmt.Errorf("parse SHIPP_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if halfOpenMaxReq < 1 {
		return fmt.Errorf("SHIPP_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	cfg.ShippTimeout = timeout
	cfg.ShippMaxRetries = maxRetries
	cfg.ShippRetryBackoff = backoff
	cfg.ShippCircuitEnabled = circuitEnabled
	cfg.ShippCircuitFailureCount = failureCount
	cfg.ShippCircuitOpenTimeout = openTimeout
	cfg.ShippCircuitHalfOpenMaxReq = halfOpenMaxReq
	return nil
}

func loadState(cfg *Config) error {
	backend := strings.ToLower(strings.TrimSpace(getEnv("STATE_BACKEND", StateBackendFile)))
	switch backend {
	case StateBackendFile, StateBackendRedis, StateBackendPostgres, StateBackendMemory:
	default:
		return fmt.Errorf("invalid STATE_BACKEND %q: valid values are %s, %s, %s, %s",
			backend, StateBackendFile, StateBackendRedis, StateBackendPostgres, StateBackendMemory)
	}
	cfg.StateBackend = backend

	statePath := strings.TrimSpace(getEnv("INJURY_STATE_PATH", ""))
	if statePath == "" {
		statePath = defaultStatePath()
	}
	cfg.StatePath = statePath

	cfg.StateRedisURL = strings.TrimSpace(getEnv("STATE_REDIS_URL", ""))
	cfg.StateRedisKey = strings.TrimSpace(getEnv("STATE_REDIS_KEY", "injury-monitor:state"))
	if backend == StateBackendRedis && cfg.StateRedisURL == "" {
		return fmt.Errorf("STATE_REDIS_URL is required when STATE_BACKEND=redis")
	}

	cfg.DBURL = strings.TrimSpace(getEnv("DB_URL", ""))
	if backend == StateBackendPostgres && cfg.DBURL == "" {
		return fmt.Errorf("DB_URL is required when STATE_BACKEND=postgres")
	}
	return nil
}

func loadSources(cfg *Config) error {
	timeout, err := time.ParseDuration(getEnv("SOURCE_TIMEOUT", "15s"))
	if err != nil {
		return fmt.Errorf("parse SOURCE_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return fmt.Errorf("SOURCE_TIMEOUT must be > 0")
	}

	retryDelay, err := time.ParseDuration(getEnv("SOURCE_RETRY_DELAY", "5s"))
	if err != nil {
		return fmt.Errorf("parse SOURCE_RETRY_DELAY: %w", err)
	}
	if retryDelay < 0 {
		return fmt.Errorf("SOURCE_RETRY_DELAY must be >= 0")
	}

	politeDelay, err := time.ParseDuration(getEnv("SOURCE_POLITE_DELAY", "2s"))
	if err != nil {
		return fmt.Errorf("parse SOURCE_POLITE_DELAY: %w", err)
	}
	if politeDelay < 0 {
		return fmt.Errorf("SOURCE_POLITE_DELAY must be >= 0")
	}

	maxWorkers, err := getEnvAsInt("SOURCE_MAX_WORKERS", 1)
	if err != nil {
		return fmt.Errorf("parse SOURCE_MAX_WORKERS: %w", err)
	}
	if maxWorkers < 1 {
		return fmt.Errorf("SOURCE_MAX_WORKERS must be >= 1")
	}

	leagues := splitCSV(strings.ToLower(getEnv("SOCCER_LEAGUES", "")))
	if len(leagues) == 0 {
		leagues = append([]string(nil), defaultSoccerLeagues...)
	}

	cfg.SourceTimeout = timeout
	cfg.SourceRetryDelay = retryDelay
	cfg.SourcePoliteDelay = politeDelay
	cfg.SourceMaxWorkers = maxWorkers
	cfg.SourcesDisabled = splitCSV(strings.ToLower(getEnv("SOURCES_DISABLED", "")))
	cfg.SoccerLeagues = leagues
	return nil
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return defaultStateFileName
	}
	return filepath.Join(home, defaultStateFileName)
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
