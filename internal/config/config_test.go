package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/injury-monitor/internal/platform/logging"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("SHIPP_API_KEY", "key-123")
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("STATE_BACKEND", "")
}

func TestLoad_AppEnvValidation(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_RequiresShippAPIKey(t *testing.T) {
	setRequired(t)
	t.Setenv("SHIPP_API_KEY", "   ")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error when SHIPP_API_KEY is missing")
	}
	if !strings.Contains(err.Error(), "SHIPP_API_KEY") {
		t.Fatalf("expected error to name SHIPP_API_KEY, got %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("HOME", "/home/monitor")
	t.Setenv("INJURY_STATE_PATH", "")
	t.Setenv("SOCCER_LEAGUES", "")
	t.Setenv("SOURCES_DISABLED", "")
	t.Setenv("SOURCE_MAX_WORKERS", "")
	t.Setenv("SHIPP_BASE_URL", "")
	t.Setenv("SHIPP_MAX_RETRIES", "")
	t.Setenv("APP_LOG_LEVEL", "")
	t.Setenv("APP_LOG_FORMAT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ShippBaseURL != "https://api.shipp.ai/api/v1" {
		t.Fatalf("unexpected ShippBaseURL: %q", cfg.ShippBaseURL)
	}
	if cfg.ShippMaxRetries != 2 || cfg.ShippRetryBackoff != 2*time.Second {
		t.Fatalf("unexpected retry defaults: %d %s", cfg.ShippMaxRetries, cfg.ShippRetryBackoff)
	}
	if cfg.StateBackend != StateBackendFile {
		t.Fatalf("unexpected StateBackend: %q", cfg.StateBackend)
	}
	if cfg.StatePath != filepath.Join("/home/monitor", ".injury_monitor_state.json") {
		t.Fatalf("unexpected StatePath: %q", cfg.StatePath)
	}
	if cfg.SourceMaxWorkers != 1 {
		t.Fatalf("expected sequential collection by default, got %d", cfg.SourceMaxWorkers)
	}
	if cfg.SourceTimeout != 15*time.Second || cfg.SourceRetryDelay != 5*time.Second || cfg.SourcePoliteDelay != 2*time.Second {
		t.Fatalf("unexpected source timings: %s %s %s", cfg.SourceTimeout, cfg.SourceRetryDelay, cfg.SourcePoliteDelay)
	}
	if strings.Join(cfg.SoccerLeagues, ",") != "premier-league,la-liga,champions-league,mls" {
		t.Fatalf("unexpected SoccerLeagues: %v", cfg.SoccerLeagues)
	}
	if cfg.LogLevel != logging.LevelInfo || cfg.LogFormat != logging.FormatConsole {
		t.Fatalf("unexpected log settings: %s %s", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestLoad_SourceOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SOURCES_DISABLED", "CBS_NBA, nba_official,,")
	t.Setenv("SOCCER_LEAGUES", "mls")
	t.Setenv("SOURCE_MAX_WORKERS", "4")
	t.Setenv("INJURY_STATE_PATH", "/tmp/state.json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if strings.Join(cfg.SourcesDisabled, ",") != "cbs_nba,nba_official" {
		t.Fatalf("unexpected SourcesDisabled: %v", cfg.SourcesDisabled)
	}
	if len(cfg.SoccerLeagues) != 1 || cfg.SoccerLeagues[0] != "mls" {
		t.Fatalf("unexpected SoccerLeagues: %v", cfg.SoccerLeagues)
	}
	if cfg.SourceMaxWorkers != 4 {
		t.Fatalf("unexpected SourceMaxWorkers: %d", cfg.SourceMaxWorkers)
	}
	if cfg.StatePath != "/tmp/state.json" {
		t.Fatalf("unexpected StatePath: %q", cfg.StatePath)
	}
}

func TestLoad_StateBackendValidation(t *testing.T) {
	t.Run("unknown backend", func(t *testing.T) {
		setRequired(t)
		t.Setenv("STATE_BACKEND", "s3")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for unsupported STATE_BACKEND")
		}
	})

	t.Run("redis requires url", func(t *testing.T) {
		setRequired(t)
		t.Setenv("STATE_BACKEND", "redis")
		t.Setenv("STATE_REDIS_URL", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when STATE_BACKEND=redis without STATE_REDIS_URL")
		}
	})

	t.Run("postgres requires db url", func(t *testing.T) {
		setRequired(t)
		t.Setenv("STATE_BACKEND", "postgres")
		t.Setenv("DB_URL", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when STATE_BACKEND=postgres without DB_URL")
		}
	})

	t.Run("redis with url", func(t *testing.T) {
		setRequired(t)
		t.Setenv("STATE_BACKEND", "Redis")
		t.Setenv("STATE_REDIS_URL", "redis://localhost:6379/0")
		t.Setenv("STATE_REDIS_KEY", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.StateBackend != StateBackendRedis || cfg.StateRedisKey != "injury-monitor:state" {
			t.Fatalf("unexpected redis config: %q %q", cfg.StateBackend, cfg.StateRedisKey)
		}
	})
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	setRequired(t)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_InvalidNumbersFailFast(t *testing.T) {
	cases := map[string]string{
		"SHIPP_MAX_RETRIES":           "-1",
		"SHIPP_TIMEOUT":               "soon",
		"SHIPP_CIRCUIT_FAILURE_COUNT": "0",
		"SOURCE_MAX_WORKERS":          "0",
		"SOURCE_TIMEOUT":              "0s",
		"APP_LOG_LEVEL":               "chatty",
		"APP_LOG_FORMAT":              "xml",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", key, value)
			}
		})
	}
}
