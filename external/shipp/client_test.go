package shipp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/injury-monitor/internal/domain/injury"
	"github.com/riskibarqy/injury-monitor/internal/platform/resilience"
	"github.com/riskibarqy/injury-monitor/internal/usecase"
)

func newTestClient(t *testing.T, baseURL string, maxRetries int) *Client {
	t.Helper()

	client, err := NewClient(ClientConfig{
		BaseURL:      baseURL,
		APIKey:       "secret-key",
		Timeout:      2 * time.Second,
		MaxRetries:   maxRetries,
		RetryBackoff: time.Millisecond,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 10,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	client.now = func() time.Time { return time.Date(2026, 3, 5, 23, 30, 0, 0, time.UTC) }
	return client
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(ClientConfig{APIKey: "  "}); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestTodaysGames_BuildsRequestAndDecodes(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sports/nba/schedule" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("date"); got != "2026-03-05" {
			t.Errorf("unexpected date: %s", got)
		}
		if got := r.URL.Query().Get("api_key"); got != "secret-key" {
			t.Errorf("unexpected api key: %s", got)
		}
		if ua := r.Header.Get("User-Agent"); ua != "injury-report-monitor/1.0" {
			t.Errorf("unexpected user agent: %s", ua)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"games":[
			{"game_id":"abc","home_team":"Los Angeles Lakers","away_team":"Golden State Warriors","start_time":"19:30","status":"scheduled"},
			{"game_id":42,"home_team":" Boston Celtics ","away_team":"New York Knicks","start_time":"20:00","status":"live"}
		]}`))
	}))
	defer server.Close()

	games, err := newTestClient(t, server.URL, 0).TodaysGames(context.Background(), injury.SportNBA)
	if err != nil {
		t.Fatalf("TodaysGames error: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("expected 2 games, got %d", len(games))
	}
	if games[0].GameID != "abc" || games[0].HomeTeam != "Los Angeles Lakers" || games[0].StartTime != "19:30" {
		t.Fatalf("unexpected first game: %+v", games[0])
	}
	if games[1].GameID != "42" || games[1].HomeTeam != "Boston Celtics" {
		t.Fatalf("unexpected second game: %+v", games[1])
	}
}

func TestTodaysGames_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"games":[]}`))
	}))
	defer server.Close()

	games, err := newTestClient(t, server.URL, 2).TodaysGames(context.Background(), injury.SportMLB)
	if err != nil {
		t.Fatalf("expected success after retries: %v", err)
	}
	if len(games) != 0 || calls.Load() != 3 {
		t.Fatalf("unexpected result games=%d calls=%d", len(games), calls.Load())
	}
}

func TestTodaysGames_RateLimitHonorsRetryAfter(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"games":[{"game_id":"g","home_team":"A","away_team":"B"}]}`))
	}))
	defer server.Close()

	games, err := newTestClient(t, server.URL, 2).TodaysGames(context.Background(), injury.SportSoccer)
	if err != nil {
		t.Fatalf("expected success after rate limit: %v", err)
	}
	if len(games) != 1 || calls.Load() != 2 {
		t.Fatalf("unexpected result games=%d calls=%d", len(games), calls.Load())
	}
}

func TestTodaysGames_ClientErrorFailsImmediatelyAndRedactsKey(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid api_key=secret-key"}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL, 2).TodaysGames(context.Background(), injury.SportNBA)
	if err == nil {
		t.Fatalf("expected error for 401")
	}
	if calls.Load() != 1 {
		t.Fatalf("4xx must not be retried, got %d calls", calls.Load())
	}
	if strings.Contains(err.Error(), "secret-key") {
		t.Fatalf("api key leaked into error: %v", err)
	}
}

func TestTodaysGames_CircuitOpensAfterTransientFailures(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 0)
	client.breaker = resilience.NewCircuitBreaker("shipp", resilience.CircuitBreakerConfig{Enabled: true, FailureThreshold: 1, OpenTimeout: time.Minute, HalfOpenMaxReq: 1})

	if _, err := client.TodaysGames(context.Background(), injury.SportNBA); err == nil {
		t.Fatalf("expected first call to fail")
	}
	_, err := client.TodaysGames(context.Background(), injury.SportNBA)
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected open circuit to short-circuit, got %v", err)
	}
}

func TestTodaysGames_RejectsUnknownSport(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, "http://127.0.0.1:0", 0)
	if _, err := client.TodaysGames(context.Background(), injury.Sport("nhl")); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestRedactAPIURL(t *testing.T) {
	t.Parallel()

	got := redactAPIURL("https://api.shipp.ai/api/v1/sports/nba/schedule?api_key=abc&date=2026-03-05")
	if strings.Contains(got, "abc") || !strings.Contains(got, "api_key=REDACTED") {
		t.Fatalf("unexpected redacted url: %s", got)
	}
}
