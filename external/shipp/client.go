package shipp

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/injury-monitor/internal/domain/injury"
	"github.com/riskibarqy/injury-monitor/internal/platform/logging"
	"github.com/riskibarqy/injury-monitor/internal/platform/resilience"
	"github.com/riskibarqy/injury-monitor/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultBaseURL       = "https://api.shipp.ai/api/v1"
	defaultTimeout       = 15 * time.Second
	defaultRetryBackoff  = 2 * time.Second
	defaultRateLimitWait = 5 * time.Second
	maxResponseBodyBytes = 4 << 20
	userAgent            = "injury-report-monitor/1.0"
	scheduleDateLayout   = "2006-01-02"
)

var apiKeyParamRegex = regexp.MustCompile(`api_key=[^&\s"']+`)

var (
	errShippTransient   = crerr.New("shipp transient failure")
	errShippRateLimited = crerr.New("shipp rate limited")
	ErrMissingAPIKey    = crerr.New("shipp api key is required")
)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads today's schedule from the Shipp API.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	maxRetries   int
	retryBackoff time.Duration
	logger       *logging.Logger
	breaker      *resilience.CircuitBreaker
	flight       resilience.SingleFlight[[]byte]
	now          func() time.Time
}

func NewClient(cfg ClientConfig) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultTimeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	backoff := cfg.RetryBackoff
	if backoff < 0 {
		backoff = defaultRetryBackoff
	}

	breaker := resilience.NewCircuitBreaker("shipp", cfg.CircuitBreaker)
	breaker.OnStateChange(func(name string, from, to resilience.CircuitState) {
		logger.Warn("circuit breaker state changed", "breaker", name, "from", from, "to", to)
	})

	return &Client{
		httpClient:   httpClient,
		baseURL:      baseURL,
		apiKey:       apiKey,
		maxRetries:   max(cfg.MaxRetries, 0),
		retryBackoff: backoff,
		logger:       logger,
		breaker:      breaker,
		now:          time.Now,
	}, nil
}

type scheduleEnvelope struct {
	Games []scheduleGame `json:"games"`
}

type scheduleGame struct {
	GameID    flexibleString `json:"game_id"`
	HomeTeam  string         `json:"home_team"`
	AwayTeam  string         `json:"away_team"`
	StartTime string         `json:"start_time"`
	Status    string         `json:"status"`
}

// TodaysGames returns the UTC-today schedule for one sport.
func (c *Client) TodaysGames(ctx context.Context, sport injury.Sport) ([]usecase.ExternalGame, error) {
	if _, ok := injury.ParseSport(string(sport)); !ok {
		return nil, fmt.Errorf("%w: unsupported sport %q", usecase.ErrInvalidInput, sport)
	}

	date := c.now().UTC().Format(scheduleDateLayout)
	var envelope scheduleEnvelope
	if err := c.doJSON(ctx, "/sports/"+string(sport)+"/schedule", map[string]string{"date": date}, &envelope); err != nil {
		return nil, fmt.Errorf("fetch %s schedule date=%s: %w", sport, date, err)
	}

	out := make([]usecase.ExternalGame, 0, len(envelope.Games))
	for _, game := range envelope.Games {
		out = append(out, usecase.ExternalGame{
			GameID:    string(game.GameID),
			HomeTeam:  strings.TrimSpace(game.HomeTeam),
			AwayTeam:  strings.TrimSpace(game.AwayTeam),
			StartTime: game.StartTime,
			Status:    game.Status,
		})
	}
	c.logger.DebugContext(ctx, "shipp schedule fetched", "sport", sport, "date", date, "games", len(out))
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	values.Set("api_key", c.apiKey)
	requestKey := path + "?" + values.Encode()

	raw, err, _ := c.flight.Do(requestKey, func() ([]byte, error) {
		var body []byte
		err := c.breaker.Guard(func() error {
			var reqErr error
			body, reqErr = c.executeRequest(ctx, c.baseURL+requestKey)
			return reqErr
		}, isShippCircuitFailure)
		return body, err
	})
	if stderrors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "shipp circuit breaker rejected request", "state", c.breaker.State())
		return fmt.Errorf("%w: schedule provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}
	if err != nil {
		return err
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return crerr.Wrap(err, "decode schedule payload")
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var body []byte
	err := resilience.Retry(ctx, resilience.RetryPolicy{MaxRetries: c.maxRetries, Backoff: c.retryBackoff}, func(ctx context.Context, attempt int) (resilience.RetryDecision, error) {
		raw, wait, reqErr := c.attempt(ctx, fullURL)
		if reqErr == nil {
			body = raw
			return resilience.RetryDecision{}, nil
		}
		c.logger.WarnContext(ctx, "shipp request attempt failed", "attempt", attempt+1, "url", redactAPIURL(fullURL), "error", reqErr)
		retry := stderrors.Is(reqErr, errShippTransient) || stderrors.Is(reqErr, errShippRateLimited)
		return resilience.RetryDecision{Retry: retry, Wait: wait}, reqErr
	})
	if err != nil {
		return nil, crerr.Wrapf(err, "shipp request failed after %d attempts", c.maxRetries+1)
	}
	return body, nil
}

// attempt performs one request. The returned wait is only set for rate-limited responses.
func (c *Client) attempt(ctx context.Context, fullURL string) ([]byte, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, 0, crerr.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, 0, ctxErr
		}
		return nil, 0, fmt.Errorf("%w: send request: %s", errShippTransient, sanitizeSensitiveText(err.Error(), c.apiKey))
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if readErr != nil {
		return nil, 0, fmt.Errorf("%w: read response body: %v", errShippTransient, readErr)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return raw, 0, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		wait := parseRetryAfter(resp.Header.Get("Retry-After"))
		return nil, wait, fmt.Errorf("%w: status=%d retry_after=%s", errShippRateLimited, resp.StatusCode, wait)
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, 0, fmt.Errorf("%w: status=%d body=%s", errShippTransient, resp.StatusCode, abbreviateBody(raw))
	default:
		return nil, 0, crerr.Newf("provider status=%d body=%s", resp.StatusCode, sanitizeSensitiveText(abbreviateBody(raw), c.apiKey))
	}
}

func parseRetryAfter(value string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || seconds < 0 {
		return defaultRateLimitWait
	}
	if seconds == 0 {
		return time.Millisecond
	}
	return time.Duration(seconds) * time.Second
}

func isShippCircuitFailure(err error) bool {
	return stderrors.Is(err, errShippTransient)
}

func sanitizeSensitiveText(value, apiKey string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if apiKey != "" {
		value = strings.ReplaceAll(value, apiKey, "REDACTED")
	}
	return apiKeyParamRegex.ReplaceAllString(value, "api_key=REDACTED")
}

func redactAPIURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return apiKeyParamRegex.ReplaceAllString(rawURL, "api_key=REDACTED")
	}
	query := parsed.Query()
	if query.Has("api_key") {
		query.Set("api_key", "REDACTED")
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

// flexibleString accepts both JSON strings and numbers, since game ids arrive as either.
type flexibleString string

func (f *flexibleString) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "null" || text == "" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := sonic.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexibleString(s)
		return nil
	}
	*f = flexibleString(text)
	return nil
}
