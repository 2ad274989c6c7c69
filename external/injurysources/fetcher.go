package injurysources

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/injury-monitor/internal/platform/logging"
	"github.com/riskibarqy/injury-monitor/internal/platform/resilience"
	"github.com/valyala/fasthttp"
)

const (
	defaultFetchTimeout  = 15 * time.Second
	maxPageBodyBytes     = 8 << 20
	maxRedirects         = 5
	browserUserAgent     = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	browserAccept        = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	browserAcceptLang    = "en-US,en;q=0.5"
	pageFetchMaxAttempts = 2
)

var errPageStatus = crerr.New("unexpected page status")

// PageGetter is what the adapters need from a fetcher.
type PageGetter interface {
	Get(ctx context.Context, rawURL string) ([]byte, error)
}

type FetcherConfig struct {
	Timeout     time.Duration
	RetryDelay  time.Duration
	PoliteDelay time.Duration
	Logger      *logging.Logger
}

// PageFetcher downloads public pages with browser-like headers, one retry,
// and a minimum gap between requests to the same host.
//
// fasthttp cannot abort an in-flight request on ctx cancellation, so each
// request timeout is capped at the time left before the ctx deadline.
// Cancellation without a deadline is observed between attempts.
type PageFetcher struct {
	client      *fasthttp.Client
	timeout     time.Duration
	retryDelay  time.Duration
	politeDelay time.Duration
	logger      *logging.Logger

	mu       sync.Mutex
	nextSlot map[string]time.Time
	now      func() time.Time
}

func NewPageFetcher(cfg FetcherConfig) *PageFetcher {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}

	return &PageFetcher{
		client: &fasthttp.Client{
			Name:                     browserUserAgent,
			ReadTimeout:              timeout,
			WriteTimeout:             timeout,
			MaxResponseBodySize:      maxPageBodyBytes,
			NoDefaultUserAgentHeader: true,
		},
		timeout:     timeout,
		retryDelay:  max(cfg.RetryDelay, 0),
		politeDelay: max(cfg.PoliteDelay, 0),
		logger:      logger,
		nextSlot:    make(map[string]time.Time),
		now:         time.Now,
	}
}

// Get returns the body of a 2xx response. Any failure is retried once after the retry delay.
func (f *PageFetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("invalid page url %q", rawURL)
	}

	var body []byte
	policy := resilience.RetryPolicy{MaxRetries: pageFetchMaxAttempts - 1, Backoff: f.retryDelay}
	err = resilience.Retry(ctx, policy, func(ctx context.Context, attempt int) (resilience.RetryDecision, error) {
		if err := f.waitTurn(ctx, parsed.Host); err != nil {
			return resilience.RetryDecision{}, err
		}
		timeout, err := f.requestTimeout(ctx)
		if err != nil {
			return resilience.RetryDecision{}, err
		}
		raw, reqErr := f.do(rawURL, timeout)
		if reqErr == nil {
			body = raw
			return resilience.RetryDecision{}, nil
		}
		f.logger.WarnContext(ctx, "page fetch attempt failed", "attempt", attempt+1, "url", rawURL, "error", reqErr)
		return resilience.RetryDecision{Retry: ctx.Err() == nil}, reqErr
	})
	if err != nil {
		return nil, crerr.Wrapf(err, "fetch %s", rawURL)
	}
	return body, nil
}

// requestTimeout returns the configured timeout, shortened to the ctx deadline.
func (f *PageFetcher) requestTimeout(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		return f.timeout, nil
	}
	left := deadline.Sub(f.now())
	if left <= 0 {
		return 0, context.DeadlineExceeded
	}
	return min(f.timeout, left), nil
}

func (f *PageFetcher) do(rawURL string, timeout time.Duration) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(rawURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", browserAccept)
	req.Header.Set("Accept-Language", browserAcceptLang)
	req.SetTimeout(timeout)

	if err := f.client.DoRedirects(req, resp, maxRedirects); err != nil {
		return nil, crerr.Wrap(err, "send request")
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("%w: status=%d", errPageStatus, status)
	}
	return append([]byte(nil), resp.Body()...), nil
}

// waitTurn reserves the next request slot for host and sleeps until it arrives.
func (f *PageFetcher) waitTurn(ctx context.Context, host string) error {
	host = strings.ToLower(host)

	f.mu.Lock()
	now := f.now()
	slot := f.nextSlot[host]
	if slot.Before(now) {
		slot = now
	}
	f.nextSlot[host] = slot.Add(f.politeDelay)
	f.mu.Unlock()

	return resilience.SleepContext(ctx, slot.Sub(now))
}
