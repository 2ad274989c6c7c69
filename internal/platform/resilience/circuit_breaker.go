package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// CircuitBreakerConfig mirrors the SHIPP_CIRCUIT_* settings. Zero values fall back to defaults.
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

const (
	defaultFailureThreshold = 5
	defaultOpenTimeout      = 15 * time.Second
	defaultHalfOpenMaxReq   = 2
)

func (cfg CircuitBreakerConfig) withDefaults() CircuitBreakerConfig {
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = defaultFailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaultOpenTimeout
	}
	if cfg.HalfOpenMaxReq < 1 {
		cfg.HalfOpenMaxReq = defaultHalfOpenMaxReq
	}
	return cfg
}

// CircuitBreaker stops calling a schedule provider after consecutive transient
// failures and lets a few probes through once OpenTimeout has passed.
// A nil *CircuitBreaker is valid and never rejects.
type CircuitBreaker struct {
	mu       sync.Mutex
	name     string
	cfg      CircuitBreakerConfig
	onChange func(name string, from, to CircuitState)
	now      func() time.Time

	state    CircuitState
	openedAt time.Time
	failures int // consecutive, closed state only
	probing  int // half-open calls in flight
	probesOK int
}

// NewCircuitBreaker returns nil when cfg is disabled.
func NewCircuitBreaker(name string, cfg CircuitBreakerConfig) *CircuitBreaker {
	if !cfg.Enabled {
		return nil
	}
	return &CircuitBreaker{
		name:  name,
		cfg:   cfg.withDefaults(),
		now:   time.Now,
		state: CircuitStateClosed,
	}
}

// OnStateChange registers fn for every transition. fn runs under the breaker lock.
func (b *CircuitBreaker) OnStateChange(fn func(name string, from, to CircuitState)) {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.onChange = fn
	b.mu.Unlock()
}

// Guard runs fn unless the breaker is open. Errors for which tripsOn reports
// true count as failures; nil tripsOn counts every error.
func (b *CircuitBreaker) Guard(fn func() error, tripsOn func(error) bool) error {
	if err := b.admit(); err != nil {
		return err
	}
	err := fn()
	failed := err != nil && (tripsOn == nil || tripsOn(err))
	b.settle(failed)
	return err
}

func (b *CircuitBreaker) State() CircuitState {
	if b == nil {
		return CircuitStateClosed
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == CircuitStateOpen && b.cooledDown() {
		return CircuitStateHalfOpen
	}
	return b.state
}

func (b *CircuitBreaker) admit() error {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateOpen:
		if !b.cooledDown() {
			return ErrCircuitOpen
		}
		b.moveTo(CircuitStateHalfOpen)
		fallthrough
	case CircuitStateHalfOpen:
		if b.probing >= b.cfg.HalfOpenMaxReq {
			return ErrCircuitOpen
		}
		b.probing++
	}
	return nil
}

func (b *CircuitBreaker) settle(failed bool) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		if !failed {
			b.failures = 0
			return
		}
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.moveTo(CircuitStateOpen)
		}
	case CircuitStateHalfOpen:
		b.probing = max(b.probing-1, 0)
		if failed {
			b.moveTo(CircuitStateOpen)
			return
		}
		b.probesOK++
		if b.probesOK >= b.cfg.HalfOpenMaxReq && b.probing == 0 {
			b.moveTo(CircuitStateClosed)
		}
	}
}

func (b *CircuitBreaker) cooledDown() bool {
	return b.now().Sub(b.openedAt) >= b.cfg.OpenTimeout
}

// moveTo resets the per-state counters and fires onChange.
func (b *CircuitBreaker) moveTo(to CircuitState) {
	from := b.state
	b.state = to
	b.failures, b.probing, b.probesOK = 0, 0, 0
	if to == CircuitStateOpen {
		b.openedAt = b.now()
	}
	if from != to && b.onChange != nil {
		b.onChange(b.name, from, to)
	}
}
