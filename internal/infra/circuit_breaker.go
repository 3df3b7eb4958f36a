package infra

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned without calling the wrapped function while the
// breaker is tripped.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type breakerState int

const (
	stateClosed  breakerState = iota // requests flow
	stateOpen                        // fast-fail everything
	stateProbing                     // letting single requests through to test recovery
)

func (s breakerState) String() string {
	switch s {
	case stateClosed:
		return "closed"
	case stateOpen:
		return "open"
	case stateProbing:
		return "half-open"
	}
	return "unknown"
}

// CircuitBreakerConfig tunes when the breaker trips and recovers.
type CircuitBreakerConfig struct {
	FailureThreshold int           // consecutive failures before tripping
	SuccessThreshold int           // consecutive probe successes before closing again
	OpenTimeout      time.Duration // how long to fast-fail before probing
}

// DefaultCBConfig is tuned for the SMTP relay: trip after five straight
// failures, hold off for a minute, close again after two good sends.
func DefaultCBConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{FailureThreshold: 5, SuccessThreshold: 2, OpenTimeout: time.Minute}
}

// CircuitBreaker keeps a flaky downstream (the SMTP relay) from tying up the
// worker pool: after enough consecutive failures it fails fast until a probe
// succeeds.
type CircuitBreaker struct {
	cfg CircuitBreakerConfig

	mu        sync.Mutex
	state     breakerState
	failures  int
	successes int
	trippedAt time.Time
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 2
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = time.Minute
	}
	return &CircuitBreaker{cfg: cfg}
}

// Execute runs fn unless the breaker is open. The result of fn feeds the
// state machine.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.allow() {
		return ErrCircuitOpen
	}
	err := fn()
	cb.record(err)
	return err
}

// State names the current state for logs and health output.
func (cb *CircuitBreaker) State() string {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.maybeProbe()
	return cb.state.String()
}

func (cb *CircuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.maybeProbe()
	return cb.state != stateOpen
}

// maybeProbe moves open → half-open once the timeout has elapsed.
// Callers must hold mu.
func (cb *CircuitBreaker) maybeProbe() {
	if cb.state == stateOpen && time.Since(cb.trippedAt) >= cb.cfg.OpenTimeout {
		cb.state = stateProbing
		cb.successes = 0
	}
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.failures++
		cb.trippedAt = time.Now()
		switch cb.state {
		case stateClosed:
			if cb.failures >= cb.cfg.FailureThreshold {
				cb.state = stateOpen
				cb.successes = 0
			}
		case stateProbing:
			// Probe failed; back to fast-fail for another timeout window.
			cb.state = stateOpen
			cb.failures = 0
		}
		return
	}

	switch cb.state {
	case stateClosed:
		cb.failures = 0
	case stateProbing:
		cb.successes++
		if cb.successes >= cb.cfg.SuccessThreshold {
			cb.state = stateClosed
			cb.failures = 0
			cb.successes = 0
		}
	}
}
