// Package circuitbreaker guards calls to flaky downstreams, used here for
// broker publishes so a dead Redis fails fast instead of stalling request
// handlers.
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned while the breaker is refusing calls.
var ErrOpen = errors.New("circuit breaker is open")

type state int

const (
	stateClosed state = iota
	stateOpen
	stateHalfOpen
)

type Settings struct {
	Name string
	// MaxFailures consecutive failures trip the breaker.
	MaxFailures int
	// Interval without failures after which the failure count resets.
	Interval time.Duration
	// Timeout the breaker stays open before probing with one call.
	Timeout time.Duration
}

type CircuitBreaker struct {
	settings Settings

	mu          sync.Mutex
	state       state
	failures    int
	lastFailure time.Time
}

func New(settings Settings) *CircuitBreaker {
	if settings.MaxFailures <= 0 {
		settings.MaxFailures = 5
	}
	if settings.Timeout <= 0 {
		settings.Timeout = 30 * time.Second
	}
	return &CircuitBreaker{settings: settings}
}

// Execute runs fn unless the breaker is open. The first call after the
// open timeout goes through as a probe; its outcome decides whether the
// breaker closes again.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.before(); err != nil {
		return err
	}
	return cb.after(fn())
}

func (cb *CircuitBreaker) before() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case stateOpen:
		if time.Since(cb.lastFailure) < cb.settings.Timeout {
			return ErrOpen
		}
		cb.state = stateHalfOpen
	case stateClosed:
		if cb.settings.Interval > 0 && cb.failures > 0 &&
			time.Since(cb.lastFailure) > cb.settings.Interval {
			cb.failures = 0
		}
	}
	return nil
}

func (cb *CircuitBreaker) after(err error) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.failures++
		cb.lastFailure = time.Now()
		if cb.state == stateHalfOpen || cb.failures >= cb.settings.MaxFailures {
			cb.state = stateOpen
		}
		return err
	}

	cb.state = stateClosed
	cb.failures = 0
	return nil
}
