// Package circuitbreaker wraps sony/gobreaker with typed results and
// application error codes.
package circuitbreaker

import (
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/fd1az/balancer-connector/internal/apperror"
)

// Config configures a breaker.
type Config struct {
	Name string
	// MaxRequests allowed through while half-open.
	MaxRequests uint32
	// Interval clears counts while closed. Zero never clears.
	Interval time.Duration
	// Timeout before an open breaker goes half-open.
	Timeout time.Duration
	// ConsecutiveFailures that trip the breaker.
	ConsecutiveFailures uint32
	OnStateChange       func(name string, from, to gobreaker.State)
	// IsSuccessful decides whether an error counts as a failure.
	IsSuccessful func(err error) bool
}

// DefaultConfig returns settings suited to RPC and HTTP upstreams.
func DefaultConfig(name string) Config {
	return Config{
		Name:                name,
		MaxRequests:         1,
		Interval:            60 * time.Second,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// CircuitBreaker guards calls returning T.
type CircuitBreaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

// New creates a breaker from cfg.
func New[T any](cfg Config) *CircuitBreaker[T] {
	threshold := cfg.ConsecutiveFailures
	if threshold == 0 {
		threshold = 5
	}
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: cfg.OnStateChange,
		IsSuccessful:  cfg.IsSuccessful,
	}
	return &CircuitBreaker[T]{cb: gobreaker.NewCircuitBreaker[T](settings)}
}

// Execute runs fn unless the breaker is open. Rejections come back as
// CIRCUIT_OPEN; errors from fn are returned unchanged.
func (c *CircuitBreaker[T]) Execute(fn func() (T, error)) (T, error) {
	res, err := c.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		var zero T
		return zero, apperror.New(apperror.CodeCircuitOpen,
			apperror.WithContext(c.cb.Name()),
			apperror.WithCause(err))
	}
	return res, err
}

// State returns the current breaker state.
func (c *CircuitBreaker[T]) State() gobreaker.State {
	return c.cb.State()
}

// Name returns the breaker name.
func (c *CircuitBreaker[T]) Name() string {
	return c.cb.Name()
}
