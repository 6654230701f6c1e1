// Package retry provides a small retry policy with exponential backoff,
// designed for the portal API transport. The timing math is a pure function
// of the attempt index so it can be unit tested without real timers.
// No external dependencies - uses only standard library.
package retry

import (
	"context"
	"time"
)

// DefaultBaseDelay is the delay before the first retry. Attempt n waits
// 2^n * DefaultBaseDelay, uncapped.
const DefaultBaseDelay = time.Second

// Policy controls how an operation is retried.
type Policy struct {
	// MaxRetries is the number of additional attempts after the first.
	// Zero means the operation runs exactly once.
	MaxRetries int

	// BaseDelay is the unit of the exponential backoff.
	// Defaults to DefaultBaseDelay when zero.
	BaseDelay time.Duration

	// RetryIf decides whether a failed attempt may be retried.
	// A nil RetryIf retries every failure.
	RetryIf func(error) bool

	// Sleep waits between attempts. Defaults to a context-aware
	// time.After wait; tests replace it to observe the delay sequence.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Policy.
type Option func(*Policy)

// WithMaxRetries sets the number of additional attempts.
func WithMaxRetries(n int) Option {
	return func(p *Policy) {
		if n >= 0 {
			p.MaxRetries = n
		}
	}
}

// WithBaseDelay sets the backoff unit.
func WithBaseDelay(d time.Duration) Option {
	return func(p *Policy) {
		if d > 0 {
			p.BaseDelay = d
		}
	}
}

// WithRetryIf sets the retry classifier.
func WithRetryIf(fn func(error) bool) Option {
	return func(p *Policy) {
		p.RetryIf = fn
	}
}

// WithSleep replaces the inter-attempt wait. Intended for tests.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(p *Policy) {
		p.Sleep = fn
	}
}

// New builds a Policy from options.
func New(opts ...Option) Policy {
	p := Policy{BaseDelay: DefaultBaseDelay}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// Delay returns the backoff before retrying after attempt (zero-based):
// 2^attempt * BaseDelay. The growth is deliberately uncapped; MaxRetries
// bounds the total wait.
func (p Policy) Delay(attempt int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = DefaultBaseDelay
	}
	return base << uint(attempt)
}

// Do runs the operation, retrying failures the classifier allows. Attempts
// are strictly sequential; between attempt n and n+1 the policy waits
// Delay(n). The error from the final attempt is returned unchanged.
func (p Policy) Do(ctx context.Context, operation func(ctx context.Context) error) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, p.Delay(attempt-1)); err != nil {
				return lastErr
			}
		}

		err := operation(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if p.RetryIf != nil && !p.RetryIf(err) {
			return err
		}
	}
	return lastErr
}

// DoWithData is Do for operations that return a value.
func DoWithData[T any](ctx context.Context, p Policy, operation func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := p.Do(ctx, func(ctx context.Context) error {
		var opErr error
		result, opErr = operation(ctx)
		return opErr
	})
	return result, err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
