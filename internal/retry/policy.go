// Package retry re-runs page operations aborted by a conflicting writer.
package retry

import (
	"context"
	"time"

	"git.home.luguber.info/inful/pagetree/internal/config"
	"git.home.luguber.info/inful/pagetree/internal/foundation/errors"
)

// Policy decides how often and how long to wait before re-running an
// operation that failed with a retryable error. The zero Policy never retries.
type Policy struct {
	Backoff   config.RetryBackoffMode
	BaseDelay time.Duration
	MaxDelay  time.Duration
	// Retries is the number of re-runs after the first attempt.
	Retries int
}

const (
	defaultBaseDelay = 50 * time.Millisecond
	defaultMaxDelay  = 2 * time.Second
	defaultRetries   = 3
)

// DefaultPolicy is used when the configuration leaves retry settings out.
func DefaultPolicy() Policy {
	return Policy{
		Backoff:   config.RetryBackoffExponential,
		BaseDelay: defaultBaseDelay,
		MaxDelay:  defaultMaxDelay,
		Retries:   defaultRetries,
	}
}

// FromConfig builds a policy from the retry section. Unparsable or
// non-positive delays keep their defaults and the base delay never
// exceeds the cap.
func FromConfig(rc config.RetryConfig) Policy {
	p := DefaultPolicy()
	if d, err := time.ParseDuration(rc.InitialDelay); err == nil && d > 0 {
		p.BaseDelay = d
	}
	if d, err := time.ParseDuration(rc.MaxDelay); err == nil && d > 0 {
		p.MaxDelay = d
	}
	if rc.MaxRetries >= 0 {
		p.Retries = rc.MaxRetries
	}
	if mode := config.NormalizeRetryBackoff(string(rc.Backoff)); mode != "" {
		p.Backoff = mode
	}
	p.BaseDelay = min(p.BaseDelay, p.MaxDelay)
	return p
}

// Delay returns the wait before retry n, counting from 1.
func (p Policy) Delay(n int) time.Duration {
	if n < 1 {
		return 0
	}
	var d time.Duration
	switch p.Backoff {
	case config.RetryBackoffFixed:
		d = p.BaseDelay
	case config.RetryBackoffLinear:
		d = p.BaseDelay * time.Duration(n)
	default:
		// Past 2^30 the shift overflows; the cap applies long before.
		if n > 30 {
			return p.MaxDelay
		}
		d = p.BaseDelay << (n - 1)
	}
	return min(d, p.MaxDelay)
}

// Do runs fn and re-runs it while it fails with a retryable classified
// error, at most p.Retries times. onRetry, when non-nil, sees the retry
// number and the error before each wait.
func Do(ctx context.Context, p Policy, fn func(context.Context) error, onRetry func(n int, err error)) error {
	err := fn(ctx)
	for n := 1; err != nil && n <= p.Retries && errors.IsRetryable(err); n++ {
		if onRetry != nil {
			onRetry(n, err)
		}
		wait := time.NewTimer(p.Delay(n))
		select {
		case <-ctx.Done():
			wait.Stop()
			return ctx.Err()
		case <-wait.C:
		}
		err = fn(ctx)
	}
	return err
}
