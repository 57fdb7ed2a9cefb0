// Package retry runs an operation with bounded exponential backoff.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Config defines retry behavior with exponential backoff.
type Config struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	// JitterFactor randomizes each delay by +/- the given fraction.
	JitterFactor float64
}

// DefaultConfig returns defaults for identity graph transactions:
// 5 attempts, 50ms initial delay doubling up to 2s, 20% jitter.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:     5,
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		Multiplier:      2.0,
		JitterFactor:    0.2,
	}
}

// Policy decides whether an error is worth another attempt.
type Policy func(err error) bool

// Do executes fn until it succeeds, returns an error the policy rejects, or
// the attempt budget runs out. The last error is returned. onRetry, when
// non-nil, is called before each wait.
func Do(ctx context.Context, cfg Config, retryable Policy, onRetry func(err error, wait time.Duration), fn func(ctx context.Context) error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}

	op := func() error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if retryable != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	var notify backoff.Notify
	if onRetry != nil {
		notify = func(err error, wait time.Duration) { onRetry(err, wait) }
	}
	return backoff.RetryNotify(op, newBackOff(ctx, cfg), notify)
}

func newBackOff(ctx context.Context, cfg Config) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	if cfg.InitialInterval > 0 {
		exp.InitialInterval = cfg.InitialInterval
	}
	if cfg.MaxInterval > 0 {
		exp.MaxInterval = cfg.MaxInterval
	}
	if cfg.Multiplier > 1 {
		exp.Multiplier = cfg.Multiplier
	}
	exp.RandomizationFactor = cfg.JitterFactor
	exp.MaxElapsedTime = 0
	exp.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(cfg.MaxAttempts-1)), ctx)
}
