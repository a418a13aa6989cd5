package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Options configures exponential backoff for retries.
type Options struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       bool
}

// Default backoff settings used when opts are zero/invalid.
var Default = Options{
	MaxAttempts:  5,
	InitialDelay: 300 * time.Millisecond,
	MaxDelay:     8 * time.Second,
	Multiplier:   2.0,
	Jitter:       true,
}

type IsRetryableFunc func(error) bool

// jitterFactor gives +/-20% around each delay.
const jitterFactor = 0.2

func (o Options) backOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = o.InitialDelay
	eb.MaxInterval = o.MaxDelay
	eb.Multiplier = o.Multiplier
	eb.MaxElapsedTime = 0
	eb.RandomizationFactor = 0
	if o.Jitter {
		eb.RandomizationFactor = jitterFactor
	}
	eb.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(o.MaxAttempts-1)), ctx)
}

// Do executes fn with retries and exponential backoff until it succeeds,
// context is done, or attempts are exhausted. Returns the last error.
func Do(ctx context.Context, opts Options, isRetryable IsRetryableFunc, fn func(context.Context) error) error {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = Default.MaxAttempts
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = Default.InitialDelay
	}
	if opts.Multiplier < 1 {
		opts.Multiplier = Default.Multiplier
	}
	if opts.MaxDelay < opts.InitialDelay {
		opts.MaxDelay = opts.InitialDelay
	}

	op := func() error {
		err := fn(ctx)
		if err != nil && isRetryable != nil && !isRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	return backoff.Retry(op, opts.backOff(ctx))
}
