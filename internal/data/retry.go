package data

import (
	"context"
	"time"
)

// RetryPolicy is an explicit retry schedule for provider calls: a fixed
// number of attempts with a constant delay between them. The zero value
// performs a single attempt.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultRetryPolicy returns the retry schedule used for HTTP providers
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Delay:       2 * time.Second,
	}
}

// Do runs fn up to MaxAttempts times, sleeping Delay between attempts.
// It returns the last error, or ctx.Err() if the context is cancelled
// while waiting.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.Delay):
		}
	}
	return err
}
