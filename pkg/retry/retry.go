// Package retry provides a bounded retry policy for calls to external
// collaborators (transcription, analysis, asset lookups).
package retry

import (
	"context"
	"time"
)

// Policy describes how many times an operation is attempted and how long to
// wait between attempts. The zero value never retries.
type Policy struct {
	MaxAttempts int
	Initial     time.Duration
	Factor      float64
	RetryIf     func(error) bool // nil means every error is retryable
}

// Default returns the policy used for transient network failures:
// 3 attempts with 500ms initial backoff, doubling each attempt.
func Default() Policy {
	return Policy{
		MaxAttempts: 3,
		Initial:     500 * time.Millisecond,
		Factor:      2,
	}
}

// Do runs op until it succeeds, attempts are exhausted, or ctx is done.
// The last error is returned.
func (p Policy) Do(ctx context.Context, op func(context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := p.Initial

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = ctx.Err(); err != nil {
			return err
		}

		if err = op(ctx); err == nil {
			return nil
		}
		if p.RetryIf != nil && !p.RetryIf(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if p.Factor > 1 {
			backoff = time.Duration(float64(backoff) * p.Factor)
		}
	}
	return err
}
