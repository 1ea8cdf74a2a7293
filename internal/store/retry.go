package store

import (
	"context"
	"errors"
	"time"
)

// RetryPolicy wraps a single executor call with bounded, linear backoff.
// Only transient-backend failures are retried: connectivity failures belong
// to the router and permanent failures to the caller. The worst case blocks
// for sum(BaseDelay*n) for n in 1..MaxAttempts, so callers must treat a
// wrapped call as potentially multi-second and surface a loading state.
type RetryPolicy struct {
	MaxAttempts int           // retries after the initial attempt
	BaseDelay   time.Duration // delay before retry n is BaseDelay*n
}

// Do runs fn up to MaxAttempts+1 times. The final error is returned
// untransformed. A context cancellation aborts the sequence mid-backoff
// rather than completing the remaining scheduled attempts.
func (p RetryPolicy) Do(ctx context.Context, path string, fn func(context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt <= p.MaxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, p.BaseDelay*time.Duration(attempt)); err != nil {
				return lastErr
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, context.Canceled) {
			return lastErr
		}
		if Classify(path, lastErr).Kind != ClassTransient {
			return lastErr
		}
	}

	return lastErr
}

// sleepCtx waits for d or until ctx is done, whichever comes first
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
