package retry

import (
	"context"
	"math/rand/v2"
	"time"
)

// Classifier decides whether an error is worth another attempt. A non-zero
// retryAfter overrides the backoff schedule for that attempt (Retry-After
// header and friends).
type Classifier func(err error) (retryable bool, retryAfter time.Duration)

// Policy is a provider-agnostic retry schedule: exponential backoff from
// BaseDelay, doubling per attempt, capped at MaxDelay, plus random jitter
// up to MaxJitter.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	MaxJitter   time.Duration
}

// Do runs op up to MaxAttempts times. Errors the classifier rejects are
// returned immediately; transient ones are retried after a backoff sleep.
// Cancelling the context aborts a pending sleep and returns ctx.Err().
func Do(ctx context.Context, p Policy, classify Classifier, op func(ctx context.Context) error) error {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		retryable, retryAfter := classify(lastErr)
		if !retryable || attempt == p.MaxAttempts-1 {
			return lastErr
		}

		delay := p.delayFor(attempt)
		if retryAfter > 0 {
			delay = retryAfter
		}
		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}
	return lastErr
}

func (p Policy) delayFor(attempt int) time.Duration {
	delay := p.BaseDelay << attempt
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	if p.MaxJitter > 0 {
		delay += rand.N(p.MaxJitter)
	}
	return delay
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
