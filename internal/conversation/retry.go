package conversation

import (
	"context"
	"time"

	"github.com/LionGab/lyla-erl/pkg/logging"
)

// retryPolicy bounds the retry envelope around LLM calls.
type retryPolicy struct {
	maxAttempts int
	baseDelay   time.Duration
	timeout     time.Duration
}

func (p retryPolicy) normalized() retryPolicy {
	if p.maxAttempts <= 0 {
		p.maxAttempts = 3
	}
	if p.baseDelay <= 0 {
		p.baseDelay = time.Second
	}
	if p.timeout <= 0 {
		p.timeout = 30 * time.Second
	}
	return p
}

// withRetry runs fn under a per-attempt timeout, retrying retryable failures
// with exponential backoff. Validation and auth/quota classes fail
// immediately.
func withRetry(ctx context.Context, policy retryPolicy, logger *logging.Logger, fn func(ctx context.Context) error) error {
	policy = policy.normalized()

	var lastErr error
	for attempt := 0; attempt < policy.maxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, policy.timeout)
		err := fn(attemptCtx)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err

		cat := Classify(err)
		if !cat.Retryable() {
			return err
		}
		if attempt == policy.maxAttempts-1 {
			break
		}

		delay := policy.baseDelay * time.Duration(1<<attempt)
		logger.Warn("llm call failed, retrying",
			"attempt", attempt+1,
			"max_attempts", policy.maxAttempts,
			"category", cat.String(),
			"delay_ms", delay.Milliseconds(),
			"error", err,
		)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}
