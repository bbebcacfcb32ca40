package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"

	"github.com/LionGab/lyla-erl/pkg/logging"
)

var testLogger = logging.New("error")

func fastPolicy() retryPolicy {
	return retryPolicy{maxAttempts: 3, baseDelay: time.Millisecond, timeout: time.Second}
}

func TestWithRetrySucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), fastPolicy(), testLogger, func(ctx context.Context) error {
		calls++
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetryRecoversFromTransient(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), fastPolicy(), testLogger, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection reset")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	wantErr := &googleapi.Error{Code: 503}
	err := withRetry(context.Background(), fastPolicy(), testLogger, func(ctx context.Context) error {
		calls++
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 3, calls)
}

func TestWithRetryFailsFastOnNonRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"validation", ErrNoContent},
		{"auth", &googleapi.Error{Code: 401}},
		{"quota", &googleapi.Error{Code: 429}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := withRetry(context.Background(), fastPolicy(), testLogger, func(ctx context.Context) error {
				calls++
				return tt.err
			})
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, 1, calls)
		})
	}
}

func TestWithRetryStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := withRetry(ctx, retryPolicy{maxAttempts: 5, baseDelay: time.Minute, timeout: time.Second}, testLogger, func(ctx context.Context) error {
		calls++
		cancel()
		return errors.New("connection refused")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
