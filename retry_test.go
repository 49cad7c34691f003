package pugtl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(n int) RetryConfig {
	return RetryConfig{
		MaxRetries: n,
		BaseDelay:  5 * time.Millisecond,
		MaxDelay:   20 * time.Millisecond,
	}
}

func TestWithRetry(t *testing.T) {
	tests := []struct {
		name      string
		retries   int
		failures  int
		retryable bool
		wantCalls int
		wantErr   bool
	}{
		{"success first call", 3, 0, true, 1, false},
		{"recovers after retryable failures", 3, 2, true, 3, false},
		{"gives up after max retries", 2, 10, true, 3, true},
		{"non-retryable stops at once", 3, 10, false, 1, true},
		{"no retries configured", 0, 10, true, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			result, err := WithRetry(context.Background(), fastRetry(tt.retries), func() (string, error) {
				calls++
				if calls <= tt.failures {
					return "", &ProviderError{Message: fmt.Sprintf("failure %d", calls), Retryable: tt.retryable}
				}
				return "Hello", nil
			})

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "Hello", result)
			}
			assert.Equal(t, tt.wantCalls, calls)
		})
	}
}

func TestWithRetry_LastErrorReturned(t *testing.T) {
	calls := 0
	_, err := WithRetry(context.Background(), fastRetry(1), func() (int, error) {
		calls++
		return 0, &ProviderError{Message: fmt.Sprintf("failure %d", calls), Retryable: true}
	})
	assert.EqualError(t, err, "provider error: failure 2")
}

func TestWithRetry_LogsRetries(t *testing.T) {
	var logs bytes.Buffer
	cfg := fastRetry(1)
	cfg.Logger = zerolog.New(&logs)

	_, _ = WithRetry(context.Background(), cfg, func() (string, error) {
		return "", &ProviderError{Message: "503", Retryable: true}
	})
	assert.Contains(t, logs.String(), `"retry":1`)
}

func TestWithRetry_ContextCanceled(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 3, BaseDelay: time.Second, MaxDelay: 10 * time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	_, err := WithRetry(ctx, cfg, func() (string, error) {
		return "", &ProviderError{Message: "rate limited", Retryable: true}
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryConfig_Backoff(t *testing.T) {
	cfg := RetryConfig{BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second}

	assert.Equal(t, 100*time.Millisecond, cfg.backoff(0))
	assert.Equal(t, 200*time.Millisecond, cfg.backoff(1))
	assert.Equal(t, 800*time.Millisecond, cfg.backoff(3))
	assert.Equal(t, time.Second, cfg.backoff(4))
	assert.Equal(t, time.Second, cfg.backoff(60))
	assert.Zero(t, RetryConfig{}.backoff(3))
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"retryable provider error", &ProviderError{Retryable: true}, true},
		{"wrapped retryable", &TranslationError{Text: "x", Cause: &ProviderError{Retryable: true}}, true},
		{"non-retryable provider error", &ProviderError{Retryable: false}, false},
		{"generic error", errors.New("some error"), false},
		{"context canceled", context.Canceled, false},
		{"context deadline", context.DeadlineExceeded, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsRetryable(tt.err))
		})
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()
	assert.Zero(t, cfg.MaxRetries, "retries are opt-in")
	assert.Positive(t, cfg.BaseDelay)
	assert.GreaterOrEqual(t, cfg.MaxDelay, cfg.BaseDelay)
}

type flakyProvider struct {
	failCount int
	callCount int
}

func (p *flakyProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	p.callCount++
	if p.callCount <= p.failCount {
		return nil, &ProviderError{Message: "temporary failure", Retryable: true}
	}
	return []string{"Hello"}, nil
}

func TestRetryableProvider(t *testing.T) {
	inner := &flakyProvider{failCount: 2}
	p := NewRetryableProvider(inner, fastRetry(3))

	result, err := p.Translate(context.Background(), TranslateRequest{Texts: []string{"Hola"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello"}, result)
	assert.Equal(t, 3, inner.callCount)
}
