package pugtl

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// RetryConfig controls how often a backend call is repeated after a
// transient failure. The zero MaxRetries of DefaultRetryConfig means a
// failed span keeps its Spanish text at once; retries are opt-in.
type RetryConfig struct {
	MaxRetries int           // Extra attempts after the first call
	BaseDelay  time.Duration // Pause before the first retry, doubled each time
	MaxDelay   time.Duration // Upper bound for a single pause
	Logger     zerolog.Logger
}

// DefaultRetryConfig returns a config that never retries. Only the delays
// are filled in, for callers that raise MaxRetries.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		BaseDelay: 500 * time.Millisecond,
		MaxDelay:  10 * time.Second,
		Logger:    zerolog.Nop(),
	}
}

// backoff is the pause before retry number n (starting at 0).
func (c RetryConfig) backoff(n int) time.Duration {
	d := c.BaseDelay
	for i := 0; i < n && d < c.MaxDelay; i++ {
		d *= 2
	}
	if c.MaxDelay > 0 && d > c.MaxDelay {
		d = c.MaxDelay
	}
	return d
}

// RetryFunc is one attempt of a retried call.
type RetryFunc[T any] func() (T, error)

// WithRetry calls fn until it succeeds, fails with an error that is not
// retryable, or runs out of retries. The last error is returned as is so
// the caller can fall back to the source text.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn RetryFunc[T]) (T, error) {
	var zero T
	for n := 0; ; n++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn()
		switch {
		case err == nil:
			return result, nil
		case n >= cfg.MaxRetries || !IsRetryable(err):
			return zero, err
		}

		delay := cfg.backoff(n)
		cfg.Logger.Debug().Err(err).Int("retry", n+1).Dur("delay", delay).Msg("backend call failed, retrying")
		if err := sleep(ctx, delay); err != nil {
			return zero, err
		}
	}
}

// sleep pauses for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// IsRetryable reports whether err is a ProviderError marked retryable.
// Cancellation never is.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var providerErr *ProviderError
	return errors.As(err, &providerErr) && providerErr.Retryable
}

// RetryableProvider repeats failed batch requests of the wrapped provider.
type RetryableProvider struct {
	provider Provider
	config   RetryConfig
}

// NewRetryableProvider wraps provider with cfg's retry policy.
func NewRetryableProvider(provider Provider, cfg RetryConfig) *RetryableProvider {
	return &RetryableProvider{provider: provider, config: cfg}
}

// Translate implements Provider.
func (p *RetryableProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	return WithRetry(ctx, p.config, func() ([]string, error) {
		return p.provider.Translate(ctx, req)
	})
}
