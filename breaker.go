package pugtl

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// BreakerConfig configures the circuit breaker around a provider.
type BreakerConfig struct {
	MaxFailures uint32        // Consecutive failures that open the breaker (default: 5)
	OpenTimeout time.Duration // Time the breaker stays open before probing (default: 30s)
	Logger      zerolog.Logger
}

// BreakerProvider stops calling a provider that keeps failing. While the
// breaker is open every call fails fast, so spans fall back to their
// original text without waiting on the backend.
type BreakerProvider struct {
	provider Provider
	cb       *gobreaker.CircuitBreaker
}

// NewBreakerProvider wraps provider with a circuit breaker.
func NewBreakerProvider(provider Provider, cfg BreakerConfig) *BreakerProvider {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	timeout := cfg.OpenTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	logger := cfg.Logger
	settings := gobreaker.Settings{
		Name:        "translation-provider",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			// a cancelled run says nothing about the backend
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	}

	return &BreakerProvider{
		provider: provider,
		cb:       gobreaker.NewCircuitBreaker(settings),
	}
}

// Translate implements Provider.
func (p *BreakerProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	result, err := p.cb.Execute(func() (interface{}, error) {
		return p.provider.Translate(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &ProviderError{
				Message:   "backend disabled after repeated failures",
				Cause:     err,
				Retryable: false,
			}
		}
		return nil, err
	}
	return result.([]string), nil
}

// State returns the breaker state ("closed", "half-open" or "open").
func (p *BreakerProvider) State() string {
	return p.cb.State().String()
}
