package pugtl

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingProvider struct {
	calls int
	err   error
}

func (p *failingProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return []string{"Hello"}, nil
}

func TestBreakerProvider_OpensAfterFailures(t *testing.T) {
	inner := &failingProvider{err: errors.New("503 service unavailable")}
	p := NewBreakerProvider(inner, BreakerConfig{MaxFailures: 2, OpenTimeout: time.Minute})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := p.Translate(ctx, TranslateRequest{Texts: []string{"Hola"}})
		require.Error(t, err, "call %d", i)
	}
	require.Equal(t, "open", p.State())

	_, err := p.Translate(ctx, TranslateRequest{Texts: []string{"Hola"}})
	var providerErr *ProviderError
	assert.ErrorAs(t, err, &providerErr)
	assert.Equal(t, 2, inner.calls, "open breaker should not reach the provider")
}

func TestBreakerProvider_HalfOpenRecovers(t *testing.T) {
	inner := &failingProvider{err: errors.New("timeout")}
	p := NewBreakerProvider(inner, BreakerConfig{MaxFailures: 1, OpenTimeout: 20 * time.Millisecond})
	ctx := context.Background()

	_, _ = p.Translate(ctx, TranslateRequest{Texts: []string{"Hola"}})
	require.Equal(t, "open", p.State())

	time.Sleep(40 * time.Millisecond)
	inner.err = nil

	result, err := p.Translate(ctx, TranslateRequest{Texts: []string{"Hola"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello"}, result)
	assert.Equal(t, "closed", p.State())
}
