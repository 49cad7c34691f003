package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZaguanLabs/pugtl"
)

func TestGeminiProvider_Translate(t *testing.T) {
	var gotSystem, gotUser string
	p := &GeminiProvider{
		model: "test",
		generate: func(ctx context.Context, system, user string) (string, error) {
			gotSystem, gotUser = system, user
			return `{"translations": ["Gallery"]}`, nil
		},
	}

	result, err := p.Translate(context.Background(), TranslateRequest{Texts: []string{"Galería"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Gallery"}, result)
	assert.Contains(t, gotSystem, "Spanish")
	assert.Equal(t, `["Galería"]`, gotUser)
}

func TestGeminiProvider_Errors(t *testing.T) {
	tests := []struct {
		name      string
		reply     string
		err       error
		retryable bool
	}{
		{"api error", "", errors.New("Error 429, RESOURCE_EXHAUSTED"), true},
		{"permission", "", errors.New("API key not valid"), false},
		{"empty reply", "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &GeminiProvider{
				generate: func(ctx context.Context, system, user string) (string, error) {
					return tt.reply, tt.err
				},
			}

			_, err := p.Translate(context.Background(), TranslateRequest{Texts: []string{"Hola"}})

			var provErr *pugtl.ProviderError
			require.ErrorAs(t, err, &provErr)
			assert.Equal(t, "gemini", provErr.Provider)
			assert.Equal(t, tt.retryable, provErr.Retryable)
		})
	}
}
