package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZaguanLabs/pugtl"
)

func newOpenAIServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			w.Write([]byte(`{"error":{"message":"rate limit reached","type":"requests"}}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]string{"role": "assistant", "content": content},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIProvider_Translate(t *testing.T) {
	srv := newOpenAIServer(t, http.StatusOK, `{"translations": ["Hello", "Sign in"]}`)
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test", BaseURL: srv.URL})

	result, err := p.Translate(context.Background(), TranslateRequest{
		Texts: []string{"Hola", "Iniciar sesión"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello", "Sign in"}, result)
}

func TestOpenAIProvider_RateLimited(t *testing.T) {
	srv := newOpenAIServer(t, http.StatusTooManyRequests, "")
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test", BaseURL: srv.URL})

	_, err := p.Translate(context.Background(), TranslateRequest{Texts: []string{"Hola"}})

	var provErr *pugtl.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "openai", provErr.Provider)
	assert.True(t, provErr.Retryable)
}

func TestOpenAIProvider_EmptyBatch(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test", BaseURL: "http://127.0.0.1:0"})

	result, err := p.Translate(context.Background(), TranslateRequest{})
	assert.NoError(t, err)
	assert.Empty(t, result)
}
