package provider

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider is a map-driven provider for testing and dry wiring.
type MockProvider struct {
	Translations map[string]string // Map of source text to translation
	Err          error             // Returned by every call when set
	CallCount    int               // Number of times Translate was called
	LastRequest  *TranslateRequest // Last request received

	mu sync.Mutex
}

// NewMockProvider creates a new mock provider with default translations.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]string{
			"Hola":               "Hello",
			"Hola mundo":         "Hello world",
			"Iniciar sesión":     "Sign in",
			"Cerrar sesión":      "Sign out",
			"Galería":            "Gallery",
			"Buscar obras":       "Search works",
			"Artistas":           "Artists",
			"Bienvenido":         "Welcome",
			"Guardar cambios":    "Save changes",
			"Correo electrónico": "Email",
		},
	}
}

// Translate returns mock translations.
func (m *MockProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount++
	m.LastRequest = &req

	if m.Err != nil {
		return nil, m.Err
	}

	results := make([]string, len(req.Texts))
	for i, text := range req.Texts {
		if translation, ok := m.Translations[text]; ok {
			results[i] = translation
		} else {
			// Return bracketed text for unknown translations
			results[i] = fmt.Sprintf("[%s]", text)
		}
	}

	return results, nil
}

// Calls returns the number of Translate calls so far.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CallCount
}

// Reset resets the call count and last request.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount = 0
	m.LastRequest = nil
}

// Verify MockProvider implements Provider
var _ Provider = (*MockProvider)(nil)
