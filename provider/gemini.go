package provider

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/ZaguanLabs/pugtl"
)

const geminiName = "gemini"

// GeminiConfig holds configuration for the Gemini provider.
type GeminiConfig struct {
	APIKey      string  // Gemini API key
	Model       string  // Model to use (default: "gemini-2.5-flash")
	Temperature float32 // Temperature for generation (default: 0.2)
}

// GeminiProvider implements Provider using the Gemini API.
type GeminiProvider struct {
	model string

	// generate sends one system prompt and user message and returns the
	// model's text reply.
	generate func(ctx context.Context, system, user string) (string, error)
}

// NewGeminiProvider creates a Gemini provider.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.2
	}

	p := &GeminiProvider{model: model}
	p.generate = func(ctx context.Context, system, user string) (string, error) {
		resp, err := client.Models.GenerateContent(ctx, p.model, genai.Text(user), &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
			ResponseMIMEType:  "application/json",
			Temperature:       genai.Ptr(temperature),
		})
		if err != nil {
			return "", err
		}
		return resp.Text(), nil
	}
	return p, nil
}

// Translate translates a batch of texts using Gemini.
func (p *GeminiProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	if len(req.Texts) == 0 {
		return []string{}, nil
	}

	content, err := p.generate(ctx, buildSystemPrompt(req), buildUserMessage(req))
	if err != nil {
		return nil, &pugtl.ProviderError{
			Provider:  geminiName,
			Message:   "generate content failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}
	if content == "" {
		return nil, &pugtl.ProviderError{
			Provider:  geminiName,
			Message:   "empty response",
			Retryable: true,
		}
	}

	return parseResponse(geminiName, content, len(req.Texts))
}

// Verify GeminiProvider implements Provider
var _ Provider = (*GeminiProvider)(nil)
