package provider

import (
	"context"

	"github.com/bregydoc/gtranslate"

	"github.com/ZaguanLabs/pugtl"
)

const googleName = "google"

// GoogleConfig holds configuration for the Google Translate provider.
type GoogleConfig struct {
	Tries int // Attempts per text inside gtranslate (default: 1)
}

// GoogleProvider implements Provider using the free Google Translate web
// endpoint. It needs no API key and translates one text per request.
type GoogleProvider struct {
	tries     int
	translate func(text string, params gtranslate.TranslationParams) (string, error)
}

// NewGoogleProvider creates a new Google Translate provider.
func NewGoogleProvider(cfg GoogleConfig) *GoogleProvider {
	tries := cfg.Tries
	if tries <= 0 {
		tries = 1
	}
	return &GoogleProvider{
		tries:     tries,
		translate: gtranslate.TranslateWithParams,
	}
}

// Translate translates each text in turn. The context is checked between
// texts since gtranslate does not take one.
func (p *GoogleProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	params := gtranslate.TranslationParams{
		From:  orDefault(req.SourceLang, pugtl.SourceLang),
		To:    orDefault(req.TargetLang, pugtl.TargetLang),
		Tries: p.tries,
	}

	results := make([]string, len(req.Texts))
	for i, text := range req.Texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		translated, err := p.translate(text, params)
		if err != nil {
			return nil, &pugtl.ProviderError{
				Provider:  googleName,
				Message:   "translate request failed",
				Cause:     err,
				Retryable: isRetryableError(err),
			}
		}
		results[i] = translated
	}
	return results, nil
}

// Verify GoogleProvider implements Provider
var _ Provider = (*GoogleProvider)(nil)
