package pugtl

import (
	"context"
	"strings"
	"sync"
	"unicode"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"
	"golang.org/x/sync/singleflight"
)

// Provider is the interface for translation backends.
type Provider interface {
	Translate(ctx context.Context, req TranslateRequest) ([]string, error)
}

// TranslateRequest contains the parameters for a translation request.
type TranslateRequest struct {
	Texts         []string
	SourceLang    string
	TargetLang    string
	TextContexts  []string
	ExcludedTerms []string
	Context       string
}

// TranslationCache is the interface for translation caching.
type TranslationCache interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
}

// SpanTranslator translates candidate spans found by a processor.
type SpanTranslator interface {
	TranslateSpan(ctx context.Context, span Span) (string, Outcome)
}

// ContentProcessor rewrites one kind of content, handing every candidate
// span to a SpanTranslator.
type ContentProcessor interface {
	Rewrite(ctx context.Context, content string, tr SpanTranslator) (string, Stats, error)
	ContentType() string
}

// Translator is the main translation engine.
type Translator struct {
	provider      Provider
	cache         TranslationCache
	heuristic     *Heuristic
	processors    map[string]ContentProcessor
	excludedTerms []string
	context       string
	dryRun        bool
	logger        zerolog.Logger

	inflight singleflight.Group
	mu       sync.RWMutex
	failed   map[string]bool
}

// TranslatorOption is a functional option for configuring the Translator.
type TranslatorOption func(*Translator)

// WithCache sets the translation cache.
func WithCache(cache TranslationCache) TranslatorOption {
	return func(t *Translator) {
		t.cache = cache
	}
}

// WithHeuristic sets the Spanish detection heuristic.
func WithHeuristic(h *Heuristic) TranslatorOption {
	return func(t *Translator) {
		t.heuristic = h
	}
}

// WithProcessor registers a content processor.
func WithProcessor(processor ContentProcessor) TranslatorOption {
	return func(t *Translator) {
		t.processors[processor.ContentType()] = processor
	}
}

// WithExcludedTerms sets terms that should not be translated.
func WithExcludedTerms(terms []string) TranslatorOption {
	return func(t *Translator) {
		t.excludedTerms = terms
	}
}

// WithContext sets the global translation context passed to LLM backends.
func WithContext(ctx string) TranslatorOption {
	return func(t *Translator) {
		t.context = ctx
	}
}

// WithDryRun makes the translator report candidates instead of translating.
func WithDryRun(enabled bool) TranslatorOption {
	return func(t *Translator) {
		t.dryRun = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) TranslatorOption {
	return func(t *Translator) {
		t.logger = logger
	}
}

// NewTranslator creates a new Translator backed by provider.
func NewTranslator(provider Provider, opts ...TranslatorOption) *Translator {
	t := &Translator{
		provider:   provider,
		processors: make(map[string]ContentProcessor),
		logger:     zerolog.Nop(),
		failed:     make(map[string]bool),
	}

	for _, opt := range opts {
		opt(t)
	}

	if t.heuristic == nil {
		t.heuristic = NewHeuristic(nil)
	}

	return t
}

// Process rewrites content of the specified type.
func (t *Translator) Process(ctx context.Context, content string, contentType string) (*ProcessedContent, error) {
	processor, ok := t.processors[contentType]
	if !ok {
		return nil, &ProcessorError{
			Message:     "no processor registered for content type",
			ContentType: contentType,
		}
	}

	result, stats, err := processor.Rewrite(ctx, content, t)
	if err != nil {
		return nil, err
	}

	return &ProcessedContent{
		Content: result,
		Changed: result != content,
		Stats:   stats,
	}, nil
}

// HasProcessor reports whether a processor is registered for contentType.
func (t *Translator) HasProcessor(contentType string) bool {
	_, ok := t.processors[contentType]
	return ok
}

// DryRun reports whether the translator only collects candidates.
func (t *Translator) DryRun() bool {
	return t.dryRun
}

// TranslateSpan implements SpanTranslator. Spans that fail to translate are
// returned unchanged.
func (t *Translator) TranslateSpan(ctx context.Context, span Span) (string, Outcome) {
	if strings.TrimSpace(span.Text) == "" {
		return span.Text, OutcomeSkipped
	}

	text := UnescapeEntities(span.Text)
	if span.Force {
		if !strings.ContainsFunc(text, unicode.IsLetter) {
			return span.Text, OutcomeSkipped
		}
	} else if !t.heuristic.NeedsTranslation(text) {
		return span.Text, OutcomeSkipped
	}

	if t.dryRun {
		return span.Text, OutcomeCandidate
	}

	translated, outcome := t.translate(ctx, text, span)
	if outcome == OutcomeFailed {
		return span.Text, outcome
	}
	return translated, outcome
}

// translate translates the trimmed core of text and puts the surrounding
// whitespace back.
func (t *Translator) translate(ctx context.Context, text string, span Span) (string, Outcome) {
	normalized := strings.TrimSpace(text)
	prefix := text[:len(text)-len(strings.TrimLeftFunc(text, unicode.IsSpace))]
	suffix := text[len(strings.TrimRightFunc(text, unicode.IsSpace)):]

	key := CacheKey(HashText(normalized))

	if t.cache != nil {
		if cached, ok := t.cache.Get(key); ok {
			return prefix + RestoreEntities(cached) + suffix, OutcomeCached
		}
	}

	t.mu.RLock()
	failed := t.failed[key]
	t.mu.RUnlock()
	if failed {
		return text, OutcomeFailed
	}

	v, err, _ := t.inflight.Do(key, func() (interface{}, error) {
		return t.callProvider(ctx, normalized, span)
	})
	if err != nil {
		t.mu.Lock()
		t.failed[key] = true
		t.mu.Unlock()

		t.logger.Debug().
			Err(err).
			Int("line", span.Line).
			Str("kind", string(span.Kind)).
			Str("text", normalized).
			Msg("translation failed, keeping original")
		return text, OutcomeFailed
	}

	translated := v.(string)
	if t.cache != nil {
		if err := t.cache.Set(key, translated); err != nil {
			t.logger.Warn().Err(err).Msg("cache write failed")
		}
	}

	return prefix + RestoreEntities(translated) + suffix, OutcomeTranslated
}

func (t *Translator) callProvider(ctx context.Context, text string, span Span) (string, error) {
	if t.provider == nil {
		return "", &ProviderError{Message: "no provider configured"}
	}

	results, err := t.provider.Translate(ctx, TranslateRequest{
		Texts:         []string{text},
		SourceLang:    SourceLang,
		TargetLang:    TargetLang,
		TextContexts:  []string{describeSpan(span)},
		ExcludedTerms: t.excludedTerms,
		Context:       t.context,
	})
	if err != nil {
		return "", &TranslationError{Text: text, Cause: err}
	}

	if len(results) != 1 {
		return "", &TranslationError{
			Text:  text,
			Cause: &CountMismatchError{Expected: 1, Got: len(results)},
		}
	}

	translated := strings.TrimSpace(results[0])
	if translated == "" {
		return "", &TranslationError{Text: text, Cause: ErrEmptyTranslation}
	}

	return translated, nil
}

// describeSpan builds the disambiguation hint sent along with a text.
func describeSpan(span Span) string {
	switch span.Kind {
	case SpanTextNode:
		return "text line of a Pug template"
	case SpanTagText:
		return "text content of a Pug element"
	case SpanAttribute:
		return "value of the " + span.Attr + " attribute"
	case SpanLiteral:
		return "string literal in template code"
	case SpanTemplateLiteral:
		return "JavaScript template string"
	case SpanHTMLText:
		return "text content of an HTML element"
	}
	return ""
}

// UnescapeEntities decodes HTML character references such as &aacute;.
func UnescapeEntities(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return html.UnescapeString(s)
}

// RestoreEntities re-escapes characters that templates keep as entities.
func RestoreEntities(s string) string {
	return strings.ReplaceAll(s, "©", "&copy;")
}
