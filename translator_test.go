package pugtl

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProvider is a map-driven provider for tests.
type mockProvider struct {
	mu           sync.Mutex
	translations map[string]string
	err          error
	calls        int
	lastRequest  TranslateRequest
}

func newMockProvider() *mockProvider {
	return &mockProvider{
		translations: map[string]string{
			"Hola":                 "Hello",
			"Hola mundo":           "Hello world",
			"Iniciar sesión":       "Sign in",
			"Galería":              "Gallery",
			"© 2024 Galería Norte": "© 2024 North Gallery",
			"Artistas y obras":     "Artists and works",
		},
	}
}

func (m *mockProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	m.lastRequest = req
	if m.err != nil {
		return nil, m.err
	}

	results := make([]string, len(req.Texts))
	for i, text := range req.Texts {
		if translation, ok := m.translations[text]; ok {
			results[i] = translation
		} else {
			results[i] = "[" + text + "]"
		}
	}
	return results, nil
}

// mapCache is a simple cache for tests.
type mapCache struct {
	data map[string]string
	err  error
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string]string)}
}

func (c *mapCache) Get(key string) (string, bool) {
	val, ok := c.data[key]
	return val, ok
}

func (c *mapCache) Set(key string, value string) error {
	if c.err != nil {
		return c.err
	}
	c.data[key] = value
	return nil
}

func TestTranslator_TranslateSpan(t *testing.T) {
	tests := []struct {
		name    string
		span    Span
		want    string
		outcome Outcome
	}{
		{"plain spanish", Span{Text: "Hola mundo"}, "Hello world", OutcomeTranslated},
		{"keeps surrounding whitespace", Span{Text: "  Iniciar sesión\t"}, "  Sign in\t", OutcomeTranslated},
		{"english left alone", Span{Text: "home"}, "home", OutcomeSkipped},
		{"blank", Span{Text: "   "}, "   ", OutcomeSkipped},
		{"entities unescaped first", Span{Text: "Galer&iacute;a"}, "Gallery", OutcomeTranslated},
		{"copyright re-escaped", Span{Text: "&copy; 2024 Galería Norte"}, "&copy; 2024 North Gallery", OutcomeTranslated},
		{"forced skips heuristic", Span{Text: "home", Force: true}, "[home]", OutcomeTranslated},
		{"forced needs a letter", Span{Text: " 42 ", Force: true}, " 42 ", OutcomeSkipped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTranslator(newMockProvider())
			got, outcome := tr.TranslateSpan(context.Background(), tt.span)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.outcome, outcome)
		})
	}
}

func TestTranslator_CachesByTrimmedText(t *testing.T) {
	p := newMockProvider()
	c := newMapCache()
	tr := NewTranslator(p, WithCache(c))
	ctx := context.Background()

	first, outcome := tr.TranslateSpan(ctx, Span{Text: "Hola mundo"})
	require.Equal(t, OutcomeTranslated, outcome)
	require.Equal(t, "Hello world", first)

	second, outcome := tr.TranslateSpan(ctx, Span{Text: " Hola mundo "})
	assert.Equal(t, " Hello world ", second)
	assert.Equal(t, OutcomeCached, outcome)

	assert.Equal(t, 1, p.calls)
	_, ok := c.Get(CacheKey(HashText("Hola mundo")))
	assert.True(t, ok, "translation should be stored under the trimmed text key")
}

func TestTranslator_FallbackOnError(t *testing.T) {
	p := newMockProvider()
	p.err = &ProviderError{Message: "quota exceeded"}
	tr := NewTranslator(p)
	ctx := context.Background()

	span := Span{Text: " Galer&iacute;a &amp; tienda "}
	got, outcome := tr.TranslateSpan(ctx, span)
	assert.Equal(t, span.Text, got, "failed span should be returned byte for byte")
	assert.Equal(t, OutcomeFailed, outcome)

	_, outcome = tr.TranslateSpan(ctx, span)
	assert.Equal(t, OutcomeFailed, outcome)
	assert.Equal(t, 1, p.calls, "failed text should not be requested again")
}

func TestTranslator_EmptyResultIsFailure(t *testing.T) {
	p := newMockProvider()
	p.translations["Hola"] = "  "
	tr := NewTranslator(p)

	got, outcome := tr.TranslateSpan(context.Background(), Span{Text: "Hola", Force: true})
	assert.Equal(t, "Hola", got)
	assert.Equal(t, OutcomeFailed, outcome)
}

func TestTranslator_CacheWriteErrorIgnored(t *testing.T) {
	c := newMapCache()
	c.err = errors.New("read-only")
	tr := NewTranslator(newMockProvider(), WithCache(c))

	got, outcome := tr.TranslateSpan(context.Background(), Span{Text: "Hola mundo"})
	assert.Equal(t, "Hello world", got)
	assert.Equal(t, OutcomeTranslated, outcome)
}

func TestTranslator_NoProvider(t *testing.T) {
	tr := NewTranslator(nil)

	got, outcome := tr.TranslateSpan(context.Background(), Span{Text: "Hola mundo"})
	assert.Equal(t, "Hola mundo", got)
	assert.Equal(t, OutcomeFailed, outcome)
}

func TestTranslator_DryRun(t *testing.T) {
	p := newMockProvider()
	tr := NewTranslator(p, WithDryRun(true))

	got, outcome := tr.TranslateSpan(context.Background(), Span{Text: "Hola mundo", Line: 3})
	assert.Equal(t, "Hola mundo", got)
	assert.Equal(t, OutcomeCandidate, outcome)
	assert.Zero(t, p.calls, "dry run should never call the provider")
	assert.True(t, tr.DryRun())
}

func TestTranslator_RequestCarriesContext(t *testing.T) {
	p := newMockProvider()
	tr := NewTranslator(p, WithContext("Art gallery"), WithExcludedTerms([]string{"Norte"}))

	tr.TranslateSpan(context.Background(), Span{Text: "Galería", Kind: SpanAttribute, Attr: "title", Force: true})

	req := p.lastRequest
	assert.Equal(t, "es", req.SourceLang)
	assert.Equal(t, "en", req.TargetLang)
	require.Len(t, req.TextContexts, 1)
	assert.Contains(t, req.TextContexts[0], "title")
	assert.Equal(t, "Art gallery", req.Context)
	assert.Equal(t, []string{"Norte"}, req.ExcludedTerms)
}

func TestTranslator_ConcurrentSpans(t *testing.T) {
	p := newMockProvider()
	tr := NewTranslator(p, WithCache(newSyncCache()))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.TranslateSpan(context.Background(), Span{Text: "Artistas y obras"})
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, p.calls, 1)
	assert.LessOrEqual(t, p.calls, 20)
}

type syncCache struct {
	mu sync.Mutex
	*mapCache
}

func newSyncCache() *syncCache {
	return &syncCache{mapCache: newMapCache()}
}

func (c *syncCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mapCache.Get(key)
}

func (c *syncCache) Set(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mapCache.Set(key, value)
}

// upperProcessor hands each line to the translator as a text span.
type upperProcessor struct{}

func (upperProcessor) Rewrite(ctx context.Context, content string, tr SpanTranslator) (string, Stats, error) {
	var stats Stats
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		span := Span{Text: line, Kind: SpanTextNode, Line: i + 1}
		out, outcome := tr.TranslateSpan(ctx, span)
		stats.Record(span, outcome)
		lines[i] = out
	}
	return strings.Join(lines, "\n"), stats, nil
}

func (upperProcessor) ContentType() string { return "lines" }

func TestTranslator_Process(t *testing.T) {
	tr := NewTranslator(newMockProvider(), WithProcessor(upperProcessor{}))

	result, err := tr.Process(context.Background(), "Hola mundo\nhome", "lines")
	require.NoError(t, err)

	assert.Equal(t, "Hello world\nhome", result.Content)
	assert.True(t, result.Changed)
	assert.Equal(t, 2, result.Stats.Spans)
	assert.Equal(t, 1, result.Stats.Translated)
	assert.Equal(t, 1, result.Stats.Skipped)
}

func TestTranslator_ProcessUnknownType(t *testing.T) {
	tr := NewTranslator(newMockProvider())

	_, err := tr.Process(context.Background(), "p Hola", "pug")
	var procErr *ProcessorError
	require.ErrorAs(t, err, &procErr)
	assert.Equal(t, "pug", procErr.ContentType)
	assert.False(t, tr.HasProcessor("pug"))
}

func TestStats_RecordAndMerge(t *testing.T) {
	var a, b Stats
	a.Record(Span{Text: "x"}, OutcomeTranslated)
	a.Record(Span{Text: "y"}, OutcomeSkipped)
	b.Record(Span{Text: "Hola", Line: 4, Kind: SpanTagText}, OutcomeCandidate)
	b.Record(Span{Text: "z"}, OutcomeFailed)

	a.Merge(b)
	assert.Equal(t, 4, a.Spans)
	assert.Equal(t, 1, a.Translated)
	assert.Equal(t, 1, a.Skipped)
	assert.Equal(t, 1, a.Failed)
	require.Len(t, a.Candidates, 1)
	assert.Equal(t, 4, a.Candidates[0].Line)
	assert.Equal(t, "Hola", a.Candidates[0].Text)
}
