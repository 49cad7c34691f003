package processor

import (
	"context"
	"strings"
	"sync"

	"github.com/ZaguanLabs/pugtl"
)

// dictTranslator translates spans whose trimmed text is in its dictionary
// and records every span it is asked about.
type dictTranslator struct {
	mu    sync.Mutex
	dict  map[string]string
	spans []pugtl.Span
}

func newDictTranslator() *dictTranslator {
	return &dictTranslator{
		dict: map[string]string{
			"Hola":            "Hello",
			"Hola mundo":      "Hello world",
			"mundo":           "world",
			"Galería":         "Gallery",
			"Galería d'arte":  "Gallery's art",
			"Iniciar sesión":  "Sign in",
			"Entrar":          "Enter",
			"Inicio":          "Home",
			", bienvenido":    ", welcome",
			"Buscar obras":    "Search works",
			"Cerrar":          "Close",
			"Dijo \"hola\"":   "Said \"hi\"",
			"Nuestra galería": "Our gallery",
			"Compra":          "Buy",
			"piezas":          "pieces",
			"Ver":             "View",
			"Ruta":            `Path C:\`,
			"Lee":             "Read",
			"las piezas":      "the pieces",
			"ahora mismo":     "right now",
		},
	}
}

func (d *dictTranslator) TranslateSpan(ctx context.Context, span pugtl.Span) (string, pugtl.Outcome) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.spans = append(d.spans, span)

	trimmed := strings.TrimSpace(span.Text)
	out, ok := d.dict[trimmed]
	if !ok {
		return span.Text, pugtl.OutcomeSkipped
	}
	start := strings.Index(span.Text, trimmed)
	return span.Text[:start] + out + span.Text[start+len(trimmed):], pugtl.OutcomeTranslated
}

func (d *dictTranslator) seen(text string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, s := range d.spans {
		if strings.TrimSpace(s.Text) == text {
			return true
		}
	}
	return false
}

func (d *dictTranslator) span(text string) (pugtl.Span, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, s := range d.spans {
		if strings.TrimSpace(s.Text) == text {
			return s, true
		}
	}
	return pugtl.Span{}, false
}
