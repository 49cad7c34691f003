package pugtl

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// LanguageDetector identifies the language of a text.
type LanguageDetector interface {
	// DetectLanguage returns the ISO 639-1 code of text. ok is false when the
	// detector cannot decide.
	DetectLanguage(text string) (iso string, ok bool)
}

// spanishChars are characters that only show up in Spanish text.
const spanishChars = "áéíóúüñÁÉÍÓÚÜÑ¡¿"

// SpanishKeywords are lowercase fragments that mark a span as Spanish when
// found anywhere in it.
var SpanishKeywords = []string{
	"obra", "obras",
	"buscar",
	"iniciar", "sesion", "sesión", "cerrar",
	"actividad",
	"cuenta", "correo", "contraseña",
	"perfil",
	"guardar", "editar", "eliminar", "agregar",
	"volver", "confirmar",
	"mensaje", "mensajes",
	"gracias", "hola",
	"bienvenido", "bienvenida", "bienvenidos",
	"artista", "artistas",
	"exposicion", "exposición", "exposiciones",
	"exhibicion", "exhibición",
	"galer", "galería", "galeria",
	"coleccionista", "coleccionistas",
	"colección", "coleccion",
	"registrarse", "registro",
	"actualiza", "actualizar",
	"publicada", "publicadas",
	"pronto",
	"descubre", "descubrir",
	"comunidad", "experiencias", "sensaciones", "familia",
	"detalle", "detalles",
	"ubicación", "ubicacion",
	"aprobación", "aprobacion",
	"revisión", "revision",
	"borrador", "borradores",
	"rechazado", "rechazados",
	"enviado", "enviados",
	"pendiente", "pendientes",
	"cuándo", "cuando",
	"dónde", "donde",
	"porqué", "porque",
}

// minDetectRunes is the shortest span handed to the language detector.
const minDetectRunes = 10

// Heuristic decides whether a span of display text is Spanish.
type Heuristic struct {
	keywords []string
	detector LanguageDetector
}

// NewHeuristic creates a heuristic with the default keyword list. detector
// may be nil, in which case detection is skipped.
func NewHeuristic(detector LanguageDetector) *Heuristic {
	return &Heuristic{
		keywords: SpanishKeywords,
		detector: detector,
	}
}

// WithKeywords returns a copy of h that also matches the extra keywords.
func (h *Heuristic) WithKeywords(extra ...string) *Heuristic {
	keywords := make([]string, 0, len(h.keywords)+len(extra))
	keywords = append(keywords, h.keywords...)
	for _, k := range extra {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			keywords = append(keywords, k)
		}
	}
	return &Heuristic{keywords: keywords, detector: h.detector}
}

// NeedsTranslation reports whether text looks like Spanish display text.
// text must already be entity-unescaped.
func (h *Heuristic) NeedsTranslation(text string) bool {
	stripped := strings.TrimSpace(text)
	if stripped == "" || !strings.ContainsFunc(stripped, unicode.IsLetter) {
		return false
	}

	if strings.ContainsAny(stripped, spanishChars) {
		return true
	}

	lower := strings.ToLower(stripped)
	for _, keyword := range h.keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}

	length := utf8.RuneCountInString(stripped)
	if length >= 5 && isCapitalizedWord(stripped) {
		return true
	}

	if length >= minDetectRunes && h.detector != nil {
		if iso, ok := h.detector.DetectLanguage(stripped); ok {
			return iso == SourceLang
		}
	}

	return strings.Contains(stripped, " ")
}

// isCapitalizedWord reports whether s is made of letters only and starts with
// an uppercase one.
func isCapitalizedWord(s string) bool {
	first, _ := utf8.DecodeRuneInString(s)
	if !unicode.IsUpper(first) {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
