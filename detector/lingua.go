// Package detector provides language detection for the translation heuristic.
package detector

import (
	"strings"

	"github.com/pemistahl/lingua-go"

	"github.com/ZaguanLabs/pugtl"
)

// DefaultLanguages are the languages a span is told apart from. Spanish view
// text is mostly confused with its neighbours, so those are included to keep
// the detector from guessing Spanish for them.
var DefaultLanguages = []lingua.Language{
	lingua.English,
	lingua.Spanish,
	lingua.Portuguese,
	lingua.Catalan,
	lingua.French,
	lingua.Italian,
	lingua.German,
}

// DefaultMinimumRelativeDistance makes short or mixed input come back as
// unknown instead of a low-confidence guess.
const DefaultMinimumRelativeDistance = 0.25

// Config holds configuration for the Lingua detector.
type Config struct {
	Languages               []lingua.Language // Candidate languages (default: DefaultLanguages)
	MinimumRelativeDistance float64           // 0 means DefaultMinimumRelativeDistance
}

// Lingua implements pugtl.LanguageDetector using lingua-go.
type Lingua struct {
	detector lingua.LanguageDetector
}

// NewLingua creates a detector over DefaultLanguages.
func NewLingua() *Lingua {
	return NewLinguaWithConfig(Config{})
}

// NewLinguaWithConfig creates a detector with custom languages and distance.
func NewLinguaWithConfig(cfg Config) *Lingua {
	languages := cfg.Languages
	if len(languages) < 2 {
		languages = DefaultLanguages
	}

	distance := cfg.MinimumRelativeDistance
	if distance <= 0 {
		distance = DefaultMinimumRelativeDistance
	}

	return &Lingua{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(languages...).
			WithMinimumRelativeDistance(distance).
			Build(),
	}
}

// DetectLanguage returns the lower-case ISO 639-1 code of text's language.
// ok is false when the detector is not confident.
func (l *Lingua) DetectLanguage(text string) (string, bool) {
	lang, ok := l.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}

var _ pugtl.LanguageDetector = (*Lingua)(nil)
