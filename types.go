package pugtl

// Languages handled by the translator. The pair is fixed.
const (
	SourceLang = "es"
	TargetLang = "en"
)

// SpanKind describes where a candidate span was found.
type SpanKind string

const (
	// SpanTextNode is the body of a `| text` line.
	SpanTextNode SpanKind = "text_node"
	// SpanTagText is the text following a tag on the same line.
	SpanTagText SpanKind = "tag_text"
	// SpanAttribute is a quoted attribute value.
	SpanAttribute SpanKind = "attribute"
	// SpanLiteral is a quoted string literal outside an attribute list.
	SpanLiteral SpanKind = "literal"
	// SpanTemplateLiteral is a back-quoted template string.
	SpanTemplateLiteral SpanKind = "template_literal"
	// SpanHTMLText is a text node of an HTML document.
	SpanHTMLText SpanKind = "html_text"
)

// Span is a candidate piece of display text, with placeholders removed.
type Span struct {
	Text  string   // Raw text as it appears in the source (entities escaped)
	Kind  SpanKind // Where the span came from
	Attr  string   // Attribute name for SpanAttribute
	Line  int      // 1-based line number, 0 if unknown
	Force bool     // Skip the heuristic (always-translate attributes)
}

// Outcome reports what TranslateSpan did with a span.
type Outcome int

const (
	// OutcomeSkipped means the span was left alone by the heuristic.
	OutcomeSkipped Outcome = iota
	// OutcomeTranslated means the backend produced a translation.
	OutcomeTranslated
	// OutcomeCached means the translation came from the cache.
	OutcomeCached
	// OutcomeFailed means the backend failed and the span was kept.
	OutcomeFailed
	// OutcomeCandidate means the span would be translated (dry run).
	OutcomeCandidate
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeTranslated:
		return "translated"
	case OutcomeCached:
		return "cached"
	case OutcomeFailed:
		return "failed"
	case OutcomeCandidate:
		return "candidate"
	}
	return "unknown"
}

// Candidate is a span reported by a dry run.
type Candidate struct {
	Line int      `json:"line"`
	Kind SpanKind `json:"kind"`
	Attr string   `json:"attr,omitempty"`
	Text string   `json:"text"`
}

// Stats counts span outcomes for one piece of content.
type Stats struct {
	Spans      int         `json:"spans"`
	Translated int         `json:"translated"`
	Cached     int         `json:"cached"`
	Failed     int         `json:"failed"`
	Skipped    int         `json:"skipped"`
	Candidates []Candidate `json:"candidates,omitempty"`
}

// Record adds one span outcome to the stats.
func (s *Stats) Record(span Span, outcome Outcome) {
	s.Spans++
	switch outcome {
	case OutcomeTranslated:
		s.Translated++
	case OutcomeCached:
		s.Cached++
	case OutcomeFailed:
		s.Failed++
	case OutcomeCandidate:
		s.Candidates = append(s.Candidates, Candidate{
			Line: span.Line,
			Kind: span.Kind,
			Attr: span.Attr,
			Text: span.Text,
		})
	default:
		s.Skipped++
	}
}

// Merge adds other into s.
func (s *Stats) Merge(other Stats) {
	s.Spans += other.Spans
	s.Translated += other.Translated
	s.Cached += other.Cached
	s.Failed += other.Failed
	s.Skipped += other.Skipped
	s.Candidates = append(s.Candidates, other.Candidates...)
}

// ProcessedContent is the result of a translation operation.
type ProcessedContent struct {
	Content string // Rewritten content
	Changed bool   // Content differs from the input
	Stats   Stats
}

// AttrTextNames contains attributes whose values are always display text.
var AttrTextNames = map[string]bool{
	"aria-label":           true,
	"aria-description":     true,
	"aria-roledescription": true,
	"placeholder":          true,
	"title":                true,
	"alt":                  true,
}

// IgnoredTags contains HTML tags whose content should not be translated.
var IgnoredTags = map[string]bool{
	"script":   true,
	"style":    true,
	"code":     true,
	"pre":      true,
	"textarea": true,
	"noscript": true,
}
