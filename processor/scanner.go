package processor

import (
	"context"
	"strings"
	"unicode"

	"github.com/ZaguanLabs/pugtl"
)

// spanScanner cuts source text into candidate spans and hands them to the
// translator. It tracks the current line number and outcome stats.
type spanScanner struct {
	ctx   context.Context
	tr    pugtl.SpanTranslator
	line  int
	stats pugtl.Stats

	// Brackets delimiting an attribute list: ( ) in Pug, < > in HTML.
	open, close byte
}

func newSpanScanner(ctx context.Context, tr pugtl.SpanTranslator, open, close byte) *spanScanner {
	return &spanScanner{ctx: ctx, tr: tr, open: open, close: close}
}

// translate hands one span to the translator and records the outcome.
func (s *spanScanner) translate(span pugtl.Span) string {
	if strings.TrimSpace(span.Text) == "" {
		return span.Text
	}
	span.Line = s.line
	out, outcome := s.tr.TranslateSpan(s.ctx, span)
	s.stats.Record(span, outcome)
	return out
}

// interpolated translates text around placeholders, copying the placeholders
// through unchanged. Inline HTML inside the text is split at its tags.
func (s *spanScanner) interpolated(text string, openers []string, span pugtl.Span) string {
	var b strings.Builder
	b.Grow(len(text))

	for _, seg := range splitPlaceholders(text, openers) {
		switch {
		case seg.placeholder:
			b.WriteString(s.placeholder(seg.text, span))
		case hasInlineMarkup(seg.text):
			b.WriteString(s.markup(seg.text, span))
		default:
			b.WriteString(s.segment(seg.text, span))
		}
	}
	return b.String()
}

// segment translates one piece of text between placeholders. Pieces of a
// template literal that look like code are copied.
func (s *spanScanner) segment(text string, span pugtl.Span) string {
	if span.Kind == pugtl.SpanTemplateLiteral && looksLikeCode(text) {
		return text
	}
	span.Text = text
	return s.translate(span)
}

// placeholder copies an interpolation through. Tag interpolation in text,
// `#[strong Hola]`, is rewritten like a tag line of its own.
func (s *spanScanner) placeholder(text string, span pugtl.Span) string {
	if span.Kind != pugtl.SpanTextNode && span.Kind != pugtl.SpanTagText {
		return text
	}
	if !strings.HasPrefix(text, tagInterpolation) || !strings.HasSuffix(text, "]") {
		return text
	}
	indent, inner := splitIndent(text[len(tagInterpolation) : len(text)-1])
	return tagInterpolation + indent + s.tag(inner) + "]"
}

// quoted rewrites the quoted literals of text. On script lines the
// attribute-list depth is not tracked, so no literal counts as an attribute
// value. Scanning stops at an unterminated quote and the rest of the text is
// copied as is.
func (s *spanScanner) quoted(text string, script bool) string {
	var b strings.Builder
	b.Grow(len(text))

	depth := 0
	last := 0
	for i := 0; i < len(text); {
		c := text[i]
		if !script {
			if c == s.open {
				depth++
			} else if c == s.close && depth > 0 {
				depth--
			}
		}

		if c == '\'' || c == '"' || c == '`' {
			end := closingQuote(text, i)
			if end < 0 {
				break
			}
			b.WriteString(text[last:i])
			b.WriteString(s.literal(text, i, end, depth, script))
			i = end + 1
			last = i
			continue
		}
		i++
	}

	b.WriteString(text[last:])
	return b.String()
}

// literal rewrites the quoted literal text[start:end+1]. Back-quoted
// literals are always display text unless they look like code.
func (s *spanScanner) literal(text string, start, end, depth int, script bool) string {
	original := text[start : end+1]
	quote := text[start]
	content := unescapeQuote(text[start+1:end], quote)

	openers := pugPlaceholders
	if quote == '`' {
		openers = templatePlaceholders
	}

	attr := ""
	if !script && depth > 0 {
		attr = attrNameBefore(text, start)
	}

	var translated string
	switch {
	case attr == "lang":
		if isSpanishLocale(content) {
			return string(quote) + pugtl.TargetLang + string(quote)
		}
		return original
	case pugtl.AttrTextNames[attr]:
		translated = s.interpolated(content, openers, pugtl.Span{
			Kind:  pugtl.SpanAttribute,
			Attr:  attr,
			Force: true,
		})
	case attr != "":
		return original
	case quote == '`':
		translated = s.interpolated(content, openers, pugtl.Span{
			Kind:  pugtl.SpanTemplateLiteral,
			Force: true,
		})
	case looksLikeCode(content):
		return original
	default:
		translated = s.interpolated(content, openers, pugtl.Span{Kind: pugtl.SpanLiteral})
	}

	if translated == content {
		return original
	}
	return string(quote) + escapeQuote(translated, content, quote) + string(quote)
}

// attrNameBefore returns the lower-cased attribute name assigned by the `=`
// (or `!=`) in front of the quote at quoteIdx, or "".
func attrNameBefore(text string, quoteIdx int) string {
	i := quoteIdx - 1
	for i >= 0 && isSpace(text[i]) {
		i--
	}
	if i < 0 || text[i] != '=' {
		return ""
	}
	i--
	if i >= 0 && text[i] == '!' {
		i--
	}
	for i >= 0 && isSpace(text[i]) {
		i--
	}

	end := i + 1
	for i >= 0 && isAttrNameByte(text[i]) {
		i--
	}
	return strings.ToLower(text[i+1 : end])
}

func isAttrNameByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
		c == '-' || c == '_' || c == ':'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

// unescapeQuote turns \<quote> into <quote>. Other escape sequences are kept
// verbatim so escapeQuote can restore the source form.
func unescapeQuote(s string, quote byte) string {
	if !strings.Contains(s, "\\") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			if s[i+1] == quote {
				b.WriteByte(quote)
			} else {
				b.WriteByte('\\')
				b.WriteByte(s[i+1])
			}
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// escapeQuote escapes quote and backslash in a translation of source so it
// can sit between quote characters again. A backslash pair that source
// already carried, such as `\n`, is kept as it is.
func escapeQuote(s, source string, quote byte) string {
	if !strings.ContainsAny(s, `\`+string(quote)) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case quote:
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\\':
			if i+1 < len(s) && s[i+1] != quote && strings.Contains(source, s[i:i+2]) {
				b.WriteString(s[i : i+2])
				i++
				continue
			}
			b.WriteString(`\\`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// isSpanishLocale reports whether a lang attribute value names Spanish.
func isSpanishLocale(value string) bool {
	return pugtl.IsSourceLocale(value)
}

// looksLikeCode reports whether an unnamed literal is a path, URL, selector
// or class list rather than display text.
func looksLikeCode(s string) bool {
	t := strings.TrimSpace(s)
	if t == "" {
		return false
	}
	if strings.Contains(t, "://") || strings.HasPrefix(t, "mailto:") {
		return true
	}
	switch t[0] {
	case '/', '.', '#', '?', '&', '@':
		return true
	}

	fields := strings.Fields(t)
	if len(fields) == 1 {
		if strings.ContainsAny(t, "/=<>{}()[]_") {
			return true
		}
		// "Cargando..." is text, "user.name" is not
		if strings.ContainsAny(strings.TrimRight(t, ".:!?…"), ".:") {
			return true
		}
		return strings.Contains(t, "-") && isLowerToken(t)
	}

	joined := false
	for _, f := range fields {
		if !isLowerToken(f) {
			return false
		}
		if strings.ContainsAny(f, "-_") {
			joined = true
		}
	}
	return joined
}

// isLowerToken reports whether s is made of lower-case ASCII letters, digits,
// dashes and underscores.
func isLowerToken(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
			return false
		}
	}
	return true
}
