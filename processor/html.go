package processor

import (
	"context"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/ZaguanLabs/pugtl"
)

// HTMLProcessor rewrites HTML documents. The document is streamed through the
// tokenizer and every token is copied from its raw bytes, so markup that is
// not translated comes out exactly as it went in.
type HTMLProcessor struct {
	ignoredTags map[string]bool
}

// NewHTMLProcessor creates a new HTML processor with default ignored tags.
func NewHTMLProcessor() *HTMLProcessor {
	return &HTMLProcessor{
		ignoredTags: pugtl.IgnoredTags,
	}
}

// NewHTMLProcessorWithIgnoredTags creates a new HTML processor with custom ignored tags.
func NewHTMLProcessorWithIgnoredTags(tags []string) *HTMLProcessor {
	ignored := make(map[string]bool)
	for _, tag := range tags {
		ignored[strings.ToLower(tag)] = true
	}
	return &HTMLProcessor{
		ignoredTags: ignored,
	}
}

// ContentType returns "html".
func (p *HTMLProcessor) ContentType() string {
	return "html"
}

// Rewrite implements pugtl.ContentProcessor.
func (p *HTMLProcessor) Rewrite(ctx context.Context, content string, tr pugtl.SpanTranslator) (string, pugtl.Stats, error) {
	s := newSpanScanner(ctx, tr, '<', '>')
	s.line = 1

	out, err := s.rewriteMarkup(content, p.ignoredTags, func(text string) string {
		return s.translate(pugtl.Span{Text: text, Kind: pugtl.SpanHTMLText})
	})
	if err != nil {
		return "", s.stats, &pugtl.ProcessorError{
			Message:     "failed to tokenize HTML",
			Cause:       err,
			ContentType: "html",
		}
	}
	return out, s.stats, nil
}

// markup rewrites an HTML fragment embedded in a Pug line. Text between the
// tags keeps Pug placeholders.
func (s *spanScanner) markup(text string, span pugtl.Span) string {
	tags := newSpanScanner(s.ctx, s.tr, '<', '>')
	tags.line = s.line

	out, err := tags.rewriteMarkup(text, pugtl.IgnoredTags, func(t string) string {
		return s.interpolatedText(t, span)
	})
	s.stats.Merge(tags.stats)
	if err != nil {
		return text
	}
	return out
}

// interpolatedText is interpolated without the inline markup check, for text
// that already came out of the tokenizer.
func (s *spanScanner) interpolatedText(text string, span pugtl.Span) string {
	var b strings.Builder
	for _, seg := range splitPlaceholders(text, pugPlaceholders) {
		if seg.placeholder {
			b.WriteString(s.placeholder(seg.text, span))
			continue
		}
		b.WriteString(s.segment(seg.text, span))
	}
	return b.String()
}

// rewriteMarkup streams text through the HTML tokenizer. Text tokens go
// through translateText unless they sit inside an ignored element or one
// marked data-no-translate; tags go through the literal scanner.
func (s *spanScanner) rewriteMarkup(text string, ignored map[string]bool, translateText func(string) string) (string, error) {
	var b strings.Builder
	b.Grow(len(text))

	z := html.NewTokenizer(strings.NewReader(text))
	consumed := 0
	startLine := s.line
	line := startLine

	skipTag := ""
	skipDepth := 0

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); err != io.EOF {
				return "", err
			}
			break
		}

		raw := string(z.Raw())
		s.line = line
		line += strings.Count(raw, "\n")
		consumed += len(raw)

		switch tt {
		case html.TextToken:
			if skipTag != "" {
				b.WriteString(raw)
			} else {
				b.WriteString(translateText(raw))
			}

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)

			noTranslate := false
			for hasAttr {
				var key []byte
				key, _, hasAttr = z.TagAttr()
				if string(key) == "data-no-translate" {
					noTranslate = true
				}
			}

			switch {
			case skipTag != "":
				if tag == skipTag && tt == html.StartTagToken {
					skipDepth++
				}
				b.WriteString(raw)
				continue
			case noTranslate || ignored[tag]:
				if tt == html.StartTagToken && !isVoidElement(tag) {
					skipTag = tag
					skipDepth = 1
				}
				if noTranslate {
					b.WriteString(raw)
					continue
				}
			}
			b.WriteString(s.quoted(raw, false))

		case html.EndTagToken:
			if skipTag != "" {
				name, _ := z.TagName()
				if string(name) == skipTag {
					skipDepth--
					if skipDepth == 0 {
						skipTag = ""
					}
				}
			}
			b.WriteString(raw)

		default:
			b.WriteString(raw)
		}
	}

	// the tokenizer drops an incomplete trailing tag
	if consumed < len(text) {
		b.WriteString(text[consumed:])
	}
	s.line = startLine
	return b.String(), nil
}

// hasInlineMarkup reports whether text contains something that looks like
// an HTML tag.
func hasInlineMarkup(text string) bool {
	for i := strings.IndexByte(text, '<'); i >= 0 && i+1 < len(text); {
		c := text[i+1]
		if c == '/' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' {
			return true
		}
		next := strings.IndexByte(text[i+1:], '<')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return false
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

func isVoidElement(tag string) bool {
	return voidElements[tag]
}
