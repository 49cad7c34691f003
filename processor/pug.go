package processor

import (
	"context"
	"strings"

	"github.com/ZaguanLabs/pugtl"
)

// LineKind classifies a line of Pug source.
type LineKind int

const (
	// LineBlank is empty or whitespace only.
	LineBlank LineKind = iota
	// LineText starts with the `| ` text-node marker.
	LineText
	// LineScript is unbuffered code starting with `-`.
	LineScript
	// LineDirective is a control, include, comment or raw-block line.
	LineDirective
	// LineHTML is literal HTML starting with `<`.
	LineHTML
	// LineTag is an element, optionally followed by text.
	LineTag
)

// textMarker identifies a line as literal display text.
const textMarker = "| "

// DirectivePrefixes are the line prefixes of Pug control and directive lines.
var DirectivePrefixes = []string{
	"//",
	"if ", "else", "unless ",
	"each ", "for ", "while ",
	"case ", "when ", "default",
	"block ", "append ", "prepend ",
	"include", "extends", "extend",
	"mixin ",
	"doctype",
	"script", "style",
}

// ClassifyLine returns the kind of a Pug source line without its newline.
func ClassifyLine(raw string) LineKind {
	stripped := strings.TrimLeft(raw, " \t")
	switch {
	case stripped == "":
		return LineBlank
	case stripped == "|" || strings.HasPrefix(stripped, textMarker):
		return LineText
	case strings.HasPrefix(stripped, "-"):
		return LineScript
	case strings.HasPrefix(stripped, "<"):
		return LineHTML
	}

	for _, prefix := range DirectivePrefixes {
		if strings.HasPrefix(stripped, prefix) {
			return LineDirective
		}
	}
	return LineTag
}

// blockKind is the kind of content nested under a `tag.` line.
type blockKind int

const (
	blockNone blockKind = iota
	blockText
	blockScript
	blockRaw
)

// block tracks the dot block a line belongs to.
type block struct {
	kind   blockKind
	indent int
}

// PugProcessor rewrites Pug templates line by line.
type PugProcessor struct{}

// NewPugProcessor creates a new Pug processor.
func NewPugProcessor() *PugProcessor {
	return &PugProcessor{}
}

// ContentType returns "pug".
func (p *PugProcessor) ContentType() string {
	return "pug"
}

// Rewrite implements pugtl.ContentProcessor.
func (p *PugProcessor) Rewrite(ctx context.Context, content string, tr pugtl.SpanTranslator) (string, pugtl.Stats, error) {
	var stats pugtl.Stats
	var b strings.Builder
	b.Grow(len(content))

	var current block
	lineNo := 0
	for rest := content; rest != ""; {
		if err := ctx.Err(); err != nil {
			return "", stats, err
		}

		var line string
		if idx := strings.IndexByte(rest, '\n'); idx >= 0 {
			line, rest = rest[:idx+1], rest[idx+1:]
		} else {
			line, rest = rest, ""
		}
		lineNo++

		raw, newline := splitNewline(line)
		s := newSpanScanner(ctx, tr, '(', ')')
		s.line = lineNo

		if current.kind != blockNone {
			if strings.TrimSpace(raw) == "" || indentWidth(raw) > current.indent {
				b.WriteString(s.blockLine(raw, current.kind))
				b.WriteString(newline)
				stats.Merge(s.stats)
				continue
			}
			current = block{}
		}

		b.WriteString(s.rewriteLine(raw))
		b.WriteString(newline)
		stats.Merge(s.stats)

		if kind := blockOpener(raw); kind != blockNone {
			current = block{kind: kind, indent: indentWidth(raw)}
		}
	}

	return b.String(), stats, nil
}

// ProcessLine rewrites a single line, keeping its newline. Dot blocks are
// not tracked across calls; use Rewrite for whole files.
func (p *PugProcessor) ProcessLine(ctx context.Context, line string, lineNo int, tr pugtl.SpanTranslator) (string, pugtl.Stats) {
	raw, newline := splitNewline(line)
	s := newSpanScanner(ctx, tr, '(', ')')
	s.line = lineNo
	return s.rewriteLine(raw) + newline, s.stats
}

// splitNewline separates the trailing \r\n or \n from line.
func splitNewline(line string) (string, string) {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return line[:len(line)-2], "\r\n"
	case strings.HasSuffix(line, "\n"):
		return line[:len(line)-1], "\n"
	}
	return line, ""
}

func splitIndent(raw string) (string, string) {
	stripped := strings.TrimLeft(raw, " \t")
	return raw[:len(raw)-len(stripped)], stripped
}

func indentWidth(raw string) int {
	indent, _ := splitIndent(raw)
	return len(indent)
}

// rewriteLine rewrites one line outside any dot block.
func (s *spanScanner) rewriteLine(raw string) string {
	switch ClassifyLine(raw) {
	case LineText:
		return s.textNode(raw)
	case LineScript:
		return s.quoted(raw, true)
	case LineDirective:
		return s.quoted(raw, false)
	case LineHTML:
		indent, stripped := splitIndent(raw)
		return indent + s.markup(stripped, pugtl.Span{Kind: pugtl.SpanTagText})
	case LineTag:
		indent, stripped := splitIndent(raw)
		return indent + s.tag(stripped)
	}
	return raw
}

// blockLine rewrites a line nested under a dot block.
func (s *spanScanner) blockLine(raw string, kind blockKind) string {
	switch kind {
	case blockText:
		indent, stripped := splitIndent(raw)
		if strings.HasPrefix(stripped, "<") {
			return indent + s.markup(stripped, pugtl.Span{Kind: pugtl.SpanTextNode})
		}
		return indent + s.interpolated(stripped, pugPlaceholders, pugtl.Span{Kind: pugtl.SpanTextNode})
	case blockScript:
		return s.quoted(raw, true)
	}
	return raw
}

// textNode rewrites a `| text` line.
func (s *spanScanner) textNode(raw string) string {
	indent, stripped := splitIndent(raw)
	if !strings.HasPrefix(stripped, textMarker) {
		return raw
	}
	body := stripped[len(textMarker):]
	return indent + textMarker + s.interpolated(body, pugPlaceholders, pugtl.Span{Kind: pugtl.SpanTextNode})
}

// tag rewrites an element line: the head (tag, classes, attribute list) is
// scanned for literals and the text after it is translated.
func (s *spanScanner) tag(stripped string) string {
	split := tagSplit(stripped)
	if split < 0 {
		return s.quoted(stripped, false)
	}

	head := stripped[:split]
	sep := stripped[split : split+1]
	tail := stripped[split+1:]

	if strings.TrimSpace(tail) == "" || isCodeTail(head, tail) {
		return s.quoted(stripped, false)
	}

	// block expansion: `li: a(href="/") Inicio`
	if strings.HasSuffix(head, ":") {
		indent, rest := splitIndent(tail)
		return s.quoted(head, false) + sep + indent + s.tag(rest)
	}

	return s.quoted(head, false) + sep + s.interpolated(tail, pugPlaceholders, pugtl.Span{Kind: pugtl.SpanTagText})
}

// tagSplit returns the index of the first whitespace outside the attribute
// list, or -1. Quoted values are skipped so a parenthesis inside one does
// not end the list.
func tagSplit(stripped string) int {
	depth := 0
	for i := 0; i < len(stripped); i++ {
		switch c := stripped[i]; c {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case '\'', '"', '`':
			if depth == 0 {
				continue
			}
			end := closingQuote(stripped, i)
			if end < 0 {
				return -1
			}
			i = end
		default:
			if depth == 0 && isSpace(c) {
				return i
			}
		}
	}
	return -1
}

// isCodeTail reports whether the tail is buffered code (`p= expr`).
func isCodeTail(head, tail string) bool {
	if strings.HasSuffix(head, "=") {
		return true
	}
	t := strings.TrimLeft(tail, " \t")
	return strings.HasPrefix(t, "=") || strings.HasPrefix(t, "!=")
}

// blockOpener returns the kind of dot block opened by raw, if any.
func blockOpener(raw string) blockKind {
	_, stripped := splitIndent(raw)
	if len(stripped) < 2 || !strings.HasSuffix(stripped, ".") || tagSplit(stripped) >= 0 {
		return blockNone
	}
	switch ClassifyLine(raw) {
	case LineText, LineScript, LineHTML, LineBlank:
		return blockNone
	}
	if strings.HasPrefix(stripped, "//") {
		return blockNone
	}

	switch tagName(stripped) {
	case "script":
		return blockScript
	case "style":
		return blockRaw
	}
	return blockText
}

// tagName returns the element name at the start of a tag head.
func tagName(head string) string {
	end := 0
	for end < len(head) && (isAttrNameByte(head[end]) && head[end] != ':') {
		end++
	}
	return strings.ToLower(head[:end])
}
