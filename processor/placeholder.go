package processor

import "strings"

// Placeholder openers. Each opener ends with the bracket that the matching
// closer balances. Tag interpolation is cut out like a placeholder so its
// brackets are balanced, then rewritten as a nested tag.
var (
	pugPlaceholders      = []string{"#{", "!{", tagInterpolation}
	templatePlaceholders = []string{"${"}
)

const tagInterpolation = "#["

// segment is a piece of a textual unit: either copyable placeholder text or
// a candidate span.
type segment struct {
	text        string
	placeholder bool
}

// splitPlaceholders cuts text around interpolation placeholders. Nested
// brackets and quoted brackets inside an expression are honoured. An
// unterminated placeholder swallows the rest of the text.
func splitPlaceholders(text string, openers []string) []segment {
	var segs []segment
	last := 0

	for i := 0; i < len(text); {
		open := matchOpener(text[i:], openers)
		if open == "" {
			i++
			continue
		}

		end := closingBracket(text, i+len(open)-1)
		if end < 0 {
			end = len(text) - 1
		}

		if i > last {
			segs = append(segs, segment{text: text[last:i]})
		}
		segs = append(segs, segment{text: text[i : end+1], placeholder: true})

		i = end + 1
		last = i
	}

	if last < len(text) {
		segs = append(segs, segment{text: text[last:]})
	}
	return segs
}

func matchOpener(s string, openers []string) string {
	for _, open := range openers {
		if strings.HasPrefix(s, open) {
			return open
		}
	}
	return ""
}

// closingBracket returns the index of the bracket closing the one at open,
// or -1.
func closingBracket(text string, open int) int {
	var closer byte
	switch text[open] {
	case '{':
		closer = '}'
	case '[':
		closer = ']'
	case '(':
		closer = ')'
	default:
		return -1
	}

	opener := text[open]
	depth := 0
	for i := open; i < len(text); i++ {
		switch c := text[i]; c {
		case opener:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return i
			}
		case '\'', '"', '`':
			end := closingQuote(text, i)
			if end < 0 {
				return -1
			}
			i = end
		}
	}
	return -1
}

// closingQuote returns the index of the quote closing the one at start, or
// -1 when the literal is unterminated. A backslash escapes the next byte.
func closingQuote(text string, start int) int {
	quote := text[start]
	for i := start + 1; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case quote:
			return i
		}
	}
	return -1
}
