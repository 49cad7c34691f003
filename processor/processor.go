// Package processor provides the Pug and HTML rewriters.
//
// A processor walks its input, cuts it into candidate spans and hands each
// one to a pugtl.SpanTranslator. Bytes outside the spans are copied through
// unchanged, so a file in which nothing needs translation is rewritten to
// itself.
package processor

import "github.com/ZaguanLabs/pugtl"

// ContentProcessor is an alias to the main package interface.
type ContentProcessor = pugtl.ContentProcessor

// SpanTranslator is an alias to the main package interface.
type SpanTranslator = pugtl.SpanTranslator

var (
	_ ContentProcessor = (*PugProcessor)(nil)
	_ ContentProcessor = (*HTMLProcessor)(nil)
)
