// Package render turns highlight spans into colored terminal output.
//
// It is one concrete consumer of the span contract from [align.BuildSpans]:
// spans may arrive unsorted and may overlap, and the renderer copes. A GUI
// would consume the same spans the same way.
package render

import (
	"strings"

	"github.com/elocute/elocute/pkg/align"
)

const sgrReset = "\x1b[0m"

// sgrForCategory maps each error category to an ANSI SGR sequence. Character
// deletes get red tones (vowels stronger), inserts blue, replace amber, with
// whole-word categories on a dimmer variant of the same hue.
var sgrForCategory = map[align.Category]string{
	align.CategoryMissingWord:     "\x1b[91m",   // bright red
	align.CategoryInsertedWord:    "\x1b[94m",   // bright blue
	align.CategoryReplace:         "\x1b[33m",   // amber
	align.CategoryVowelDelete:     "\x1b[31;1m", // bold red
	align.CategoryConsonantDelete: "\x1b[31m",   // red
	align.CategoryCharInsert:      "\x1b[34m",   // blue
}

// categoryRank orders categories for overlap resolution. When two spans cover
// the same rune, the more specific category wins.
var categoryRank = map[align.Category]int{
	align.CategoryVowelDelete:     6,
	align.CategoryConsonantDelete: 5,
	align.CategoryCharInsert:      4,
	align.CategoryReplace:         3,
	align.CategoryMissingWord:     2,
	align.CategoryInsertedWord:    1,
}

// Highlight renders text with the given spans as an ANSI-colored string.
// Spans may be unsorted and overlapping; out-of-range bounds are clipped.
// Offsets are rune offsets into text.
func Highlight(text string, spans []align.Span) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}

	// Paint each rune with the highest-ranked category covering it.
	paint := make([]align.Category, len(runes))
	for _, sp := range spans {
		start, end := sp.Start, sp.End
		if start < 0 {
			start = 0
		}
		if end > len(runes) {
			end = len(runes)
		}
		for i := start; i < end; i++ {
			if paint[i] == "" || categoryRank[sp.Category] > categoryRank[paint[i]] {
				paint[i] = sp.Category
			}
		}
	}

	var b strings.Builder
	b.Grow(len(text))
	var current align.Category
	for i, r := range runes {
		if paint[i] != current {
			if current != "" {
				b.WriteString(sgrReset)
			}
			if paint[i] != "" {
				b.WriteString(sgrForCategory[paint[i]])
			}
			current = paint[i]
		}
		b.WriteRune(r)
	}
	if current != "" {
		b.WriteString(sgrReset)
	}
	return b.String()
}

// Strip removes the ANSI sequences this package emits. Used by tests and by
// callers writing to a non-terminal destination.
func Strip(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
