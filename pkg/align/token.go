// Package align implements the text-alignment core of elocute: word
// tokenisation with display offsets, minimum-edit-distance alignment between a
// reference script and a recognised hypothesis, character-level diffing inside
// substituted word pairs, and the construction of highlight spans for both
// texts.
//
// Everything in this package is a pure function over in-memory strings. No
// state is held between calls and all functions are safe for concurrent use.
//
// All character offsets produced by this package are rune offsets (Unicode
// code points), not byte offsets, so that spans can be applied directly to a
// rune-indexed rendering of the original text.
package align

import "unicode"

// Token is a word token extracted from a display text, together with the
// half-open rune-offset range [Start, End) it occupies in that text.
//
// Token text is case-preserved for display; alignment compares tokens
// case-insensitively.
type Token struct {
	// Text is the token exactly as it appears in the source text.
	Text string

	// Start is the rune offset of the token's first character.
	Start int

	// End is the rune offset one past the token's last character.
	End int
}

// isWordRune reports whether r belongs to a word token. Word characters are
// Unicode letters, digits, and the underscore, mirroring the \w character
// class used by common tokenisers.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Tokenize scans text left to right and returns the maximal runs of word
// characters together with their exact rune offsets in the original text.
//
// Offsets refer to the original, unmodified text — never a normalised copy —
// so that the spans built from these tokens can be mapped straight back onto
// the displayed string. An empty or punctuation-only input yields no tokens.
func Tokenize(text string) []Token {
	var tokens []Token

	runes := []rune(text)
	i := 0
	for i < len(runes) {
		if !isWordRune(runes[i]) {
			i++
			continue
		}
		start := i
		for i < len(runes) && isWordRune(runes[i]) {
			i++
		}
		tokens = append(tokens, Token{
			Text:  string(runes[start:i]),
			Start: start,
			End:   i,
		})
	}
	return tokens
}
