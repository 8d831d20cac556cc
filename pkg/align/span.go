package align

import "strings"

// Category tags a highlight span with the kind of delivery error it marks.
// The values are stable identifiers; renderers map them to whatever visual
// treatment they like (ANSI colours, HTML marks, rich-text runs).
type Category string

const (
	// CategoryMissingWord marks a whole reference word the speaker dropped.
	// Emitted only for the reference (script) text.
	CategoryMissingWord Category = "missing_word"

	// CategoryInsertedWord marks a whole hypothesis word with no counterpart
	// in the reference. Emitted only for the hypothesis (transcript) text.
	CategoryInsertedWord Category = "inserted_word"

	// CategoryReplace marks a replaced character range inside a substituted
	// word pair. Emitted on both sides.
	CategoryReplace Category = "replace"

	// CategoryVowelDelete marks vowels dropped from a substituted reference
	// word. Reference side only. Dropped vowels are visually distinguished
	// because they usually signal mumbled rather than skipped sounds.
	CategoryVowelDelete Category = "vowel_delete"

	// CategoryConsonantDelete marks non-vowel characters dropped from a
	// substituted reference word. Reference side only.
	CategoryConsonantDelete Category = "consonant_delete"

	// CategoryCharInsert marks characters present in a substituted hypothesis
	// word but absent from its reference counterpart. Hypothesis side only.
	CategoryCharInsert Category = "char_insert"
)

// Span is a highlighted character range over a single text: the half-open
// rune range [Start, End) plus the error category it marks. Start < End holds
// for every span this package emits.
//
// Spans are not guaranteed to arrive sorted; renderers must not rely on any
// particular order.
type Span struct {
	Start    int
	End      int
	Category Category
}

const vowels = "aeiou"

// isVowel reports whether r (already lower-cased) is an ASCII vowel.
func isVowel(r rune) bool {
	return strings.ContainsRune(vowels, r)
}

// BuildSpans tokenises and aligns the reference and hypothesis texts and
// returns the highlight spans for each: refSpans over refText (the script)
// and hypSpans over hypText (the transcript).
//
// Word-level operations map directly: a deleted reference token becomes one
// [CategoryMissingWord] span over its full range, an inserted hypothesis
// token one [CategoryInsertedWord] span. Substituted word pairs are refined
// by a character-level diff ([charDiff]) on the lower-cased token texts:
// replaced ranges are marked on both sides, characters dropped from the
// reference are split into vowel and consonant runs, and characters added in
// the hypothesis are marked on the hypothesis side.
//
// Within a category, consecutive character indices coalesce into single
// spans, keeping span counts proportional to error clusters rather than to
// character counts.
func BuildSpans(refText, hypText string) (refSpans, hypSpans []Span) {
	refTokens := Tokenize(refText)
	hypTokens := Tokenize(hypText)
	ops := Align(refTokens, hypTokens)

	for _, op := range ops {
		switch op.Kind {
		case OpEqual:
			// Nothing to highlight.

		case OpDelete:
			tok := refTokens[op.Ref]
			refSpans = append(refSpans, Span{Start: tok.Start, End: tok.End, Category: CategoryMissingWord})

		case OpInsert:
			tok := hypTokens[op.Hyp]
			hypSpans = append(hypSpans, Span{Start: tok.Start, End: tok.End, Category: CategoryInsertedWord})

		case OpSubstitute:
			rs, hs := substitutionSpans(refTokens[op.Ref], hypTokens[op.Hyp])
			refSpans = append(refSpans, rs...)
			hypSpans = append(hypSpans, hs...)
		}
	}
	return refSpans, hypSpans
}

// substitutionSpans produces the character-level spans for one substituted
// word pair. Offsets in the returned spans are absolute (token offsets plus
// in-token diff offsets).
func substitutionSpans(ref, hyp Token) (refSpans, hypSpans []Span) {
	refRunes := []rune(strings.ToLower(ref.Text))
	hypRunes := []rune(strings.ToLower(hyp.Text))

	for _, op := range charDiff(refRunes, hypRunes) {
		switch op.kind {
		case charEqual:
			// Nothing to highlight.

		case charReplace:
			refSpans = append(refSpans, Span{
				Start:    ref.Start + op.A1,
				End:      ref.Start + op.A2,
				Category: CategoryReplace,
			})
			hypSpans = append(hypSpans, Span{
				Start:    hyp.Start + op.B1,
				End:      hyp.Start + op.B2,
				Category: CategoryReplace,
			})

		case charDelete:
			// Partition the dropped reference characters into vowels and
			// consonants and emit merged runs for each subset.
			var vowelIdx, consIdx []int
			for k := op.A1; k < op.A2; k++ {
				if isVowel(refRunes[k]) {
					vowelIdx = append(vowelIdx, k)
				} else {
					consIdx = append(consIdx, k)
				}
			}
			refSpans = appendRuns(refSpans, ref.Start, vowelIdx, CategoryVowelDelete)
			refSpans = appendRuns(refSpans, ref.Start, consIdx, CategoryConsonantDelete)

		case charInsert:
			hypSpans = append(hypSpans, Span{
				Start:    hyp.Start + op.B1,
				End:      hyp.Start + op.B2,
				Category: CategoryCharInsert,
			})
		}
	}
	return refSpans, hypSpans
}

// appendRuns merges consecutive character indices into as few spans as
// possible and appends them to spans. indices must be sorted ascending, which
// callers guarantee by construction. base is added to every index.
func appendRuns(spans []Span, base int, indices []int, cat Category) []Span {
	if len(indices) == 0 {
		return spans
	}
	runStart := indices[0]
	prev := indices[0]
	for _, k := range indices[1:] {
		if k == prev+1 {
			prev = k
			continue
		}
		spans = append(spans, Span{Start: base + runStart, End: base + prev + 1, Category: cat})
		runStart = k
		prev = k
	}
	return append(spans, Span{Start: base + runStart, End: base + prev + 1, Category: cat})
}
