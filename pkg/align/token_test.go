package align_test

import (
	"testing"

	"github.com/elocute/elocute/pkg/align"
)

func TestTokenize_OffsetsRoundTrip(t *testing.T) {
	t.Parallel()

	texts := []string{
		"the quick brown fox",
		"Hello, world! It's 9 o'clock.",
		"  leading and trailing  ",
		"tabs\tand\nnewlines",
		"underscore_word mixed_123",
		"héllo wörld — café",
	}

	for _, text := range texts {
		runes := []rune(text)
		for _, tok := range align.Tokenize(text) {
			if tok.Start >= tok.End {
				t.Errorf("Tokenize(%q): token %q has degenerate range [%d, %d)", text, tok.Text, tok.Start, tok.End)
			}
			got := string(runes[tok.Start:tok.End])
			if got != tok.Text {
				t.Errorf("Tokenize(%q): range [%d, %d) reads back %q, want %q", text, tok.Start, tok.End, got, tok.Text)
			}
		}
	}
}

func TestTokenize_WordBoundaries(t *testing.T) {
	t.Parallel()

	toks := align.Tokenize("the quick, brown fox!")
	want := []string{"the", "quick", "brown", "fox"}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}
	for i, w := range want {
		if toks[i].Text != w {
			t.Errorf("token %d = %q, want %q", i, toks[i].Text, w)
		}
	}
}

func TestTokenize_Empty(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"", "   ", "?!.,;:", "— …"} {
		if toks := align.Tokenize(text); len(toks) != 0 {
			t.Errorf("Tokenize(%q) = %d tokens, want 0", text, len(toks))
		}
	}
}

func TestTokenize_ApostropheSplits(t *testing.T) {
	t.Parallel()

	// Apostrophes are not word characters, so contractions split.
	toks := align.Tokenize("it's")
	if len(toks) != 2 || toks[0].Text != "it" || toks[1].Text != "s" {
		t.Fatalf("Tokenize(\"it's\") = %v, want [it s]", toks)
	}
}
