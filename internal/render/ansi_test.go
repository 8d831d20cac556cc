package render_test

import (
	"strings"
	"testing"

	"github.com/elocute/elocute/internal/render"
	"github.com/elocute/elocute/pkg/align"
)

func TestHighlight_NoSpans(t *testing.T) {
	t.Parallel()
	got := render.Highlight("the quick brown fox", nil)
	if got != "the quick brown fox" {
		t.Errorf("got %q, want plain text unchanged", got)
	}
}

func TestHighlight_TextPreserved(t *testing.T) {
	t.Parallel()
	text := "the quick brown fox"
	spans := []align.Span{
		{Start: 10, End: 15, Category: align.CategoryMissingWord},
		{Start: 4, End: 9, Category: align.CategoryReplace},
	}
	got := render.Highlight(text, spans)
	if render.Strip(got) != text {
		t.Errorf("stripped output = %q, want %q", render.Strip(got), text)
	}
	if !strings.Contains(got, "\x1b[91m") {
		t.Error("output should contain the missing-word color")
	}
	if !strings.Contains(got, "\x1b[0m") {
		t.Error("output should reset after a colored run")
	}
}

func TestHighlight_UnsortedAndOverlapping(t *testing.T) {
	t.Parallel()
	text := "abcdef"
	spans := []align.Span{
		{Start: 2, End: 6, Category: align.CategoryMissingWord},
		{Start: 0, End: 4, Category: align.CategoryVowelDelete},
	}
	got := render.Highlight(text, spans)
	if render.Strip(got) != text {
		t.Fatalf("stripped output = %q, want %q", render.Strip(got), text)
	}
	// The more specific vowel-delete color wins over the overlap.
	vowelIdx := strings.Index(got, "\x1b[31;1m")
	wordIdx := strings.Index(got, "\x1b[91m")
	if vowelIdx == -1 || wordIdx == -1 {
		t.Fatalf("expected both colors present, got %q", got)
	}
	if vowelIdx > wordIdx {
		t.Errorf("vowel-delete run should start before the missing-word run: %q", got)
	}
}

func TestHighlight_OutOfRangeClipped(t *testing.T) {
	t.Parallel()
	text := "short"
	spans := []align.Span{{Start: -3, End: 99, Category: align.CategoryReplace}}
	got := render.Highlight(text, spans)
	if render.Strip(got) != text {
		t.Errorf("stripped output = %q, want %q", render.Strip(got), text)
	}
}

func TestHighlight_RuneOffsets(t *testing.T) {
	t.Parallel()
	text := "héllo wörld"
	spans := []align.Span{{Start: 6, End: 11, Category: align.CategoryInsertedWord}}
	got := render.Highlight(text, spans)
	if render.Strip(got) != text {
		t.Errorf("stripped output = %q, want %q", render.Strip(got), text)
	}
	// The color starts right before the second word, not mid-rune.
	wantPrefix := "héllo \x1b[94m"
	if !strings.HasPrefix(got, wantPrefix) {
		t.Errorf("got %q, want prefix %q", got, wantPrefix)
	}
}

func TestStrip_PassesPlainTextThrough(t *testing.T) {
	t.Parallel()
	if got := render.Strip("no escapes here"); got != "no escapes here" {
		t.Errorf("got %q", got)
	}
}
