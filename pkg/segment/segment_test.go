package segment_test

import (
	"math"
	"testing"

	"github.com/elocute/elocute/pkg/segment"
)

func fp(v float64) *float64 { return &v }

func TestConfidenceFromLogProb(t *testing.T) {
	t.Parallel()
	cases := []struct {
		lp   float64
		want float64
	}{
		{-0.1, 0.9},
		{0.0, 1.0},
		{-1.0, 0.0},
		{-2.5, 0.0},
		{0.5, 1.0},
	}
	for _, tc := range cases {
		if got := segment.ConfidenceFromLogProb(tc.lp); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("ConfidenceFromLogProb(%v) = %v, want %v", tc.lp, got, tc.want)
		}
	}
}

func TestAugment(t *testing.T) {
	t.Parallel()
	segs := []segment.Segment{
		{Text: "hello ", Start: 0.0, End: 1.0, AvgLogProb: fp(-0.1)},
		{Text: "world", Start: 1.2, End: 2.0, AvgLogProb: fp(-0.05)},
		{Text: "late", Start: 1.8, End: 2.5}, // overlaps previous end
	}
	aug := segment.Augment(segs)

	if aug[0].PauseBefore != 0 {
		t.Errorf("first segment pause = %v, want 0", aug[0].PauseBefore)
	}
	if math.Abs(aug[1].PauseBefore-0.2) > 1e-9 {
		t.Errorf("second segment pause = %v, want 0.2", aug[1].PauseBefore)
	}
	if aug[2].PauseBefore != 0 {
		t.Errorf("overlapping segment pause = %v, want 0 (floored)", aug[2].PauseBefore)
	}
	if math.Abs(aug[0].Duration-1.0) > 1e-9 || math.Abs(aug[1].Duration-0.8) > 1e-9 {
		t.Errorf("durations = %v, %v", aug[0].Duration, aug[1].Duration)
	}
	if aug[0].Confidence == nil || math.Abs(*aug[0].Confidence-0.9) > 1e-9 {
		t.Errorf("confidence = %v, want 0.9", aug[0].Confidence)
	}
	if aug[2].Confidence != nil {
		t.Errorf("confidence without logprob should stay nil, got %v", *aug[2].Confidence)
	}

	// Input must be untouched.
	if segs[1].PauseBefore != 0 || segs[0].Duration != 0 {
		t.Error("Augment must not modify its input")
	}
}

func TestAugment_MalformedSegment(t *testing.T) {
	t.Parallel()
	aug := segment.Augment([]segment.Segment{{Text: "x", Start: 2.0, End: 1.0}})
	if aug[0].Duration != 0 {
		t.Errorf("duration = %v, want 0 for end < start", aug[0].Duration)
	}
}

func TestBuildTranscript(t *testing.T) {
	t.Parallel()
	segs := []segment.Segment{
		{Text: "hello ", Start: 0.0, End: 1.0, AvgLogProb: fp(-0.1)},
		{Text: "", Start: 1.0, End: 1.2}, // skipped
		{Text: "world", Start: 1.2, End: 2.0, AvgLogProb: fp(-0.05)},
	}
	flat, kept, ranges := segment.BuildTranscript(segs)

	if flat != "hello world" {
		t.Errorf("flat = %q, want %q", flat, "hello world")
	}
	if len(kept) != 2 || len(ranges) != 2 {
		t.Fatalf("kept %d segments, %d ranges; want 2 and 2", len(kept), len(ranges))
	}
	if ranges[0] != (segment.Range{StartChar: 0, EndChar: 6, Start: 0.0, End: 1.0}) {
		t.Errorf("ranges[0] = %+v", ranges[0])
	}
	if ranges[1] != (segment.Range{StartChar: 6, EndChar: 11, Start: 1.2, End: 2.0}) {
		t.Errorf("ranges[1] = %+v", ranges[1])
	}
	// Kept segments are parallel to ranges and carry derived fields.
	if kept[1].Text != "world" {
		t.Errorf("kept[1].Text = %q", kept[1].Text)
	}
	if math.Abs(kept[1].PauseBefore-0.2) > 1e-9 {
		t.Errorf("kept[1].PauseBefore = %v, want 0.2", kept[1].PauseBefore)
	}
}

func TestBuildTranscript_RuneOffsets(t *testing.T) {
	t.Parallel()
	segs := []segment.Segment{
		{Text: "héllo ", Start: 0, End: 1},
		{Text: "wörld", Start: 1, End: 2},
	}
	flat, _, ranges := segment.BuildTranscript(segs)
	if flat != "héllo wörld" {
		t.Fatalf("flat = %q", flat)
	}
	if ranges[1].StartChar != 6 || ranges[1].EndChar != 11 {
		t.Errorf("second range = %+v, want rune offsets [6, 11)", ranges[1])
	}
}

func TestBuildTranscript_Empty(t *testing.T) {
	t.Parallel()
	flat, kept, ranges := segment.BuildTranscript(nil)
	if flat != "" || kept != nil || ranges != nil {
		t.Errorf("empty input should yield zero values, got %q %v %v", flat, kept, ranges)
	}
}

func TestActiveAt(t *testing.T) {
	t.Parallel()
	ranges := segment.Ranges{
		{StartChar: 0, EndChar: 6, Start: 0.0, End: 1.0},
		{StartChar: 6, EndChar: 11, Start: 1.5, End: 2.0},
	}

	if got := ranges.ActiveAt(0.5, -1); got != 0 {
		t.Errorf("ActiveAt(0.5) = %d, want 0", got)
	}
	if got := ranges.ActiveAt(1.7, 0); got != 1 {
		t.Errorf("ActiveAt(1.7) = %d, want 1", got)
	}
	// Boundary jitter within tolerance keeps the current segment.
	if got := ranges.ActiveAt(1.04, 0); got != 0 {
		t.Errorf("ActiveAt(1.04, current=0) = %d, want sticky 0", got)
	}
	// A playhead in the pause between segments keeps the last highlight.
	if got := ranges.ActiveAt(1.25, 0); got != 0 {
		t.Errorf("ActiveAt(1.25, current=0) = %d, want previous 0", got)
	}
	// Same pause with no prior highlight stays unhighlighted.
	if got := ranges.ActiveAt(1.25, -1); got != -1 {
		t.Errorf("ActiveAt(1.25, current=-1) = %d, want -1", got)
	}
	if got := segment.Ranges(nil).ActiveAt(0.5, 3); got != -1 {
		t.Errorf("empty ranges ActiveAt = %d, want -1", got)
	}
}

func TestAtChar(t *testing.T) {
	t.Parallel()
	ranges := segment.Ranges{
		{StartChar: 0, EndChar: 6, Start: 0.0, End: 1.0},
		{StartChar: 8, EndChar: 13, Start: 1.5, End: 2.0},
	}

	if got := ranges.AtChar(3); got != 0 {
		t.Errorf("AtChar(3) = %d, want 0", got)
	}
	if got := ranges.AtChar(9); got != 1 {
		t.Errorf("AtChar(9) = %d, want 1", got)
	}
	// A position in the gap resolves to the nearest midpoint.
	if got := ranges.AtChar(7); got != 1 {
		t.Errorf("AtChar(7) = %d, want nearest segment 1", got)
	}
	if got := ranges.AtChar(100); got != 1 {
		t.Errorf("AtChar(100) = %d, want last segment", got)
	}
	if got := segment.Ranges(nil).AtChar(0); got != -1 {
		t.Errorf("empty ranges AtChar = %d, want -1", got)
	}
}

func TestRoundTrip_TimeAndChar(t *testing.T) {
	t.Parallel()
	segs := []segment.Segment{
		{Text: "one ", Start: 0.0, End: 0.8},
		{Text: "two ", Start: 1.0, End: 1.8},
		{Text: "three", Start: 2.0, End: 2.9},
	}
	_, _, ranges := segment.BuildTranscript(segs)

	// Clicking inside each range seeks to the segment whose interval then
	// contains its own start time.
	for i, rng := range ranges {
		if got := ranges.AtChar(rng.StartChar); got != i {
			t.Errorf("AtChar(%d) = %d, want %d", rng.StartChar, got, i)
		}
		if got := ranges.ActiveAt(rng.Start, -1); got != i {
			t.Errorf("ActiveAt(%v) = %d, want %d", rng.Start, got, i)
		}
	}
}
