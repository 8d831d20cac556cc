// Package segment maps recogniser-emitted, timestamped transcript segments
// onto the character space of a flat transcript string, enabling the two
// lookups a playback UI needs: time → active segment (for playhead-synced
// highlighting) and character position → segment (for click-to-seek).
//
// All functions are pure and safe for concurrent use; [Ranges] values are
// immutable once built.
package segment

import "unicode/utf8"

// Segment is one recogniser-emitted transcript unit. Times are in seconds
// from the start of the audio. Segments arrive in emission order with
// non-decreasing start times; that ordering is the recogniser's contract, not
// something this package enforces.
//
// Duration, PauseBefore, and Confidence are derived fields filled in by
// [Augment]; they are zero (or nil) on freshly decoded segments. The JSON
// shape matches what the persistence collaborator stores per session.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`

	// AvgLogProb is the recogniser's mean token log-probability for this
	// segment, when reported. Nil when the recogniser provides none.
	AvgLogProb *float64 `json:"avg_logprob,omitempty"`

	// Duration is End − Start, floored at zero for malformed segments.
	Duration float64 `json:"duration"`

	// PauseBefore is the silent gap since the previous segment's end, floored
	// at zero. The first segment always has zero.
	PauseBefore float64 `json:"pause_before"`

	// Confidence is AvgLogProb mapped into [0, 1]; nil when AvgLogProb is nil.
	Confidence *float64 `json:"conf,omitempty"`
}

// Range maps the half-open rune range [StartChar, EndChar) of the flat
// transcript text to the time interval [Start, End] of the segment that
// produced it.
type Range struct {
	StartChar int
	EndChar   int
	Start     float64
	End       float64
}

// Ranges is the ordered list of segment ranges for one transcription result.
type Ranges []Range

// boundaryTolerance absorbs jitter at segment boundaries when matching a
// playback time against a segment's interval.
const boundaryTolerance = 0.05

// ConfidenceFromLogProb maps a recogniser's average log-probability to a
// [0, 1] confidence via clamp(lp + 1, 0, 1). This assumes log-probabilities
// rarely fall below −1; it is a behavioural-compatibility heuristic, not a
// calibrated confidence measure.
func ConfidenceFromLogProb(lp float64) float64 {
	conf := lp + 1.0
	if conf < 0 {
		return 0
	}
	if conf > 1 {
		return 1
	}
	return conf
}

// Augment returns a copy of segs with the derived fields filled in:
// Duration (end − start, floored at zero), PauseBefore (gap since the
// previous segment's end, floored at zero), and Confidence (from AvgLogProb,
// when present). segs itself is not modified.
//
// A malformed segment (End < Start) degrades to zero duration rather than
// aborting: fluency metrics lose a little accuracy but the result survives.
func Augment(segs []Segment) []Segment {
	out := make([]Segment, len(segs))

	prevEnd := 0.0
	havePrev := false
	for i, seg := range segs {
		seg.Duration = seg.End - seg.Start
		if seg.Duration < 0 {
			seg.Duration = 0
		}

		seg.PauseBefore = 0
		if havePrev {
			if gap := seg.Start - prevEnd; gap > 0 {
				seg.PauseBefore = gap
			}
		}
		prevEnd = seg.End
		havePrev = true

		if seg.AvgLogProb != nil {
			conf := ConfidenceFromLogProb(*seg.AvgLogProb)
			seg.Confidence = &conf
		}
		out[i] = seg
	}
	return out
}

// BuildTranscript concatenates the segment texts verbatim — no separator is
// inserted, segments already carry whatever whitespace the recogniser emitted
// — and records for each segment the rune range it occupies in the flat
// string together with its time interval. Segments with empty text are
// skipped entirely.
//
// The returned segments are augmented copies (see [Augment]) of exactly the
// segments that contributed text, parallel to the returned ranges.
func BuildTranscript(segs []Segment) (flat string, kept []Segment, ranges Ranges) {
	aug := Augment(segs)

	var b []byte
	cursor := 0
	for _, seg := range aug {
		if seg.Text == "" {
			continue
		}
		start := cursor
		b = append(b, seg.Text...)
		cursor += utf8.RuneCountInString(seg.Text)

		kept = append(kept, seg)
		ranges = append(ranges, Range{
			StartChar: start,
			EndChar:   cursor,
			Start:     seg.Start,
			End:       seg.End,
		})
	}
	return string(b), kept, ranges
}

// ActiveAt returns the index of the segment whose time interval (widened by a
// small boundary tolerance) contains t.
//
// The lookup is sticky: when current is a valid index and its segment still
// contains t, current is returned unchanged, avoiding flicker at exact
// boundaries during playback. When no segment contains t the previous value
// of current is returned, so a playhead sitting in an inter-segment pause
// keeps the last active highlight.
func (r Ranges) ActiveAt(t float64, current int) int {
	if len(r) == 0 {
		return -1
	}
	if current >= 0 && current < len(r) && r[current].contains(t) {
		return current
	}
	for i := range r {
		if r[i].contains(t) {
			return i
		}
	}
	return current
}

// AtChar returns the index of the segment whose character range contains pos.
// When pos lands in no range (a click in an inter-segment gap), the segment
// whose range midpoint is numerically closest is returned. Returns -1 only
// when r is empty.
func (r Ranges) AtChar(pos int) int {
	best := -1
	bestDist := 0.0
	for i, rng := range r {
		if pos >= rng.StartChar && pos < rng.EndChar {
			return i
		}
		mid := float64(rng.StartChar+rng.EndChar) / 2
		dist := mid - float64(pos)
		if dist < 0 {
			dist = -dist
		}
		if best == -1 || dist < bestDist {
			best = i
			bestDist = dist
		}
	}
	return best
}

// contains reports whether t falls inside the range's time interval widened
// by the boundary tolerance.
func (rng Range) contains(t float64) bool {
	return t >= rng.Start-boundaryTolerance && t <= rng.End+boundaryTolerance
}
