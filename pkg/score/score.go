// Package score computes the delivery metrics for one practice run: word and
// character error rates against the reference script, a bounded 1–5 clarity
// score, and — when timestamped segments are available — fluency statistics
// (articulation rate, pause ratio, filled pauses, mean confidence).
//
// Metric arithmetic runs over a normalised form of both texts (lower-cased,
// punctuation stripped, whitespace collapsed). The normalised form never
// leaks into display offsets; highlighting works on the original texts via
// the align package.
//
// All functions are pure and safe for concurrent use.
package score

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/antzucaro/matchr"

	"github.com/elocute/elocute/pkg/align"
	"github.com/elocute/elocute/pkg/segment"
)

// Sigmoid parameters for mapping clarity onto the 1–5 score scale. The curve
// is centred at 80% clarity — a WER around 0.20 is the "passable" inflection
// point — with diminishing returns towards both extremes, so a near-perfect
// take is not over-rewarded and one dropped word in a short script is not
// over-punished.
const (
	scoreMidpoint  = 0.80
	scoreSteepness = 20.0
)

// filledPauses is the closed set of disfluency tokens counted as filled
// pauses in the normalised hypothesis.
var filledPauses = map[string]struct{}{
	"um":  {},
	"uh":  {},
	"erm": {},
	"er":  {},
	"hmm": {},
}

// Result is the complete output of one scoring run. It is constructed fresh
// per call, immutable once returned, and owned by the caller.
type Result struct {
	// Hypothesis is the recognised text the metrics were computed against,
	// exactly as passed in.
	Hypothesis string `json:"hypothesis"`

	// WER is the word error rate: (substitutions + deletions + insertions)
	// divided by the reference word count. 0 for an empty reference.
	WER float64 `json:"wer"`

	// CER is the character error rate over the normalised texts. 0 for an
	// empty reference.
	CER float64 `json:"cer"`

	// Clarity is 1 − WER, clamped to [0, 1].
	Clarity float64 `json:"clarity"`

	// Score maps clarity onto a 1.0–5.0 scale via a logistic curve centred at
	// 80% clarity.
	Score float64 `json:"score"`

	// Substitutions, Deletions, and Insertions break the word edit distance
	// down by operation. RefWords is the reference word count the rates are
	// relative to.
	Substitutions int `json:"substitutions"`
	Deletions     int `json:"deletions"`
	Insertions    int `json:"insertions"`
	RefWords      int `json:"ref_words"`

	// SoundAlike counts substituted word pairs whose Double Metaphone codes
	// overlap — words that sound right but were recognised (or pronounced)
	// differently, such as homophones.
	SoundAlike int `json:"sound_alike"`

	// ArticulationRate is the speaking rate in words per minute with pauses
	// excluded. Zero when no segments were provided or speech time is
	// negligible.
	ArticulationRate float64 `json:"artic_rate"`

	// PauseRatio is pause time divided by total elapsed time. Zero when no
	// segments were provided.
	PauseRatio float64 `json:"pause_ratio"`

	// FilledPauses counts hypothesis tokens from the filled-pause set
	// (um, uh, erm, er, hmm).
	FilledPauses int `json:"filled_pauses"`

	// AvgConfidence is the mean per-segment confidence, or nil when no
	// segment reported a log-probability (or no segments were provided).
	AvgConfidence *float64 `json:"avg_conf,omitempty"`
}

// Normalize lower-cases text, removes every character that is neither a word
// character nor whitespace, collapses whitespace runs to single spaces, and
// trims. This form is used only for metric arithmetic, never for display
// offsets.
func Normalize(text string) string {
	lower := strings.ToLower(text)
	cleaned := strings.Map(func(r rune) rune {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, lower)
	return strings.Join(strings.Fields(cleaned), " ")
}

// Compute scores hypText against refText. segs may be nil or empty, in which
// case the fluency fields stay at their zero values; otherwise segments are
// augmented with durations and pauses (see [segment.Augment]) and the fluency
// statistics are derived from them.
//
// The degenerate case of an empty reference and empty hypothesis is defined,
// not special-cased: WER and CER are 0, clarity is 1, and the score follows
// the logistic formula at full clarity.
func Compute(refText, hypText string, segs []segment.Segment) Result {
	res := Result{Hypothesis: hypText}

	refNorm := Normalize(refText)
	hypNorm := Normalize(hypText)
	refWords := fields(refNorm)
	hypWords := fields(hypNorm)
	res.RefWords = len(refWords)

	ops := align.AlignWords(refWords, hypWords)
	for _, op := range ops {
		switch op.Kind {
		case align.OpSubstitute:
			res.Substitutions++
			if soundsAlike(refWords[op.Ref], hypWords[op.Hyp]) {
				res.SoundAlike++
			}
		case align.OpDelete:
			res.Deletions++
		case align.OpInsert:
			res.Insertions++
		}
	}

	if res.RefWords > 0 {
		res.WER = float64(res.Substitutions+res.Deletions+res.Insertions) / float64(res.RefWords)
	}

	if refLen := utf8.RuneCountInString(refNorm); refLen > 0 {
		res.CER = float64(matchr.Levenshtein(refNorm, hypNorm)) / float64(refLen)
	}

	res.Clarity = clamp(1.0-res.WER, 0, 1)
	res.Score = ScoreFromClarity(res.Clarity)

	res.FilledPauses = countFilledPauses(hypWords)

	if len(segs) > 0 {
		res.applyFluency(segment.Augment(segs), len(hypWords))
	}

	return res
}

// ScoreFromClarity maps clarity onto the 1.0–5.0 scale:
//
//	score = 1 + 4 / (1 + exp(−20·(clarity − 0.80)))
//
// clamped to [1, 5]. The mapping is monotonically non-decreasing and returns
// exactly 3.0 at the 80% midpoint.
func ScoreFromClarity(clarity float64) float64 {
	s := 1.0 + 4.0/(1.0+math.Exp(-scoreSteepness*(clarity-scoreMidpoint)))
	return clamp(s, 1, 5)
}

// applyFluency fills in the segment-derived fields from augmented segments.
func (r *Result) applyFluency(segs []segment.Segment, hypWordCount int) {
	var speechTime, pauseTime float64
	var confSum float64
	confCount := 0

	for _, seg := range segs {
		speechTime += seg.Duration
		pauseTime += seg.PauseBefore
		if seg.Confidence != nil {
			confSum += *seg.Confidence
			confCount++
		}
	}

	const eps = 1e-6

	if speechTime > eps {
		r.ArticulationRate = float64(hypWordCount) * 60.0 / speechTime
	}

	// Elapsed wall time from first start to last end; a degenerate span falls
	// back to speech plus pause time.
	elapsed := segs[len(segs)-1].End - segs[0].Start
	if elapsed < 0 {
		elapsed = 0
	}
	denom := elapsed
	if denom <= eps {
		denom = speechTime + pauseTime
	}
	if denom > eps {
		r.PauseRatio = pauseTime / denom
	}

	if confCount > 0 {
		avg := confSum / float64(confCount)
		r.AvgConfidence = &avg
	}
}

// soundsAlike reports whether two words share at least one Double Metaphone
// code, i.e. they belong to the same homophone class for ranking purposes.
func soundsAlike(a, b string) bool {
	pa, sa := matchr.DoubleMetaphone(a)
	pb, sb := matchr.DoubleMetaphone(b)
	for _, ca := range []string{pa, sa} {
		if ca == "" {
			continue
		}
		if ca == pb || (sb != "" && ca == sb) {
			return true
		}
	}
	return false
}

// countFilledPauses counts normalised hypothesis tokens from the closed
// filled-pause set.
func countFilledPauses(words []string) int {
	n := 0
	for _, w := range words {
		if _, ok := filledPauses[w]; ok {
			n++
		}
	}
	return n
}

// fields splits a normalised text into words. An empty string yields nil
// rather than a single empty field.
func fields(norm string) []string {
	if norm == "" {
		return nil
	}
	return strings.Fields(norm)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
