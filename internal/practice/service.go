// Package practice orchestrates one scoring run: it invokes the configured
// speech recogniser, computes delivery metrics against the reference script,
// builds the highlight spans for both texts, and maps timestamped segments
// onto the transcript for playhead-synced rendering.
//
// The package holds no state between calls beyond the injected recogniser
// handle; a [Service] may be shared freely as long as its dependencies are.
package practice

import (
	"context"
	"time"

	"github.com/elocute/elocute/internal/observe"
	"github.com/elocute/elocute/pkg/align"
	"github.com/elocute/elocute/pkg/provider/asr"
	"github.com/elocute/elocute/pkg/score"
	"github.com/elocute/elocute/pkg/segment"
)

// RecognitionError wraps a recogniser failure. When Evaluate returns one, no
// metrics, spans, or segment mappings were computed — there is no result at
// all, as opposed to a degraded result with scores but no highlighting.
type RecognitionError struct {
	// Cause is the underlying recogniser error.
	Cause error
}

// Error implements the error interface.
func (e *RecognitionError) Error() string {
	return "recognition failed: " + e.Cause.Error()
}

// Unwrap returns the underlying recogniser error.
func (e *RecognitionError) Unwrap() error {
	return e.Cause
}

// Evaluation is the combined result of one practice run, bundling everything
// the caller needs to render and persist: the numeric scores, the display
// transcript, the highlight spans for both texts, and — when the recogniser
// produced timestamps — the augmented segments and their character ranges.
type Evaluation struct {
	// Result holds the numeric scoring output.
	Result score.Result

	// Transcript is the hypothesis display text: the flat text assembled
	// from segments when the recogniser produced them, the raw hypothesis
	// otherwise. Span offsets in TranscriptSpans refer to this string.
	Transcript string

	// ScriptSpans highlights errors on the reference script text.
	ScriptSpans []align.Span

	// TranscriptSpans highlights errors on Transcript.
	TranscriptSpans []align.Span

	// Segments are the augmented recogniser segments that contributed text,
	// parallel to Ranges. Nil without timestamps.
	Segments []segment.Segment

	// Ranges maps Transcript character ranges to segment time intervals.
	// Nil without timestamps.
	Ranges segment.Ranges

	// Degraded is true when span building or segment mapping failed and the
	// evaluation fell back to the raw hypothesis with no highlighting.
	// Scores are still valid; callers should render the transcript plain.
	Degraded bool
}

// Option is a functional option for configuring a [Service].
type Option func(*Service)

// WithDecodeOptions sets the decode configuration forwarded verbatim to the
// recogniser on every call. The zero value requests greedy decoding without
// timestamps.
func WithDecodeOptions(opts asr.Options) Option {
	return func(s *Service) {
		s.decodeOpts = opts
	}
}

// WithRecognizerName sets the recogniser label used in metrics and logs.
// Default: "unknown".
func WithRecognizerName(name string) Option {
	return func(s *Service) {
		s.recName = name
	}
}

// WithMetrics replaces the [observe.Metrics] instance used for
// instrumentation. Defaults to [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// Service runs practice evaluations against an injected recogniser. It is
// safe for concurrent use; each Evaluate call is independent.
type Service struct {
	rec        asr.Recognizer
	recName    string
	decodeOpts asr.Options
	metrics    *observe.Metrics
}

// New constructs a [Service] around the given recogniser. The recogniser is
// a required dependency — settings changes construct a new Service around a
// new handle rather than mutating this one.
func New(rec asr.Recognizer, opts ...Option) *Service {
	s := &Service{
		rec:     rec,
		recName: "unknown",
	}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	return s
}

// Evaluate transcribes samples and scores the result against script.
//
// On recogniser failure a [*RecognitionError] is returned and nothing is
// computed. Any failure in the later, non-essential stages (span building,
// segment mapping) degrades the evaluation to scores-plus-plain-transcript
// instead of failing: partial results beat none, and highlighting is never a
// hard dependency for the scores to reach the caller.
func (s *Service) Evaluate(ctx context.Context, script string, samples []float32) (*Evaluation, error) {
	ctx, span := observe.StartSpan(ctx, "practice.Evaluate")
	defer span.End()

	s.metrics.ActiveEvaluations.Add(ctx, 1)
	defer s.metrics.ActiveEvaluations.Add(ctx, -1)

	log := observe.Logger(ctx)

	start := time.Now()
	result, err := s.rec.Transcribe(ctx, samples, s.decodeOpts)
	s.metrics.TranscriptionDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		s.metrics.RecordRecognizerRequest(ctx, s.recName, "error")
		s.metrics.RecordRecognizerError(ctx, s.recName)
		log.Error("recognition failed", "recognizer", s.recName, "err", err)
		return nil, &RecognitionError{Cause: err}
	}
	s.metrics.RecordRecognizerRequest(ctx, s.recName, "ok")

	ev := &Evaluation{Transcript: result.Text}

	scoreStart := time.Now()
	ev.Result = s.computeScores(script, result)
	s.metrics.ScoringDuration.Record(ctx, time.Since(scoreStart).Seconds())

	if !s.buildHighlights(script, result, ev) {
		ev.Transcript = result.Text
		ev.ScriptSpans = nil
		ev.TranscriptSpans = nil
		ev.Segments = nil
		ev.Ranges = nil
		ev.Degraded = true
		s.metrics.HighlightFallbacks.Add(ctx, 1)
		log.Warn("highlight construction failed, falling back to plain transcript")
	}

	log.Info("evaluation complete",
		"recognizer", s.recName,
		"wer", ev.Result.WER,
		"cer", ev.Result.CER,
		"score", ev.Result.Score,
		"segments", len(ev.Segments),
		"degraded", ev.Degraded,
	)
	return ev, nil
}

// computeScores runs the metrics engine, shielding the caller from panics in
// malformed-input corner cases: scoring falls back to a bare result carrying
// only the hypothesis text.
func (s *Service) computeScores(script string, result asr.Result) (res score.Result) {
	defer func() {
		if r := recover(); r != nil {
			res = score.Result{Hypothesis: result.Text}
		}
	}()
	return score.Compute(script, result.Text, result.Segments)
}

// buildHighlights fills in the span and segment fields of ev. It reports
// false when anything panics, leaving the caller to reset ev to the plain
// fallback state.
func (s *Service) buildHighlights(script string, result asr.Result, ev *Evaluation) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()

	hypText := result.Text
	if len(result.Segments) > 0 {
		flat, kept, ranges := segment.BuildTranscript(result.Segments)
		ev.Transcript = flat
		ev.Segments = kept
		ev.Ranges = ranges
		hypText = flat
	}

	ev.ScriptSpans, ev.TranscriptSpans = align.BuildSpans(script, hypText)
	return true
}
