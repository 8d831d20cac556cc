// Package asr defines the Recognizer interface for batch speech-recognition
// backends.
//
// A recogniser wraps a speech-to-text engine (a local whisper.cpp model, a
// whisper.cpp HTTP server, or a test double) behind a single blocking call:
// audio samples in, hypothesis text and optional timestamped segments out.
// Recognition may take seconds for long audio; callers are expected to run it
// off any interactive thread and to pass a context for cancellation.
//
// Implementations must be safe for concurrent use.
package asr

import (
	"context"

	"github.com/elocute/elocute/pkg/segment"
)

// SampleRate is the audio sample rate every Recognizer expects, in Hz.
// Callers resample before transcribing; 16 kHz mono is the native rate of
// whisper-family models.
const SampleRate = 16000

// Options carries the decode configuration forwarded to the recognition
// engine. The scoring core never interprets these values — they pass through
// to whichever backend is configured, and backends apply the subset they
// support.
type Options struct {
	// Language is the language code for recognition (e.g. "en", "de"), or
	// "auto" / empty for engine-side detection.
	Language string

	// Temperature is the decoding temperature. 0 selects greedy decoding.
	Temperature float64

	// BeamSize is the beam width for beam-search decoding. 1 or 0 selects
	// greedy decoding.
	BeamSize int

	// Timestamps requests per-segment timestamps in the result. Without it
	// backends may return text only.
	Timestamps bool

	// NoSpeechThreshold is the engine's silence-detection cutoff.
	NoSpeechThreshold float64

	// ConditionOnPrevText lets the engine condition each segment's decode on
	// the text decoded so far.
	ConditionOnPrevText bool
}

// Result is one recognition outcome: the full hypothesis text plus, when the
// backend produced them, the timestamped segments it was assembled from.
// Segments carry only the recogniser-emitted fields; derived fields are
// filled in downstream by [segment.Augment].
type Result struct {
	// Text is the complete hypothesis transcript.
	Text string

	// Segments holds the timestamped units the hypothesis was assembled from,
	// in emission order. Nil when the backend does not produce timestamps or
	// when Options.Timestamps was false.
	Segments []segment.Segment
}

// Recognizer is the abstraction over any batch speech-recognition backend.
//
// Transcribe blocks until recognition completes or ctx is cancelled. samples
// must be mono float32 PCM at [SampleRate], normalised to [-1, 1].
// Implementations must be safe for concurrent use; each call is independent.
type Recognizer interface {
	Transcribe(ctx context.Context, samples []float32, opts Options) (Result, error)
}
