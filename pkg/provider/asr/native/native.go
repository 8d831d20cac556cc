// Package native provides an asr.Recognizer backed by the whisper.cpp CGO
// bindings, eliminating HTTP overhead entirely. The whisper.cpp static
// library (libwhisper.a) and headers (whisper.h) must be available at link
// time via LIBRARY_PATH and C_INCLUDE_PATH environment variables.
//
// The model is loaded once at construction and shared across all calls; each
// Transcribe creates its own whisper context, so concurrent calls do not
// interfere.
package native

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/elocute/elocute/pkg/provider/asr"
	"github.com/elocute/elocute/pkg/segment"
)

const defaultLanguage = "en"

// Compile-time assertion that Recognizer satisfies asr.Recognizer.
var _ asr.Recognizer = (*Recognizer)(nil)

// Option is a functional option for configuring a Recognizer.
type Option func(*Recognizer)

// WithLanguage sets the fallback language code used when a Transcribe call
// passes no language of its own. Defaults to "en".
func WithLanguage(lang string) Option {
	return func(r *Recognizer) { r.language = lang }
}

// Recognizer implements asr.Recognizer using the whisper.cpp Go bindings.
type Recognizer struct {
	model    whisperlib.Model
	language string
}

// New creates a Recognizer that loads the whisper.cpp model from the given
// ggml model file. The caller must call Close when the recogniser is no
// longer needed.
func New(modelPath string, opts ...Option) (*Recognizer, error) {
	if modelPath == "" {
		return nil, errors.New("native: modelPath must not be empty")
	}
	model, err := whisperlib.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("native: load model %q: %w", modelPath, err)
	}

	r := &Recognizer{
		model:    model,
		language: defaultLanguage,
	}
	for _, o := range opts {
		o(r)
	}
	return r, nil
}

// Close releases the whisper model. Must be called when the recogniser is no
// longer needed.
func (r *Recognizer) Close() error {
	if r.model != nil {
		return r.model.Close()
	}
	return nil
}

// Transcribe runs batch inference over samples using a fresh whisper context.
//
// Of the decode options, the bindings expose language selection; the
// remaining fields are engine hints this backend cannot forward and are
// ignored, per the pass-what-you-support contract of [asr.Options]. Segment
// timestamps come for free from whisper.cpp, so Options.Timestamps only
// controls whether they are included in the result. The bindings do not
// report per-segment log-probabilities; AvgLogProb is always nil.
func (r *Recognizer) Transcribe(ctx context.Context, samples []float32, opts asr.Options) (asr.Result, error) {
	if err := ctx.Err(); err != nil {
		return asr.Result{}, fmt.Errorf("native: context already cancelled: %w", err)
	}

	// Each context is NOT thread-safe, but the model can be shared across
	// goroutines.
	wctx, err := r.model.NewContext()
	if err != nil {
		return asr.Result{}, fmt.Errorf("native: create context: %w", err)
	}

	lang := opts.Language
	if lang == "" || lang == "auto" {
		lang = r.language
	}
	if err := wctx.SetLanguage(lang); err != nil {
		slog.Warn("native: failed to set language, using default", "language", lang, "error", err)
	}

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return asr.Result{}, fmt.Errorf("native: process audio: %w", err)
	}

	var (
		parts []string
		segs  []segment.Segment
	)
	for {
		s, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return asr.Result{}, fmt.Errorf("native: read segment: %w", err)
		}
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		parts = append(parts, text)
		if opts.Timestamps {
			segs = append(segs, segment.Segment{
				Text:  s.Text,
				Start: s.Start.Seconds(),
				End:   s.End.Seconds(),
			})
		}
	}

	return asr.Result{
		Text:     strings.Join(parts, " "),
		Segments: segs,
	}, nil
}
