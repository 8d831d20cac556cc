// Package mock provides a test double for the asr.Recognizer interface.
package mock

import (
	"context"
	"sync"

	"github.com/elocute/elocute/pkg/provider/asr"
)

// Call records one Transcribe invocation.
type Call struct {
	// SampleCount is the number of audio samples passed.
	SampleCount int

	// Opts is the options value passed.
	Opts asr.Options
}

// Recognizer is a configurable asr.Recognizer double. Set Result and Err
// before use; every Transcribe call returns them and is recorded in Calls.
// Safe for concurrent use.
type Recognizer struct {
	// Result is returned by every Transcribe call.
	Result asr.Result

	// Err, when non-nil, is returned instead of Result.
	Err error

	mu    sync.Mutex
	calls []Call
}

// Compile-time assertion that Recognizer satisfies asr.Recognizer.
var _ asr.Recognizer = (*Recognizer)(nil)

// Transcribe records the call and returns the configured Result or Err.
// It respects context cancellation.
func (r *Recognizer) Transcribe(ctx context.Context, samples []float32, opts asr.Options) (asr.Result, error) {
	if err := ctx.Err(); err != nil {
		return asr.Result{}, err
	}

	r.mu.Lock()
	r.calls = append(r.calls, Call{SampleCount: len(samples), Opts: opts})
	r.mu.Unlock()

	if r.Err != nil {
		return asr.Result{}, r.Err
	}
	return r.Result, nil
}

// Calls returns a copy of the recorded invocations.
func (r *Recognizer) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}
