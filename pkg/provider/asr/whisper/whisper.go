// Package whisper provides an asr.Recognizer backed by a running
// whisper.cpp server binary (which exposes a REST API at POST /inference).
//
// Audio samples are wrapped in a RIFF/WAV container and submitted as a single
// multipart batch request; the server's verbose JSON response carries the
// full hypothesis text and, when timestamps were requested, the per-segment
// time ranges and average log-probabilities the scoring core consumes.
//
// Usage:
//
//	rec, err := whisper.New("http://localhost:8080",
//	    whisper.WithModel("base.en"),
//	)
//	result, err := rec.Transcribe(ctx, samples, asr.Options{Language: "en", Timestamps: true})
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/elocute/elocute/pkg/provider/asr"
	"github.com/elocute/elocute/pkg/segment"
)

// defaultTimeout bounds one inference round-trip. Batch transcription of a
// practice take is seconds, not minutes.
const defaultTimeout = 120 * time.Second

// Compile-time assertion that Recognizer implements asr.Recognizer.
var _ asr.Recognizer = (*Recognizer)(nil)

// Option is a functional option for configuring a Recognizer.
type Option func(*Recognizer)

// WithModel sets the model identifier forwarded to the whisper.cpp server
// (e.g. "base.en", "small"). When empty the server uses whichever model it
// was started with — this is the default.
func WithModel(model string) Option {
	return func(r *Recognizer) {
		r.model = model
	}
}

// WithHTTPClient replaces the HTTP client used for inference requests.
// Mainly useful in tests.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Recognizer) {
		r.httpClient = c
	}
}

// Recognizer implements asr.Recognizer against a whisper.cpp HTTP server.
// It is stateless between calls and safe for concurrent use.
type Recognizer struct {
	serverURL  string
	model      string
	httpClient *http.Client
}

// New creates a Recognizer that connects to the whisper.cpp HTTP server at
// serverURL (e.g. "http://localhost:8080"). serverURL must be non-empty.
func New(serverURL string, opts ...Option) (*Recognizer, error) {
	if serverURL == "" {
		return nil, errors.New("whisper: serverURL must not be empty")
	}
	r := &Recognizer{
		serverURL:  serverURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(r)
	}
	return r, nil
}

// inferenceResponse is the verbose JSON shape returned by the whisper.cpp
// server. Segment times are seconds.
type inferenceResponse struct {
	Text     string `json:"text"`
	Segments []struct {
		Text       string   `json:"text"`
		Start      float64  `json:"start"`
		End        float64  `json:"end"`
		AvgLogProb *float64 `json:"avg_logprob"`
	} `json:"segments"`
}

// Transcribe encodes samples as WAV and POSTs them to the whisper.cpp
// /inference endpoint as multipart/form-data, forwarding the decode options
// as form fields. The server applies the options it understands; unknown
// fields are ignored server-side.
func (r *Recognizer) Transcribe(ctx context.Context, samples []float32, opts asr.Options) (asr.Result, error) {
	wav := encodeWAV(float32ToPCM(samples), asr.SampleRate, 1)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", "audio.wav")
	if err != nil {
		return asr.Result{}, fmt.Errorf("whisper: create form file: %w", err)
	}
	if _, err := fw.Write(wav); err != nil {
		return asr.Result{}, fmt.Errorf("whisper: write wav data: %w", err)
	}

	fields := map[string]string{
		"temperature":         strconv.FormatFloat(opts.Temperature, 'f', -1, 64),
		"no_speech_threshold": strconv.FormatFloat(opts.NoSpeechThreshold, 'f', -1, 64),
		"condition_on_prev":   strconv.FormatBool(opts.ConditionOnPrevText),
	}
	if opts.Language != "" {
		fields["language"] = opts.Language
	}
	if opts.BeamSize > 0 {
		fields["beam_size"] = strconv.Itoa(opts.BeamSize)
	}
	if r.model != "" {
		fields["model"] = r.model
	}
	if opts.Timestamps {
		fields["response_format"] = "verbose_json"
	} else {
		fields["response_format"] = "json"
	}
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return asr.Result{}, fmt.Errorf("whisper: write %s field: %w", name, err)
		}
	}

	if err := mw.Close(); err != nil {
		return asr.Result{}, fmt.Errorf("whisper: close multipart writer: %w", err)
	}

	endpoint := r.serverURL + "/inference"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return asr.Result{}, fmt.Errorf("whisper: create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return asr.Result{}, fmt.Errorf("whisper: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return asr.Result{}, fmt.Errorf("whisper: server returned HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return asr.Result{}, fmt.Errorf("whisper: read response body: %w", err)
	}

	var decoded inferenceResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return asr.Result{}, fmt.Errorf("whisper: parse JSON response: %w", err)
	}

	result := asr.Result{Text: decoded.Text}
	for _, s := range decoded.Segments {
		result.Segments = append(result.Segments, segment.Segment{
			Text:       s.Text,
			Start:      s.Start,
			End:        s.End,
			AvgLogProb: s.AvgLogProb,
		})
	}
	return result, nil
}
