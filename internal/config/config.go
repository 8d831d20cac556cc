// Package config provides the configuration schema and loader for the
// elocute practice scorer.
package config

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// RecognizerName selects the speech-recognition backend.
type RecognizerName string

const (
	// RecognizerWhisper talks to a whisper.cpp HTTP server.
	RecognizerWhisper RecognizerName = "whisper"

	// RecognizerNative loads a ggml model through the whisper.cpp CGO bindings.
	RecognizerNative RecognizerName = "native"

	// RecognizerMock returns canned results; useful for UI development and tests.
	RecognizerMock RecognizerName = "mock"
)

// IsValid reports whether n is a recognised backend name.
func (n RecognizerName) IsValid() bool {
	switch n {
	case RecognizerWhisper, RecognizerNative, RecognizerMock:
		return true
	}
	return false
}

// Config is the root configuration structure for elocute. It is typically
// loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Recognizer RecognizerConfig `yaml:"recognizer"`
	Storage    StorageConfig    `yaml:"storage"`
}

// ServerConfig holds logging and telemetry settings.
type ServerConfig struct {
	// MetricsAddr is the TCP address the Prometheus /metrics endpoint listens
	// on (e.g. ":9090"). Empty disables the endpoint.
	MetricsAddr string `yaml:"metrics_addr"`

	// LogLevel controls verbosity. Defaults to "info".
	LogLevel LogLevel `yaml:"log_level"`
}

// RecognizerConfig selects and configures the speech-recognition backend.
type RecognizerConfig struct {
	// Name selects the backend implementation.
	Name RecognizerName `yaml:"name"`

	// ModelPath is the ggml model file loaded by the native backend.
	ModelPath string `yaml:"model_path"`

	// BaseURL is the whisper.cpp server address used by the whisper backend
	// (e.g. "http://localhost:8080").
	BaseURL string `yaml:"base_url"`

	// Model is the model identifier forwarded to the whisper.cpp server.
	// Empty uses whichever model the server was started with.
	Model string `yaml:"model"`

	// Decode holds the decode options forwarded verbatim to the backend.
	Decode DecodeConfig `yaml:"decode"`
}

// DecodeConfig mirrors the recogniser decode options. elocute does not
// interpret these values; they pass straight through to the backend.
type DecodeConfig struct {
	// Language is the recognition language code, or "auto" for detection.
	Language string `yaml:"language"`

	// Temperature is the decoding temperature. 0 selects greedy decoding.
	Temperature float64 `yaml:"temperature"`

	// BeamSize is the beam width; 1 or 0 selects greedy decoding.
	BeamSize int `yaml:"beam_size"`

	// Timestamps requests per-segment timestamps, enabling fluency metrics
	// and playhead-synced highlighting.
	Timestamps bool `yaml:"timestamps"`

	// NoSpeechThreshold is the engine's silence-detection cutoff.
	NoSpeechThreshold float64 `yaml:"no_speech_threshold"`

	// ConditionOnPrevText lets the engine condition each segment's decode on
	// the text decoded so far.
	ConditionOnPrevText bool `yaml:"condition_on_previous_text"`
}

// StorageConfig holds settings for the practice-session store.
type StorageConfig struct {
	// PostgresDSN is the PostgreSQL connection string for the session store.
	// Empty disables persistence; evaluations are still printed, just not
	// recorded.
	PostgresDSN string `yaml:"postgres_dsn"`
}
