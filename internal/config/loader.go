package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	// Recognizer
	rec := cfg.Recognizer
	if rec.Name == "" {
		errs = append(errs, fmt.Errorf("recognizer.name is required; valid values: whisper, native, mock"))
	} else if !rec.Name.IsValid() {
		errs = append(errs, fmt.Errorf("recognizer.name %q is invalid; valid values: whisper, native, mock", rec.Name))
	}
	switch rec.Name {
	case RecognizerNative:
		if rec.ModelPath == "" {
			errs = append(errs, fmt.Errorf("recognizer.model_path is required when recognizer.name is native"))
		}
		if rec.BaseURL != "" {
			slog.Warn("recognizer.base_url is set but the native backend does not use it")
		}
	case RecognizerWhisper:
		if rec.BaseURL == "" {
			errs = append(errs, fmt.Errorf("recognizer.base_url is required when recognizer.name is whisper"))
		} else if _, err := url.Parse(rec.BaseURL); err != nil {
			errs = append(errs, fmt.Errorf("recognizer.base_url %q is not a valid URL: %w", rec.BaseURL, err))
		}
		if rec.ModelPath != "" {
			slog.Warn("recognizer.model_path is set but the whisper backend loads models server-side; use recognizer.model instead")
		}
	}
	if rec.Decode.Temperature < 0 || rec.Decode.Temperature > 1 {
		errs = append(errs, fmt.Errorf("recognizer.decode.temperature %.2f is out of range [0, 1]", rec.Decode.Temperature))
	}
	if rec.Decode.BeamSize < 0 {
		errs = append(errs, fmt.Errorf("recognizer.decode.beam_size %d must not be negative", rec.Decode.BeamSize))
	}
	if rec.Decode.NoSpeechThreshold < 0 || rec.Decode.NoSpeechThreshold > 1 {
		errs = append(errs, fmt.Errorf("recognizer.decode.no_speech_threshold %.2f is out of range [0, 1]", rec.Decode.NoSpeechThreshold))
	}

	// Storage
	if cfg.Storage.PostgresDSN == "" {
		slog.Warn("storage.postgres_dsn is empty; practice sessions will not be persisted")
	}

	return errors.Join(errs...)
}
