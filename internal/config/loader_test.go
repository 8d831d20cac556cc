package config_test

import (
	"strings"
	"testing"

	"github.com/elocute/elocute/internal/config"
)

func TestLoadFromReader_FullConfig(t *testing.T) {
	t.Parallel()
	yaml := `
server:
  metrics_addr: ":9090"
  log_level: debug
recognizer:
  name: whisper
  base_url: http://localhost:8080
  model: large-v3
  decode:
    language: en
    temperature: 0.2
    beam_size: 5
    timestamps: true
    no_speech_threshold: 0.6
    condition_on_previous_text: true
storage:
  postgres_dsn: postgres://localhost/elocute
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Recognizer.Name != config.RecognizerWhisper {
		t.Errorf("recognizer name = %q, want whisper", cfg.Recognizer.Name)
	}
	if cfg.Recognizer.BaseURL != "http://localhost:8080" {
		t.Errorf("base_url = %q", cfg.Recognizer.BaseURL)
	}
	if cfg.Recognizer.Decode.BeamSize != 5 {
		t.Errorf("beam_size = %d, want 5", cfg.Recognizer.Decode.BeamSize)
	}
	if !cfg.Recognizer.Decode.Timestamps {
		t.Error("timestamps should be true")
	}
	if cfg.Server.LogLevel != config.LogDebug {
		t.Errorf("log_level = %q, want debug", cfg.Server.LogLevel)
	}
}

func TestLoadFromReader_UnknownFieldRejected(t *testing.T) {
	t.Parallel()
	yaml := `
recognizer:
  name: mock
  beam_width: 5
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for unknown field, got nil")
	}
}

func TestValidate_MissingRecognizerName(t *testing.T) {
	t.Parallel()
	yaml := `
server:
  log_level: info
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for missing recognizer name, got nil")
	}
	if !strings.Contains(err.Error(), "recognizer.name") {
		t.Errorf("error should mention recognizer.name, got: %v", err)
	}
}

func TestValidate_InvalidRecognizerName(t *testing.T) {
	t.Parallel()
	yaml := `
recognizer:
  name: vosk
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for invalid recognizer name, got nil")
	}
	if !strings.Contains(err.Error(), "invalid") {
		t.Errorf("error should mention invalid, got: %v", err)
	}
}

func TestValidate_NativeRequiresModelPath(t *testing.T) {
	t.Parallel()
	yaml := `
recognizer:
  name: native
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for native backend without model_path, got nil")
	}
	if !strings.Contains(err.Error(), "model_path") {
		t.Errorf("error should mention model_path, got: %v", err)
	}
}

func TestValidate_WhisperRequiresBaseURL(t *testing.T) {
	t.Parallel()
	yaml := `
recognizer:
  name: whisper
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for whisper backend without base_url, got nil")
	}
	if !strings.Contains(err.Error(), "base_url") {
		t.Errorf("error should mention base_url, got: %v", err)
	}
}

func TestValidate_DecodeRanges(t *testing.T) {
	t.Parallel()
	yaml := `
recognizer:
  name: mock
  decode:
    temperature: 1.5
    beam_size: -1
    no_speech_threshold: 2
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for out-of-range decode options, got nil")
	}
	for _, want := range []string{"temperature", "beam_size", "no_speech_threshold"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s, got: %v", want, err)
		}
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	t.Parallel()
	yaml := `
server:
  log_level: verbose
recognizer:
  name: mock
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for invalid log level, got nil")
	}
	if !strings.Contains(err.Error(), "log_level") {
		t.Errorf("error should mention log_level, got: %v", err)
	}
}

func TestValidate_MockNeedsNothingElse(t *testing.T) {
	t.Parallel()
	yaml := `
recognizer:
  name: mock
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Recognizer.Name != config.RecognizerMock {
		t.Errorf("recognizer name = %q, want mock", cfg.Recognizer.Name)
	}
}
