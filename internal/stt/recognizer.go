// Package stt wraps the speech model behind a request/response Recognizer.
package stt

import (
	"context"
	"fmt"
	"strings"

	"github.com/racetalk/racetalk/internal/config"
)

// Result captures recognizer output for one clip.
type Result struct {
	Text string
}

// Empty reports whether no usable speech was recognized.
func (r Result) Empty() bool {
	return strings.TrimSpace(r.Text) == ""
}

// Recognizer abstracts speech-to-text backends. Implementations are safe for
// sequential use from one caller; the model is loaded once and shared
// read-only across calls.
type Recognizer interface {
	Transcribe(ctx context.Context, samples []float32) (Result, error)
	Close() error
}

// New constructs the recognizer selected by model.mode. Load failures are
// returned to the caller, which treats them as fatal at startup.
func New(cfg config.ModelConfig) (Recognizer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Mode)) {
	case "whisper":
		return NewWhisperRecognizer(cfg)
	case "exec":
		return NewExecRecognizer(cfg)
	case "mock":
		return &MockRecognizer{}, nil
	default:
		return nil, fmt.Errorf("unknown model.mode %q", cfg.Mode)
	}
}
