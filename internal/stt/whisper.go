package stt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/racetalk/racetalk/internal/config"
)

// whisperRecognizer runs inference in-process against a ggml model loaded
// once at construction.
type whisperRecognizer struct {
	model    whisper.Model
	language string
	useGPU   bool

	mu sync.Mutex
}

// NewWhisperRecognizer loads the model file eagerly so a bad path fails
// startup instead of the first recording.
func NewWhisperRecognizer(cfg config.ModelConfig) (Recognizer, error) {
	model, err := whisper.New(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("load speech model %q: %w", cfg.Path, err)
	}

	language := strings.TrimSpace(cfg.Language)
	if language == "" {
		language = "en"
	}

	return &whisperRecognizer{
		model:    model,
		language: language,
		useGPU:   cfg.UseGPU,
	}, nil
}

func (r *whisperRecognizer) Transcribe(ctx context.Context, samples []float32) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if len(samples) == 0 {
		return Result{}, nil
	}

	wctx, err := r.model.NewContext()
	if err != nil {
		return Result{}, fmt.Errorf("create whisper context: %w", err)
	}
	if r.model.IsMultilingual() {
		if err := wctx.SetLanguage(r.language); err != nil {
			return Result{}, fmt.Errorf("set language %q: %w", r.language, err)
		}
	}
	wctx.SetTranslate(false)
	if !r.useGPU {
		wctx.SetThreads(uint(runtime.NumCPU()))
	}

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return Result{}, fmt.Errorf("whisper inference: %w", err)
	}

	var text strings.Builder
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("read segment: %w", err)
		}
		text.WriteString(segment.Text)
	}

	return Result{Text: strings.TrimSpace(text.String())}, nil
}

func (r *whisperRecognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.model.Close()
}
