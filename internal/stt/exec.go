package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	shellwords "github.com/mattn/go-shellwords"

	"github.com/racetalk/racetalk/internal/audio"
	"github.com/racetalk/racetalk/internal/config"
)

// execRecognizer shells out per clip, passing the audio as a temporary WAV.
// It exists for setups where the model runs in an external tool instead of
// the in-process binding.
type execRecognizer struct {
	argv     []string
	language string
	useGPU   bool
}

type execResult struct {
	Text string `json:"text"`
}

// NewExecRecognizer parses the configured command line once at startup.
func NewExecRecognizer(cfg config.ModelConfig) (Recognizer, error) {
	parser := shellwords.NewParser()
	argv, err := parser.Parse(cfg.Command)
	if err != nil {
		return nil, fmt.Errorf("parse model.command: %w", err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("model.command is empty")
	}
	return &execRecognizer{
		argv:     argv,
		language: strings.TrimSpace(cfg.Language),
		useGPU:   cfg.UseGPU,
	}, nil
}

func (r *execRecognizer) Transcribe(ctx context.Context, samples []float32) (Result, error) {
	if len(samples) == 0 {
		return Result{}, nil
	}

	file, err := os.CreateTemp("", "racetalk_stt_*.wav")
	if err != nil {
		return Result{}, fmt.Errorf("temp wav: %w", err)
	}
	file.Close()
	defer os.Remove(file.Name())

	if err := audio.DumpWAV(file.Name(), audio.Clip{Samples: samples}); err != nil {
		return Result{}, err
	}

	args := append([]string{}, r.argv[1:]...)
	args = append(args, "--audio", file.Name())
	if r.language != "" {
		args = append(args, "--language", r.language)
	}
	if !r.useGPU {
		args = append(args, "--no-gpu")
	}

	command := exec.CommandContext(ctx, r.argv[0], args...)
	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return Result{}, fmt.Errorf("stt command failed: %w: %s", err, stderr.String())
	}

	var resp execResult
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return Result{}, fmt.Errorf("decode stt response: %w", err)
	}
	return Result{Text: strings.TrimSpace(resp.Text)}, nil
}

func (r *execRecognizer) Close() error {
	return nil
}
