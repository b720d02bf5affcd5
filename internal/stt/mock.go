package stt

import (
	"context"
	"sync/atomic"
)

// MockRecognizer returns canned results; used in tests and by model.mode=mock
// for wiring checks without a model file.
type MockRecognizer struct {
	Text  string
	Err   error
	Calls atomic.Int32
}

func (m *MockRecognizer) Transcribe(ctx context.Context, samples []float32) (Result, error) {
	m.Calls.Add(1)
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if m.Err != nil {
		return Result{}, m.Err
	}
	return Result{Text: m.Text}, nil
}

func (m *MockRecognizer) Close() error {
	return nil
}
