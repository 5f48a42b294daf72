// Package mock provides a scriptable ocr.Engine for tests.
package mock

import (
	"context"

	"github.com/starford/ansuz/internal/ocr"
)

// Engine implements ocr.Engine with configurable results.
type Engine struct {
	// Text and Err are returned by RecognizeFile.
	Text string
	Err  error

	// Calls counts RecognizeFile invocations.
	Calls int
}

// Compile-time interface assertion.
var _ ocr.Engine = (*Engine)(nil)

// RecognizeFile returns the configured text or error.
func (e *Engine) RecognizeFile(_ context.Context, _ string) (string, error) {
	e.Calls++
	if e.Err != nil {
		return "", e.Err
	}
	return e.Text, nil
}
