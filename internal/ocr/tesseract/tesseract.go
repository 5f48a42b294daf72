// Package tesseract implements ocr.Engine with the Tesseract OCR engine via
// gosseract. Tesseract and the relevant language data packages must be
// installed on the host.
package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/starford/ansuz/internal/ocr"
)

// Engine implements ocr.Engine using gosseract.
type Engine struct {
	languages     []string
	clientFactory func() *gosseract.Client
}

// Compile-time interface assertion.
var _ ocr.Engine = (*Engine)(nil)

// New constructs a Tesseract-backed OCR engine. languages are Tesseract
// language codes (e.g. "eng", "deu"); empty means Tesseract's default.
func New(languages []string) *Engine {
	return &Engine{
		languages:     languages,
		clientFactory: gosseract.NewClient,
	}
}

// RecognizeFile implements ocr.Engine. A fresh client is created per call;
// gosseract clients are not safe for concurrent use.
func (e *Engine) RecognizeFile(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImage(path); err != nil {
		return "", fmt.Errorf("ocr: set image: %w", err)
	}
	if len(e.languages) > 0 {
		if err := c.SetLanguage(e.languages...); err != nil {
			return "", fmt.Errorf("ocr: set languages: %w", err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("ocr: recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}
