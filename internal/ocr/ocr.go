// Package ocr defines the text-recognition abstraction used by the local
// image-analysis fallback.
package ocr

import "context"

// Engine extracts printed text from an image file.
type Engine interface {
	// RecognizeFile runs OCR over the image at path and returns the
	// recognized text, trimmed. An empty string with a nil error means no
	// text was found.
	RecognizeFile(ctx context.Context, path string) (string, error)
}
