// Package mock provides a scriptable detect.Detector for tests.
package mock

import (
	"context"
	"image"

	"github.com/starford/ansuz/internal/detect"
)

// Detector implements detect.Detector with configurable results.
type Detector struct {
	// NotReady makes Ready report false.
	NotReady bool

	// Predictions and Err are returned by Detect.
	Predictions []detect.Prediction
	Err         error
}

// Compile-time interface assertion.
var _ detect.Detector = (*Detector)(nil)

// Ready implements detect.Detector.
func (d *Detector) Ready() bool {
	return !d.NotReady
}

// Detect implements detect.Detector.
func (d *Detector) Detect(_ context.Context, _ image.Image) ([]detect.Prediction, error) {
	if d.Err != nil {
		return nil, d.Err
	}
	return d.Predictions, nil
}
