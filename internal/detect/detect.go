// Package detect defines the object-detector abstraction used by the local
// image-analysis fallback.
package detect

import (
	"context"
	"image"
)

// Prediction is a single detected object class.
type Prediction struct {
	// Label is the class name (e.g. "dog").
	Label string

	// Confidence is the model score in [0, 1].
	Confidence float64
}

// Detector runs object detection over a decoded image.
//
// Implementations load their model asynchronously; Ready reports whether the
// load has finished. Detect on a not-ready detector returns an error, which
// the analysis pipeline degrades into an explanatory description fragment.
type Detector interface {
	// Ready reports whether the model finished loading.
	Ready() bool

	// Detect returns predictions above the implementation's confidence
	// threshold, in model output order.
	Detect(ctx context.Context, img image.Image) ([]Prediction, error)
}

// DistinctLabels returns the labels of preds with duplicates removed,
// keeping first-seen order.
func DistinctLabels(preds []Prediction) []string {
	seen := make(map[string]struct{}, len(preds))
	var out []string
	for _, p := range preds {
		if _, ok := seen[p.Label]; ok {
			continue
		}
		seen[p.Label] = struct{}{}
		out = append(out, p.Label)
	}
	return out
}
