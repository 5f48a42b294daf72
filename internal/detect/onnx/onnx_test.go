package onnx

import (
	"image"
	"testing"
)

// buildOutput creates a flat [1, 4+len(labels), numAnchors] tensor with all
// scores zero.
func buildOutput(classes int) []float32 {
	return make([]float32, (4+classes)*numAnchors)
}

// setScore sets the score of class c at anchor a.
func setScore(out []float32, c, a int, score float32) {
	out[(4+c)*numAnchors+a] = score
}

func TestDecodeOutputThreshold(t *testing.T) {
	labels := []string{"person", "bicycle", "car"}
	out := buildOutput(len(labels))
	setScore(out, 0, 0, 0.9)  // person, keep
	setScore(out, 2, 1, 0.4)  // car, below threshold
	setScore(out, 1, 2, 0.55) // bicycle, keep

	preds := decodeOutput(out, labels, 0.5)
	if len(preds) != 2 {
		t.Fatalf("preds = %+v, want 2", preds)
	}
	// Best-first ordering.
	if preds[0].Label != "person" || preds[1].Label != "bicycle" {
		t.Errorf("order = %q, %q", preds[0].Label, preds[1].Label)
	}
}

func TestDecodeOutputPicksBestClassPerAnchor(t *testing.T) {
	labels := []string{"cat", "dog"}
	out := buildOutput(len(labels))
	setScore(out, 0, 5, 0.6)
	setScore(out, 1, 5, 0.8) // dog beats cat at the same anchor

	preds := decodeOutput(out, labels, 0.5)
	if len(preds) != 1 {
		t.Fatalf("preds = %+v, want 1", preds)
	}
	if preds[0].Label != "dog" || preds[0].Confidence != 0.8 {
		t.Errorf("pred = %+v", preds[0])
	}
}

func TestDecodeOutputEmpty(t *testing.T) {
	labels := []string{"cat", "dog"}
	if preds := decodeOutput(buildOutput(len(labels)), labels, 0.5); len(preds) != 0 {
		t.Errorf("preds = %+v, want none for all-zero scores", preds)
	}
	// Truncated tensor is rejected, not mis-indexed.
	if preds := decodeOutput(make([]float32, 10), labels, 0.5); preds != nil {
		t.Errorf("preds = %+v, want nil for short tensor", preds)
	}
}

func TestPreprocessGeometry(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 32, 20))
	data := preprocess(img)
	if len(data) != 3*inputSize*inputSize {
		t.Fatalf("len = %d, want %d", len(data), 3*inputSize*inputSize)
	}
	for i, v := range data {
		if v < 0 || v > 1 {
			t.Fatalf("data[%d] = %v, want normalized to [0,1]", i, v)
		}
	}
}

func TestCocoLabelCount(t *testing.T) {
	if len(cocoLabels) != numClasses {
		t.Fatalf("cocoLabels = %d entries, want %d", len(cocoLabels), numClasses)
	}
}

func TestDetectorNotReadyBeforeLoad(t *testing.T) {
	d := New(Config{ModelPath: "missing.onnx"})
	if d.Ready() {
		t.Error("detector should not be ready before Load")
	}
}
