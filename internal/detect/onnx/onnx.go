// Package onnx implements detect.Detector with a YOLO-class ONNX model run
// through onnxruntime.
//
// Only class labels are consumed downstream, so the decoder skips non-maximum
// suppression: duplicate boxes for the same class collapse during label
// dedup anyway.
package onnx

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	ort "github.com/yalue/onnxruntime_go"
	"golang.org/x/image/draw"

	"github.com/starford/ansuz/internal/detect"
)

// Model input geometry (YOLOv8 family default).
const (
	inputSize  = 640
	numClasses = 80
	numAnchors = 8400
	inputName  = "images"
	outputName = "output0"
)

// Config configures the detector.
type Config struct {
	// ModelPath is the ONNX model file.
	ModelPath string

	// LibraryPath is the onnxruntime shared library. Empty uses the
	// platform default lookup.
	LibraryPath string

	// Confidence is the minimum class score in [0, 1]. Zero means 0.5.
	Confidence float64

	// Labels overrides the built-in COCO class list. Must match the
	// model's class count when set.
	Labels []string
}

// Detector implements detect.Detector over an onnxruntime session.
type Detector struct {
	cfg    Config
	labels []string

	ready atomic.Bool

	// mu guards session: onnxruntime sessions are not safe for concurrent
	// Run calls.
	mu      sync.Mutex
	session *ort.DynamicAdvancedSession
}

// Compile-time interface assertion.
var _ detect.Detector = (*Detector)(nil)

// New creates an unloaded Detector. Call Load (typically in a goroutine at
// startup) before detection is available; until then Ready reports false.
func New(cfg Config) *Detector {
	if cfg.Confidence <= 0 {
		cfg.Confidence = 0.5
	}
	labels := cfg.Labels
	if len(labels) == 0 {
		labels = cocoLabels
	}
	return &Detector{cfg: cfg, labels: labels}
}

// Load initializes the onnxruntime environment and creates the session.
// It is called once at process startup; requests arriving before it returns
// get the not-ready error from Detect instead of blocking.
func (d *Detector) Load(logger *slog.Logger) error {
	if d.cfg.ModelPath == "" {
		return fmt.Errorf("detect: model path not configured")
	}
	if d.cfg.LibraryPath != "" {
		ort.SetSharedLibraryPath(d.cfg.LibraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("detect: init onnxruntime: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(
		d.cfg.ModelPath,
		[]string{inputName},
		[]string{outputName},
		nil,
	)
	if err != nil {
		return fmt.Errorf("detect: create session: %w", err)
	}

	d.mu.Lock()
	d.session = session
	d.mu.Unlock()
	d.ready.Store(true)

	logger.Info("detector: model loaded",
		slog.String("model", d.cfg.ModelPath),
		slog.Int("classes", len(d.labels)))
	return nil
}

// Close releases the session.
func (d *Detector) Close() error {
	d.ready.Store(false)
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.session != nil {
		err := d.session.Destroy()
		d.session = nil
		return err
	}
	return nil
}

// Ready implements detect.Detector.
func (d *Detector) Ready() bool {
	return d.ready.Load()
}

// Detect implements detect.Detector.
func (d *Detector) Detect(ctx context.Context, img image.Image) ([]detect.Prediction, error) {
	if !d.Ready() {
		return nil, fmt.Errorf("detect: model not loaded yet")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	input := preprocess(img)

	inputTensor, err := ort.NewTensor(ort.NewShape(1, 3, inputSize, inputSize), input)
	if err != nil {
		return nil, fmt.Errorf("detect: input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 4+numClasses, numAnchors))
	if err != nil {
		return nil, fmt.Errorf("detect: output tensor: %w", err)
	}
	defer outputTensor.Destroy()

	d.mu.Lock()
	err = d.session.Run([]ort.Value{inputTensor}, []ort.Value{outputTensor})
	d.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("detect: run: %w", err)
	}

	return decodeOutput(outputTensor.GetData(), d.labels, d.cfg.Confidence), nil
}

// preprocess resizes the image to the model input square and lays it out as
// normalized CHW float32 values.
func preprocess(img image.Image) []float32 {
	scaled := image.NewRGBA(image.Rect(0, 0, inputSize, inputSize))
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)

	data := make([]float32, 3*inputSize*inputSize)
	plane := inputSize * inputSize
	for y := 0; y < inputSize; y++ {
		for x := 0; x < inputSize; x++ {
			i := scaled.PixOffset(x, y)
			o := y*inputSize + x
			data[o] = float32(scaled.Pix[i]) / 255.0
			data[plane+o] = float32(scaled.Pix[i+1]) / 255.0
			data[2*plane+o] = float32(scaled.Pix[i+2]) / 255.0
		}
	}
	return data
}

// decodeOutput extracts class predictions from the raw [1, 4+C, A] output.
// For each anchor column the best class score is compared against the
// threshold; surviving predictions are returned best-first.
func decodeOutput(out []float32, labels []string, threshold float64) []detect.Prediction {
	classes := len(labels)
	if len(out) < (4+classes)*numAnchors {
		return nil
	}

	var preds []detect.Prediction
	for a := 0; a < numAnchors; a++ {
		best := -1
		var bestScore float32
		for c := 0; c < classes; c++ {
			score := out[(4+c)*numAnchors+a]
			if score > bestScore {
				bestScore = score
				best = c
			}
		}
		if best >= 0 && float64(bestScore) >= threshold {
			preds = append(preds, detect.Prediction{
				Label:      labels[best],
				Confidence: float64(bestScore),
			})
		}
	}

	sort.SliceStable(preds, func(i, j int) bool {
		return preds[i].Confidence > preds[j].Confidence
	})
	return preds
}
