// Package analysis implements the layered image-description pipeline:
// demo short-circuit → cloud vision model → local object detection + OCR.
//
// The pipeline's contract is a guaranteed non-error response describing
// something even under partial failure. Cloud errors, a detector that has
// not finished loading, unsupported image containers, and OCR failures all
// degrade into explanatory description fragments; they are recorded in
// telemetry but never surfaced as request failures. Only a missing upload or
// a catastrophic failure reading it propagates an error.
package analysis

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // pixel decoding supports exactly these two containers
	_ "image/png"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/starford/ansuz/internal/detect"
	"github.com/starford/ansuz/internal/observe"
	"github.com/starford/ansuz/internal/ocr"
	"github.com/starford/ansuz/internal/vision"
)

// Provenance tags identifying which path produced a description.
const (
	SourceCloud     = "gemini"
	SourceLocal     = "local"
	SourceSynthetic = "synthetic"
)

// Result is the outcome of one analysis pass.
type Result struct {
	Description string `json:"description"`
	Source      string `json:"source"`
}

// Config wires the pipeline's collaborators.
type Config struct {
	// Vision is the cloud provider. Nil disables the cloud step entirely
	// (no credential configured).
	Vision vision.Provider

	// Detector runs local object detection. Required.
	Detector detect.Detector

	// OCR runs local text recognition. Required.
	OCR ocr.Engine

	// Metrics receives analysis telemetry. Optional.
	Metrics *observe.Metrics

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// DemoDelay is the fixed artificial latency of demo responses.
	// Zero means 1.5s.
	DemoDelay time.Duration
}

// Pipeline orchestrates one analysis pass per request. It holds no mutable
// state of its own; the detector manages its own load lifecycle.
type Pipeline struct {
	vision    vision.Provider
	detector  detect.Detector
	ocr       ocr.Engine
	metrics   *observe.Metrics
	logger    *slog.Logger
	demoDelay time.Duration
}

// NewPipeline creates a Pipeline from cfg.
func NewPipeline(cfg Config) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	delay := cfg.DemoDelay
	if delay <= 0 {
		delay = 1500 * time.Millisecond
	}
	return &Pipeline{
		vision:    cfg.Vision,
		detector:  cfg.Detector,
		ocr:       cfg.OCR,
		metrics:   cfg.Metrics,
		logger:    logger,
		demoDelay: delay,
	}
}

// CloudEnabled reports whether a cloud provider is configured.
func (p *Pipeline) CloudEnabled() bool {
	return p.vision != nil
}

// Describe analyzes the uploaded image at imagePath and returns a description
// with its provenance tag. The uploaded file is always removed afterwards,
// best-effort, whatever the outcome. The pipeline makes one pass: cloud is
// tried at most once and falls back to local at most once, with no retries.
func (p *Pipeline) Describe(ctx context.Context, imagePath string, useCloud, demoMode bool) (Result, error) {
	start := time.Now()
	defer p.cleanup(ctx, imagePath)

	// Demo mode bypasses all real analysis so presentations never depend on
	// network or model availability.
	if demoMode {
		select {
		case <-time.After(p.demoDelay):
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
		res := Result{Description: syntheticDescription(), Source: SourceSynthetic}
		p.record(ctx, res.Source, "ok", start)
		return res, nil
	}

	if useCloud && p.vision != nil {
		desc, err := p.describeCloud(ctx, imagePath)
		if err == nil {
			res := Result{Description: desc, Source: SourceCloud}
			p.record(ctx, res.Source, "ok", start)
			return res, nil
		}
		// Cloud failures are recovered locally, never propagated.
		p.logger.Warn("analysis: cloud describe failed, falling back to local",
			slog.String("error", err.Error()))
		p.metrics.RecordProviderError(ctx, "gemini")
	}

	desc, err := p.describeLocal(ctx, imagePath)
	if err != nil {
		p.record(ctx, SourceLocal, "error", start)
		return Result{}, err
	}
	res := Result{Description: desc, Source: SourceLocal}
	p.record(ctx, res.Source, "ok", start)
	return res, nil
}

// describeCloud submits the image with the fixed prompt to the cloud model
// and returns its text verbatim.
func (p *Pipeline) describeCloud(ctx context.Context, imagePath string) (string, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("analysis: read upload: %w", err)
	}
	return p.vision.DescribeImage(ctx, data, http.DetectContentType(data))
}

// describeLocal builds the description from the detection and OCR fragments.
// The two sub-steps are independent: a failed or unsupported decode does not
// prevent text recognition from being attempted.
func (p *Pipeline) describeLocal(ctx context.Context, imagePath string) (string, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		// Catastrophic: nothing to analyze at all.
		return "", fmt.Errorf("analysis: read upload: %w", err)
	}

	fragments := []string{
		p.detectionFragment(ctx, data),
		p.textFragment(ctx, imagePath),
	}
	return strings.Join(fragments, " "), nil
}

// detectionFragment decodes the pixels and describes the detected objects,
// degrading to an explanatory sentence on every failure mode.
func (p *Pipeline) detectionFragment(ctx context.Context, data []byte) string {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		p.metrics.RecordProviderError(ctx, "decode")
		return "The image format is not supported for object detection (only PNG and JPEG are)."
	}

	if !p.detector.Ready() {
		p.metrics.RecordProviderError(ctx, "detector")
		return "Object detection is still loading; objects in the image could not be identified yet."
	}

	preds, err := p.detector.Detect(ctx, img)
	if err != nil {
		p.logger.Warn("analysis: detection failed",
			slog.String("format", format),
			slog.String("error", err.Error()))
		p.metrics.RecordProviderError(ctx, "detector")
		return "Object detection was unavailable for this image."
	}

	labels := detect.DistinctLabels(preds)
	if len(labels) == 0 {
		return "No recognizable objects were detected in the image."
	}
	return fmt.Sprintf("This image appears to contain: %s.", strings.Join(labels, ", "))
}

// textFragment runs OCR over the original upload, independent of whether the
// pixel decode or detection succeeded.
func (p *Pipeline) textFragment(ctx context.Context, imagePath string) string {
	text, err := p.ocr.RecognizeFile(ctx, imagePath)
	if err != nil {
		p.logger.Warn("analysis: ocr failed", slog.String("error", err.Error()))
		p.metrics.RecordProviderError(ctx, "ocr")
		return "Text recognition was unavailable for this image."
	}
	if text == "" {
		return "No readable text was found in the image."
	}
	return fmt.Sprintf("The image contains the text: %q.", strings.Join(strings.Fields(text), " "))
}

// cleanup removes the uploaded temp file. Deletion is best-effort; a failure
// is reported to telemetry, never to the caller.
func (p *Pipeline) cleanup(ctx context.Context, imagePath string) {
	if err := os.Remove(imagePath); err != nil && !os.IsNotExist(err) {
		p.logger.Warn("analysis: upload cleanup failed",
			slog.String("path", imagePath),
			slog.String("error", err.Error()))
		p.metrics.RecordBestEffortFailure(ctx, "upload_cleanup")
	}
}

func (p *Pipeline) record(ctx context.Context, source, status string, start time.Time) {
	p.metrics.RecordAnalysis(ctx, source, status, time.Since(start).Seconds())
}
