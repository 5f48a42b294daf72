package analysis

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/ansuz/internal/detect"
	detectmock "github.com/starford/ansuz/internal/detect/mock"
	ocrmock "github.com/starford/ansuz/internal/ocr/mock"
	visionmock "github.com/starford/ansuz/internal/vision/mock"
)

// writePNG writes a tiny valid PNG into dir and returns its path.
func writePNG(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 60), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "upload.png")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// writeBytes writes raw bytes (a non-image upload) and returns the path.
func writeBytes(t *testing.T, dir string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, "upload.bin")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testPipeline(vision *visionmock.Provider, detector *detectmock.Detector, engine *ocrmock.Engine) *Pipeline {
	cfg := Config{
		Detector:  detector,
		OCR:       engine,
		DemoDelay: time.Millisecond,
	}
	if vision != nil {
		cfg.Vision = vision
	}
	return NewPipeline(cfg)
}

func TestDescribeDemoModeNeverTouchesProviders(t *testing.T) {
	vision := &visionmock.Provider{DescribeErr: errors.New("must not be called")}
	detector := &detectmock.Detector{Err: errors.New("must not be called")}
	engine := &ocrmock.Engine{Err: errors.New("must not be called")}
	p := testPipeline(vision, detector, engine)

	path := writePNG(t, t.TempDir())
	res, err := p.Describe(context.Background(), path, true, true)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if res.Source != SourceSynthetic {
		t.Errorf("source = %q, want synthetic", res.Source)
	}
	if res.Description == "" {
		t.Error("demo description should not be empty")
	}
	if vision.DescribeCalls() != 0 || engine.Calls != 0 {
		t.Error("demo mode must not call providers")
	}
}

func TestDescribeCloudSuccess(t *testing.T) {
	vision := &visionmock.Provider{DescribeResult: "A cat on a windowsill."}
	p := testPipeline(vision, &detectmock.Detector{}, &ocrmock.Engine{})

	path := writePNG(t, t.TempDir())
	res, err := p.Describe(context.Background(), path, true, false)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if res.Source != SourceCloud {
		t.Errorf("source = %q, want %q", res.Source, SourceCloud)
	}
	if res.Description != "A cat on a windowsill." {
		t.Errorf("description = %q", res.Description)
	}
}

func TestDescribeCloudFailureFallsBackToLocal(t *testing.T) {
	vision := &visionmock.Provider{DescribeErr: errors.New("quota exceeded")}
	detector := &detectmock.Detector{
		Predictions: []detect.Prediction{{Label: "dog", Confidence: 0.9}},
	}
	engine := &ocrmock.Engine{Text: ""}
	p := testPipeline(vision, detector, engine)

	path := writePNG(t, t.TempDir())
	res, err := p.Describe(context.Background(), path, true, false)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if res.Source != SourceLocal {
		t.Errorf("source = %q, want local fallback", res.Source)
	}
	if !strings.Contains(res.Description, "dog") {
		t.Errorf("description = %q, want detected label", res.Description)
	}
}

func TestDescribeCloudNotRequestedStaysLocal(t *testing.T) {
	vision := &visionmock.Provider{DescribeResult: "should not be used"}
	detector := &detectmock.Detector{}
	engine := &ocrmock.Engine{}
	p := testPipeline(vision, detector, engine)

	path := writePNG(t, t.TempDir())
	res, err := p.Describe(context.Background(), path, false, false)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if res.Source != SourceLocal {
		t.Errorf("source = %q, want local", res.Source)
	}
	if vision.DescribeCalls() != 0 {
		t.Error("cloud must not be called when not requested")
	}
}

func TestDescribeLocalFragments(t *testing.T) {
	tests := []struct {
		name     string
		detector *detectmock.Detector
		engine   *ocrmock.Engine
		want     []string
	}{
		{
			name:     "objects and text",
			detector: &detectmock.Detector{Predictions: []detect.Prediction{{Label: "book", Confidence: 0.8}, {Label: "cup", Confidence: 0.7}}},
			engine:   &ocrmock.Engine{Text: "Chapter  4\nPhotosynthesis"},
			want: []string{
				"This image appears to contain: book, cup.",
				`The image contains the text: "Chapter 4 Photosynthesis".`,
			},
		},
		{
			name:     "nothing detected, no text",
			detector: &detectmock.Detector{},
			engine:   &ocrmock.Engine{},
			want: []string{
				"No recognizable objects were detected in the image.",
				"No readable text was found in the image.",
			},
		},
		{
			name:     "detector still loading",
			detector: &detectmock.Detector{NotReady: true},
			engine:   &ocrmock.Engine{Text: "hello"},
			want: []string{
				"still loading",
				`The image contains the text: "hello".`,
			},
		},
		{
			name:     "detection error degrades",
			detector: &detectmock.Detector{Err: errors.New("session crashed")},
			engine:   &ocrmock.Engine{},
			want:     []string{"Object detection was unavailable for this image."},
		},
		{
			name:     "ocr error degrades",
			detector: &detectmock.Detector{},
			engine:   &ocrmock.Engine{Err: errors.New("tesseract missing")},
			want:     []string{"Text recognition was unavailable for this image."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testPipeline(nil, tt.detector, tt.engine)
			path := writePNG(t, t.TempDir())
			res, err := p.Describe(context.Background(), path, false, false)
			if err != nil {
				t.Fatalf("Describe: %v", err)
			}
			for _, frag := range tt.want {
				if !strings.Contains(res.Description, frag) {
					t.Errorf("description %q missing %q", res.Description, frag)
				}
			}
		})
	}
}

func TestDescribeUnsupportedFormatStillRunsOCR(t *testing.T) {
	detector := &detectmock.Detector{Predictions: []detect.Prediction{{Label: "dog", Confidence: 0.9}}}
	engine := &ocrmock.Engine{Text: "scanned words"}
	p := testPipeline(nil, detector, engine)

	// Not a decodable image: detection is skipped with an explanation, but
	// OCR still sees the original file.
	path := writeBytes(t, t.TempDir(), []byte("definitely not a png"))
	res, err := p.Describe(context.Background(), path, false, false)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if !strings.Contains(res.Description, "not supported for object detection") {
		t.Errorf("description = %q, want unsupported-format fragment", res.Description)
	}
	if !strings.Contains(res.Description, `"scanned words"`) {
		t.Errorf("description = %q, want OCR text", res.Description)
	}
	if engine.Calls != 1 {
		t.Errorf("ocr calls = %d, want 1", engine.Calls)
	}
}

func TestDescribeMissingUploadErrors(t *testing.T) {
	p := testPipeline(nil, &detectmock.Detector{}, &ocrmock.Engine{})
	_, err := p.Describe(context.Background(), filepath.Join(t.TempDir(), "gone.png"), false, false)
	if err == nil {
		t.Fatal("expected error for missing upload")
	}
}

func TestDescribeRemovesUpload(t *testing.T) {
	p := testPipeline(nil, &detectmock.Detector{}, &ocrmock.Engine{})

	path := writePNG(t, t.TempDir())
	if _, err := p.Describe(context.Background(), path, false, false); err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("upload should be removed, stat err = %v", err)
	}
}

func TestCloudEnabled(t *testing.T) {
	if testPipeline(nil, &detectmock.Detector{}, &ocrmock.Engine{}).CloudEnabled() {
		t.Error("CloudEnabled should be false without a provider")
	}
	if !testPipeline(&visionmock.Provider{}, &detectmock.Detector{}, &ocrmock.Engine{}).CloudEnabled() {
		t.Error("CloudEnabled should be true with a provider")
	}
}

func TestSyntheticDescriptionsNonEmpty(t *testing.T) {
	for i := 0; i < 20; i++ {
		if syntheticDescription() == "" {
			t.Fatal("synthetic description should never be empty")
		}
	}
}
