// Package imageredactor redacts sensitive regions of images.
//
// Regions come from two sources: an AI detection backend that reports
// labeled body-part boxes and contours, and rectangles supplied by the user.
// Each enabled region is blurred, pixelated or filled with a solid color,
// either as a rectangle or clipped to the detected contour.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"log"
//
//		imageredactor "github.com/menta2k/image-redactor"
//		"github.com/menta2k/image-redactor/pkg/compute"
//		"github.com/menta2k/image-redactor/pkg/detection"
//		"github.com/menta2k/image-redactor/pkg/studio"
//	)
//
//	func main() {
//		backend, err := compute.NewClient("http://localhost:8001", "")
//		if err != nil {
//			log.Fatal(err)
//		}
//		redactor := imageredactor.NewWithDetector(backend, detection.DefaultConfig(), studio.DefaultConfig())
//
//		result, err := redactor.RedactFile(context.Background(), "photo.jpg", "photo_redacted.png", imageredactor.Options{})
//		if err != nil {
//			log.Fatal(err)
//		}
//		log.Printf("redacted %d regions", result.Summary.EnabledTargets)
//	}
//
// The package is a thin facade over:
//
//  1. Studio (pkg/studio): the editing session holding targets and settings
//  2. Effects (pkg/effects) and Compositor (pkg/compositor): the pixel work
//  3. Detection (pkg/detection, pkg/compute, pkg/ollama): AI backends
//  4. Processing (pkg/processing): loading and encoding images
package imageredactor

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/menta2k/image-redactor/pkg/client"
	"github.com/menta2k/image-redactor/pkg/detection"
	"github.com/menta2k/image-redactor/pkg/processing"
	"github.com/menta2k/image-redactor/pkg/studio"
	"github.com/menta2k/image-redactor/pkg/targets"
	"github.com/menta2k/image-redactor/pkg/types"
)

// Version of the image redactor library
const Version = "1.0.0"

// ImageRedactor runs the whole redaction pipeline for one image at a time
type ImageRedactor struct {
	processor *processing.Processor
	detector  *detection.Detector
	config    studio.Config
	logger    *slog.Logger
}

// Options are per-call inputs of Redact
type Options struct {
	// Regions are custom rectangles in image pixels
	Regions []types.BoundingBox
	// Detection replaces the backend call with a known result
	Detection *types.DetectionResult
	// FullScreen redacts the whole image
	FullScreen bool
}

// Result is the outcome of one redaction
type Result struct {
	Image   *image.RGBA          `json:"-"`
	Targets []targets.BlurTarget `json:"targets"`
	Summary studio.Summary       `json:"summary"`
}

// New creates an ImageRedactor without a detection backend
func New() *ImageRedactor {
	return &ImageRedactor{
		processor: processing.NewProcessor(),
		config:    studio.DefaultConfig(),
	}
}

// NewWithDetector creates an ImageRedactor that detects regions through backend
func NewWithDetector(backend client.DetectionClient, detectionConfig detection.Config, sessionConfig studio.Config) *ImageRedactor {
	if sessionConfig.Quality <= 0 {
		sessionConfig.Quality = 95
	}
	r := &ImageRedactor{
		processor: processing.NewProcessor(),
		config:    sessionConfig,
	}
	if backend != nil {
		r.detector = detection.NewDetectorWithConfig(backend, detectionConfig)
	}
	return r
}

// SetLogger routes session logging to logger
func (r *ImageRedactor) SetLogger(logger *slog.Logger) {
	r.logger = logger
}

// NewSession creates an interactive session sharing the redactor's configuration
func (r *ImageRedactor) NewSession() *studio.Session {
	if r.detector == nil {
		return studio.NewWithConfig(r.config, nil, r.logger)
	}
	return studio.NewWithConfig(r.config, r.detector, r.logger)
}

// LoadImage loads an image from a file path or URL
func (r *ImageRedactor) LoadImage(source string) (image.Image, error) {
	return r.processor.LoadImageSmart(source)
}

// SaveImage saves an image, picking the format from the file extension
func (r *ImageRedactor) SaveImage(img image.Image, path string) error {
	return r.processor.SaveImage(img, path, filepath.Ext(path), r.config.Quality, r.config.Lossless)
}

// GetImageInfo returns basic information about an image
func (r *ImageRedactor) GetImageInfo(img image.Image) processing.ImageInfo {
	return r.processor.GetImageInfo(img)
}

// ValidateImage checks if an image meets requirements
func (r *ImageRedactor) ValidateImage(img image.Image) error {
	return r.processor.ValidateImage(img)
}

// Redact applies the configured effect to every enabled target of img.
// Detection runs when a backend is configured, AI detection is on and
// opts.Detection is nil.
func (r *ImageRedactor) Redact(ctx context.Context, img image.Image, opts Options) (*Result, error) {
	if err := r.ValidateImage(img); err != nil {
		return nil, fmt.Errorf("image validation failed: %w", err)
	}

	s := r.NewSession()
	s.LoadImage(img)

	switch {
	case opts.Detection != nil:
		s.SetDetection(opts.Detection)
	case r.detector != nil && s.AIDetection():
		if err := s.Detect(ctx); err != nil {
			return nil, err
		}
	}

	for _, box := range opts.Regions {
		s.AddRegion(box)
	}
	s.SetFullScreen(opts.FullScreen)

	return &Result{
		Image:   s.Snapshot(),
		Targets: s.Targets(),
		Summary: s.Summary(),
	}, nil
}

// RedactFile loads inputPath, redacts it and writes the result to outputPath
func (r *ImageRedactor) RedactFile(ctx context.Context, inputPath, outputPath string, opts Options) (*Result, error) {
	img, err := r.LoadImage(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}

	result, err := r.Redact(ctx, img, opts)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := r.SaveImage(result.Image, outputPath); err != nil {
		return nil, fmt.Errorf("failed to save image: %w", err)
	}
	return result, nil
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
