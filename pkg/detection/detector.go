package detection

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/menta2k/image-redactor/pkg/client"
	"github.com/menta2k/image-redactor/pkg/processing"
	"github.com/menta2k/image-redactor/pkg/types"
)

// ErrNoClient is returned when detection runs without a backend
var ErrNoClient = errors.New("no detection client configured")

// DefaultThreshold is the minimum confidence a detection needs to be kept
const DefaultThreshold = 0.25

// ContourPoints is the number of points of a generated elliptical contour
const ContourPoints = 36

// Config controls how images are sent to the backend
type Config struct {
	Threshold   float64
	SendFormat  string // jpeg or png
	SendSize    int    // cap on the long side, 0 sends the full image
	SendQuality int
}

// DefaultConfig returns the detector defaults
func DefaultConfig() Config {
	return Config{
		Threshold:   DefaultThreshold,
		SendFormat:  "jpeg",
		SendSize:    1280,
		SendQuality: 90,
	}
}

// Detector runs body-part detection through a DetectionClient and maps the
// results onto the original image
type Detector struct {
	client    client.DetectionClient
	processor *processing.Processor
	config    Config
}

// NewDetector creates a new detector with default configuration
func NewDetector(c client.DetectionClient) *Detector {
	return NewDetectorWithConfig(c, DefaultConfig())
}

// NewDetectorWithConfig creates a new detector with custom configuration
func NewDetectorWithConfig(c client.DetectionClient, config Config) *Detector {
	if config.Threshold <= 0 {
		config.Threshold = DefaultThreshold
	}
	if config.SendQuality <= 0 {
		config.SendQuality = 90
	}
	return &Detector{
		client:    c,
		processor: processing.NewProcessor(),
		config:    config,
	}
}

// Config returns the detector configuration
func (d *Detector) Config() Config {
	return d.config
}

// Detect sends img to the backend and returns detections in img's pixel space
func (d *Detector) Detect(ctx context.Context, img image.Image) (*types.DetectionResult, error) {
	if d == nil || d.client == nil {
		return nil, ErrNoClient
	}
	if err := d.processor.ValidateImage(img); err != nil {
		return nil, fmt.Errorf("invalid image: %w", err)
	}

	b := img.Bounds()
	imgB64, scale, err := d.processor.PrepareImageForModel(img, d.config.SendFormat, d.config.SendSize, d.config.SendQuality)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare image: %w", err)
	}
	sentW := int(math.Round(float64(b.Dx()) / scale))
	sentH := int(math.Round(float64(b.Dy()) / scale))

	result, err := d.client.Detect(ctx, types.DetectionRequest{
		ImageB64:  imgB64,
		Format:    d.config.SendFormat,
		Width:     sentW,
		Height:    sentH,
		Threshold: d.config.Threshold,
	})
	if err != nil {
		return nil, fmt.Errorf("detection failed: %w", err)
	}
	if result == nil {
		result = &types.DetectionResult{}
	}
	if result.ImageDimensions.Width <= 0 || result.ImageDimensions.Height <= 0 {
		result.ImageDimensions = types.ImageDimensions{Width: sentW, Height: sentH}
	}

	return FillContours(Normalize(result, b.Dx(), b.Dy(), d.config.Threshold)), nil
}

// Normalize maps a result reported for result.ImageDimensions onto a
// width x height image. Detections under threshold or with no area left after
// clamping are dropped, contours with fewer than three points are removed so
// the box becomes the shape, and risk fields plus the summary are filled in.
func Normalize(result *types.DetectionResult, width, height int, threshold float64) *types.DetectionResult {
	out := &types.DetectionResult{
		ImageDimensions: types.ImageDimensions{Width: width, Height: height},
	}
	if result == nil {
		summary := types.Summarize(nil)
		out.RiskSummary = &summary
		return out
	}

	sx, sy := 1.0, 1.0
	if dims := result.ImageDimensions; dims.Width > 0 && dims.Height > 0 {
		sx = float64(width) / float64(dims.Width)
		sy = float64(height) / float64(dims.Height)
	}

	for _, det := range result.Detections {
		if det.Confidence < threshold {
			continue
		}
		det.BBox = scaleBox(det.BBox, sx, sy).Clamp(width, height)
		if det.BBox.Empty() {
			continue
		}

		if det.Contour.Valid() {
			det.Contour = clampContour(det.Contour.Scale(sx, sy), width, height)
		} else {
			det.Contour = nil
		}

		if det.RiskLevel == "" {
			det.RiskLevel = types.RiskLevel(det.Label)
			det.ShouldBlur = types.DefaultShouldBlur(det.Label)
		}
		out.Detections = append(out.Detections, det)
	}

	out.DetectionCount = len(out.Detections)
	summary := types.Summarize(out.Detections)
	out.RiskSummary = &summary
	return out
}

// FillContours gives every detection without a contour the ellipse inscribed
// in its box, the shape the compute server reports for box-only detections.
// Backend results pass through it; saved results keep their boxes.
func FillContours(result *types.DetectionResult) *types.DetectionResult {
	if result == nil {
		return nil
	}
	w, h := result.ImageDimensions.Width, result.ImageDimensions.Height
	for i := range result.Detections {
		if !result.Detections[i].Contour.Valid() {
			result.Detections[i].Contour = types.EllipticalContour(result.Detections[i].BBox, ContourPoints, w, h)
		}
	}
	return result
}

func scaleBox(b types.BoundingBox, sx, sy float64) types.BoundingBox {
	if sx == 1 && sy == 1 {
		return b
	}
	x0 := math.Round(float64(b.X) * sx)
	y0 := math.Round(float64(b.Y) * sy)
	x1 := math.Round(float64(b.X+b.Width) * sx)
	y1 := math.Round(float64(b.Y+b.Height) * sy)
	return types.BoundingBox{X: int(x0), Y: int(y0), Width: int(x1 - x0), Height: int(y1 - y0)}
}

func clampContour(c types.Contour, width, height int) types.Contour {
	maxX, maxY := float64(width-1), float64(height-1)
	for i, p := range c {
		c[i] = [2]float64{clamp(p[0], 0, maxX), clamp(p[1], 0, maxY)}
	}
	return c
}

// clamp ensures a value is within the given bounds
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
