package types

import "image"

// BoundingBox is an axis-aligned box in image-pixel space
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect converts the box to an image.Rectangle
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// Empty reports whether the box has no area
func (b BoundingBox) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// Clamp returns the box intersected with a w x h image
func (b BoundingBox) Clamp(w, h int) BoundingBox {
	return FromRect(b.Rect().Intersect(image.Rect(0, 0, w, h)))
}

// FromRect converts an image.Rectangle to a BoundingBox
func FromRect(r image.Rectangle) BoundingBox {
	r = r.Canon()
	return BoundingBox{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Contour is a closed polygon of [x, y] image-pixel points.
// Fewer than three points means the contour is unusable and the box is used instead.
type Contour [][2]float64

// Valid reports whether the contour describes a polygon
func (c Contour) Valid() bool {
	return len(c) >= 3
}

// Bounds returns the smallest float rectangle holding every point
func (c Contour) Bounds() (minX, minY, maxX, maxY float64) {
	if len(c) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = c[0][0], c[0][1]
	maxX, maxY = minX, minY
	for _, p := range c[1:] {
		if p[0] < minX {
			minX = p[0]
		}
		if p[1] < minY {
			minY = p[1]
		}
		if p[0] > maxX {
			maxX = p[0]
		}
		if p[1] > maxY {
			maxY = p[1]
		}
	}
	return minX, minY, maxX, maxY
}

// Scale multiplies every point by the given factors
func (c Contour) Scale(sx, sy float64) Contour {
	if c == nil {
		return nil
	}
	out := make(Contour, len(c))
	for i, p := range c {
		out[i] = [2]float64{p[0] * sx, p[1] * sy}
	}
	return out
}

// Detection is a single labeled region returned by the detection service
type Detection struct {
	Label      string      `json:"label"`
	Confidence float64     `json:"confidence"`
	RiskLevel  string      `json:"risk_level,omitempty"`
	BBox       BoundingBox `json:"bbox"`
	ShouldBlur bool        `json:"should_blur,omitempty"`
	Contour    Contour     `json:"contour,omitempty"`
}

// ImageDimensions is the pixel size of the analyzed image
type ImageDimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// RiskSummary aggregates the risk levels of a detection list
type RiskSummary struct {
	OverallRisk  string         `json:"overall_risk"`
	IsSafe       bool           `json:"is_safe"`
	Distribution map[string]int `json:"distribution"`
}

// DetectionResult is the full response of the detection collaborator
type DetectionResult struct {
	ImageDimensions ImageDimensions `json:"image_dimensions"`
	Detections      []Detection     `json:"detections"`
	DetectionCount  int             `json:"detection_count"`
	RiskSummary     *RiskSummary    `json:"risk_summary,omitempty"`
}

// DetectionRequest is what a detection client receives
type DetectionRequest struct {
	ImageB64  string
	Format    string
	Width     int
	Height    int
	Threshold float64
}
