package coords

import (
	"image"
	"math"
)

// Viewport is the rectangle, in display coordinates, where the image is shown
type Viewport struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Mapper converts display (pointer) coordinates into image-pixel coordinates.
// The zero value has no image and maps nothing.
type Mapper struct {
	imageW int
	imageH int
	view   Viewport
}

// New creates a Mapper for an image displayed in the given viewport
func New(imageW, imageH int, view Viewport) *Mapper {
	return &Mapper{imageW: imageW, imageH: imageH, view: view}
}

// SetImage records the pixel size of the loaded image
func (m *Mapper) SetImage(w, h int) {
	m.imageW, m.imageH = w, h
}

// SetViewport records where the image is displayed
func (m *Mapper) SetViewport(v Viewport) {
	m.view = v
}

// Viewport returns the current viewport
func (m *Mapper) Viewport() Viewport {
	return m.view
}

// Clear forgets the image so that every mapping fails
func (m *Mapper) Clear() {
	m.imageW, m.imageH = 0, 0
}

// Ready reports whether an image is loaded and displayed with a usable size
func (m *Mapper) Ready() bool {
	return m != nil && m.imageW > 0 && m.imageH > 0 && m.view.Width > 0 && m.view.Height > 0
}

// Scale returns the ratio of backing pixels to displayed size on each axis
func (m *Mapper) Scale() (float64, float64) {
	if !m.Ready() {
		return 0, 0
	}
	return float64(m.imageW) / m.view.Width, float64(m.imageH) / m.view.Height
}

// ToImage maps a display point to the nearest image pixel.
// It returns false when no image is loaded.
func (m *Mapper) ToImage(x, y float64) (image.Point, bool) {
	if !m.Ready() {
		return image.Point{}, false
	}
	sx, sy := m.Scale()
	return image.Point{
		X: roundHalfUp((x - m.view.Left) * sx),
		Y: roundHalfUp((y - m.view.Top) * sy),
	}, true
}

// ToDisplay maps an image pixel back to display coordinates
func (m *Mapper) ToDisplay(p image.Point) (float64, float64, bool) {
	if !m.Ready() {
		return 0, 0, false
	}
	sx, sy := m.Scale()
	return m.view.Left + float64(p.X)/sx, m.view.Top + float64(p.Y)/sy, true
}

// roundHalfUp rounds .5 towards positive infinity, as browsers round pointer math
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
