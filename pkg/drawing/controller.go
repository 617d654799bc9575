// Package drawing implements the drag-to-rectangle tool used to add custom
// redaction areas on top of a displayed (possibly scaled) image.
package drawing

import (
	"image"

	"github.com/menta2k/image-redactor/pkg/types"
)

// MinRegionSize is the size, in image pixels, a drawn rectangle must exceed on
// both axes to be kept. Smaller gestures are treated as clicks.
const MinRegionSize = 10

// State of the draw controller
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// PointMapper converts display coordinates to image pixels
type PointMapper interface {
	ToImage(x, y float64) (image.Point, bool)
}

// Controller tracks one drag gesture at a time.
// It is driven by UI events from a single goroutine.
type Controller struct {
	mapper   PointMapper
	onRegion func(types.BoundingBox)

	state   State
	start   image.Point
	current image.Point
	moved   bool
}

// New creates a Controller. onRegion is called with every completed rectangle.
func New(mapper PointMapper, onRegion func(types.BoundingBox)) *Controller {
	return &Controller{mapper: mapper, onRegion: onRegion}
}

// State returns the current gesture state
func (c *Controller) State() State {
	return c.state
}

// PointerDown starts tracking a gesture. A press while already dragging
// restarts tracking from the new point.
func (c *Controller) PointerDown(x, y float64) {
	pt, ok := c.mapper.ToImage(x, y)
	if !ok {
		return
	}
	c.state = Dragging
	c.start = pt
	c.current = pt
	c.moved = false
}

// PointerMove updates the live rectangle while dragging
func (c *Controller) PointerMove(x, y float64) {
	if c.state != Dragging {
		return
	}
	pt, ok := c.mapper.ToImage(x, y)
	if !ok {
		return
	}
	c.current = pt
	c.moved = true
}

// PointerUp finishes the gesture and emits the rectangle if it is large enough
func (c *Controller) PointerUp() {
	if c.state != Dragging {
		return
	}
	box := c.rect()
	c.state = Idle
	c.moved = false

	if box.Width > MinRegionSize && box.Height > MinRegionSize && c.onRegion != nil {
		c.onRegion(box)
	}
}

// PointerLeave behaves like PointerUp so a drag never stays stuck when the
// pointer exits the canvas
func (c *Controller) PointerLeave() {
	c.PointerUp()
}

// Preview returns the live rectangle. It is only available while dragging and
// after the first move.
func (c *Controller) Preview() (types.BoundingBox, bool) {
	if c.state != Dragging || !c.moved {
		return types.BoundingBox{}, false
	}
	return c.rect(), true
}

// Reset drops any gesture in progress without emitting it
func (c *Controller) Reset() {
	c.state = Idle
	c.moved = false
}

func (c *Controller) rect() types.BoundingBox {
	return types.FromRect(image.Rectangle{Min: c.start, Max: c.current})
}
