// Package compositor renders redaction targets onto a copy of the original
// image. Every render starts again from the untouched original, so the output
// depends only on the arguments of the last call.
package compositor

import (
	"image"
	"image/draw"

	"github.com/menta2k/image-redactor/pkg/effects"
	"github.com/menta2k/image-redactor/pkg/targets"
)

// Canvas pairs an immutable original image with the surface renders draw on.
// A nil Canvas, or one created without an image, ignores every call.
type Canvas struct {
	original *image.RGBA
	surface  *image.RGBA
}

// NewCanvas copies img into a new Canvas with its origin moved to (0,0)
func NewCanvas(img image.Image) *Canvas {
	if img == nil || img.Bounds().Empty() {
		return &Canvas{}
	}
	b := img.Bounds()
	original := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(original, original.Bounds(), img, b.Min, draw.Src)

	surface := image.NewRGBA(original.Bounds())
	copy(surface.Pix, original.Pix)
	return &Canvas{original: original, surface: surface}
}

// Ready reports whether an image is loaded
func (c *Canvas) Ready() bool {
	return c != nil && c.original != nil
}

// Bounds returns the canvas rectangle, empty when no image is loaded
func (c *Canvas) Bounds() image.Rectangle {
	if !c.Ready() {
		return image.Rectangle{}
	}
	return c.original.Bounds()
}

// Original returns the untouched image. Callers must not modify it.
func (c *Canvas) Original() *image.RGBA {
	if !c.Ready() {
		return nil
	}
	return c.original
}

// Image returns the live surface holding the last render
func (c *Canvas) Image() *image.RGBA {
	if !c.Ready() {
		return nil
	}
	return c.surface
}

// Snapshot returns a copy of the surface that later renders won't touch
func (c *Canvas) Snapshot() *image.RGBA {
	if !c.Ready() {
		return nil
	}
	out := image.NewRGBA(c.surface.Bounds())
	copy(out.Pix, c.surface.Pix)
	return out
}

// Render restores the original image and applies the configured effect.
// With fullScreen set the whole canvas is one rectangular region and targets
// are ignored. Otherwise every enabled target is clamped to the canvas and
// processed in list order, so later targets draw over earlier ones.
func (c *Canvas) Render(list []targets.BlurTarget, settings effects.Settings, fullScreen bool) {
	if !c.Ready() {
		return
	}
	copy(c.surface.Pix, c.original.Pix)

	effect := settings.Effect()
	bounds := c.surface.Bounds()

	if fullScreen {
		effect.Apply(c.surface, effects.Region{Rect: bounds})
		return
	}

	useContour := settings.Normalize().UseContour()
	for _, t := range list {
		if !t.Enabled {
			continue
		}
		r := t.BBox.Rect().Intersect(bounds)
		if r.Empty() {
			continue
		}
		region := effects.Region{Rect: r}
		if useContour && t.Contour.Valid() {
			region.Contour = t.Contour
		}
		effect.Apply(c.surface, region)
	}
}
