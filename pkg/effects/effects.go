// Package effects implements the redaction primitives (blur, pixelation and
// solid fill) applied to a rectangular or polygonal region of a canvas.
//
// Every primitive samples its source pixels from an "effective bounds"
// rectangle. For contour regions the effective bounds cover the box, every
// contour point and an extra margin, so a polygon that pokes outside its box
// (a forehead above a face box, for instance) still has processed pixels
// behind it once clipped.
package effects

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"

	"github.com/menta2k/image-redactor/pkg/types"
)

// ContourMargin is added on every side of the contour extents when sampling
const ContourMargin = 8

// Region is the area an effect is applied to. Contour is only honoured when it
// has at least three points; otherwise Rect is the shape.
type Region struct {
	Rect    image.Rectangle
	Contour types.Contour
}

// HasContour reports whether the region is clipped to a polygon
func (r Region) HasContour() bool {
	return r.Contour.Valid()
}

// Effect is one redaction variant. Apply draws the effect onto dst in place.
type Effect interface {
	Kind() Type
	Apply(dst *image.RGBA, region Region)
}

// Render is the pure form of Effect.Apply: it returns a copy of src with the
// effect applied and leaves src untouched.
func Render(src image.Image, region Region, e Effect) *image.RGBA {
	b := src.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), src, b.Min, draw.Src)
	if e != nil {
		e.Apply(out, region)
	}
	return out
}

// EffectiveBounds returns the sampling rectangle for a region on a canvas.
// Without a usable contour it is the rectangle clamped to the canvas.
func EffectiveBounds(rect image.Rectangle, contour types.Contour, canvas image.Rectangle) image.Rectangle {
	if !contour.Valid() {
		return rect.Intersect(canvas)
	}
	minX, minY := float64(rect.Min.X), float64(rect.Min.Y)
	maxX, maxY := float64(rect.Max.X), float64(rect.Max.Y)
	cx0, cy0, cx1, cy1 := contour.Bounds()
	minX = math.Min(minX, cx0)
	minY = math.Min(minY, cy0)
	maxX = math.Max(maxX, cx1)
	maxY = math.Max(maxY, cy1)

	r := image.Rect(
		int(math.Floor(minX))-ContourMargin,
		int(math.Floor(minY))-ContourMargin,
		int(math.Ceil(maxX))+ContourMargin,
		int(math.Ceil(maxY))+ContourMargin,
	)
	return r.Intersect(canvas)
}

// BlurRadius is the Gaussian radius used for a region of w x h pixels
func BlurRadius(intensity, w, h int) float64 {
	return math.Max(4, float64(intensity)/10*0.4*float64(min(w, h)))
}

// BlurPasses is how many times the region is re-blurred
func BlurPasses(intensity int) int {
	return int(math.Ceil(float64(intensity) / 2))
}

// BlockSize is the pixelation block edge in pixels
func BlockSize(size int) int {
	return max(4, int(math.Floor(float64(size)/10*40+0.5)))
}

// CornerRadius is the rounding applied to rectangular solid fills
func CornerRadius(w, h int) float64 {
	return math.Min(8, math.Min(float64(w)/4, float64(h)/4))
}

// Blur diffuses the region with repeated Gaussian passes
type Blur struct {
	Intensity int
}

func (Blur) Kind() Type { return TypeBlur }

func (b Blur) Apply(dst *image.RGBA, region Region) {
	eb, ok := sampleBounds(dst, region)
	if !ok {
		return
	}
	intensity := clampLevel(b.Intensity)
	radius := BlurRadius(intensity, eb.Dx(), eb.Dy())

	scratch := blur(imaging.Crop(dst, eb), radius, BlurPasses(intensity))
	composite(dst, scratch, eb, region)
}

// maxBlurSigma bounds the Gaussian sigma run at full resolution. Larger radii
// blur a proportionally shrunk copy, since imaging.Blur costs pixels x sigma.
const maxBlurSigma = 8.0

// blurScale is the shrink factor used for a blur of the given radius
func blurScale(radius float64) float64 {
	return math.Max(1, radius/maxBlurSigma)
}

func blur(img *image.NRGBA, radius float64, passes int) *image.NRGBA {
	scale := blurScale(radius)
	if scale == 1 {
		for i := 0; i < passes; i++ {
			img = imaging.Blur(img, radius)
		}
		return img
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	sw := max(1, int(math.Round(float64(w)/scale)))
	sh := max(1, int(math.Round(float64(h)/scale)))
	small := imaging.Resize(img, sw, sh, imaging.Box)
	sigma := radius * float64(sw) / float64(w)
	for i := 0; i < passes; i++ {
		small = imaging.Blur(small, sigma)
	}
	return imaging.Resize(small, w, h, imaging.Linear)
}

// Pixelate replaces the region with a mosaic of flat blocks
type Pixelate struct {
	Size int
}

func (Pixelate) Kind() Type { return TypePixelation }

func (p Pixelate) Apply(dst *image.RGBA, region Region) {
	eb, ok := sampleBounds(dst, region)
	if !ok {
		return
	}
	block := BlockSize(clampLevel(p.Size))
	w, h := eb.Dx(), eb.Dy()
	sw := max(1, (w+block-1)/block)
	sh := max(1, (h+block-1)/block)

	scratch := imaging.Crop(dst, eb)
	small := imaging.Resize(scratch, sw, sh, imaging.NearestNeighbor)
	blocks := imaging.Resize(small, w, h, imaging.NearestNeighbor)
	composite(dst, blocks, eb, region)
}

// Solid paints the region with a flat color
type Solid struct {
	Color color.RGBA
}

func (Solid) Kind() Type { return TypeSolid }

func (s Solid) Apply(dst *image.RGBA, region Region) {
	if region.Rect.Dx() <= 0 || region.Rect.Dy() <= 0 {
		return
	}
	fill := image.NewUniform(s.Color)
	canvas := dst.Bounds()

	if region.HasContour() {
		minX, minY, maxX, maxY := region.Contour.Bounds()
		r := image.Rect(
			int(math.Floor(minX)), int(math.Floor(minY)),
			int(math.Ceil(maxX))+1, int(math.Ceil(maxY))+1,
		).Intersect(canvas)
		if r.Empty() {
			return
		}
		draw.DrawMask(dst, r, fill, image.Point{}, polygonMask(region.Contour, r), image.Point{}, draw.Over)
		return
	}

	r := region.Rect.Intersect(canvas)
	if r.Empty() {
		return
	}
	draw.DrawMask(dst, r, fill, image.Point{}, roundedRectMask(r, CornerRadius(r.Dx(), r.Dy())), image.Point{}, draw.Over)
}

// sampleBounds validates the region and computes where pixels are read from
func sampleBounds(dst *image.RGBA, region Region) (image.Rectangle, bool) {
	if dst == nil || region.Rect.Dx() <= 0 || region.Rect.Dy() <= 0 {
		return image.Rectangle{}, false
	}
	eb := EffectiveBounds(region.Rect, region.Contour, dst.Bounds())
	if eb.Empty() {
		return image.Rectangle{}, false
	}
	return eb, true
}

// composite draws the processed scratch image (covering eb, origin 0,0) back
// onto dst, clipped to the contour or to the region rectangle
func composite(dst *image.RGBA, scratch image.Image, eb image.Rectangle, region Region) {
	if region.HasContour() {
		draw.DrawMask(dst, eb, scratch, image.Point{}, polygonMask(region.Contour, eb), image.Point{}, draw.Over)
		return
	}
	clip := region.Rect.Intersect(eb)
	if clip.Empty() {
		return
	}
	draw.Draw(dst, clip, scratch, clip.Min.Sub(eb.Min), draw.Src)
}
