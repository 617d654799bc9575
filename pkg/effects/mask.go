package effects

import (
	"image"

	"golang.org/x/image/vector"

	"github.com/menta2k/image-redactor/pkg/types"
)

// polygonMask rasterises the contour into an alpha mask covering r.
// The mask origin is (0,0), aligned with r.Min.
func polygonMask(contour types.Contour, r image.Rectangle) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, r.Dx(), r.Dy()))
	if !contour.Valid() || r.Empty() {
		return mask
	}
	ox, oy := float32(r.Min.X), float32(r.Min.Y)

	z := vector.NewRasterizer(r.Dx(), r.Dy())
	z.MoveTo(float32(contour[0][0])-ox, float32(contour[0][1])-oy)
	for _, p := range contour[1:] {
		z.LineTo(float32(p[0])-ox, float32(p[1])-oy)
	}
	z.ClosePath()
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return mask
}

// roundedRectMask rasterises a rectangle filling r with quadratic corners of
// the given radius
func roundedRectMask(r image.Rectangle, radius float64) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, r.Dx(), r.Dy()))
	if r.Empty() {
		return mask
	}
	w, h := float32(r.Dx()), float32(r.Dy())
	rad := float32(radius)

	z := vector.NewRasterizer(r.Dx(), r.Dy())
	z.MoveTo(rad, 0)
	z.LineTo(w-rad, 0)
	z.QuadTo(w, 0, w, rad)
	z.LineTo(w, h-rad)
	z.QuadTo(w, h, w-rad, h)
	z.LineTo(rad, h)
	z.QuadTo(0, h, 0, h-rad)
	z.LineTo(0, rad)
	z.QuadTo(0, 0, rad, 0)
	z.ClosePath()
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return mask
}
