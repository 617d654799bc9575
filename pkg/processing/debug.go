package processing

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/menta2k/image-redactor/pkg/targets"
)

// Overlay colors
var (
	OverlayAI       = color.NRGBA{0, 255, 0, 255}
	OverlayCustom   = color.NRGBA{255, 204, 0, 255}
	OverlayDisabled = color.NRGBA{128, 128, 128, 255}
	OverlayContour  = color.NRGBA{255, 0, 0, 255}
)

// CreateDebugOverlay outlines every target on a copy of img.
// AI targets are green, custom ones gold and disabled ones grey; contour
// vertices are marked with small red crosses.
func (p *Processor) CreateDebugOverlay(img image.Image, list []targets.BlurTarget) image.Image {
	nrgba := imaging.Clone(img)
	w := nrgba.Bounds().Dx()
	h := nrgba.Bounds().Dy()

	stroke := int(math.Max(2, 0.004*float64(minInt(w, h)))) // ~0.4% of min side
	cross := int(math.Max(3, 0.006*float64(minInt(w, h))))

	for _, t := range list {
		c := OverlayAI
		switch {
		case !t.Enabled:
			c = OverlayDisabled
		case t.Source == targets.SourceCustom:
			c = OverlayCustom
		}
		r := t.BBox.Rect().Intersect(nrgba.Bounds())
		if r.Empty() {
			continue
		}
		drawBox(nrgba, r, c, stroke)

		if !t.Contour.Valid() {
			continue
		}
		for _, pt := range t.Contour {
			px, py := int(pt[0]+0.5), int(pt[1]+0.5)
			drawHLine(nrgba, py, px-cross, px+cross, OverlayContour)
			drawVLine(nrgba, px, py-cross, py+cross, OverlayContour)
		}
	}
	return nrgba
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func drawBox(img *image.NRGBA, r image.Rectangle, c color.NRGBA, stroke int) {
	for s := 0; s < stroke; s++ {
		drawHLine(img, r.Min.Y+s, r.Min.X, r.Max.X, c)
		drawHLine(img, r.Max.Y-1-s, r.Min.X, r.Max.X, c)
		drawVLine(img, r.Min.X+s, r.Min.Y, r.Max.Y, c)
		drawVLine(img, r.Max.X-1-s, r.Min.Y, r.Max.Y, c)
	}
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	if y < 0 || y >= img.Bounds().Dy() {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if x1 <= 0 || x0 >= img.Bounds().Dx() {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 > img.Bounds().Dx() {
		x1 = img.Bounds().Dx()
	}
	i := y*img.Stride + x0*4
	for x := x0; x < x1; x++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += 4
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	if x < 0 || x >= img.Bounds().Dx() {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if y1 <= 0 || y0 >= img.Bounds().Dy() {
		return
	}
	if y0 < 0 {
		y0 = 0
	}
	if y1 > img.Bounds().Dy() {
		y1 = img.Bounds().Dy()
	}
	i := y0*img.Stride + x*4
	for y := y0; y < y1; y++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += img.Stride
	}
}
