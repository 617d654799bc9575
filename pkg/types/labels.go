package types

import (
	"math"
	"strings"
)

// Risk levels, lowest first
const (
	RiskSafe     = "SAFE"
	RiskLow      = "LOW"
	RiskModerate = "MODERATE"
	RiskHigh     = "HIGH"
	RiskCritical = "CRITICAL"
)

var riskOrder = []string{RiskSafe, RiskLow, RiskModerate, RiskHigh, RiskCritical}

// KnownLabels is the label vocabulary of the body-part detection model.
// Labels outside this list are still accepted everywhere.
var KnownLabels = []string{
	"FEMALE_GENITALIA_COVERED",
	"FACE_FEMALE",
	"BUTTOCKS_EXPOSED",
	"FEMALE_BREAST_EXPOSED",
	"FEMALE_GENITALIA_EXPOSED",
	"MALE_BREAST_EXPOSED",
	"ANUS_EXPOSED",
	"FEET_EXPOSED",
	"BELLY_COVERED",
	"FEET_COVERED",
	"ARMPITS_COVERED",
	"ARMPITS_EXPOSED",
	"FACE_MALE",
	"BELLY_EXPOSED",
	"MALE_GENITALIA_EXPOSED",
	"ANUS_COVERED",
	"FEMALE_BREAST_COVERED",
	"BUTTOCKS_COVERED",
}

var riskByLabel = map[string]string{
	"FEMALE_GENITALIA_EXPOSED": RiskCritical,
	"MALE_GENITALIA_EXPOSED":   RiskCritical,
	"FEMALE_BREAST_EXPOSED":    RiskHigh,
	"ANUS_EXPOSED":             RiskHigh,
	"BUTTOCKS_EXPOSED":         RiskModerate,
	"MALE_BREAST_EXPOSED":      RiskLow,
	"BELLY_EXPOSED":            RiskLow,
	"FEET_EXPOSED":             RiskLow,
	"ARMPITS_EXPOSED":          RiskLow,
}

// RiskLevel returns the default risk level of a label
func RiskLevel(label string) string {
	if r, ok := riskByLabel[label]; ok {
		return r
	}
	return RiskSafe
}

// Category groups a label into exposed, covered, face or other
func Category(label string) string {
	switch {
	case strings.Contains(label, "EXPOSED"):
		return "exposed"
	case strings.Contains(label, "COVERED"):
		return "covered"
	case strings.Contains(label, "FACE"):
		return "face"
	default:
		return "other"
	}
}

// DefaultShouldBlur reports whether a label is blurred by default (exposed labels only)
func DefaultShouldBlur(label string) bool {
	return strings.Contains(label, "EXPOSED")
}

func riskRank(level string) int {
	for i, r := range riskOrder {
		if r == level {
			return i
		}
	}
	return 0
}

// Summarize computes the risk summary of a detection list
func Summarize(detections []Detection) RiskSummary {
	summary := RiskSummary{
		OverallRisk:  RiskSafe,
		Distribution: map[string]int{},
	}
	for _, d := range detections {
		level := d.RiskLevel
		if level == "" {
			level = RiskLevel(d.Label)
		}
		summary.Distribution[level]++
		if riskRank(level) > riskRank(summary.OverallRisk) {
			summary.OverallRisk = level
		}
	}
	summary.IsSafe = summary.OverallRisk == RiskSafe || summary.OverallRisk == RiskLow
	return summary
}

// EllipticalContour approximates the ellipse inscribed in a box with n points,
// clamped to a w x h image. Used for detections that come without a polygon.
func EllipticalContour(b BoundingBox, n, w, h int) Contour {
	if n < 3 || b.Empty() {
		return nil
	}
	cx := float64(b.X) + float64(b.Width)/2
	cy := float64(b.Y) + float64(b.Height)/2
	rx := float64(b.Width) / 2
	ry := float64(b.Height) / 2

	points := make(Contour, 0, n)
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		px := math.Trunc(cx + rx*math.Cos(angle))
		py := math.Trunc(cy + ry*math.Sin(angle))
		px = math.Max(0, math.Min(px, float64(w-1)))
		py = math.Max(0, math.Min(py, float64(h-1)))
		points = append(points, [2]float64{px, py})
	}
	return points
}
