package detection

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"

	"github.com/menta2k/image-redactor/pkg/types"
)

// VisionPrompt asks a vision model for body-part boxes in normalized coordinates
var VisionPrompt = `You are an image region locator for a privacy redaction tool.

Find every visible region matching one of these labels:
` + strings.Join(types.KnownLabels, ", ") + `

Return JSON only:
{
  "detections": [
    {"label": "FACE_FEMALE", "confidence": 0.0, "box": {"x": 0.0, "y": 0.0, "w": 0.0, "h": 0.0}}
  ]
}

HARD RULES
- All coordinates are normalized to [0,1] (NOT pixels). x,y is the top-left corner.
- Use only the labels listed above.
- Boxes should tightly include the region.
- If nothing matches, return {"detections": []}.
- JSON only. No markdown, no code fences, no comments, no trailing commas.`

type normBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type modelDetection struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Box        normBox `json:"box"`
}

type modelResponse struct {
	Detections []modelDetection `json:"detections"`
}

// ParseVisionResponse converts the normalized boxes of a vision model answer
// into pixel boxes of a width x height image. Unparseable output yields nil.
func ParseVisionResponse(raw string, width, height int) []types.Detection {
	raw = SanitizeModelJSON(raw)
	if !strings.HasPrefix(raw, "{") {
		return nil
	}

	var resp modelResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil
	}

	var out []types.Detection
	for _, d := range resp.Detections {
		label := strings.ToUpper(strings.TrimSpace(d.Label))
		if label == "" {
			continue
		}
		box := d.Box
		// some models answer in pixels despite the prompt
		if box.X > 1 || box.Y > 1 || box.W > 1 || box.H > 1 {
			box = normBox{
				X: box.X / float64(width),
				Y: box.Y / float64(height),
				W: box.W / float64(width),
				H: box.H / float64(height),
			}
		}
		x0 := clamp(box.X, 0, 1)
		y0 := clamp(box.Y, 0, 1)
		x1 := clamp(box.X+box.W, 0, 1)
		y1 := clamp(box.Y+box.H, 0, 1)

		px := int(math.Round(x0 * float64(width)))
		py := int(math.Round(y0 * float64(height)))
		bbox := types.BoundingBox{
			X:      px,
			Y:      py,
			Width:  int(math.Round(x1*float64(width))) - px,
			Height: int(math.Round(y1*float64(height))) - py,
		}
		if bbox.Empty() {
			continue
		}

		confidence := d.Confidence
		if confidence <= 0 {
			confidence = 0.5
		}
		out = append(out, types.Detection{
			Label:      label,
			Confidence: clamp(confidence, 0, 1),
			BBox:       bbox,
		})
	}
	return out
}

var (
	reBlock    = regexp.MustCompile(`(?s)/\*.*?\*/`)
	reLine     = regexp.MustCompile(`(?m)^\s*//.*$`)
	reTrailing = regexp.MustCompile(`,(\s*[}\]])`)
)

// SanitizeModelJSON removes code fences, comments, and trailing commas from JSON response
func SanitizeModelJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	// Strip triple-backtick fences if present
	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.TrimSpace(raw)
	raw = strings.Trim(raw, "`")

	raw = reBlock.ReplaceAllString(raw, "")
	raw = reLine.ReplaceAllString(raw, "")
	raw = reTrailing.ReplaceAllString(raw, "$1")

	// Keep only the outermost {...}
	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}
	return strings.TrimSpace(raw)
}
