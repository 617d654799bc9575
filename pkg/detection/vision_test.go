package detection

import (
	"strings"
	"testing"

	"github.com/menta2k/image-redactor/pkg/types"
)

func TestSanitizeModelJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", `{"detections": []}`, `{"detections": []}`},
		{"fenced", "```json\n{\"detections\": []}\n```", `{"detections": []}`},
		{"trailing comma", `{"detections": [{"label": "FACE_MALE"},]}`, `{"detections": [{"label": "FACE_MALE"}]}`},
		{"block comment", `{/* note */"detections": []}`, `{"detections": []}`},
		{"prose around", `Sure! {"detections": []} Hope this helps.`, `{"detections": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeModelJSON(tt.raw); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseVisionResponseNormalized(t *testing.T) {
	raw := "```json\n" + `{"detections": [
		{"label": "face_female", "confidence": 0.8, "box": {"x": 0.1, "y": 0.2, "w": 0.25, "h": 0.5}},
		{"label": "FEET_EXPOSED", "confidence": 0, "box": {"x": 0.9, "y": 0.9, "w": 0.5, "h": 0.5}},
		{"label": "", "confidence": 0.9, "box": {"x": 0.1, "y": 0.1, "w": 0.1, "h": 0.1}},
	]}` + "\n```"

	got := ParseVisionResponse(raw, 200, 100)
	if len(got) != 2 {
		t.Fatalf("expected 2 detections, got %+v", got)
	}
	if got[0].Label != "FACE_FEMALE" || got[0].Confidence != 0.8 {
		t.Errorf("first detection = %+v", got[0])
	}
	if got[0].BBox != (types.BoundingBox{X: 20, Y: 20, Width: 50, Height: 50}) {
		t.Errorf("bbox = %+v", got[0].BBox)
	}
	// box spilling past the edge is clipped, missing confidence gets a default
	if got[1].BBox != (types.BoundingBox{X: 180, Y: 90, Width: 20, Height: 10}) || got[1].Confidence != 0.5 {
		t.Errorf("second detection = %+v", got[1])
	}
}

func TestParseVisionResponsePixelBoxes(t *testing.T) {
	raw := `{"detections": [{"label": "BELLY_EXPOSED", "confidence": 0.7, "box": {"x": 40, "y": 30, "w": 80, "h": 20}}]}`
	got := ParseVisionResponse(raw, 400, 300)
	if len(got) != 1 || got[0].BBox != (types.BoundingBox{X: 40, Y: 30, Width: 80, Height: 20}) {
		t.Errorf("pixel boxes should pass through, got %+v", got)
	}
}

func TestParseVisionResponseUnparseable(t *testing.T) {
	for _, raw := range []string{"", "I cannot help with that.", `{"detections": [`} {
		if got := ParseVisionResponse(raw, 100, 100); len(got) != 0 {
			t.Errorf("%q: expected no detections, got %+v", raw, got)
		}
	}
}

func TestVisionPromptListsLabels(t *testing.T) {
	for _, l := range types.KnownLabels {
		if !strings.Contains(VisionPrompt, l) {
			t.Errorf("prompt missing label %s", l)
		}
	}
}
