package detection

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/menta2k/image-redactor/pkg/types"
)

// fakeClient records the request and answers with a canned result
type fakeClient struct {
	result *types.DetectionResult
	err    error
	got    types.DetectionRequest
	calls  int
}

func (f *fakeClient) Detect(ctx context.Context, req types.DetectionRequest) (*types.DetectionResult, error) {
	f.calls++
	f.got = req
	return f.result, f.err
}

func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	return img
}

func TestDetectWithoutClient(t *testing.T) {
	var d *Detector
	if _, err := d.Detect(context.Background(), createTestImage(32, 32)); !errors.Is(err, ErrNoClient) {
		t.Errorf("nil detector: expected ErrNoClient, got %v", err)
	}
	if _, err := NewDetector(nil).Detect(context.Background(), createTestImage(32, 32)); !errors.Is(err, ErrNoClient) {
		t.Errorf("nil client: expected ErrNoClient, got %v", err)
	}
}

func TestDetectRescalesToOriginal(t *testing.T) {
	fc := &fakeClient{result: &types.DetectionResult{
		ImageDimensions: types.ImageDimensions{Width: 200, Height: 100},
		Detections: []types.Detection{
			{Label: "FACE_FEMALE", Confidence: 0.9, BBox: types.BoundingBox{X: 10, Y: 10, Width: 50, Height: 40},
				Contour: types.Contour{{10, 10}, {60, 10}, {35, 50}}},
		},
	}}

	cfg := DefaultConfig()
	cfg.SendSize = 200
	d := NewDetectorWithConfig(fc, cfg)

	result, err := d.Detect(context.Background(), createTestImage(400, 200))
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if fc.got.Width != 200 || fc.got.Height != 100 || fc.got.ImageB64 == "" {
		t.Errorf("unexpected request %+v", fc.got)
	}
	if fc.got.Threshold != DefaultThreshold {
		t.Errorf("threshold = %v", fc.got.Threshold)
	}

	if result.ImageDimensions != (types.ImageDimensions{Width: 400, Height: 200}) {
		t.Errorf("dimensions = %+v", result.ImageDimensions)
	}
	det := result.Detections[0]
	if det.BBox != (types.BoundingBox{X: 20, Y: 20, Width: 100, Height: 80}) {
		t.Errorf("bbox = %+v", det.BBox)
	}
	if det.Contour[2] != [2]float64{70, 100} {
		t.Errorf("contour not rescaled: %v", det.Contour)
	}
}

func TestDetectFillsDimensions(t *testing.T) {
	fc := &fakeClient{result: &types.DetectionResult{
		Detections: []types.Detection{{Label: "FEET_EXPOSED", Confidence: 0.5, BBox: types.BoundingBox{X: 5, Y: 5, Width: 10, Height: 10}}},
	}}
	d := NewDetector(fc)
	result, err := d.Detect(context.Background(), createTestImage(64, 48))
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if result.Detections[0].BBox != (types.BoundingBox{X: 5, Y: 5, Width: 10, Height: 10}) {
		t.Errorf("small image should not be rescaled: %+v", result.Detections[0].BBox)
	}
}

func TestDetectWrapsClientError(t *testing.T) {
	boom := errors.New("boom")
	d := NewDetector(&fakeClient{err: boom})
	_, err := d.Detect(context.Background(), createTestImage(32, 32))
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped client error, got %v", err)
	}
}

func TestDetectRejectsTinyImage(t *testing.T) {
	fc := &fakeClient{}
	if _, err := NewDetector(fc).Detect(context.Background(), createTestImage(4, 4)); err == nil {
		t.Error("expected validation error")
	}
	if fc.calls != 0 {
		t.Error("client should not be called for invalid images")
	}
}

func TestNormalize(t *testing.T) {
	raw := &types.DetectionResult{
		Detections: []types.Detection{
			{Label: "FACE_MALE", Confidence: 0.1, BBox: types.BoundingBox{X: 0, Y: 0, Width: 10, Height: 10}},
			{Label: "ANUS_EXPOSED", Confidence: 0.8, BBox: types.BoundingBox{X: 90, Y: 90, Width: 40, Height: 40}},
			{Label: "BELLY_COVERED", Confidence: 0.6, BBox: types.BoundingBox{X: 200, Y: 200, Width: 10, Height: 10}},
			{Label: "FEET_EXPOSED", Confidence: 0.6, BBox: types.BoundingBox{X: 10, Y: 10, Width: 30, Height: 20},
				Contour: types.Contour{{10, 10}, {40, 10}}},
		},
	}

	got := Normalize(raw, 100, 100, 0.25)
	if got.DetectionCount != 2 || len(got.Detections) != 2 {
		t.Fatalf("expected 2 detections, got %+v", got.Detections)
	}

	anus := got.Detections[0]
	if anus.BBox != (types.BoundingBox{X: 90, Y: 90, Width: 10, Height: 10}) {
		t.Errorf("bbox not clamped: %+v", anus.BBox)
	}
	if anus.RiskLevel != types.RiskHigh || !anus.ShouldBlur {
		t.Errorf("risk fields not filled: %+v", anus)
	}
	if anus.Contour != nil {
		t.Errorf("box-only detection should stay box-only, got %v", anus.Contour)
	}

	feet := got.Detections[1]
	if feet.Contour != nil {
		t.Errorf("short contour should be dropped, got %v", feet.Contour)
	}

	if got.RiskSummary == nil || got.RiskSummary.OverallRisk != types.RiskHigh || got.RiskSummary.IsSafe {
		t.Errorf("summary = %+v", got.RiskSummary)
	}
}

func TestNormalizeKeepsBackendRisk(t *testing.T) {
	raw := &types.DetectionResult{Detections: []types.Detection{
		{Label: "FACE_FEMALE", Confidence: 0.9, RiskLevel: types.RiskModerate, ShouldBlur: true,
			BBox: types.BoundingBox{X: 1, Y: 1, Width: 20, Height: 20}},
	}}
	got := Normalize(raw, 50, 50, 0.25)
	if d := got.Detections[0]; d.RiskLevel != types.RiskModerate || !d.ShouldBlur {
		t.Errorf("backend risk overwritten: %+v", d)
	}
}

func TestNormalizeNil(t *testing.T) {
	got := Normalize(nil, 10, 10, 0.25)
	if got.DetectionCount != 0 || got.RiskSummary == nil || !got.RiskSummary.IsSafe {
		t.Errorf("unexpected result %+v", got)
	}
}

func TestFillContours(t *testing.T) {
	result := Normalize(&types.DetectionResult{Detections: []types.Detection{
		{Label: "ANUS_EXPOSED", Confidence: 0.8, BBox: types.BoundingBox{X: 90, Y: 90, Width: 40, Height: 40}},
		{Label: "FACE_FEMALE", Confidence: 0.8, BBox: types.BoundingBox{X: 0, Y: 0, Width: 20, Height: 20},
			Contour: types.Contour{{0, 0}, {20, 0}, {10, 20}}},
	}}, 100, 100, 0.25)

	got := FillContours(result)
	ellipse := got.Detections[0].Contour
	if len(ellipse) != ContourPoints {
		t.Fatalf("expected a %d-point ellipse, got %d points", ContourPoints, len(ellipse))
	}
	for _, p := range ellipse {
		if p[0] < 0 || p[0] > 99 || p[1] < 0 || p[1] > 99 {
			t.Errorf("contour point %v outside image", p)
		}
	}
	if len(got.Detections[1].Contour) != 3 {
		t.Errorf("existing contour replaced: %v", got.Detections[1].Contour)
	}
	if FillContours(nil) != nil {
		t.Error("nil result should stay nil")
	}
}

func TestDetectFillsMissingContours(t *testing.T) {
	fc := &fakeClient{result: &types.DetectionResult{
		ImageDimensions: types.ImageDimensions{Width: 100, Height: 100},
		Detections: []types.Detection{
			{Label: "FACE_MALE", Confidence: 0.9, BBox: types.BoundingBox{X: 10, Y: 10, Width: 30, Height: 30}},
		},
	}}
	got, err := NewDetector(fc).Detect(context.Background(), createTestImage(100, 100))
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Detections) != 1 || len(got.Detections[0].Contour) != ContourPoints {
		t.Errorf("backend detection without contour should get an ellipse: %+v", got.Detections)
	}
}
