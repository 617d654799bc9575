package llamacpp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/menta2k/image-redactor/pkg/types"
)

func TestDetect(t *testing.T) {
	var got ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":` +
			"\"```json\\n{\\\"detections\\\":[{\\\"label\\\":\\\"face_male\\\",\\\"confidence\\\":0.9,\\\"box\\\":{\\\"x\\\":0.5,\\\"y\\\":0.5,\\\"w\\\":0.25,\\\"h\\\":0.25}}]}\\n```\"" +
			`}}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL+"/", "llava")
	if err != nil {
		t.Fatal(err)
	}
	res, err := c.Detect(context.Background(), types.DetectionRequest{
		ImageB64: "aGVsbG8=", Format: "png", Width: 200, Height: 100,
	})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if res.DetectionCount != 1 || res.Detections[0].Label != "FACE_MALE" {
		t.Fatalf("result = %+v", res)
	}
	if res.Detections[0].BBox != (types.BoundingBox{X: 100, Y: 50, Width: 50, Height: 25}) {
		t.Errorf("bbox = %+v", res.Detections[0].BBox)
	}
	if res.ImageDimensions != (types.ImageDimensions{Width: 200, Height: 100}) {
		t.Errorf("dims = %+v", res.ImageDimensions)
	}

	if got.Model != "llava" || len(got.Messages) != 1 {
		t.Fatalf("request = %+v", got)
	}
	parts, ok := got.Messages[0].Content.([]any)
	if !ok || len(parts) != 2 {
		t.Fatalf("content = %#v", got.Messages[0].Content)
	}
	img, _ := parts[1].(map[string]any)["image_url"].(map[string]any)
	if url, _ := img["url"].(string); !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Errorf("image url = %v", img["url"])
	}
}

func TestDetectServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, _ := NewClient(srv.URL, "")
	if _, err := c.Detect(context.Background(), types.DetectionRequest{Width: 10, Height: 10}); err == nil ||
		!strings.Contains(err.Error(), "503") {
		t.Errorf("expected status error, got %v", err)
	}
	if err := c.Health(context.Background()); err == nil {
		t.Error("expected health error")
	}
}

func TestMessageText(t *testing.T) {
	if got := messageText(Message{Content: "plain"}); got != "plain" {
		t.Errorf("string content = %q", got)
	}
	parts := []any{map[string]any{"type": "text", "text": "from parts"}}
	if got := messageText(Message{Content: parts}); got != "from parts" {
		t.Errorf("array content = %q", got)
	}
	if got := messageText(Message{Content: 42}); got != "" {
		t.Errorf("unexpected content = %q", got)
	}
}

func TestNewClient(t *testing.T) {
	c, err := NewClient("", "")
	if err != nil || c.baseURL != DefaultURL {
		t.Errorf("default client = %+v, %v", c, err)
	}
	if _, err := NewClient("ftp://host", ""); err == nil {
		t.Error("expected scheme error")
	}
}
