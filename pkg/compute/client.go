// Package compute talks to the SafeVision compute server, an HTTP service
// running the body-part detection model.
package compute

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/menta2k/image-redactor/pkg/types"
)

// ErrModelNotLoaded is returned when the server answers 503
var ErrModelNotLoaded = errors.New("compute server: model not loaded")

// DefaultURL is used when no server URL is configured
const DefaultURL = "http://localhost:8001"

// KeyHeader carries the shared API key
const KeyHeader = "X-Compute-Key"

const requestTimeout = 5 * time.Minute

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// LabelInfo describes one label of the model vocabulary
type LabelInfo struct {
	Label       string `json:"label"`
	Category    string `json:"category"`
	DefaultRisk string `json:"default_risk"`
	DefaultBlur bool   `json:"default_blur"`
}

type labelsResponse struct {
	Labels []LabelInfo `json:"labels"`
	Count  int         `json:"count"`
}

// HealthStatus is the body of GET /health
type HealthStatus struct {
	Status        string `json:"status"`
	ModelLoaded   bool   `json:"model_loaded"`
	UptimeSeconds int    `json:"uptime_seconds"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func NewClient(serverURL, apiKey string) (*Client, error) {
	if serverURL == "" {
		serverURL = DefaultURL
	}
	if !strings.HasPrefix(serverURL, "http://") && !strings.HasPrefix(serverURL, "https://") {
		return nil, fmt.Errorf("invalid compute URL %q: missing http(s) scheme", serverURL)
	}

	return &Client{
		baseURL: strings.TrimSuffix(serverURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}, nil
}

// Detect uploads the image and returns the server's detections.
// Coordinates refer to the uploaded image.
func (c *Client) Detect(ctx context.Context, req types.DetectionRequest) (*types.DetectionResult, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, requestTimeout)
		defer cancel()
	}

	imgBytes, err := base64.StdEncoding.DecodeString(req.ImageB64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 image: %w", err)
	}

	body, contentType, err := multipartBody(imgBytes, req.Format, req.Threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}

	respBody, err := c.do(ctx, http.MethodPost, "/compute/detect", body, contentType)
	if err != nil {
		return nil, err
	}

	var result types.DetectionResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse detection response: %w", err)
	}
	if result.DetectionCount == 0 {
		result.DetectionCount = len(result.Detections)
	}
	return &result, nil
}

// Labels returns the label names the model can emit
func (c *Client) Labels(ctx context.Context) ([]string, error) {
	info, err := c.LabelInfo(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(info))
	for i, l := range info {
		out[i] = l.Label
	}
	return out, nil
}

// LabelInfo returns the label vocabulary with risk and blur defaults
func (c *Client) LabelInfo(ctx context.Context) ([]LabelInfo, error) {
	respBody, err := c.do(ctx, http.MethodGet, "/compute/labels", nil, "")
	if err != nil {
		return nil, err
	}
	var resp labelsResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse labels response: %w", err)
	}
	return resp.Labels, nil
}

// Status fetches GET /health
func (c *Client) Status(ctx context.Context) (*HealthStatus, error) {
	respBody, err := c.do(ctx, http.MethodGet, "/health", nil, "")
	if err != nil {
		return nil, err
	}
	var status HealthStatus
	if err := json.Unmarshal(respBody, &status); err != nil {
		return nil, fmt.Errorf("failed to parse health response: %w", err)
	}
	return &status, nil
}

// Health returns nil when the server is up and its model is loaded
func (c *Client) Health(ctx context.Context) error {
	status, err := c.Status(ctx)
	if err != nil {
		return err
	}
	if !status.ModelLoaded {
		return ErrModelNotLoaded
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.apiKey != "" {
		req.Header.Set(KeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusServiceUnavailable:
		return nil, ErrModelNotLoaded
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("server returned status %d: %s", resp.StatusCode, errorDetail(respBody))
	}
	return respBody, nil
}

// errorDetail extracts FastAPI's {"detail": ...} message, falling back to the raw body
func errorDetail(body []byte) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Detail != "" {
		return e.Detail
	}
	return strings.TrimSpace(string(body))
}

func multipartBody(img []byte, format string, threshold float64) (*bytes.Buffer, string, error) {
	ext, mime := "jpg", "image/jpeg"
	if strings.EqualFold(format, "png") {
		ext, mime = "png", "image/png"
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="upload.%s"`, ext))
	h.Set("Content-Type", mime)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(img); err != nil {
		return nil, "", err
	}

	if threshold > 0 {
		if err := w.WriteField("threshold", strconv.FormatFloat(threshold, 'f', -1, 64)); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
