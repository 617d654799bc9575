package client

import (
	"context"

	"github.com/menta2k/image-redactor/pkg/types"
)

// DetectionClient is a backend that finds body-part regions in an image.
// Coordinates in the result refer to the image that was sent.
type DetectionClient interface {
	Detect(ctx context.Context, req types.DetectionRequest) (*types.DetectionResult, error)
}

// LabelLister is implemented by backends that can report their label vocabulary
type LabelLister interface {
	Labels(ctx context.Context) ([]string, error)
}

// HealthChecker is implemented by backends exposing a readiness probe
type HealthChecker interface {
	Health(ctx context.Context) error
}
