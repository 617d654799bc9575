package studio

import (
	"context"
	"fmt"

	"github.com/menta2k/image-redactor/pkg/detection"
	"github.com/menta2k/image-redactor/pkg/effects"
	"github.com/menta2k/image-redactor/pkg/targets"
	"github.com/menta2k/image-redactor/pkg/types"
)

// StartDetection runs the detector on the loaded image in its own goroutine.
// The returned channel receives exactly one outcome; pass it to
// ApplyDetection from the goroutine owning the session. The session stays
// fully usable while detection is pending.
func (s *Session) StartDetection(ctx context.Context) (<-chan DetectionOutcome, error) {
	if !s.canvas.Ready() {
		return nil, ErrNoImage
	}
	if !s.aiEnabled {
		return nil, ErrDetectionDisabled
	}
	if s.detector == nil {
		return nil, detection.ErrNoClient
	}

	id := s.imageID
	img := s.canvas.Original()
	detector := s.detector
	out := make(chan DetectionOutcome, 1)

	s.logger.Info("detection started", "image_id", id)
	go func() {
		result, err := detector.Detect(ctx, img)
		out <- DetectionOutcome{ImageID: id, Result: result, Err: err}
	}()
	return out, nil
}

// ApplyDetection installs a finished detection and regenerates the AI
// targets. Outcomes for another image, failed detections and outcomes that
// arrive while AI detection is off leave the session unchanged; the return
// value reports whether the outcome was applied.
func (s *Session) ApplyDetection(o DetectionOutcome) bool {
	switch {
	case o.ImageID == "" || o.ImageID != s.imageID:
		s.logger.Debug("stale detection discarded", "image_id", o.ImageID, "current", s.imageID)
		return false
	case o.Err != nil:
		s.logger.Warn("detection failed", "image_id", o.ImageID, "error", o.Err)
		return false
	case !s.aiEnabled:
		s.logger.Debug("detection ignored, AI detection is off", "image_id", o.ImageID)
		return false
	}

	result := o.Result
	if result == nil {
		result = &types.DetectionResult{}
	}
	s.detection = result
	s.logger.Info("detection applied", "image_id", o.ImageID, "detections", len(result.Detections))
	s.rebuild()
	return true
}

// SetDetection installs a result obtained elsewhere, for example from a file,
// for the loaded image
func (s *Session) SetDetection(result *types.DetectionResult) bool {
	return s.ApplyDetection(DetectionOutcome{ImageID: s.imageID, Result: result})
}

// Detect runs detection and waits for it. It is StartDetection plus
// ApplyDetection for callers without an event loop.
func (s *Session) Detect(ctx context.Context) error {
	ch, err := s.StartDetection(ctx)
	if err != nil {
		return err
	}
	select {
	case o := <-ch:
		if o.Err != nil {
			return fmt.Errorf("detection: %w", o.Err)
		}
		s.ApplyDetection(o)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Summary describes the current session state
type Summary struct {
	ImageID        string             `json:"image_id,omitempty"`
	Width          int                `json:"width"`
	Height         int                `json:"height"`
	AIDetection    bool               `json:"ai_detection"`
	BlurMode       targets.BlurMode   `json:"blur_mode"`
	FullScreen     bool               `json:"full_screen"`
	Effect         effects.Settings   `json:"effect"`
	AITargets      int                `json:"ai_targets"`
	CustomTargets  int                `json:"custom_targets"`
	EnabledTargets int                `json:"enabled_targets"`
	Detections     int                `json:"detections"`
	Risk           *types.RiskSummary `json:"risk,omitempty"`
}

// Summary returns counts and settings of the session
func (s *Session) Summary() Summary {
	b := s.canvas.Bounds()
	sum := Summary{
		ImageID:       s.imageID,
		Width:         b.Dx(),
		Height:        b.Dy(),
		AIDetection:   s.aiEnabled,
		BlurMode:      s.mode,
		FullScreen:    s.fullScreen,
		Effect:        s.effect,
		AITargets:     len(s.registry.AI()),
		CustomTargets: len(s.registry.Custom()),
	}
	for _, t := range s.registry.Targets() {
		if t.Enabled {
			sum.EnabledTargets++
		}
	}
	if s.detection != nil {
		sum.Detections = len(s.detection.Detections)
		risk := s.detection.RiskSummary
		if risk == nil {
			r := types.Summarize(s.detection.Detections)
			risk = &r
		}
		sum.Risk = risk
	}
	return sum
}
