// Package studio holds the editing state of one image: the loaded picture,
// its targets, the effect settings and the drag gesture in progress.
//
// A Session is owned by a single goroutine. Detection is the only work that
// runs elsewhere; its outcome is handed back through ApplyDetection, which
// drops results that belong to an image no longer loaded.
package studio

import (
	"context"
	"errors"
	"image"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/menta2k/image-redactor/pkg/compositor"
	"github.com/menta2k/image-redactor/pkg/coords"
	"github.com/menta2k/image-redactor/pkg/drawing"
	"github.com/menta2k/image-redactor/pkg/effects"
	"github.com/menta2k/image-redactor/pkg/processing"
	"github.com/menta2k/image-redactor/pkg/targets"
	"github.com/menta2k/image-redactor/pkg/types"
)

var (
	// ErrNoImage is returned by operations that need a loaded image
	ErrNoImage = errors.New("no image loaded")
	// ErrDetectionDisabled is returned when detection is requested while AI detection is off
	ErrDetectionDisabled = errors.New("AI detection is disabled")
)

// Detector finds regions in an image. Coordinates of the result must refer to img.
type Detector interface {
	Detect(ctx context.Context, img image.Image) (*types.DetectionResult, error)
}

// DetectionOutcome carries a finished detection back to the session
type DetectionOutcome struct {
	ImageID string
	Result  *types.DetectionResult
	Err     error
}

// Config holds the initial editing state
type Config struct {
	Effect      effects.Settings
	Groups      []targets.BodyPartGroup
	Mode        targets.BlurMode
	AIDetection bool
	Quality     int
	Lossless    bool
}

// DefaultConfig returns the defaults of a fresh session
func DefaultConfig() Config {
	return Config{
		Effect:      effects.DefaultSettings(),
		Groups:      targets.DefaultGroups(),
		Mode:        targets.ModeAll,
		AIDetection: true,
		Quality:     95,
	}
}

// Session is the explicit application state of the redaction studio
type Session struct {
	logger    *slog.Logger
	detector  Detector
	processor *processing.Processor

	mapper   *coords.Mapper
	draw     *drawing.Controller
	registry *targets.Registry
	canvas   *compositor.Canvas

	imageID    string
	groups     []targets.BodyPartGroup
	mode       targets.BlurMode
	effect     effects.Settings
	fullScreen bool
	aiEnabled  bool
	drawMode   bool
	autoView   bool
	detection  *types.DetectionResult
	quality    int
	lossless   bool
}

// New creates a Session with default configuration
func New(detector Detector, logger *slog.Logger) *Session {
	return NewWithConfig(DefaultConfig(), detector, logger)
}

// NewWithConfig creates a Session with custom configuration.
// A nil logger discards all output; a nil detector disables StartDetection.
func NewWithConfig(config Config, detector Detector, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	groups := targets.CloneGroups(config.Groups)
	if groups == nil {
		groups = targets.DefaultGroups()
	}
	mode := config.Mode
	if mode != targets.ModeSelective {
		mode = targets.ModeAll
	}
	if config.Quality <= 0 {
		config.Quality = 95
	}

	s := &Session{
		logger:    logger,
		detector:  detector,
		processor: processing.NewProcessor(),
		mapper:    &coords.Mapper{},
		registry:  targets.NewRegistry(),
		canvas:    compositor.NewCanvas(nil),
		groups:    groups,
		mode:      mode,
		effect:    config.Effect.Normalize(),
		aiEnabled: config.AIDetection,
		quality:   config.Quality,
		lossless:  config.Lossless,
	}
	s.draw = drawing.New(s.mapper, s.addRegion)
	return s
}

// LoadImage replaces the current image. Targets, the cached detection and any
// gesture in progress are dropped, and a new image id is issued so detections
// started for the previous image are ignored. The viewport defaults to the
// image's own size until SetViewport is called. A nil image unloads.
func (s *Session) LoadImage(img image.Image) string {
	s.registry.Reset()
	s.detection = nil
	s.draw.Reset()
	s.canvas = compositor.NewCanvas(img)

	if !s.canvas.Ready() {
		s.mapper.Clear()
		s.imageID = ""
		s.logger.Debug("image unloaded")
		return ""
	}

	b := s.canvas.Bounds()
	s.mapper.SetImage(b.Dx(), b.Dy())
	if v := s.mapper.Viewport(); s.autoView || v.Width <= 0 || v.Height <= 0 {
		s.mapper.SetViewport(coords.Viewport{Width: float64(b.Dx()), Height: float64(b.Dy())})
		s.autoView = true
	}
	s.imageID = uuid.NewString()
	s.logger.Info("image loaded", "image_id", s.imageID, "width", b.Dx(), "height", b.Dy())

	s.render()
	return s.imageID
}

// ImageID returns the identity of the loaded image, empty when none is loaded
func (s *Session) ImageID() string {
	return s.imageID
}

// SetViewport records where the image is displayed
func (s *Session) SetViewport(v coords.Viewport) {
	s.mapper.SetViewport(v)
	s.autoView = false
}

// Mapper exposes the coordinate mapper for preview overlays
func (s *Session) Mapper() *coords.Mapper {
	return s.mapper
}

// SetDrawMode turns custom region drawing on or off. Turning it off drops
// any gesture in progress.
func (s *Session) SetDrawMode(on bool) {
	s.drawMode = on
	if !on {
		s.draw.Reset()
	}
}

// DrawMode reports whether pointer events draw custom regions
func (s *Session) DrawMode() bool {
	return s.drawMode
}

// PointerDown forwards a press in display coordinates to the draw controller
func (s *Session) PointerDown(x, y float64) {
	if !s.drawMode || !s.canvas.Ready() {
		return
	}
	s.draw.PointerDown(x, y)
}

// PointerMove forwards pointer motion in display coordinates
func (s *Session) PointerMove(x, y float64) {
	if !s.drawMode {
		return
	}
	s.draw.PointerMove(x, y)
}

// PointerUp completes the gesture in progress
func (s *Session) PointerUp() {
	s.draw.PointerUp()
}

// PointerLeave completes the gesture when the pointer exits the canvas
func (s *Session) PointerLeave() {
	s.draw.PointerLeave()
}

// Preview returns the rectangle of the drag in progress
func (s *Session) Preview() (types.BoundingBox, bool) {
	return s.draw.Preview()
}

// DragState returns the state of the draw controller
func (s *Session) DragState() drawing.State {
	return s.draw.State()
}

func (s *Session) addRegion(box types.BoundingBox) {
	t := s.registry.AddCustom(box)
	s.logger.Debug("custom region added", "id", t.ID, "x", box.X, "y", box.Y, "width", box.Width, "height", box.Height)
	s.render()
}

// AddRegion adds a custom target directly in image coordinates.
// Boxes no larger than the draw threshold are ignored, like drawn ones.
func (s *Session) AddRegion(box types.BoundingBox) (targets.BlurTarget, bool) {
	if !s.canvas.Ready() || box.Width <= drawing.MinRegionSize || box.Height <= drawing.MinRegionSize {
		return targets.BlurTarget{}, false
	}
	s.addRegion(box)
	custom := s.registry.Custom()
	return custom[len(custom)-1], true
}

// Groups returns a copy of the body part groups
func (s *Session) Groups() []targets.BodyPartGroup {
	return targets.CloneGroups(s.groups)
}

// SetGroupEnabled toggles a body part group and regenerates the AI targets
func (s *Session) SetGroupEnabled(id string, enabled bool) bool {
	if !targets.SetGroupEnabled(s.groups, id, enabled) {
		return false
	}
	s.logger.Debug("group changed", "group", id, "enabled", enabled)
	s.rebuild()
	return true
}

// SetGroups replaces the group configuration and regenerates the AI targets
func (s *Session) SetGroups(groups []targets.BodyPartGroup) {
	s.groups = targets.CloneGroups(groups)
	s.rebuild()
}

// BlurMode returns the current blur mode
func (s *Session) BlurMode() targets.BlurMode {
	return s.mode
}

// SetBlurMode changes whether new AI targets start enabled and regenerates them
func (s *Session) SetBlurMode(mode targets.BlurMode) {
	if mode != targets.ModeSelective {
		mode = targets.ModeAll
	}
	s.mode = mode
	s.logger.Debug("blur mode changed", "mode", mode)
	s.rebuild()
}

// AIDetection reports whether AI detection is on
func (s *Session) AIDetection() bool {
	return s.aiEnabled
}

// SetAIDetection turns AI detection on or off. Turning it off clears every AI
// target and the cached detection; custom targets are kept. Turning it on
// does not start detection by itself, call StartDetection.
func (s *Session) SetAIDetection(on bool) {
	if s.aiEnabled == on {
		return
	}
	s.aiEnabled = on
	s.logger.Info("AI detection toggled", "enabled", on)
	if !on {
		s.detection = nil
		s.registry.ClearAI()
		s.render()
	}
}

// Detection returns the cached detection result, nil when none is cached
func (s *Session) Detection() *types.DetectionResult {
	return s.detection
}

// Effect returns the current effect settings
func (s *Session) Effect() effects.Settings {
	return s.effect
}

// SetEffectSettings replaces the effect settings and re-renders
func (s *Session) SetEffectSettings(settings effects.Settings) {
	s.effect = settings.Normalize()
	s.logger.Debug("effect changed", "type", s.effect.Type, "shape", s.effect.Shape,
		"intensity", s.effect.Intensity, "size", s.effect.Size, "color", s.effect.SolidColor)
	s.render()
}

// FullScreen reports whether the whole image is redacted
func (s *Session) FullScreen() bool {
	return s.fullScreen
}

// SetFullScreen applies the effect to the whole image, ignoring targets
func (s *Session) SetFullScreen(on bool) {
	s.fullScreen = on
	s.render()
}

// ToggleTarget flips the enabled flag of one target
func (s *Session) ToggleTarget(id string) bool {
	if !s.registry.Toggle(id) {
		return false
	}
	s.render()
	return true
}

// SetTargetEnabled sets the enabled flag of one target
func (s *Session) SetTargetEnabled(id string, enabled bool) bool {
	if !s.registry.SetEnabled(id, enabled) {
		return false
	}
	s.render()
	return true
}

// DeleteTarget removes a target. Deleted AI targets return on the next
// rebuild; deleted custom targets are gone.
func (s *Session) DeleteTarget(id string) bool {
	if !s.registry.Delete(id) {
		return false
	}
	s.logger.Debug("target deleted", "id", id)
	s.render()
	return true
}

// SetAllTargets enables or disables every target of one source
func (s *Session) SetAllTargets(source targets.Source, enabled bool) {
	s.registry.SetAllEnabled(source, enabled)
	s.render()
}

// Targets returns the ordered target list: AI targets first, then custom ones
func (s *Session) Targets() []targets.BlurTarget {
	return s.registry.Targets()
}

// Render redraws the canvas and returns the live surface, nil without an image
func (s *Session) Render() *image.RGBA {
	s.render()
	return s.canvas.Image()
}

// Image returns the result of the last render without redrawing
func (s *Session) Image() *image.RGBA {
	return s.canvas.Image()
}

// Snapshot returns a copy of the last render that later edits won't touch
func (s *Session) Snapshot() *image.RGBA {
	return s.canvas.Snapshot()
}

// Original returns the loaded image. Callers must not modify it.
func (s *Session) Original() *image.RGBA {
	return s.canvas.Original()
}

// Export encodes the current render as png, jpg or webp
func (s *Session) Export(w io.Writer, format string) error {
	if !s.canvas.Ready() {
		return ErrNoImage
	}
	s.render()
	return s.processor.Encode(w, s.canvas.Snapshot(), format, s.quality, s.lossless)
}

func (s *Session) rebuild() {
	if s.aiEnabled && s.detection != nil {
		s.registry.Rebuild(s.detection, s.groups, s.mode)
	} else {
		s.registry.ClearAI()
	}
	s.render()
}

func (s *Session) render() {
	s.canvas.Render(s.registry.Targets(), s.effect, s.fullScreen)
}
