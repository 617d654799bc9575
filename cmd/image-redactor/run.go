package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	imageredactor "github.com/menta2k/image-redactor"
	"github.com/menta2k/image-redactor/internal/config"
	"github.com/menta2k/image-redactor/internal/utils"
	"github.com/menta2k/image-redactor/pkg/detection"
	"github.com/menta2k/image-redactor/pkg/processing"
	"github.com/menta2k/image-redactor/pkg/studio"
	"github.com/menta2k/image-redactor/pkg/targets"
	"github.com/menta2k/image-redactor/pkg/types"
)

type targetsFile struct {
	Input   string               `json:"input"`
	Output  string               `json:"output"`
	Summary studio.Summary       `json:"summary"`
	Targets []targets.BlurTarget `json:"targets"`
}

// runner redacts one input at a time with shared settings
type runner struct {
	redactor   *imageredactor.ImageRedactor
	logger     *slog.Logger
	output     config.OutputConfig
	threshold  float64
	detections string // saved result used instead of the backend
	detect     bool
	regions    []types.BoundingBox
	full       bool
	debug      bool
}

// inputs expands a directory into the image files below it
func inputs(in string) ([]string, bool, error) {
	if !utils.DirExists(in) {
		return []string{in}, false, nil
	}
	files, err := utils.ListImageFiles(in)
	if err != nil {
		return nil, true, fmt.Errorf("failed to list %s: %w", in, err)
	}
	if len(files) == 0 {
		return nil, true, fmt.Errorf("no images found in %s", in)
	}
	return files, true, nil
}

// runAll redacts every input. In batch mode a failing image is logged and
// skipped; the returned count is the number of failures.
func (r *runner) runAll(ctx context.Context, files []string, batch bool) (int, error) {
	failed := 0
	for _, in := range files {
		jsonName := "targets.json"
		if batch {
			jsonName = filepath.Base(utils.GenerateOutputFilename(in, "", r.output.Suffix+"_targets", "json"))
		}
		if err := r.run(ctx, in, jsonName); err != nil {
			if !batch {
				return 1, err
			}
			r.logger.Error("redaction failed", "input", in, "error", err)
			failed++
		}
	}
	return failed, nil
}

func (r *runner) run(ctx context.Context, in, jsonName string) error {
	img, err := r.redactor.LoadImage(in)
	if err != nil {
		return err
	}
	if err := r.redactor.ValidateImage(img); err != nil {
		return err
	}
	info := r.redactor.GetImageInfo(img)
	r.logger.Info("image loaded", "source", in, "width", info.Width, "height", info.Height)

	session := r.redactor.NewSession()
	session.LoadImage(img)

	switch {
	case r.detections != "":
		result, err := loadDetections(r.detections, info.Width, info.Height, r.threshold)
		if err != nil {
			return err
		}
		session.SetDetection(result)
	case r.detect:
		if err := session.Detect(ctx); err != nil {
			// Custom regions are still applied without AI targets
			r.logger.Error("detection failed", "input", in, "error", err)
		}
	}

	for _, box := range r.regions {
		if _, ok := session.AddRegion(box); !ok {
			r.logger.Warn("region ignored", "region", fmt.Sprintf("%d,%d,%d,%d", box.X, box.Y, box.Width, box.Height))
		}
	}
	session.SetFullScreen(r.full)

	for _, t := range session.Targets() {
		r.logger.Debug("target", "id", t.ID, "source", t.Source, "label", t.Label, "enabled", t.Enabled,
			"x", t.BBox.X, "y", t.BBox.Y, "w", t.BBox.Width, "h", t.BBox.Height)
	}

	outPath := utils.GenerateOutputFilename(in, r.output.OutputDir, r.output.Suffix, r.output.Format)
	if err := writeImage(session, outPath, r.output.Format); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	r.logger.Info("wrote image", "path", outPath, "size", utils.FileSize(outPath))

	if r.debug {
		processor := processing.NewProcessor()
		overlay := processor.CreateDebugOverlay(session.Original(), session.Targets())
		dbgPath := utils.GenerateOutputFilename(in, r.output.OutputDir, r.output.Suffix+"_debug", "png")
		if err := processor.SaveImage(overlay, dbgPath, "png", r.output.Quality, false); err != nil {
			r.logger.Error("debug overlay save failed", "path", dbgPath, "error", err)
		} else {
			r.logger.Info("wrote debug overlay", "path", dbgPath, "size", utils.FileSize(dbgPath))
		}
	}

	summary := session.Summary()
	js, _ := json.MarshalIndent(targetsFile{
		Input:   in,
		Output:  outPath,
		Summary: summary,
		Targets: session.Targets(),
	}, "", "  ")
	jsonPath := filepath.Join(r.output.OutputDir, jsonName)
	if err := os.WriteFile(jsonPath, js, 0o644); err != nil {
		r.logger.Error("targets save failed", "path", jsonPath, "error", err)
	}

	r.logger.Info("done",
		"input", in,
		"ai_targets", summary.AITargets,
		"custom_targets", summary.CustomTargets,
		"enabled", summary.EnabledTargets,
		"full_screen", summary.FullScreen)
	return nil
}

// loadDetections reads a saved detection result and fits it to the image.
// Detections without a contour keep their box as the shape.
func loadDetections(path string, width, height int, threshold float64) (*types.DetectionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read detections: %w", err)
	}
	var result types.DetectionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse detections: %w", err)
	}
	if result.ImageDimensions.Width == 0 || result.ImageDimensions.Height == 0 {
		result.ImageDimensions = types.ImageDimensions{Width: width, Height: height}
	}
	return detection.Normalize(&result, width, height, threshold), nil
}

func writeImage(session *studio.Session, path, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := session.Export(f, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
