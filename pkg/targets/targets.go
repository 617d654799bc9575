package targets

import (
	"fmt"

	"github.com/menta2k/image-redactor/pkg/types"
)

// Source tells where a target came from. Rendering treats both the same.
type Source string

const (
	SourceAI     Source = "ai"
	SourceCustom Source = "custom"
)

// CustomLabel is the label given to every user drawn target
const CustomLabel = "Custom Area"

// BlurTarget is one region eligible for redaction
type BlurTarget struct {
	ID         string            `json:"id"`
	Source     Source            `json:"source"`
	Label      string            `json:"label"`
	BBox       types.BoundingBox `json:"bbox"`
	Contour    types.Contour     `json:"contour,omitempty"`
	Confidence *float64          `json:"confidence,omitempty"`
	Enabled    bool              `json:"enabled"`
}

// BlurMode decides whether new AI targets start enabled
type BlurMode string

const (
	// ModeAll enables every AI target by default
	ModeAll BlurMode = "all"
	// ModeSelective leaves AI targets disabled for manual opt-in
	ModeSelective BlurMode = "selective"
)

// ParseBlurMode converts a user supplied name into a BlurMode
func ParseBlurMode(s string) (BlurMode, error) {
	switch m := BlurMode(s); m {
	case ModeAll, ModeSelective:
		return m, nil
	default:
		return "", fmt.Errorf("unknown blur mode: %q", s)
	}
}

// BodyPartGroup bundles raw detection labels that are toggled together
type BodyPartGroup struct {
	ID              string   `json:"id"`
	Label           string   `json:"label"`
	DetectionLabels []string `json:"detection_labels"`
	Enabled         bool     `json:"enabled"`
}

// DefaultGroups returns a fresh copy of the built-in body part groups
func DefaultGroups() []BodyPartGroup {
	return []BodyPartGroup{
		{ID: "face", Label: "Face", DetectionLabels: []string{"FACE_FEMALE", "FACE_MALE"}, Enabled: true},
		{ID: "breasts", Label: "Breasts", DetectionLabels: []string{"FEMALE_BREAST_EXPOSED", "MALE_BREAST_EXPOSED"}, Enabled: true},
		{ID: "buttocks", Label: "Buttocks", DetectionLabels: []string{"BUTTOCKS_EXPOSED"}, Enabled: true},
		{ID: "genitalia", Label: "Genitalia", DetectionLabels: []string{"FEMALE_GENITALIA_EXPOSED", "MALE_GENITALIA_EXPOSED"}, Enabled: true},
		{ID: "belly", Label: "Belly", DetectionLabels: []string{"BELLY_EXPOSED"}, Enabled: false},
		{ID: "anus", Label: "Anus", DetectionLabels: []string{"ANUS_EXPOSED"}, Enabled: true},
		{ID: "feet", Label: "Feet", DetectionLabels: []string{"FEET_EXPOSED"}, Enabled: false},
		{ID: "armpits", Label: "Armpits", DetectionLabels: []string{"ARMPITS_EXPOSED"}, Enabled: false},
	}
}

// CloneGroups copies groups so that toggling the copy leaves the original alone
func CloneGroups(groups []BodyPartGroup) []BodyPartGroup {
	out := make([]BodyPartGroup, len(groups))
	for i, g := range groups {
		g.DetectionLabels = append([]string(nil), g.DetectionLabels...)
		out[i] = g
	}
	return out
}

// SetGroupEnabled toggles a group by id, reporting whether it exists
func SetGroupEnabled(groups []BodyPartGroup, id string, enabled bool) bool {
	for i := range groups {
		if groups[i].ID == id {
			groups[i].Enabled = enabled
			return true
		}
	}
	return false
}

// EnableOnly enables exactly the listed group ids and disables the rest.
// Unknown ids are returned.
func EnableOnly(groups []BodyPartGroup, ids []string) []string {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	for i := range groups {
		groups[i].Enabled = want[groups[i].ID]
		delete(want, groups[i].ID)
	}
	var unknown []string
	for _, id := range ids {
		if want[id] {
			unknown = append(unknown, id)
		}
	}
	return unknown
}

// EnabledLabels is the union of the labels of every enabled group
func EnabledLabels(groups []BodyPartGroup) map[string]struct{} {
	labels := make(map[string]struct{})
	for _, g := range groups {
		if !g.Enabled {
			continue
		}
		for _, l := range g.DetectionLabels {
			labels[l] = struct{}{}
		}
	}
	return labels
}

// AssembleAI maps the detections whose label belongs to an enabled group to
// AI targets. Ids are positional (ai-0, ai-1, ...) within the filtered list.
func AssembleAI(result *types.DetectionResult, groups []BodyPartGroup, mode BlurMode) []BlurTarget {
	if result == nil {
		return nil
	}
	enabled := EnabledLabels(groups)
	out := make([]BlurTarget, 0, len(result.Detections))
	for _, d := range result.Detections {
		if _, ok := enabled[d.Label]; !ok {
			continue
		}
		conf := d.Confidence
		out = append(out, BlurTarget{
			ID:         fmt.Sprintf("ai-%d", len(out)),
			Source:     SourceAI,
			Label:      d.Label,
			BBox:       d.BBox,
			Contour:    d.Contour,
			Confidence: &conf,
			Enabled:    mode != ModeSelective,
		})
	}
	return out
}

// AssembleTargets returns the freshly generated AI targets followed by the
// custom targets, unchanged
func AssembleTargets(result *types.DetectionResult, groups []BodyPartGroup, mode BlurMode, custom []BlurTarget) []BlurTarget {
	ai := AssembleAI(result, groups, mode)
	out := make([]BlurTarget, 0, len(ai)+len(custom))
	out = append(out, ai...)
	return append(out, custom...)
}
