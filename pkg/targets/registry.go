package targets

import (
	"fmt"

	"github.com/menta2k/image-redactor/pkg/types"
)

// Registry holds the AI and custom target lists of one session.
// AI targets are always regenerated wholesale; custom targets live until
// deleted by id.
type Registry struct {
	ai         []BlurTarget
	custom     []BlurTarget
	nextCustom int
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Rebuild regenerates the AI targets from a detection result
func (r *Registry) Rebuild(result *types.DetectionResult, groups []BodyPartGroup, mode BlurMode) {
	r.ai = AssembleAI(result, groups, mode)
}

// ClearAI drops every AI target. Custom targets are kept.
func (r *Registry) ClearAI() {
	r.ai = nil
}

// Reset drops everything, including the custom id sequence
func (r *Registry) Reset() {
	r.ai = nil
	r.custom = nil
	r.nextCustom = 0
}

// AddCustom appends a user drawn target with the next sequential id
func (r *Registry) AddCustom(box types.BoundingBox) BlurTarget {
	r.nextCustom++
	t := BlurTarget{
		ID:      fmt.Sprintf("custom-%d", r.nextCustom),
		Source:  SourceCustom,
		Label:   CustomLabel,
		BBox:    box,
		Enabled: true,
	}
	r.custom = append(r.custom, t)
	return t
}

// Delete removes the target with the given id from either list
func (r *Registry) Delete(id string) bool {
	var removed bool
	r.ai, removed = without(r.ai, id)
	if removed {
		return true
	}
	r.custom, removed = without(r.custom, id)
	return removed
}

// Toggle flips the enabled flag of a target
func (r *Registry) Toggle(id string) bool {
	if t := r.find(id); t != nil {
		t.Enabled = !t.Enabled
		return true
	}
	return false
}

// SetEnabled sets the enabled flag of a target
func (r *Registry) SetEnabled(id string, enabled bool) bool {
	if t := r.find(id); t != nil {
		t.Enabled = enabled
		return true
	}
	return false
}

// SetAllEnabled sets the enabled flag of every target from a source
func (r *Registry) SetAllEnabled(source Source, enabled bool) {
	list := r.ai
	if source == SourceCustom {
		list = r.custom
	}
	for i := range list {
		list[i].Enabled = enabled
	}
}

// Targets returns AI targets followed by custom targets. The slice is a copy.
func (r *Registry) Targets() []BlurTarget {
	out := make([]BlurTarget, 0, len(r.ai)+len(r.custom))
	out = append(out, r.ai...)
	return append(out, r.custom...)
}

// AI returns a copy of the AI targets
func (r *Registry) AI() []BlurTarget {
	return append([]BlurTarget(nil), r.ai...)
}

// Custom returns a copy of the custom targets
func (r *Registry) Custom() []BlurTarget {
	return append([]BlurTarget(nil), r.custom...)
}

// Get looks a target up by id
func (r *Registry) Get(id string) (BlurTarget, bool) {
	if t := r.find(id); t != nil {
		return *t, true
	}
	return BlurTarget{}, false
}

func (r *Registry) find(id string) *BlurTarget {
	for i := range r.ai {
		if r.ai[i].ID == id {
			return &r.ai[i]
		}
	}
	for i := range r.custom {
		if r.custom[i].ID == id {
			return &r.custom[i]
		}
	}
	return nil
}

func without(list []BlurTarget, id string) ([]BlurTarget, bool) {
	for i := range list {
		if list[i].ID == id {
			out := make([]BlurTarget, 0, len(list)-1)
			out = append(out, list[:i]...)
			return append(out, list[i+1:]...), true
		}
	}
	return list, false
}
