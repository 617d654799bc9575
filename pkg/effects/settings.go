package effects

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Type selects the redaction effect
type Type string

const (
	TypeBlur       Type = "blur"
	TypePixelation Type = "pixelation"
	TypeSolid      Type = "solid"
)

// Shape selects whether targets with a contour are clipped to it
type Shape string

const (
	ShapeRectangle Shape = "rectangle"
	ShapeContour   Shape = "contour"
)

// Parameter range shared by intensity and size
const (
	MinLevel = 1
	MaxLevel = 10
)

// Settings is the global effect configuration applied to every enabled target.
// Intensity, Size and SolidColor all persist across type switches; only the
// one matching Type is used.
type Settings struct {
	Type       Type   `json:"type"`
	Shape      Shape  `json:"shape"`
	Intensity  int    `json:"intensity"`
	Size       int    `json:"size"`
	SolidColor string `json:"solid_color"`
}

// DefaultSettings returns the settings a fresh session starts with
func DefaultSettings() Settings {
	return Settings{
		Type:       TypeBlur,
		Shape:      ShapeContour,
		Intensity:  5,
		Size:       3,
		SolidColor: "#000000",
	}
}

// ParseType converts a user supplied name into a Type
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeBlur, TypePixelation, TypeSolid:
		return t, nil
	case "pixelate", "mosaic":
		return TypePixelation, nil
	default:
		return "", fmt.Errorf("unknown effect type: %q", s)
	}
}

// ParseShape converts a user supplied name into a Shape
func ParseShape(s string) (Shape, error) {
	switch sh := Shape(strings.ToLower(strings.TrimSpace(s))); sh {
	case ShapeRectangle, ShapeContour:
		return sh, nil
	case "rect", "box":
		return ShapeRectangle, nil
	default:
		return "", fmt.Errorf("unknown shape: %q", s)
	}
}

// Normalize clamps levels into range, rewrites aliases to their canonical
// names and replaces unknown enums with defaults
func (s Settings) Normalize() Settings {
	def := DefaultSettings()
	if t, err := ParseType(string(s.Type)); err == nil {
		s.Type = t
	} else {
		s.Type = def.Type
	}
	if sh, err := ParseShape(string(s.Shape)); err == nil {
		s.Shape = sh
	} else {
		s.Shape = def.Shape
	}
	s.Intensity = clampLevel(s.Intensity)
	s.Size = clampLevel(s.Size)
	if s.SolidColor == "" {
		s.SolidColor = def.SolidColor
	}
	return s
}

// Validate reports the first invalid field
func (s Settings) Validate() error {
	if _, err := ParseType(string(s.Type)); err != nil {
		return err
	}
	if _, err := ParseShape(string(s.Shape)); err != nil {
		return err
	}
	if s.Intensity < MinLevel || s.Intensity > MaxLevel {
		return fmt.Errorf("intensity must be between %d and %d", MinLevel, MaxLevel)
	}
	if s.Size < MinLevel || s.Size > MaxLevel {
		return fmt.Errorf("size must be between %d and %d", MinLevel, MaxLevel)
	}
	if _, err := colorful.Hex(s.SolidColor); err != nil {
		return fmt.Errorf("invalid solid color %q: %w", s.SolidColor, err)
	}
	return nil
}

// WithType switches the effect type, keeping every other parameter
func (s Settings) WithType(t Type) Settings {
	s.Type = t
	return s
}

// Effect resolves the variant selected by Type
func (s Settings) Effect() Effect {
	s = s.Normalize()
	switch s.Type {
	case TypePixelation:
		return Pixelate{Size: s.Size}
	case TypeSolid:
		return Solid{Color: ParseColor(s.SolidColor)}
	default:
		return Blur{Intensity: s.Intensity}
	}
}

// UseContour reports whether target contours are honoured
func (s Settings) UseContour() bool {
	return s.Normalize().Shape == ShapeContour
}

// ParseColor parses #rgb or #rrggbb. Anything else is black.
func ParseColor(hex string) color.RGBA {
	c, err := colorful.Hex(strings.TrimSpace(hex))
	if err != nil {
		return color.RGBA{A: 255}
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func clampLevel(v int) int {
	if v < MinLevel {
		return MinLevel
	}
	if v > MaxLevel {
		return MaxLevel
	}
	return v
}
