package effects

import (
	"image/color"
	"testing"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if s.Type != TypeBlur || s.Shape != ShapeContour {
		t.Errorf("unexpected defaults: %+v", s)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestNormalize(t *testing.T) {
	s := Settings{Type: "laser", Shape: "star", Intensity: 42, Size: -3}.Normalize()
	if s.Type != TypeBlur || s.Shape != ShapeContour {
		t.Errorf("unknown enums should fall back to defaults, got %+v", s)
	}
	if s.Intensity != MaxLevel || s.Size != MinLevel {
		t.Errorf("levels should be clamped, got %+v", s)
	}
	if s.SolidColor != "#000000" {
		t.Errorf("empty color should default to black, got %q", s.SolidColor)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"valid", func(s *Settings) {}, false},
		{"bad type", func(s *Settings) { s.Type = "x" }, true},
		{"bad shape", func(s *Settings) { s.Shape = "x" }, true},
		{"intensity zero", func(s *Settings) { s.Intensity = 0 }, true},
		{"size eleven", func(s *Settings) { s.Size = 11 }, true},
		{"bad color", func(s *Settings) { s.SolidColor = "red" }, true},
		{"short color", func(s *Settings) { s.SolidColor = "#f00" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTypeSwitchKeepsParameters(t *testing.T) {
	s := DefaultSettings()
	s.Intensity = 9
	s.Size = 2
	s.SolidColor = "#ff0000"

	s = s.WithType(TypeSolid).WithType(TypePixelation).WithType(TypeBlur)
	if s.Intensity != 9 || s.Size != 2 || s.SolidColor != "#ff0000" {
		t.Errorf("parameters lost across type switches: %+v", s)
	}
}

func TestEffectDispatch(t *testing.T) {
	s := DefaultSettings()
	s.Intensity = 7
	s.Size = 4
	s.SolidColor = "#00ff00"

	if e, ok := s.WithType(TypeBlur).Effect().(Blur); !ok || e.Intensity != 7 {
		t.Errorf("expected Blur{7}, got %#v", s.WithType(TypeBlur).Effect())
	}
	if e, ok := s.WithType(TypePixelation).Effect().(Pixelate); !ok || e.Size != 4 {
		t.Errorf("expected Pixelate{4}, got %#v", s.WithType(TypePixelation).Effect())
	}
	e, ok := s.WithType(TypeSolid).Effect().(Solid)
	if !ok || e.Color != (color.RGBA{0, 255, 0, 255}) {
		t.Errorf("expected green Solid, got %#v", s.WithType(TypeSolid).Effect())
	}

	aliases := []struct {
		typ  Type
		want Type
	}{
		{"Solid", TypeSolid},
		{"SOLID", TypeSolid},
		{"pixelate", TypePixelation},
		{"mosaic", TypePixelation},
		{" Blur ", TypeBlur},
	}
	for _, tt := range aliases {
		aliased := s.WithType(tt.typ)
		if err := aliased.Validate(); err != nil {
			t.Errorf("%q: %v", tt.typ, err)
		}
		if got := aliased.Effect().Kind(); got != tt.want {
			t.Errorf("%q: Effect().Kind() = %s, want %s", tt.typ, got, tt.want)
		}
		if got := aliased.Normalize().Type; got != tt.want {
			t.Errorf("%q: Normalize().Type = %s, want %s", tt.typ, got, tt.want)
		}
	}
}

func TestShapeAliases(t *testing.T) {
	s := DefaultSettings()
	for _, shape := range []Shape{"Contour", "CONTOUR", "contour"} {
		s.Shape = shape
		if !s.UseContour() || s.Normalize().Shape != ShapeContour {
			t.Errorf("%q should resolve to contour", shape)
		}
	}
	for _, shape := range []Shape{"Rectangle", "rect", "box"} {
		s.Shape = shape
		if s.UseContour() || s.Normalize().Shape != ShapeRectangle {
			t.Errorf("%q should resolve to rectangle", shape)
		}
	}
}

func TestParseHelpers(t *testing.T) {
	if ty, err := ParseType("Mosaic"); err != nil || ty != TypePixelation {
		t.Errorf("ParseType(Mosaic) = %v, %v", ty, err)
	}
	if _, err := ParseType("glow"); err == nil {
		t.Error("expected error for unknown type")
	}
	if sh, err := ParseShape("rect"); err != nil || sh != ShapeRectangle {
		t.Errorf("ParseShape(rect) = %v, %v", sh, err)
	}
	if c := ParseColor("not-a-color"); c != (color.RGBA{A: 255}) {
		t.Errorf("invalid color should be black, got %v", c)
	}
}
