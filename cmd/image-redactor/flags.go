package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/menta2k/image-redactor/pkg/types"
)

// regionList collects repeated -region x,y,w,h flags
type regionList []types.BoundingBox

func (r *regionList) String() string {
	parts := make([]string, len(*r))
	for i, b := range *r {
		parts[i] = fmt.Sprintf("%d,%d,%d,%d", b.X, b.Y, b.Width, b.Height)
	}
	return strings.Join(parts, " ")
}

func (r *regionList) Set(value string) error {
	box, err := parseRegion(value)
	if err != nil {
		return err
	}
	*r = append(*r, box)
	return nil
}

func parseRegion(value string) (types.BoundingBox, error) {
	fields := strings.Split(value, ",")
	if len(fields) != 4 {
		return types.BoundingBox{}, fmt.Errorf("region %q: want x,y,w,h", value)
	}
	var n [4]int
	for i, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return types.BoundingBox{}, fmt.Errorf("region %q: %w", value, err)
		}
		n[i] = v
	}
	if n[2] <= 0 || n[3] <= 0 {
		return types.BoundingBox{}, fmt.Errorf("region %q: width and height must be positive", value)
	}
	return types.BoundingBox{X: n[0], Y: n[1], Width: n[2], Height: n[3]}, nil
}

// splitList turns "a, b,,c" into [a b c]
func splitList(value string) []string {
	var out []string
	for _, f := range strings.Split(value, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
