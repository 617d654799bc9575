package main

import (
	"flag"
	"testing"

	"github.com/menta2k/image-redactor/pkg/types"
)

func TestRegionList(t *testing.T) {
	var regions regionList
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Var(&regions, "region", "")

	if err := fs.Parse([]string{"-region", "10,20,30,40", "-region", " 1, 2, 15, 16"}); err != nil {
		t.Fatal(err)
	}
	want := []types.BoundingBox{{X: 10, Y: 20, Width: 30, Height: 40}, {X: 1, Y: 2, Width: 15, Height: 16}}
	if len(regions) != 2 || regions[0] != want[0] || regions[1] != want[1] {
		t.Errorf("regions = %v", regions)
	}
	if regions.String() != "10,20,30,40 1,2,15,16" {
		t.Errorf("String() = %q", regions.String())
	}
}

func TestParseRegionErrors(t *testing.T) {
	for _, v := range []string{"", "1,2,3", "a,b,c,d", "1,2,0,5", "1,2,5,-1"} {
		if _, err := parseRegion(v); err == nil {
			t.Errorf("%q: expected error", v)
		}
	}
}

func TestSplitList(t *testing.T) {
	got := splitList("face, feet,,armpits ")
	if len(got) != 3 || got[0] != "face" || got[1] != "feet" || got[2] != "armpits" {
		t.Errorf("splitList = %v", got)
	}
	if splitList("") != nil {
		t.Error("empty input should give nil")
	}
}
