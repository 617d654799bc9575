package drawing

import (
	"testing"

	"github.com/menta2k/image-redactor/pkg/coords"
	"github.com/menta2k/image-redactor/pkg/types"
)

func newTestController(scale float64) (*Controller, *[]types.BoundingBox) {
	var regions []types.BoundingBox
	m := coords.New(400, 300, coords.Viewport{Width: 400 / scale, Height: 300 / scale})
	c := New(m, func(b types.BoundingBox) {
		regions = append(regions, b)
	})
	return c, &regions
}

func TestDragEmitsRegion(t *testing.T) {
	c, regions := newTestController(1)

	c.PointerDown(100, 80)
	if c.State() != Dragging {
		t.Fatalf("expected dragging, got %s", c.State())
	}
	if _, ok := c.Preview(); ok {
		t.Error("no preview expected before the first move")
	}

	c.PointerMove(40, 20)
	preview, ok := c.Preview()
	if !ok {
		t.Fatal("expected preview after move")
	}
	want := types.BoundingBox{X: 40, Y: 20, Width: 60, Height: 60}
	if preview != want {
		t.Errorf("preview = %+v, want %+v", preview, want)
	}

	c.PointerUp()
	if c.State() != Idle {
		t.Errorf("expected idle after pointer up, got %s", c.State())
	}
	if len(*regions) != 1 || (*regions)[0] != want {
		t.Errorf("regions = %+v, want [%+v]", *regions, want)
	}
	if _, ok := c.Preview(); ok {
		t.Error("preview must not survive the gesture")
	}
}

func TestDragUsesImageSpace(t *testing.T) {
	// image displayed at half size: display deltas double in image space
	c, regions := newTestController(2)

	c.PointerDown(10, 10)
	c.PointerMove(30, 40)
	c.PointerUp()

	want := types.BoundingBox{X: 20, Y: 20, Width: 40, Height: 60}
	if len(*regions) != 1 || (*regions)[0] != want {
		t.Errorf("regions = %+v, want [%+v]", *regions, want)
	}
}

func TestSmallGesturesAreDiscarded(t *testing.T) {
	c, regions := newTestController(1)

	for dx := -12; dx <= 12; dx += 3 {
		for dy := -12; dy <= 12; dy += 3 {
			if (dx > 10 || dx < -10) && (dy > 10 || dy < -10) {
				continue
			}
			c.PointerDown(200, 150)
			c.PointerMove(float64(200+dx), float64(150+dy))
			c.PointerUp()
		}
	}

	// exactly at the threshold is still rejected
	c.PointerDown(100, 100)
	c.PointerMove(110, 150)
	c.PointerUp()
	c.PointerDown(100, 100)
	c.PointerMove(150, 110)
	c.PointerUp()

	if len(*regions) != 0 {
		t.Errorf("expected no regions, got %+v", *regions)
	}
}

func TestClickWithoutMoveIsDiscarded(t *testing.T) {
	c, regions := newTestController(1)
	c.PointerDown(50, 50)
	c.PointerUp()
	if len(*regions) != 0 {
		t.Errorf("expected no regions, got %+v", *regions)
	}
}

func TestPointerLeaveEndsGesture(t *testing.T) {
	c, regions := newTestController(1)
	c.PointerDown(10, 10)
	c.PointerMove(60, 70)
	c.PointerLeave()

	if c.State() != Idle {
		t.Errorf("expected idle after leave, got %s", c.State())
	}
	if len(*regions) != 1 {
		t.Errorf("expected leave to complete the region, got %d", len(*regions))
	}

	// a stray move after leaving does nothing
	c.PointerMove(100, 100)
	if _, ok := c.Preview(); ok {
		t.Error("no preview expected while idle")
	}
}

func TestPointerDownRestartsGesture(t *testing.T) {
	c, regions := newTestController(1)
	c.PointerDown(10, 10)
	c.PointerMove(100, 100)
	c.PointerDown(200, 200)
	if _, ok := c.Preview(); ok {
		t.Error("restart should clear the preview until the next move")
	}
	c.PointerMove(250, 260)
	c.PointerUp()

	want := types.BoundingBox{X: 200, Y: 200, Width: 50, Height: 60}
	if len(*regions) != 1 || (*regions)[0] != want {
		t.Errorf("regions = %+v, want [%+v]", *regions, want)
	}
}

func TestPointerDownWithoutImageStaysIdle(t *testing.T) {
	var regions []types.BoundingBox
	c := New(&coords.Mapper{}, func(b types.BoundingBox) { regions = append(regions, b) })

	c.PointerDown(10, 10)
	if c.State() != Idle {
		t.Errorf("expected idle without an image, got %s", c.State())
	}
	c.PointerMove(100, 100)
	c.PointerUp()
	if len(regions) != 0 {
		t.Errorf("expected no regions, got %+v", regions)
	}
}
