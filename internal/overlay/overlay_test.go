package overlay

import (
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestPixelRect(t *testing.T) {
	cfg := Config{X: 10, Y: 20, Width: 25, Height: 50}
	r := cfg.PixelRect(1280, 720)

	if !approx(r.X, 128) || !approx(r.Y, 144) || !approx(r.W, 320) || !approx(r.H, 360) {
		t.Errorf("PixelRect = %+v, want {128 144 320 360}", r)
	}
}

func TestPctPixelRoundTrip(t *testing.T) {
	containers := []struct{ w, h float64 }{
		{1280, 720},
		{640, 360},
		{333, 777}, // non-even container still round-trips
	}
	cfg := Config{Path: "ov.mp4", Kind: KindVideo, Volume: 0.5, X: 12.5, Y: 40, Width: 30, Height: 22.5}

	for _, c := range containers {
		back := cfg.FromPixelRect(cfg.PixelRect(c.w, c.h), c.w, c.h)
		if !approx(back.X, cfg.X) || !approx(back.Y, cfg.Y) ||
			!approx(back.Width, cfg.Width) || !approx(back.Height, cfg.Height) {
			t.Errorf("container %vx%v: round trip %+v, want %+v", c.w, c.h, back, cfg)
		}
		if back.Path != cfg.Path || back.Kind != cfg.Kind || back.Volume != cfg.Volume {
			t.Errorf("container %vx%v: non-geometry fields changed: %+v", c.w, c.h, back)
		}
	}
}

func TestEditorMove(t *testing.T) {
	cfg := Config{X: 10, Y: 10, Width: 20, Height: 20}
	e := NewEditor(cfg, 1000, 500)

	e.BeginDrag(HandleMove, 300, 200)
	e.Move(350, 230) // +50px, +30px
	e.End()

	got := e.Config()
	if !approx(got.X, 15) || !approx(got.Y, 16) {
		t.Errorf("after move: X=%v Y=%v, want X=15 Y=16", got.X, got.Y)
	}
	if !approx(got.Width, 20) || !approx(got.Height, 20) {
		t.Errorf("move changed size: %+v", got)
	}
}

func TestEditorMoveClampsToContainer(t *testing.T) {
	cfg := Config{X: 10, Y: 10, Width: 20, Height: 20}
	e := NewEditor(cfg, 1000, 500)

	e.BeginDrag(HandleMove, 0, 0)
	e.Move(-5000, -5000)
	if got := e.Config(); !approx(got.X, 0) || !approx(got.Y, 0) {
		t.Errorf("dragging far up-left: %+v, want origin pinned at 0,0", got)
	}

	e.Move(5000, 5000)
	e.End()
	got := e.Config()
	if !approx(got.X+got.Width, 100) || !approx(got.Y+got.Height, 100) {
		t.Errorf("dragging far down-right: %+v, want flush with container edge", got)
	}
}

func TestEditorResizeHandles(t *testing.T) {
	// 100x100px overlay at (100,100) in a 1000x1000 container.
	base := Config{X: 10, Y: 10, Width: 10, Height: 10}

	cases := []struct {
		handle Handle
		dx, dy float64
		want   Rect
	}{
		{HandleRight, 50, 0, Rect{100, 100, 150, 100}},
		{HandleLeft, -50, 0, Rect{50, 100, 150, 100}},
		{HandleBottom, 0, 50, Rect{100, 100, 100, 150}},
		{HandleTop, 0, -50, Rect{100, 50, 100, 150}},
		{HandleBottomRight, 50, 50, Rect{100, 100, 150, 150}},
		{HandleTopLeft, -50, -50, Rect{50, 50, 150, 150}},
		{HandleTopRight, 50, -50, Rect{100, 50, 150, 150}},
		{HandleBottomLeft, -50, 50, Rect{50, 100, 150, 150}},
		// The opposite edge never moves when resizing one side.
		{HandleRight, 0, 999, Rect{100, 100, 100, 100}},
	}

	for _, tc := range cases {
		t.Run(string(tc.handle), func(t *testing.T) {
			e := NewEditor(base, 1000, 1000)
			e.BeginDrag(tc.handle, 500, 500)
			e.Move(500+tc.dx, 500+tc.dy)
			e.End()

			got := e.Config().PixelRect(1000, 1000)
			if !approx(got.X, tc.want.X) || !approx(got.Y, tc.want.Y) ||
				!approx(got.W, tc.want.W) || !approx(got.H, tc.want.H) {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestEditorMinSizeClamp(t *testing.T) {
	base := Config{X: 10, Y: 10, Width: 10, Height: 10}
	e := NewEditor(base, 1000, 1000)

	// Collapse from the right edge far past the left edge.
	e.BeginDrag(HandleRight, 0, 0)
	e.Move(-500, 0)
	e.End()
	if got := e.Config().PixelRect(1000, 1000); !approx(got.W, MinSizePx) {
		t.Errorf("width after collapse = %v, want %v", got.W, MinSizePx)
	}

	// Collapse from the top edge; the bottom edge must stay put.
	e = NewEditor(base, 1000, 1000)
	e.BeginDrag(HandleTop, 0, 0)
	e.Move(0, 500)
	e.End()
	got := e.Config().PixelRect(1000, 1000)
	if !approx(got.H, MinSizePx) {
		t.Errorf("height after collapse = %v, want %v", got.H, MinSizePx)
	}
	if !approx(got.Y+got.H, 200) {
		t.Errorf("bottom edge moved: Y+H = %v, want 200", got.Y+got.H)
	}
}

func TestEditorMoveWithoutDragIsNoop(t *testing.T) {
	cfg := Config{X: 10, Y: 10, Width: 20, Height: 20}
	e := NewEditor(cfg, 1000, 500)

	e.Move(900, 400)
	if got := e.Config(); got != cfg {
		t.Errorf("Move without BeginDrag changed config: %+v", got)
	}
	if e.Dragging() {
		t.Error("Dragging() = true without an active gesture")
	}
}
