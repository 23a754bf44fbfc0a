package overlay

// Handle identifies which part of the overlay a drag operates on: the body
// (move) or one of the eight resize handles.
type Handle string

const (
	HandleMove        Handle = "move"
	HandleTopLeft     Handle = "top-left"
	HandleTop         Handle = "top"
	HandleTopRight    Handle = "top-right"
	HandleRight       Handle = "right"
	HandleBottomRight Handle = "bottom-right"
	HandleBottom      Handle = "bottom"
	HandleBottomLeft  Handle = "bottom-left"
	HandleLeft        Handle = "left"
)

// MinSizePx is the smallest width/height an overlay may be resized to,
// expressed against the editor's container.
const MinSizePx = 20.0

// Editor is the drag/resize state machine for positioning an overlay inside
// a container. It works in pixel space during a gesture and converts back to
// percentages on every move, so the committed configuration stays
// resolution-independent.
type Editor struct {
	containerW float64
	containerH float64

	active  bool
	handle  Handle
	startX  float64
	startY  float64
	origin  Rect // overlay rect in pixels at drag start
	current Config
}

// NewEditor creates an editor for a container of the given pixel size.
func NewEditor(cfg Config, containerW, containerH float64) *Editor {
	return &Editor{
		containerW: containerW,
		containerH: containerH,
		current:    cfg,
	}
}

// Config returns the current overlay configuration.
func (e *Editor) Config() Config {
	return e.current
}

// Dragging reports whether a gesture is in progress.
func (e *Editor) Dragging() bool {
	return e.active
}

// BeginDrag records the pointer position and the overlay's starting rectangle
// in pixel space.
func (e *Editor) BeginDrag(h Handle, pointerX, pointerY float64) {
	e.active = true
	e.handle = h
	e.startX = pointerX
	e.startY = pointerY
	e.origin = e.current.PixelRect(e.containerW, e.containerH)
}

// Move applies the pointer delta to the rectangle edges controlled by the
// active handle, clamps the result, and commits it back as percentages.
// A no-op when no drag is active.
func (e *Editor) Move(pointerX, pointerY float64) {
	if !e.active {
		return
	}
	dx := pointerX - e.startX
	dy := pointerY - e.startY

	r := e.origin
	switch e.handle {
	case HandleMove:
		r.X += dx
		r.Y += dy
	case HandleTopLeft:
		r = adjustLeft(r, dx)
		r = adjustTop(r, dy)
	case HandleTop:
		r = adjustTop(r, dy)
	case HandleTopRight:
		r = adjustRight(r, dx)
		r = adjustTop(r, dy)
	case HandleRight:
		r = adjustRight(r, dx)
	case HandleBottomRight:
		r = adjustRight(r, dx)
		r = adjustBottom(r, dy)
	case HandleBottom:
		r = adjustBottom(r, dy)
	case HandleBottomLeft:
		r = adjustLeft(r, dx)
		r = adjustBottom(r, dy)
	case HandleLeft:
		r = adjustLeft(r, dx)
	}

	r = clampRect(r, e.containerW, e.containerH)
	e.current = e.current.FromPixelRect(r, e.containerW, e.containerH)
}

// End finishes the gesture. The last committed geometry stays in place.
func (e *Editor) End() {
	e.active = false
}

func adjustLeft(r Rect, dx float64) Rect {
	maxDx := r.W - MinSizePx
	if dx > maxDx {
		dx = maxDx
	}
	r.X += dx
	r.W -= dx
	return r
}

func adjustRight(r Rect, dx float64) Rect {
	r.W += dx
	if r.W < MinSizePx {
		r.W = MinSizePx
	}
	return r
}

func adjustTop(r Rect, dy float64) Rect {
	maxDy := r.H - MinSizePx
	if dy > maxDy {
		dy = maxDy
	}
	r.Y += dy
	r.H -= dy
	return r
}

func adjustBottom(r Rect, dy float64) Rect {
	r.H += dy
	if r.H < MinSizePx {
		r.H = MinSizePx
	}
	return r
}

func clampRect(r Rect, containerW, containerH float64) Rect {
	if r.W < MinSizePx {
		r.W = MinSizePx
	}
	if r.H < MinSizePx {
		r.H = MinSizePx
	}
	if r.W > containerW {
		r.W = containerW
	}
	if r.H > containerH {
		r.H = containerH
	}
	if r.X < 0 {
		r.X = 0
	}
	if r.Y < 0 {
		r.Y = 0
	}
	if r.X+r.W > containerW {
		r.X = containerW - r.W
	}
	if r.Y+r.H > containerH {
		r.Y = containerH - r.H
	}
	return r
}
