package overlay

// Kind distinguishes static image overlays from video overlays that carry
// their own audio.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Config describes an overlay placed inside a scene. Position and size are
// percentages of the rendering frame (top-left origin) so the same values
// apply at preview resolution and at the 1280x720 export frame. Percentages
// are the only stored representation.
type Config struct {
	Path   string  `yaml:"path"`
	Kind   Kind    `yaml:"kind"`
	Volume float64 `yaml:"volume,omitempty"` // video overlays only
	X      float64 `yaml:"x_pct"`
	Y      float64 `yaml:"y_pct"`
	Width  float64 `yaml:"width_pct"`
	Height float64 `yaml:"height_pct"`
}

// Rect is an axis-aligned rectangle in pixel space.
type Rect struct {
	X, Y, W, H float64
}

// PixelRect converts the percentage geometry into pixels for a container of
// the given size.
func (c Config) PixelRect(containerW, containerH float64) Rect {
	return Rect{
		X: c.X / 100 * containerW,
		Y: c.Y / 100 * containerH,
		W: c.Width / 100 * containerW,
		H: c.Height / 100 * containerH,
	}
}

// FromPixelRect converts a pixel rectangle back into percentages of the
// container, leaving Path/Kind/Volume untouched.
func (c Config) FromPixelRect(r Rect, containerW, containerH float64) Config {
	out := c
	out.X = r.X / containerW * 100
	out.Y = r.Y / containerH * 100
	out.Width = r.W / containerW * 100
	out.Height = r.H / containerH * 100
	return out
}
