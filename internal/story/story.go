package story

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"storyreel/internal/overlay"
)

// ImageStatus tracks the lifecycle of a scene image.
type ImageStatus string

const (
	StatusIdle       ImageStatus = "idle"
	StatusGenerating ImageStatus = "generating"
	StatusError      ImageStatus = "error"
	StatusDone       ImageStatus = "done"
)

// SceneImage is a single visual asset inside a scene. Only images with
// Status == done, Included == true, and a positive duration contribute a
// timeline segment.
type SceneImage struct {
	ID          string      `yaml:"id"`
	Path        string      `yaml:"path"`
	Included    bool        `yaml:"included"`
	Status      ImageStatus `yaml:"status"`
	DurationSec float64     `yaml:"duration_s"`
	LastError   string      `yaml:"last_error,omitempty"`
}

// Eligible reports whether the image contributes to the timeline.
func (img SceneImage) Eligible() bool {
	return img.Status == StatusDone && img.Included && img.DurationSec > 0
}

// MusicTrack is a per-scene background music configuration. TrimEnd == nil
// means "end of media". The track loops over [TrimStart, TrimEnd) for as long
// as its scene is active.
type MusicTrack struct {
	Path        string   `yaml:"path"`
	TrimStart   float64  `yaml:"trim_start_s"`
	TrimEnd     *float64 `yaml:"trim_end_s,omitempty"`
	Volume      float64  `yaml:"volume"`
	DurationSec float64  `yaml:"duration_s,omitempty"` // cached from probe
}

// TrimWindow returns the effective [start, end) window of the track, clamping
// the end to the cached media duration when known.
func (t MusicTrack) TrimWindow() (float64, float64) {
	start := t.TrimStart
	if start < 0 {
		start = 0
	}
	end := t.DurationSec
	if t.TrimEnd != nil {
		end = *t.TrimEnd
	}
	if t.DurationSec > 0 && end > t.DurationSec {
		end = t.DurationSec
	}
	return start, end
}

// Narration is the master audio track. Rate is the playback-rate multiplier
// applied at preview and export time.
type Narration struct {
	Path        string   `yaml:"path"`
	TrimStart   float64  `yaml:"trim_start_s"`
	TrimEnd     *float64 `yaml:"trim_end_s,omitempty"`
	Volume      float64  `yaml:"volume"`
	Rate        float64  `yaml:"rate"`
	DurationSec float64  `yaml:"duration_s,omitempty"`
}

// EffectiveRate returns the playback rate with the unset value mapped to 1.
func (n Narration) EffectiveRate() float64 {
	if n.Rate <= 0 {
		return 1
	}
	return n.Rate
}

// TrimWindow returns the narration trim window in source-media seconds.
func (n Narration) TrimWindow() (float64, float64) {
	start := n.TrimStart
	if start < 0 {
		start = 0
	}
	end := n.DurationSec
	if n.TrimEnd != nil {
		end = *n.TrimEnd
	}
	if n.DurationSec > 0 && end > n.DurationSec {
		end = n.DurationSec
	}
	return start, end
}

// Scene is one ordered unit of the story. Scene order is the narrative order
// and determines timeline order; scenes are mutated in place but never
// deleted individually.
type Scene struct {
	ID          string          `yaml:"id"`
	Description string          `yaml:"description"`
	Images      []SceneImage    `yaml:"images"`
	Music       *MusicTrack     `yaml:"music,omitempty"`
	Overlay     *overlay.Config `yaml:"overlay,omitempty"`
}

// EligibleImages returns the images that contribute segments, in insertion
// order.
func (s Scene) EligibleImages() []SceneImage {
	var out []SceneImage
	for _, img := range s.Images {
		if img.Eligible() {
			out = append(out, img)
		}
	}
	return out
}

// NewScene creates a scene with a fresh ID.
func NewScene(description string) Scene {
	return Scene{
		ID:          uuid.New().String(),
		Description: strings.TrimSpace(description),
	}
}

// NewImage creates an idle, excluded image entry for a decoded asset path.
func NewImage(path string, durationSec float64) SceneImage {
	return SceneImage{
		ID:          uuid.New().String(),
		Path:        path,
		Status:      StatusIdle,
		DurationSec: durationSec,
	}
}

// ScenesFromDescriptions builds the initial scene list after a story split.
func ScenesFromDescriptions(descriptions []string) []Scene {
	scenes := make([]Scene, 0, len(descriptions))
	for _, d := range descriptions {
		scenes = append(scenes, NewScene(d))
	}
	return scenes
}

// Validate checks cross-field invariants on a storyboard.
func Validate(scenes []Scene, narration *Narration) error {
	for i, sc := range scenes {
		if sc.Music != nil {
			start, end := sc.Music.TrimWindow()
			if sc.Music.TrimEnd != nil && start >= end {
				return fmt.Errorf("scene %d music: trim start %.2fs is not before trim end %.2fs", i+1, start, end)
			}
		}
		for j, img := range sc.Images {
			if img.Included && img.Status == StatusDone && img.DurationSec <= 0 {
				return fmt.Errorf("scene %d image %d: included image needs a positive duration", i+1, j+1)
			}
		}
	}
	if narration != nil && narration.Path != "" {
		start, end := narration.TrimWindow()
		if narration.TrimEnd != nil && start >= end {
			return fmt.Errorf("narration: trim start %.2fs is not before trim end %.2fs", start, end)
		}
	}
	return nil
}
