package timeline

import (
	"storyreel/internal/story"
)

// Segment is one image's slot on the timeline: [Start, End) in seconds.
type Segment struct {
	ImageID string
	Path    string
	Start   float64
	End     float64
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// SceneTiming records where a scene falls on the timeline. Scenes with no
// eligible images get Duration 0 so scene-indexed lookups stay total over the
// scene list.
type SceneTiming struct {
	SceneID  string
	Start    float64
	Duration float64
}

// Timeline is the derived global timeline: a flat ordered segment sequence,
// per-scene timings, and the total duration. It is recomputed from scene
// state whenever that state changes and never mutated directly.
type Timeline struct {
	Segments []Segment
	Scenes   []SceneTiming
	Total    float64
}

// Build walks scenes in narrative order and lays out every eligible image
// back to back. The derivation is deterministic and side-effect-free; it runs
// in nominal image-duration units, before any playback-rate adjustment.
func Build(scenes []story.Scene) Timeline {
	var tl Timeline
	cursor := 0.0

	for _, sc := range scenes {
		start := cursor
		for _, img := range sc.Images {
			if !img.Eligible() {
				continue
			}
			tl.Segments = append(tl.Segments, Segment{
				ImageID: img.ID,
				Path:    img.Path,
				Start:   cursor,
				End:     cursor + img.DurationSec,
			})
			cursor += img.DurationSec
		}
		tl.Scenes = append(tl.Scenes, SceneTiming{
			SceneID:  sc.ID,
			Start:    start,
			Duration: cursor - start,
		})
	}

	tl.Total = cursor
	return tl
}

// RateAdjusted returns a copy of the timeline with every duration divided by
// rate, for export at a non-unit narration playback rate. Applying rate r and
// then 1/r reproduces the nominal timeline within floating-point tolerance.
func (tl Timeline) RateAdjusted(rate float64) Timeline {
	if rate <= 0 || rate == 1 {
		return tl
	}
	out := Timeline{
		Segments: make([]Segment, len(tl.Segments)),
		Scenes:   make([]SceneTiming, len(tl.Scenes)),
		Total:    tl.Total / rate,
	}
	for i, seg := range tl.Segments {
		out.Segments[i] = Segment{
			ImageID: seg.ImageID,
			Path:    seg.Path,
			Start:   seg.Start / rate,
			End:     seg.End / rate,
		}
	}
	for i, sc := range tl.Scenes {
		out.Scenes[i] = SceneTiming{
			SceneID:  sc.SceneID,
			Start:    sc.Start / rate,
			Duration: sc.Duration / rate,
		}
	}
	return out
}

// Empty reports whether the timeline has nothing to play or export.
func (tl Timeline) Empty() bool {
	return tl.Total <= 0 || len(tl.Segments) == 0
}

// SegmentAt returns the index of the segment whose [Start, End) range
// contains t. Times past the last segment's end but inside the timeline
// clamp to the last segment. Returns -1 for an empty timeline or t outside
// [0, Total).
func (tl Timeline) SegmentAt(t float64) int {
	if tl.Empty() || t < 0 || t >= tl.Total {
		return -1
	}
	for i, seg := range tl.Segments {
		if t >= seg.Start && t < seg.End {
			return i
		}
	}
	return len(tl.Segments) - 1
}

// SceneAt returns the index of the scene active at timeline time t, scanning
// scene start times. Zero-duration scenes are never active. Returns -1 when
// t falls outside the timeline.
func (tl Timeline) SceneAt(t float64) int {
	if tl.Empty() || t < 0 || t >= tl.Total {
		return -1
	}
	for i, sc := range tl.Scenes {
		if sc.Duration <= 0 {
			continue
		}
		if t >= sc.Start && t < sc.Start+sc.Duration {
			return i
		}
	}
	return -1
}

// SceneStart returns the absolute start time for the scene at index i, or 0
// when the index is out of range.
func (tl Timeline) SceneStart(i int) float64 {
	if i < 0 || i >= len(tl.Scenes) {
		return 0
	}
	return tl.Scenes[i].Start
}
