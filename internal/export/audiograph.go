package export

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"storyreel/internal/story"
	"storyreel/internal/timeline"
)

// audioSource is one gain-controlled input of the offline mix. Input indexes
// are 1-based: input 0 is always the raw video pipe.
type audioSource struct {
	Path   string
	Filter string // per-input filter chain, ends in the source's label
	Label  string
}

// audioGraph is the offline audio mix fed to the recorder: every source is
// delayed to its absolute timeline start and mixed into one destination. The
// draw loop and this graph both derive their timing from the same
// rate-adjusted timeline, so the recording is synchronized by construction.
type audioGraph struct {
	Sources []audioSource
	MixOut  string // final filter_complex label, empty when no sources
}

// FilterComplex renders the full filter_complex expression.
func (g audioGraph) FilterComplex() string {
	if len(g.Sources) == 0 {
		return ""
	}
	var chains []string
	var labels []string
	for _, src := range g.Sources {
		chains = append(chains, src.Filter)
		labels = append(labels, src.Label)
	}
	if len(g.Sources) == 1 {
		// amix with one input is a no-op; map the single source directly.
		return strings.Join(chains, ";")
	}
	mix := fmt.Sprintf("%samix=inputs=%d:duration=longest:normalize=0[aout]",
		strings.Join(labels, ""), len(g.Sources))
	return strings.Join(chains, ";") + ";" + mix
}

// OutLabel returns the label to -map as the output audio stream.
func (g audioGraph) OutLabel() string {
	if len(g.Sources) == 0 {
		return ""
	}
	if len(g.Sources) == 1 {
		return g.Sources[0].Label
	}
	return "[aout]"
}

// buildAudioGraph assembles the mix for a rate-adjusted timeline:
//   - narration starts at export time 0, reads from its trim start, plays at
//     the narration rate, for min(trim window / rate, total) real seconds;
//   - each scene's music reads its trim window, loops across the scene
//     duration, and is delayed to the scene's absolute start;
//   - each scene's video-overlay audio reads from time 0 for the scene
//     duration, delayed to the scene's absolute start.
//
// Scenes with zero duration contribute nothing. Zero sources means the export
// proceeds video-only.
func buildAudioGraph(scenes []story.Scene, narration *story.Narration, tl timeline.Timeline, rate float64) audioGraph {
	var g audioGraph
	next := 1 // input 0 is the video pipe

	if narration != nil && narration.Path != "" {
		start, end := narration.TrimWindow()
		window := end - start
		if end <= start {
			window = math.Inf(1)
		}
		capped := math.Min(window/rate, tl.Total)
		if capped > 0 {
			chain := fmt.Sprintf("[%d:a]atrim=start=%s:end=%s,asetpts=PTS-STARTPTS",
				next, ff(start), ff(start+capped*rate))
			if tempo := atempoChain(rate); tempo != "" {
				chain += "," + tempo
			}
			chain += fmt.Sprintf(",volume=%s[nar]", ff(effectiveVolume(narration.Volume)))
			g.Sources = append(g.Sources, audioSource{
				Path:   narration.Path,
				Filter: chain,
				Label:  "[nar]",
			})
			next++
		}
	}

	for i, sc := range scenes {
		if i >= len(tl.Scenes) {
			break
		}
		timing := tl.Scenes[i]
		if timing.Duration <= 0 {
			continue
		}

		if m := sc.Music; m != nil && m.Path != "" {
			start, end := m.TrimWindow()
			if end > start {
				label := fmt.Sprintf("[bgm%d]", i)
				chain := fmt.Sprintf(
					"[%d:a]atrim=start=%s:end=%s,asetpts=PTS-STARTPTS,aloop=loop=-1:size=2147483647,atrim=duration=%s,volume=%s,adelay=%d:all=1%s",
					next, ff(start), ff(end), ff(timing.Duration),
					ff(effectiveVolume(m.Volume)), delayMillis(timing.Start), label)
				g.Sources = append(g.Sources, audioSource{Path: m.Path, Filter: chain, Label: label})
				next++
			}
		}

		if ov := sc.Overlay; ov != nil && ov.Kind == "video" && ov.Path != "" {
			label := fmt.Sprintf("[ova%d]", i)
			chain := fmt.Sprintf(
				"[%d:a]atrim=duration=%s,asetpts=PTS-STARTPTS,volume=%s,adelay=%d:all=1%s",
				next, ff(timing.Duration), ff(effectiveVolume(ov.Volume)),
				delayMillis(timing.Start), label)
			g.Sources = append(g.Sources, audioSource{Path: ov.Path, Filter: chain, Label: label})
			next++
		}
	}

	return g
}

// atempoChain expresses an arbitrary positive rate as chained atempo filters,
// since a single atempo only accepts [0.5, 2.0]. Returns "" for rate 1.
func atempoChain(rate float64) string {
	if rate <= 0 || rate == 1 {
		return ""
	}
	var parts []string
	for rate > 2.0 {
		parts = append(parts, "atempo=2.0")
		rate /= 2.0
	}
	for rate < 0.5 {
		parts = append(parts, "atempo=0.5")
		rate /= 0.5
	}
	parts = append(parts, "atempo="+ff(rate))
	return strings.Join(parts, ",")
}

func effectiveVolume(v float64) float64 {
	if v <= 0 || v > 1 {
		return 1
	}
	return v
}

func delayMillis(seconds float64) int {
	if seconds <= 0 {
		return 0
	}
	return int(math.Round(seconds * 1000))
}

func ff(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
