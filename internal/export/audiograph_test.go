package export

import (
	"strings"
	"testing"

	"storyreel/internal/overlay"
	"storyreel/internal/story"
	"storyreel/internal/timeline"
)

func img(id string, dur float64) story.SceneImage {
	return story.SceneImage{
		ID:          id,
		Path:        "/assets/" + id + ".png",
		Included:    true,
		Status:      story.StatusDone,
		DurationSec: dur,
	}
}

func TestBuildAudioGraphFullMix(t *testing.T) {
	musicEnd := 7.0
	scenes := []story.Scene{
		{
			ID:     "s1",
			Images: []story.SceneImage{img("a", 4)},
			Music: &story.MusicTrack{
				Path:        "loop.mp3",
				TrimStart:   5,
				TrimEnd:     &musicEnd,
				Volume:      0.8,
				DurationSec: 30,
			},
		},
		{
			ID:     "s2",
			Images: []story.SceneImage{img("b", 8)},
			Overlay: &overlay.Config{
				Path:   "clip.mp4",
				Kind:   overlay.KindVideo,
				Volume: 2, // out of range, treated as full volume
			},
		},
	}

	narrationEnd := 10.0
	narration := &story.Narration{
		Path:        "voice.mp3",
		TrimStart:   2,
		TrimEnd:     &narrationEnd,
		Rate:        2,
		Volume:      1,
		DurationSec: 60,
	}

	// Nominal 12s timeline at rate 2 -> 6s: scene 1 [0,2), scene 2 [2,6).
	tl := timeline.Build(scenes).RateAdjusted(2)
	if tl.Total != 6 {
		t.Fatalf("adjusted total = %v, want 6", tl.Total)
	}

	g := buildAudioGraph(scenes, narration, tl, 2)
	if len(g.Sources) != 3 {
		t.Fatalf("got %d sources, want 3", len(g.Sources))
	}

	// Narration cap: min((10-2)/2, 6) = 4 real seconds, i.e. 8 source seconds
	// from trim start 2.
	wantNar := "[1:a]atrim=start=2:end=10,asetpts=PTS-STARTPTS,atempo=2,volume=1[nar]"
	if g.Sources[0].Filter != wantNar {
		t.Errorf("narration filter:\n got %s\nwant %s", g.Sources[0].Filter, wantNar)
	}

	wantMusic := "[2:a]atrim=start=5:end=7,asetpts=PTS-STARTPTS," +
		"aloop=loop=-1:size=2147483647,atrim=duration=2,volume=0.8,adelay=0:all=1[bgm0]"
	if g.Sources[1].Filter != wantMusic {
		t.Errorf("music filter:\n got %s\nwant %s", g.Sources[1].Filter, wantMusic)
	}

	wantOverlay := "[3:a]atrim=duration=4,asetpts=PTS-STARTPTS,volume=1,adelay=2000:all=1[ova1]"
	if g.Sources[2].Filter != wantOverlay {
		t.Errorf("overlay filter:\n got %s\nwant %s", g.Sources[2].Filter, wantOverlay)
	}

	fc := g.FilterComplex()
	if !strings.HasSuffix(fc, "[nar][bgm0][ova1]amix=inputs=3:duration=longest:normalize=0[aout]") {
		t.Errorf("filter_complex does not end in the 3-input mix: %s", fc)
	}
	if g.OutLabel() != "[aout]" {
		t.Errorf("OutLabel = %s, want [aout]", g.OutLabel())
	}
}

func TestNarrationCapUsesAdjustedTotal(t *testing.T) {
	// A 6s nominal timeline at rate 2 plays for 3 real seconds. The narration
	// trim window holds 8 source seconds, 4 real seconds at 2x, so the
	// adjusted total is the binding cap: the source read stops at
	// 2 + 3*2 = 8, not at the trim end 10. The recorder's -t clamps the
	// output to the same adjusted total, so a longer read could never be
	// heard anyway.
	scenes := []story.Scene{{ID: "s1", Images: []story.SceneImage{img("a", 6)}}}
	end := 10.0
	narration := &story.Narration{
		Path:        "voice.mp3",
		TrimStart:   2,
		TrimEnd:     &end,
		Rate:        2,
		Volume:      1,
		DurationSec: 60,
	}

	tl := timeline.Build(scenes).RateAdjusted(2)
	if tl.Total != 3 {
		t.Fatalf("adjusted total = %v, want 3", tl.Total)
	}

	g := buildAudioGraph(scenes, narration, tl, 2)
	if len(g.Sources) != 1 {
		t.Fatalf("got %d sources, want 1", len(g.Sources))
	}
	want := "[1:a]atrim=start=2:end=8,asetpts=PTS-STARTPTS,atempo=2,volume=1[nar]"
	if g.Sources[0].Filter != want {
		t.Errorf("narration filter:\n got %s\nwant %s", g.Sources[0].Filter, want)
	}
}

func TestBuildAudioGraphSingleSource(t *testing.T) {
	scenes := []story.Scene{{ID: "s1", Images: []story.SceneImage{img("a", 5)}}}
	narration := &story.Narration{Path: "voice.mp3", Volume: 1, Rate: 1, DurationSec: 20}

	tl := timeline.Build(scenes)
	g := buildAudioGraph(scenes, narration, tl, 1)

	if len(g.Sources) != 1 {
		t.Fatalf("got %d sources, want 1", len(g.Sources))
	}
	if strings.Contains(g.FilterComplex(), "amix") {
		t.Errorf("single source must not go through amix: %s", g.FilterComplex())
	}
	if g.OutLabel() != "[nar]" {
		t.Errorf("OutLabel = %s, want [nar]", g.OutLabel())
	}
	// Rate 1 narration has no atempo stage.
	if strings.Contains(g.Sources[0].Filter, "atempo") {
		t.Errorf("unexpected atempo at rate 1: %s", g.Sources[0].Filter)
	}
}

func TestBuildAudioGraphNoSources(t *testing.T) {
	scenes := []story.Scene{{ID: "s1", Images: []story.SceneImage{img("a", 5)}}}
	tl := timeline.Build(scenes)

	g := buildAudioGraph(scenes, nil, tl, 1)
	if len(g.Sources) != 0 {
		t.Fatalf("got %d sources, want 0", len(g.Sources))
	}
	if g.FilterComplex() != "" || g.OutLabel() != "" {
		t.Errorf("empty graph should have no filter or label")
	}
}

func TestBuildAudioGraphSkipsZeroDurationScenes(t *testing.T) {
	scenes := []story.Scene{
		{
			ID: "empty",
			Music: &story.MusicTrack{
				Path:        "loop.mp3",
				Volume:      1,
				DurationSec: 30,
			},
		},
		{ID: "s2", Images: []story.SceneImage{img("a", 3)}},
	}
	tl := timeline.Build(scenes)

	g := buildAudioGraph(scenes, nil, tl, 1)
	if len(g.Sources) != 0 {
		t.Errorf("music on a zero-duration scene contributed a source: %+v", g.Sources)
	}
}

func TestAtempoChain(t *testing.T) {
	cases := []struct {
		rate float64
		want string
	}{
		{1, ""},
		{1.5, "atempo=1.5"},
		{2, "atempo=2"},
		{5, "atempo=2.0,atempo=2.0,atempo=1.25"},
		{0.25, "atempo=0.5,atempo=0.5"},
	}
	for _, tc := range cases {
		if got := atempoChain(tc.rate); got != tc.want {
			t.Errorf("atempoChain(%v) = %q, want %q", tc.rate, got, tc.want)
		}
	}
}
