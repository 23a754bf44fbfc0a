package story

import (
	"os"
	"path/filepath"
	"testing"
)

func board() Storyboard {
	end := 7.0
	return Storyboard{
		Story: "Once upon a time.",
		Scenes: []Scene{
			{
				ID:          "s1",
				Description: "The hero appears.",
				Images: []SceneImage{{
					ID: "a", Path: "a.png", Status: StatusDone, Included: true, DurationSec: 2,
				}},
				Music: &MusicTrack{Path: "loop.mp3", TrimEnd: &end, Volume: 0.8},
			},
			{ID: "s2", Description: "The hero departs."},
		},
		Narration: &Narration{Path: "voice.mp3", Volume: 1, Rate: 1},
	}
}

func TestSnapshotIsIsolated(t *testing.T) {
	s := NewSession()
	s.Restore(board())

	snap := s.Snapshot()
	snap.Scenes[0].Images[0].DurationSec = 99
	snap.Scenes[0].Music.Volume = 0.1
	snap.Narration.Rate = 3

	fresh := s.Snapshot()
	if fresh.Scenes[0].Images[0].DurationSec != 2 {
		t.Error("image mutation through a snapshot reached the session")
	}
	if fresh.Scenes[0].Music.Volume != 0.8 {
		t.Error("music mutation through a snapshot reached the session")
	}
	if fresh.Narration.Rate != 1 {
		t.Error("narration mutation through a snapshot reached the session")
	}
}

func TestUpdateSceneTargetsByID(t *testing.T) {
	s := NewSession()
	s.Restore(board())

	s.UpdateScene("s2", func(sc *Scene) {
		sc.Description = "changed"
	})
	s.UpdateScene("missing", func(sc *Scene) {
		t.Error("callback ran for an unknown scene id")
	})

	snap := s.Snapshot()
	if snap.Scenes[1].Description != "changed" {
		t.Errorf("scene s2 description = %q", snap.Scenes[1].Description)
	}
	if snap.Scenes[0].Description != "The hero appears." {
		t.Errorf("scene s1 touched: %q", snap.Scenes[0].Description)
	}
}

func TestConcurrentUpdatesAreNotLost(t *testing.T) {
	s := NewSession()
	s.Restore(board())

	// Two completions racing on different scenes must both land.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			s.UpdateScene("s1", func(sc *Scene) {
				sc.Images[0].DurationSec++
			})
		}
	}()
	for i := 0; i < 100; i++ {
		s.UpdateScene("s2", func(sc *Scene) {
			sc.Images = append(sc.Images, SceneImage{ID: "x"})
		})
	}
	<-done

	snap := s.Snapshot()
	if got := snap.Scenes[0].Images[0].DurationSec; got != 102 {
		t.Errorf("s1 duration = %v, want 102", got)
	}
	if got := len(snap.Scenes[1].Images); got != 100 {
		t.Errorf("s2 has %d images, want 100", got)
	}
}

func TestSetNarrationAndAddCharacter(t *testing.T) {
	s := NewSession()

	n := &Narration{Path: "voice.mp3", Rate: 2}
	s.SetNarration(n)
	n.Rate = 9 // caller mutation after the fact must not leak in
	if got := s.Snapshot().Narration.Rate; got != 2 {
		t.Errorf("narration rate = %v, want 2", got)
	}

	ch := s.AddCharacter("hero.png")
	if ch.ID == "" {
		t.Error("AddCharacter returned an empty id")
	}
	chars := s.Snapshot().Characters
	if len(chars) != 1 || chars[0].Path != "hero.png" {
		t.Errorf("characters = %+v", chars)
	}

	s.SetNarration(nil)
	if s.Snapshot().Narration != nil {
		t.Error("SetNarration(nil) did not clear the track")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storyreel.yaml")
	want := board()

	if err := Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got.Story != want.Story || len(got.Scenes) != 2 {
		t.Fatalf("loaded board = %+v", got)
	}
	if got.Scenes[0].Music == nil || got.Scenes[0].Music.Volume != 0.8 {
		t.Errorf("music did not survive the round trip: %+v", got.Scenes[0].Music)
	}
	if got.Scenes[0].Music.TrimEnd == nil || *got.Scenes[0].Music.TrimEnd != 7 {
		t.Errorf("music trim end = %v", got.Scenes[0].Music.TrimEnd)
	}
	if !got.Scenes[0].Images[0].Eligible() {
		t.Errorf("image lost eligibility: %+v", got.Scenes[0].Images[0])
	}
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Story != "" || len(got.Scenes) != 0 {
		t.Errorf("missing file loaded as %+v, want empty board", got)
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte(":\n\t- not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected an unmarshal error")
	}
}
