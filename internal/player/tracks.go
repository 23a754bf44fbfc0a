package player

import (
	"log"

	"storyreel/internal/media"
	"storyreel/internal/story"
)

// musicSync keeps a scene's background music phase-locked to the transport.
// It is driven off the active scene and the transport's play state, never off
// its own timer: scene boundaries start/stop it, and the transport's sampling
// pass performs the loop check. A track whose media cannot be resolved is
// logged and skipped; it never halts the master transport.
type musicSync struct {
	element *media.Element
	logger  *log.Logger

	track     *story.MusicTrack
	trimStart float64
	trimEnd   float64
	failed    bool
}

func newMusicSync(clock media.Clock, logger *log.Logger) *musicSync {
	return &musicSync{
		element: media.NewElement(clock),
		logger:  logger,
	}
}

// enterScene reacts to a scene-boundary crossing. Tracks do not carry over
// between scenes: the previous scene's track stops, and the new scene's track
// (if any) starts at its trim-start and volume.
func (m *musicSync) enterScene(scene *story.Scene, playing bool) {
	m.element.Pause()
	m.track = nil
	m.failed = false

	if scene == nil || scene.Music == nil {
		return
	}
	track := scene.Music
	if track.DurationSec <= 0 {
		m.logf("music %s skipped: unknown duration", track.Path)
		m.failed = true
		return
	}

	if m.element.Ref() != track.Path || m.element.State() == media.StateUnloaded {
		if err := m.element.Load(track.Path, track.DurationSec); err != nil {
			m.logf("music %s skipped: %v", track.Path, err)
			m.failed = true
			return
		}
	}

	m.track = track
	m.trimStart, m.trimEnd = track.TrimWindow()
	m.element.SetVolume(track.Volume)
	m.element.Seek(m.trimStart)
	if playing {
		m.element.Play()
	}
}

// tick performs the periodic loop check: when playback reaches the trim end,
// the track restarts at its trim start. The loop region is an arbitrary
// sub-range of the source media, so a native loop flag cannot express it.
func (m *musicSync) tick() {
	if m.track == nil || m.element.State() != media.StatePlaying {
		return
	}
	if m.element.Position() >= m.trimEnd {
		m.element.Seek(m.trimStart)
	}
}

func (m *musicSync) play() {
	if m.track != nil {
		m.element.Play()
	}
}

func (m *musicSync) pause() {
	m.element.Pause()
}

func (m *musicSync) logf(format string, args ...any) {
	if m.logger != nil {
		m.logger.Printf("player: "+format, args...)
	}
}

// overlaySync drives a scene's video overlay. The overlay plays from its own
// time zero for the duration the scene is active; image overlays need no
// playback and are ignored here.
type overlaySync struct {
	element *media.Element
	logger  *log.Logger
	active  bool
}

func newOverlaySync(clock media.Clock, logger *log.Logger) *overlaySync {
	return &overlaySync{
		element: media.NewElement(clock),
		logger:  logger,
	}
}

func (o *overlaySync) enterScene(scene *story.Scene, durationSec float64, playing bool) {
	o.element.Pause()
	o.active = false

	if scene == nil || scene.Overlay == nil || scene.Overlay.Kind != "video" {
		return
	}
	ov := scene.Overlay
	if durationSec <= 0 {
		o.logf("overlay %s skipped: unknown duration", ov.Path)
		return
	}

	if o.element.Ref() != ov.Path || o.element.State() == media.StateUnloaded {
		if err := o.element.Load(ov.Path, durationSec); err != nil {
			o.logf("overlay %s skipped: %v", ov.Path, err)
			return
		}
	}

	o.active = true
	o.element.SetVolume(ov.Volume)
	o.element.Seek(0)
	if playing {
		o.element.Play()
	}
}

func (o *overlaySync) play() {
	if o.active {
		o.element.Play()
	}
}

func (o *overlaySync) pause() {
	o.element.Pause()
}

func (o *overlaySync) logf(format string, args ...any) {
	if o.logger != nil {
		o.logger.Printf("player: "+format, args...)
	}
}
