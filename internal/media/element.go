package media

import (
	"fmt"
	"time"
)

// State is the lifecycle of a media element.
type State string

const (
	StateUnloaded State = "unloaded"
	StateReady    State = "ready"
	StatePlaying  State = "playing"
	StatePaused   State = "paused"
)

// Element models an independently-clocked playback source (narration, a
// scene's background music, an overlay video) as an explicit state machine
// with a small command set: Load, Play, Pause, Seek. The current position is
// derived from the clock and the playback rate rather than reported through
// ambient callbacks, which keeps the synchronizer logic independent of any
// particular playback primitive.
type Element struct {
	clock Clock

	state    State
	ref      string
	duration float64
	rate     float64
	volume   float64

	// offset is the media position at the instant playback last started (or
	// the seek target while not playing); startedAt anchors the clock.
	offset    float64
	startedAt time.Time
}

// NewElement creates an unloaded element on the given clock.
func NewElement(clock Clock) *Element {
	if clock == nil {
		clock = SystemClock()
	}
	return &Element{
		clock:  clock,
		state:  StateUnloaded,
		rate:   1,
		volume: 1,
	}
}

// Load binds the element to a media reference with a known total duration and
// resets position to zero. Loading while playing stops playback first.
func (e *Element) Load(ref string, durationSec float64) error {
	if durationSec <= 0 {
		return fmt.Errorf("load %s: duration must be positive, got %.3f", ref, durationSec)
	}
	e.ref = ref
	e.duration = durationSec
	e.offset = 0
	e.state = StateReady
	return nil
}

// Ref returns the loaded media reference, empty when unloaded.
func (e *Element) Ref() string { return e.ref }

// State returns the current lifecycle state.
func (e *Element) State() State { return e.state }

// Duration returns the loaded media's total duration in seconds.
func (e *Element) Duration() float64 { return e.duration }

// Volume returns the element's volume in [0, 1].
func (e *Element) Volume() float64 { return e.volume }

// SetVolume clamps and stores the playback volume.
func (e *Element) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	e.volume = v
}

// SetRate sets the playback-rate multiplier. The current position is frozen
// first so a rate change mid-playback does not jump the clock.
func (e *Element) SetRate(rate float64) {
	if rate <= 0 {
		rate = 1
	}
	if e.state == StatePlaying {
		e.offset = e.Position()
		e.startedAt = e.clock.Now()
	}
	e.rate = rate
}

// Rate returns the playback-rate multiplier.
func (e *Element) Rate() float64 { return e.rate }

// Play starts or resumes playback. A no-op when unloaded or already playing.
func (e *Element) Play() {
	if e.state == StateUnloaded || e.state == StatePlaying {
		return
	}
	e.startedAt = e.clock.Now()
	e.state = StatePlaying
}

// Pause freezes the position. A no-op unless playing.
func (e *Element) Pause() {
	if e.state != StatePlaying {
		return
	}
	e.offset = e.Position()
	e.state = StatePaused
}

// Seek moves the position, clamped to [0, duration]. Playback state is
// preserved across the seek.
func (e *Element) Seek(pos float64) {
	if e.state == StateUnloaded {
		return
	}
	if pos < 0 {
		pos = 0
	}
	if pos > e.duration {
		pos = e.duration
	}
	e.offset = pos
	if e.state == StatePlaying {
		e.startedAt = e.clock.Now()
	}
}

// Position returns the current media position in source seconds, advancing in
// real time (scaled by rate) while playing and clamped at the media end.
func (e *Element) Position() float64 {
	if e.state != StatePlaying {
		return e.offset
	}
	elapsed := e.clock.Now().Sub(e.startedAt).Seconds() * e.rate
	pos := e.offset + elapsed
	if pos > e.duration {
		return e.duration
	}
	return pos
}

// Ended reports whether playback reached the natural end of the media.
func (e *Element) Ended() bool {
	return e.state != StateUnloaded && e.duration > 0 && e.Position() >= e.duration
}
