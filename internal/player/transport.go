package player

import (
	"log"
	"sync"
	"time"

	"storyreel/internal/media"
	"storyreel/internal/story"
	"storyreel/internal/timeline"
)

// SampleInterval is the fixed polling cadence of the preview sampler.
const SampleInterval = 100 * time.Millisecond

// TransportState is the playback state of the master transport.
type TransportState string

const (
	StatePaused  TransportState = "paused"
	StatePlaying TransportState = "playing"
)

// Snapshot is what the preview UI reads on every update.
type Snapshot struct {
	State        TransportState
	TimelineTime float64
	Total        float64
	SegmentIndex int
	SceneIndex   int
	Displayed    string
	DisplaySlot  int
}

// Config assembles everything the transport needs. OverlayDurations carries
// probed durations for video overlay paths; overlays missing from the map are
// skipped with a log line.
type Config struct {
	Scenes           []story.Scene
	Narration        *story.Narration
	OverlayDurations map[string]float64
	Clock            media.Clock
	Logger           *log.Logger
	OnUpdate         func(Snapshot)
}

// Transport is the playback clock driving the live preview. The narration
// element is the single master time source; a fixed-interval sampler converts
// its position to timeline time and resolves the active segment and scene,
// and the subordinate track synchronizers follow the active scene. Pausing
// stops the sampler synchronously; no timers survive a pause.
type Transport struct {
	mu sync.Mutex

	scenes   []story.Scene
	tl       timeline.Timeline
	clock    media.Clock
	logger   *log.Logger
	onUpdate func(Snapshot)

	master    *media.Element
	hasMaster bool
	trimStart float64
	effEnd    float64 // effective end in master source time

	state      TransportState
	display    DisplayBuffer
	segIdx     int
	sceneIdx   int
	music      *musicSync
	overlay    *overlaySync
	overlayDur map[string]float64

	stopSampler chan struct{}
	samplerDone sync.WaitGroup
}

// New builds a transport over the given scenes and narration. A zero-duration
// timeline is valid: the transport simply has nothing to play.
func New(cfg Config) *Transport {
	clock := cfg.Clock
	if clock == nil {
		clock = media.SystemClock()
	}

	t := &Transport{
		scenes:     cfg.Scenes,
		tl:         timeline.Build(cfg.Scenes),
		clock:      clock,
		logger:     cfg.Logger,
		onUpdate:   cfg.OnUpdate,
		state:      StatePaused,
		segIdx:     -1,
		sceneIdx:   -1,
		music:      newMusicSync(clock, cfg.Logger),
		overlay:    newOverlaySync(clock, cfg.Logger),
		overlayDur: cfg.OverlayDurations,
		master:     media.NewElement(clock),
	}

	if n := cfg.Narration; n != nil && n.Path != "" && n.DurationSec > 0 {
		if err := t.master.Load(n.Path, n.DurationSec); err == nil {
			t.hasMaster = true
			t.master.SetRate(n.EffectiveRate())
			t.master.SetVolume(n.Volume)
			start, end := n.TrimWindow()
			t.trimStart = start
			t.effEnd = start + t.tl.Total
			if n.TrimEnd != nil && end < t.effEnd {
				t.effEnd = end
			}
			t.master.Seek(start)
		}
	}

	if !t.tl.Empty() {
		t.display.Reset(t.tl.Segments[0].Path)
		t.segIdx = 0
	}

	return t
}

// Timeline returns the derived timeline the transport runs on.
func (t *Transport) Timeline() timeline.Timeline {
	return t.tl
}

// State returns the current transport state.
func (t *Transport) State() TransportState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Play starts playback. A no-op when no master track is loaded or the
// timeline is empty.
func (t *Transport) Play() {
	t.mu.Lock()
	if t.state == StatePlaying || !t.hasMaster || t.tl.Empty() {
		t.mu.Unlock()
		return
	}
	t.state = StatePlaying
	t.master.Play()
	t.music.play()
	t.overlay.play()
	t.startSamplerLocked()
	t.mu.Unlock()

	t.Tick()
}

// Pause freezes playback and synchronously stops the sampler and every
// subordinate track.
func (t *Transport) Pause() {
	t.mu.Lock()
	if t.state != StatePlaying {
		t.mu.Unlock()
		return
	}
	t.state = StatePaused
	t.master.Pause()
	t.music.pause()
	t.overlay.pause()
	stop := t.stopSampler
	t.stopSampler = nil
	t.mu.Unlock()

	if stop != nil {
		close(stop)
	}
	t.samplerDone.Wait()
	t.notify()
}

// Close stops playback and releases the sampler. Safe to call repeatedly.
func (t *Transport) Close() {
	t.Pause()
}

// SeekToScene moves the master clock to the scene's absolute start, valid in
// either state.
func (t *Transport) SeekToScene(index int) {
	t.mu.Lock()
	if !t.hasMaster || index < 0 || index >= len(t.tl.Scenes) {
		t.mu.Unlock()
		return
	}
	t.master.Seek(t.tl.Scenes[index].Start + t.trimStart)
	t.mu.Unlock()

	t.Tick()
}

// Restart seeks to the narration trim start and forces playback.
func (t *Transport) Restart() {
	t.mu.Lock()
	if !t.hasMaster || t.tl.Empty() {
		t.mu.Unlock()
		return
	}
	t.master.Seek(t.trimStart)
	t.mu.Unlock()

	t.Play()
	t.Tick()
}

// Snapshot returns the current playback view.
func (t *Transport) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Transport) snapshotLocked() Snapshot {
	return Snapshot{
		State:        t.state,
		TimelineTime: t.timelineTimeLocked(),
		Total:        t.tl.Total,
		SegmentIndex: t.segIdx,
		SceneIndex:   t.sceneIdx,
		Displayed:    t.display.Current(),
		DisplaySlot:  t.display.ActiveSlot(),
	}
}

func (t *Transport) timelineTimeLocked() float64 {
	if !t.hasMaster {
		return 0
	}
	tt := t.master.Position() - t.trimStart
	if tt < 0 {
		return 0
	}
	return tt
}

// Tick performs one sampling pass: resolve the active segment and scene from
// the master position, drive the double buffer and track synchronizers, and
// detect the effective end of playback. The sampler goroutine calls it at
// SampleInterval; tests and the TUI may call it directly.
func (t *Transport) Tick() {
	t.mu.Lock()

	if !t.hasMaster || t.tl.Empty() {
		t.mu.Unlock()
		return
	}

	pos := t.master.Position()
	ended := pos >= t.effEnd || t.master.Ended()
	if ended && t.state == StatePlaying {
		t.finishLocked()
		t.mu.Unlock()
		t.notify()
		return
	}

	tt := t.timelineTimeLocked()

	if seg := t.tl.SegmentAt(tt); seg >= 0 && seg != t.segIdx {
		t.segIdx = seg
		t.display.Show(t.tl.Segments[seg].Path)
	}

	if scene := t.tl.SceneAt(tt); scene != t.sceneIdx {
		t.sceneIdx = scene
		t.enterSceneLocked(scene)
	}

	t.music.tick()
	t.mu.Unlock()

	t.notify()
}

// finishLocked handles reaching the effective end: stop playback, reset the
// master to the trim start, and show the first segment again.
func (t *Transport) finishLocked() {
	t.state = StatePaused
	t.master.Pause()
	t.master.Seek(t.trimStart)
	t.music.pause()
	t.overlay.pause()
	t.segIdx = 0
	t.sceneIdx = -1
	t.display.Reset(t.tl.Segments[0].Path)
	if t.stopSampler != nil {
		close(t.stopSampler)
		t.stopSampler = nil
	}
}

func (t *Transport) enterSceneLocked(index int) {
	var scene *story.Scene
	if index >= 0 && index < len(t.scenes) {
		scene = &t.scenes[index]
	}
	playing := t.state == StatePlaying

	t.music.enterScene(scene, playing)

	var overlayDur float64
	if scene != nil && scene.Overlay != nil {
		overlayDur = t.overlayDur[scene.Overlay.Path]
	}
	t.overlay.enterScene(scene, overlayDur, playing)
}

func (t *Transport) startSamplerLocked() {
	stop := make(chan struct{})
	t.stopSampler = stop
	t.samplerDone.Add(1)
	go func() {
		defer t.samplerDone.Done()
		ticker := time.NewTicker(SampleInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				t.Tick()
			}
		}
	}()
}

func (t *Transport) notify() {
	if t.onUpdate == nil {
		return
	}
	t.onUpdate(t.Snapshot())
}
