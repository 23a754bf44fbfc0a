package tui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ExportStatus prints a single spinning status line for the export pipeline,
// which has no table to draw: a named stage (resolving tools, preloading
// assets) before recording starts, then the draw-loop frame counter once
// frames are flowing. Elapsed time restarts at each stage boundary.
type ExportStatus struct {
	w  io.Writer
	mu sync.Mutex

	stage      string
	frameDone  int
	frameTotal int
	stageStart time.Time

	done    chan struct{}
	stopped bool
}

// NewExportStatus starts a background spinner rendering to w every 100ms.
func NewExportStatus(w io.Writer) *ExportStatus {
	s := &ExportStatus{
		w:          w,
		stageStart: time.Now(),
		done:       make(chan struct{}),
	}
	go s.loop()
	return s
}

// Stage switches the line to a new pipeline stage and restarts the elapsed
// timer. Any frame counter from a previous stage is discarded.
func (s *ExportStatus) Stage(name string) {
	s.mu.Lock()
	s.stage = name
	s.frameDone, s.frameTotal = 0, 0
	s.stageStart = time.Now()
	s.mu.Unlock()
}

// Frame records draw-loop progress. The first call flips the line into the
// recording stage; the elapsed timer keeps running across frames so it shows
// the total recording time.
func (s *ExportStatus) Frame(done, total int) {
	s.mu.Lock()
	if s.frameTotal == 0 {
		s.stage = "recording"
		s.stageStart = time.Now()
	}
	s.frameDone, s.frameTotal = done, total
	s.mu.Unlock()
}

// Stop clears the status line and stops the spinner. Safe to call twice.
func (s *ExportStatus) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()
	close(s.done)
	fmt.Fprintf(s.w, "\r\033[K")
}

func (s *ExportStatus) loop() {
	tick := 0
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			spinner := spinnerFrames[tick%len(spinnerFrames)]
			tick++
			fmt.Fprintf(s.w, "\r\033[K%s %s", spinner, s.line())
		}
	}
}

// line composes the text after the spinner for the current state.
func (s *ExportStatus) line() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	elapsed := formatElapsed(time.Since(s.stageStart))
	if s.frameTotal > 0 {
		return fmt.Sprintf("recording frame %d/%d (%s)", s.frameDone, s.frameTotal, elapsed)
	}
	return fmt.Sprintf("%s (%s)", s.stage, elapsed)
}

// formatElapsed formats a duration for display in the status line.
func formatElapsed(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < 10*time.Second {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
}
