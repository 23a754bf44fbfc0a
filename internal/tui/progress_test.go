package tui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"storyreel/internal/genai"
	"storyreel/internal/story"
)

func threeScenes() []story.Scene {
	return []story.Scene{
		{ID: "s1", Description: "A hero appears."},
		{ID: "s2", Description: "Something forbidden happens."},
		{ID: "s3", Description: "The hero departs."},
	}
}

func TestSceneLifecycleMessages(t *testing.T) {
	m := NewGenerateModel(threeScenes())

	updated, _ := m.Update(SceneStartedMsg{SceneID: "s1"})
	m = updated.(GenerateModel)
	if m.rows[0].status != "generating" {
		t.Errorf("s1 status = %q, want generating", m.rows[0].status)
	}
	if m.rows[1].status != "pending" {
		t.Errorf("s2 status = %q, want untouched pending", m.rows[1].status)
	}

	updated, _ = m.Update(SceneFinishedMsg{Result: story.SceneResult{SceneID: "s1"}})
	m = updated.(GenerateModel)
	if m.rows[0].status != "done" || m.rows[0].detail != "" {
		t.Errorf("s1 after success: status=%q detail=%q", m.rows[0].status, m.rows[0].detail)
	}
}

func TestFilteredResultGetsOwnStatus(t *testing.T) {
	m := NewGenerateModel(threeScenes())

	updated, _ := m.Update(SceneFinishedMsg{Result: story.SceneResult{
		SceneID: "s2",
		Err:     &genai.ContentFilteredError{Detail: "blocked prompt"},
	}})
	m = updated.(GenerateModel)

	if m.rows[1].status != "filtered" {
		t.Errorf("filtered scene status = %q, want filtered", m.rows[1].status)
	}
	if !strings.Contains(m.rows[1].detail, "blocked prompt") {
		t.Errorf("detail = %q, want the filter reason", m.rows[1].detail)
	}

	updated, _ = m.Update(SceneFinishedMsg{Result: story.SceneResult{
		SceneID: "s3",
		Err:     errors.New("quota exceeded"),
	}})
	m = updated.(GenerateModel)
	if m.rows[2].status != "error" {
		t.Errorf("failed scene status = %q, want error", m.rows[2].status)
	}
}

func TestUnknownSceneResultIsIgnored(t *testing.T) {
	m := NewGenerateModel(threeScenes())

	updated, _ := m.Update(SceneFinishedMsg{Result: story.SceneResult{SceneID: "nope"}})
	m = updated.(GenerateModel)

	for i, row := range m.rows {
		if row.status != "pending" {
			t.Errorf("row %d status = %q, want pending", i, row.status)
		}
	}
}

func TestBatchDoneMsg(t *testing.T) {
	m := NewGenerateModel(threeScenes())

	updated, cmd := m.Update(BatchDoneMsg{})
	m = updated.(GenerateModel)

	if !m.Done() {
		t.Error("expected Done() after BatchDoneMsg")
	}
	if cmd == nil {
		t.Error("expected tea.Quit command")
	}
}

func TestFatalMsg(t *testing.T) {
	m := NewGenerateModel(threeScenes())

	updated, cmd := m.Update(FatalMsg{Err: errors.New("session lost")})
	m = updated.(GenerateModel)

	if !m.Done() || m.Err() == nil {
		t.Errorf("after FatalMsg: done=%v err=%v", m.Done(), m.Err())
	}
	if cmd == nil {
		t.Error("expected tea.Quit command")
	}
}

func TestViewShowsSceneTable(t *testing.T) {
	m := NewGenerateModel(threeScenes())
	updated, _ := m.Update(SceneFinishedMsg{Result: story.SceneResult{SceneID: "s1"}})
	m = updated.(GenerateModel)

	view := m.View()
	for _, want := range []string{"SCENE", "DESCRIPTION", "STATUS", "DETAIL",
		"A hero appears.", "done", "pending"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestViewFooterCountsFinishedScenes(t *testing.T) {
	m := NewGenerateModel(threeScenes())
	updated, _ := m.Update(SceneFinishedMsg{Result: story.SceneResult{SceneID: "s1"}})
	m = updated.(GenerateModel)
	updated, _ = m.Update(SceneStartedMsg{SceneID: "s2"})
	m = updated.(GenerateModel)

	view := m.View()
	if !strings.Contains(view, "Generating scene images 1/3") {
		t.Errorf("footer missing count:\n%s", view)
	}

	updated, _ = m.Update(BatchDoneMsg{})
	m = updated.(GenerateModel)
	if strings.Contains(m.View(), "Generating scene images") {
		t.Error("footer still shown after the batch finished")
	}
}

func TestTickStopsAfterDone(t *testing.T) {
	m := NewGenerateModel(threeScenes())

	updated, cmd := m.Update(tickMsg{})
	m = updated.(GenerateModel)
	if m.tick != 1 || cmd == nil {
		t.Errorf("tick=%d cmd=%v, want the next tick scheduled", m.tick, cmd)
	}

	updated, _ = m.Update(BatchDoneMsg{})
	m = updated.(GenerateModel)
	_, cmd = m.Update(tickMsg{})
	if cmd != nil {
		t.Error("expected no tick command after done")
	}
}

func TestCtrlC(t *testing.T) {
	m := NewGenerateModel(threeScenes())

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = updated.(GenerateModel)

	if !m.Done() {
		t.Error("expected Done() after ctrl+c")
	}
	if cmd == nil {
		t.Error("expected tea.Quit command")
	}
}

func TestDetectMode(t *testing.T) {
	var buf bytes.Buffer

	if got := DetectMode(&buf, false, true); got != ModeJSON {
		t.Errorf("json flag: mode = %v, want ModeJSON", got)
	}
	if got := DetectMode(&buf, true, false); got != ModePlain {
		t.Errorf("no-progress flag: mode = %v, want ModePlain", got)
	}
	// A plain buffer is not a terminal.
	if got := DetectMode(&buf, false, false); got != ModePlain {
		t.Errorf("non-tty writer: mode = %v, want ModePlain", got)
	}
	if IsTerminal(&buf) {
		t.Error("IsTerminal(bytes.Buffer) = true")
	}
}

func TestNonEmptyOrDash(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "-"},
		{"  ", "-"},
		{"hello", "hello"},
		{" hello ", "hello"},
	}
	for _, tt := range tests {
		got := NonEmptyOrDash(tt.input)
		if got != tt.want {
			t.Errorf("NonEmptyOrDash(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTruncateWithEllipsis(t *testing.T) {
	tests := []struct {
		input string
		max   int
		want  string
	}{
		{"short", 10, "short"},
		{"a longer string here", 10, "a longe..."},
		{"abc", 3, "abc"},
		{"abcd", 3, "abc"},
		{"", 5, ""},
		{"hello", 0, ""},
	}
	for _, tt := range tests {
		got := TruncateWithEllipsis(tt.input, tt.max)
		if got != tt.want {
			t.Errorf("TruncateWithEllipsis(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.want)
		}
	}
}

func TestMarqueeText(t *testing.T) {
	tests := []struct {
		text    string
		width   int
		tick    int
		want    string
		wantLen int
	}{
		// Text fits: returned as-is (no marquee)
		{"short", 10, 0, "short", 5},
		// Text exceeds: marquee sliding window, always width chars
		{"hello world here", 5, 0, "hello", 5},
		{"hello world here", 5, 1, "ello ", 5},
		{"hello world here", 5, 5, " worl", 5},
		// Wraps around with gap
		{"abcdef", 4, 0, "abcd", 4},
		{"abcdef", 4, 6, "   a", 4},
	}
	for _, tt := range tests {
		got := marqueeText(tt.text, tt.width, tt.tick)
		if len(got) != tt.wantLen {
			t.Errorf("marqueeText(%q, %d, %d) length = %d, want %d", tt.text, tt.width, tt.tick, len(got), tt.wantLen)
		}
		if got != tt.want {
			t.Errorf("marqueeText(%q, %d, %d) = %q, want %q", tt.text, tt.width, tt.tick, got, tt.want)
		}
	}
}
