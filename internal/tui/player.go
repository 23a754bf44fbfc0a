package tui

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"storyreel/internal/player"
	"storyreel/internal/story"
)

// playerTickMsg drives the preview refresh at the transport's sample cadence.
type playerTickMsg time.Time

var (
	playingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	pausedStyle  = lipgloss.NewStyle().Faint(true)
	activeScene  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// PlayerModel is the interactive preview: a transport snapshot rendered as a
// scene list with a progress bar. Keys: space play/pause, left/right scene
// seek, r restart, q quit.
type PlayerModel struct {
	transport *player.Transport
	scenes    []story.Scene
	snap      player.Snapshot
	quitting  bool
}

// NewPlayerModel wraps a transport for interactive preview.
func NewPlayerModel(t *player.Transport, scenes []story.Scene) PlayerModel {
	return PlayerModel{
		transport: t,
		scenes:    scenes,
		snap:      t.Snapshot(),
	}
}

func schedulePlayerTick() tea.Cmd {
	return tea.Tick(player.SampleInterval, func(t time.Time) tea.Msg {
		return playerTickMsg(t)
	})
}

func (m PlayerModel) Init() tea.Cmd {
	return schedulePlayerTick()
}

func (m PlayerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case playerTickMsg:
		m.snap = m.transport.Snapshot()
		if m.quitting {
			return m, nil
		}
		return m, schedulePlayerTick()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			m.transport.Close()
			return m, tea.Quit
		case " ":
			if m.snap.State == player.StatePlaying {
				m.transport.Pause()
			} else {
				m.transport.Play()
			}
		case "left", "h":
			m.transport.SeekToScene(m.prevScene())
		case "right", "l":
			m.transport.SeekToScene(m.nextScene())
		case "r":
			m.transport.Restart()
		}
		m.snap = m.transport.Snapshot()
		return m, nil
	}
	return m, nil
}

// prevScene and nextScene skip over zero-duration scenes so seeking always
// lands somewhere visible.
func (m PlayerModel) prevScene() int {
	for i := m.currentScene() - 1; i >= 0; i-- {
		if m.sceneHasContent(i) {
			return i
		}
	}
	return m.currentScene()
}

func (m PlayerModel) nextScene() int {
	for i := m.currentScene() + 1; i < len(m.scenes); i++ {
		if m.sceneHasContent(i) {
			return i
		}
	}
	return m.currentScene()
}

func (m PlayerModel) currentScene() int {
	if m.snap.SceneIndex >= 0 {
		return m.snap.SceneIndex
	}
	return 0
}

func (m PlayerModel) sceneHasContent(i int) bool {
	return len(m.scenes[i].EligibleImages()) > 0
}

func (m PlayerModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	state := pausedStyle.Render("⏸ paused")
	if m.snap.State == player.StatePlaying {
		state = playingStyle.Render("▶ playing")
	}
	fmt.Fprintf(&b, "%s  %s / %s\n\n", state, formatClock(m.snap.TimelineTime), formatClock(m.snap.Total))

	b.WriteString(progressBar(m.snap.TimelineTime, m.snap.Total, 40))
	b.WriteString("\n\n")

	for i, sc := range m.scenes {
		marker := "  "
		line := fmt.Sprintf("scene %d  %s", i+1, TruncateWithEllipsis(sc.Description, 48))
		if !m.sceneHasContent(i) {
			line += faintStyle.Render("  (no images)")
		}
		if i == m.snap.SceneIndex {
			marker = "▸ "
			line = activeScene.Render(line)
		}
		b.WriteString(marker + line + "\n")
	}

	if m.snap.Displayed != "" {
		fmt.Fprintf(&b, "\n%s %s\n", faintStyle.Render("showing"), filepath.Base(m.snap.Displayed))
	}

	b.WriteString("\n" + faintStyle.Render("[space] Play/Pause  [←→] Scene  [r] Restart  [q] Quit") + "\n")
	return b.String()
}

func progressBar(pos, total float64, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	filled := int(pos / total * float64(width))
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

func formatClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// RunPlayer runs the interactive preview until the user quits. The transport
// is closed on exit, so no sampler outlives the program.
func RunPlayer(out io.Writer, t *player.Transport, scenes []story.Scene) error {
	model := NewPlayerModel(t, scenes)
	p := tea.NewProgram(model, tea.WithOutput(out))
	_, err := p.Run()
	t.Close()
	return err
}
