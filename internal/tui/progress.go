package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"storyreel/internal/genai"
	"storyreel/internal/story"
)

const (
	tickInterval = 150 * time.Millisecond
	marqueeGap   = "   "
)

// Column widths of the generation table. Descriptions longer than their
// column marquee while the batch runs; details are truncated.
const (
	sceneColWidth       = 5
	descriptionColWidth = 44
	statusColWidth      = 10
	detailColWidth      = 32
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// tickMsg drives animation (spinner, marquee).
type tickMsg time.Time

// sceneRow is one scene's line in the generation table.
type sceneRow struct {
	id          string
	description string
	status      string
	detail      string
}

func (r sceneRow) finished() bool {
	switch r.status {
	case "done", "error", "filtered":
		return true
	}
	return false
}

// GenerateModel renders the per-scene generation batch as a live table:
// scene number, description, status, failure detail. Rows are seeded from
// the storyboard in narrative order; outcomes arrive as typed scene
// messages, and the status label (done, error, or filtered for a safety
// decline) is derived here from the result's error class.
type GenerateModel struct {
	rows  []sceneRow
	index map[string]int
	done  bool
	err   error
	tick  int
}

// NewGenerateModel seeds one pending row per scene.
func NewGenerateModel(scenes []story.Scene) GenerateModel {
	m := GenerateModel{index: make(map[string]int, len(scenes))}
	for _, sc := range scenes {
		m.index[sc.ID] = len(m.rows)
		m.rows = append(m.rows, sceneRow{
			id:          sc.ID,
			description: sc.Description,
			status:      "pending",
		})
	}
	return m
}

func scheduleTick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init satisfies the tea.Model interface.
func (m GenerateModel) Init() tea.Cmd {
	return scheduleTick()
}

// Update satisfies the tea.Model interface.
func (m GenerateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.tick++
		if m.done {
			return m, nil
		}
		return m, scheduleTick()

	case SceneStartedMsg:
		if i, ok := m.index[msg.SceneID]; ok {
			m.rows[i].status = "generating"
			m.rows[i].detail = ""
		}
		return m, nil

	case SceneFinishedMsg:
		m.applyResult(msg.Result)
		return m, nil

	case BatchDoneMsg:
		m.done = true
		return m, tea.Quit

	case FatalMsg:
		m.err = msg.Err
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// applyResult maps a scene result onto its row: success is done, a
// content-filter decline is filtered (so the user revises the description
// instead of retrying blindly), anything else is error with the detail kept.
func (m *GenerateModel) applyResult(res story.SceneResult) {
	i, ok := m.index[res.SceneID]
	if !ok {
		return
	}
	row := &m.rows[i]
	switch {
	case res.Err == nil:
		row.status = "done"
		row.detail = ""
	case genai.IsContentFiltered(res.Err):
		row.status = "filtered"
		row.detail = res.Err.Error()
	default:
		row.status = "error"
		row.detail = res.Err.Error()
	}
}

// View satisfies the tea.Model interface.
func (m GenerateModel) View() string {
	if m.done && m.err != nil {
		return fmt.Sprintf("Error: %v\n", m.err)
	}

	var b strings.Builder

	header := []string{
		HeaderStyle.Render(pad("SCENE", sceneColWidth)),
		HeaderStyle.Render(pad("DESCRIPTION", descriptionColWidth)),
		HeaderStyle.Render(pad("STATUS", statusColWidth)),
		HeaderStyle.Render(pad("DETAIL", detailColWidth)),
	}
	b.WriteString(strings.Join(header, "  "))
	b.WriteByte('\n')

	for i, row := range m.rows {
		desc := row.description
		if !m.done && len(strings.TrimSpace(desc)) > descriptionColWidth {
			desc = marqueeText(desc, descriptionColWidth, m.tick)
		} else {
			desc = TruncateWithEllipsis(desc, descriptionColWidth)
		}

		parts := []string{
			pad(fmt.Sprintf("%d", i+1), sceneColWidth),
			pad(desc, descriptionColWidth),
			StatusStyle(row.status).Render(pad(row.status, statusColWidth)),
			pad(TruncateWithEllipsis(row.detail, detailColWidth), detailColWidth),
		}
		b.WriteString(strings.Join(parts, "  "))
		b.WriteByte('\n')
	}

	if !m.done {
		finished, total := m.batchCounts()
		spinner := spinnerFrames[m.tick%len(spinnerFrames)]
		fmt.Fprintf(&b, "\n%s Generating scene images %d/%d...\n", spinner, finished, total)
	}

	return b.String()
}

// batchCounts returns (finished, total) scenes; generating and pending rows
// are unfinished.
func (m GenerateModel) batchCounts() (int, int) {
	finished := 0
	for _, row := range m.rows {
		if row.finished() {
			finished++
		}
	}
	return finished, len(m.rows)
}

// Done returns whether the model has finished (batch done or error).
func (m GenerateModel) Done() bool {
	return m.done
}

// Err returns any fatal error that occurred.
func (m GenerateModel) Err() error {
	return m.err
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// marqueeText renders a scrolling window over text that exceeds the given
// width. The text slides left on each tick, with a gap between cycles.
func marqueeText(text string, width, tick int) string {
	text = strings.TrimSpace(text)
	if width <= 0 {
		return ""
	}
	if len(text) <= width {
		return text
	}
	cycle := text + marqueeGap
	cycleLen := len(cycle)
	offset := tick % cycleLen
	var result strings.Builder
	result.Grow(width)
	for i := 0; i < width; i++ {
		result.WriteByte(cycle[(offset+i)%cycleLen])
	}
	return result.String()
}

// NonEmptyOrDash returns "-" for empty/whitespace strings.
func NonEmptyOrDash(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "-"
	}
	return value
}

// TruncateWithEllipsis truncates a string and adds "..." if it exceeds max
// length.
func TruncateWithEllipsis(value string, max int) string {
	if max <= 0 {
		return ""
	}
	value = strings.TrimSpace(value)
	if len(value) <= max {
		return value
	}
	if max <= 3 {
		return value[:max]
	}
	return value[:max-3] + "..."
}
