package tui

import (
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// RunGenerate drives the generation table: it starts the bubbletea program,
// launches the batch in a goroutine, and blocks until the table exits. The
// batch reports through the send callback (SceneStartedMsg/SceneFinishedMsg);
// BatchDoneMsg is sent here when the work function returns.
func RunGenerate(out io.Writer, model GenerateModel, workFn func(send func(tea.Msg))) error {
	p := tea.NewProgram(model, tea.WithOutput(out))

	go func() {
		// Let bubbletea start its event loop and render the initial frame.
		time.Sleep(50 * time.Millisecond)

		workFn(func(msg tea.Msg) {
			p.Send(msg)
			// Small yield between sends so the renderer can draw frames;
			// negligible next to the service round trips that dominate a
			// batch run.
			time.Sleep(5 * time.Millisecond)
		})

		p.Send(BatchDoneMsg{})
	}()

	finalModel, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := finalModel.(GenerateModel); ok && m.Err() != nil {
		return m.Err()
	}
	return nil
}
