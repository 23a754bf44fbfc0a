package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"storyreel/internal/logx"
	"storyreel/internal/media"
	"storyreel/internal/player"
	"storyreel/internal/timeline"
	"storyreel/internal/tools"
	"storyreel/internal/tui"
)

func newPreviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview",
		Short: "Play the storyboard interactively in the terminal",
		RunE:  runPreview,
	}
}

func runPreview(cmd *cobra.Command, _ []string) error {
	pp, _, board, err := loadProject()
	if err != nil {
		return err
	}

	tl := timeline.Build(board.Scenes)
	if tl.Empty() {
		return fmt.Errorf("nothing to preview: no scene has an included, finished image")
	}
	if board.Narration == nil || board.Narration.Path == "" {
		return fmt.Errorf("nothing to preview: no narration track set")
	}
	if !tui.IsTerminal(cmd.OutOrStdout()) {
		return fmt.Errorf("preview needs an interactive terminal")
	}

	logger, closer, err := logx.New(pp, "preview")
	if err != nil {
		return err
	}
	defer closer.Close()

	ffprobe, err := tools.Resolve(tools.FFprobe)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Probe the durations the transport needs up front: narration (master
	// clock length), music trim clamps, overlay video lengths.
	runner := media.CmdRunner{}
	narration := *board.Narration
	if narration.DurationSec <= 0 {
		info, err := media.Probe(ctx, runner, ffprobe, narration.Path)
		if err != nil {
			return err
		}
		narration.DurationSec = info.DurationSeconds
	}

	overlayDurations := make(map[string]float64)
	for i := range board.Scenes {
		sc := &board.Scenes[i]
		if m := sc.Music; m != nil && m.Path != "" && m.DurationSec <= 0 {
			info, err := media.Probe(ctx, runner, ffprobe, m.Path)
			if err != nil {
				logger.Printf("preview: probe music %s: %v", m.Path, err)
				continue
			}
			m.DurationSec = info.DurationSeconds
		}
		if ov := sc.Overlay; ov != nil && ov.Path != "" {
			if _, seen := overlayDurations[ov.Path]; seen {
				continue
			}
			info, err := media.Probe(ctx, runner, ffprobe, ov.Path)
			if err != nil {
				logger.Printf("preview: probe overlay %s: %v", ov.Path, err)
				continue
			}
			overlayDurations[ov.Path] = info.DurationSeconds
		}
	}

	transport := player.New(player.Config{
		Scenes:           board.Scenes,
		Narration:        &narration,
		OverlayDurations: overlayDurations,
		Logger:           logger,
	})

	logger.Printf("preview: %d scenes, %.1fs", len(board.Scenes), tl.Total)
	return tui.RunPlayer(cmd.OutOrStdout(), transport, board.Scenes)
}
