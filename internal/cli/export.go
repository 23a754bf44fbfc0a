package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"storyreel/internal/export"
	"storyreel/internal/logx"
	"storyreel/internal/media"
	"storyreel/internal/tools"
	"storyreel/internal/tui"
)

func newExportCmd() *cobra.Command {
	var output string
	var noProgress bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render the storyboard into an MP4 file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, output, noProgress)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default exports/story-<timestamp>.mp4)")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progress spinner")
	return cmd
}

func runExport(cmd *cobra.Command, output string, noProgress bool) error {
	pp, cfg, board, err := loadProject()
	if err != nil {
		return err
	}

	logger, closer, err := logx.New(pp, "export")
	if err != nil {
		return err
	}
	defer closer.Close()

	ffmpeg, err := tools.Resolve(tools.FFmpeg)
	if err != nil {
		return err
	}
	ffprobe, err := tools.Resolve(tools.FFprobe)
	if err != nil {
		return err
	}

	if output == "" {
		output = pp.ExportFile(fmt.Sprintf("story-%s.mp4", time.Now().Format("20060102-150405")))
	}

	svc := export.NewService(media.CmdRunner{}, logger)
	svc.FFmpeg = ffmpeg
	svc.FFprobe = ffprobe
	svc.LogsDir = pp.LogsDir

	opts := export.Options{
		Width:            cfg.Video.Width,
		Height:           cfg.Video.Height,
		FPS:              cfg.Video.FPS,
		Codec:            cfg.Export.VCodec,
		Preset:           cfg.Export.Preset,
		CRF:              cfg.Export.CRF,
		AudioCodec:       cfg.Audio.ACodec,
		AudioBitrateKbps: cfg.Audio.BitrateKbps,
		SampleRate:       cfg.Audio.SampleRate,
	}

	var status *tui.ExportStatus
	if mode := tui.DetectMode(cmd.OutOrStdout(), noProgress, outputJSON); mode == tui.ModeTUI {
		status = tui.NewExportStatus(cmd.OutOrStdout())
		status.Stage("preloading assets")
		opts.Progress = status.Frame
		defer status.Stop()
	}

	start := time.Now()
	if err := svc.Export(cmd.Context(), board.Scenes, board.Narration, output, opts); err != nil {
		return err
	}
	if status != nil {
		status.Stop()
	}

	cmd.Printf("Exported %s in %s\n", output, time.Since(start).Round(time.Second))
	return nil
}
