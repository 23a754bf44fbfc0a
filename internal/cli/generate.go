package cli

import (
	"encoding/json"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"storyreel/internal/logx"
	"storyreel/internal/story"
	"storyreel/internal/tui"
)

func newGenerateCmd() *cobra.Command {
	var noProgress bool
	var sceneID string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate scene images for the storyboard",
		Long: "Runs scene-image generation against the service, one scene at a\n" +
			"time. A scene whose generation fails (including content-filter\n" +
			"declines) is marked with an error and the batch continues.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, noProgress, sceneID)
		},
	}

	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the interactive progress table")
	cmd.Flags().StringVar(&sceneID, "scene", "", "Regenerate a single scene by ID")
	return cmd
}

func runGenerate(cmd *cobra.Command, noProgress bool, sceneID string) error {
	pp, cfg, board, err := loadProject()
	if err != nil {
		return err
	}
	if len(board.Scenes) == 0 {
		return fmt.Errorf("storyboard has no scenes; run split first")
	}

	svc, err := serviceFor(pp, cfg)
	if err != nil {
		return err
	}

	logger, closer, err := logx.New(pp, "generate")
	if err != nil {
		return err
	}
	defer closer.Close()

	session := story.NewSession()
	session.Restore(board)

	gen := &story.Generator{
		Service:          svc,
		Session:          session,
		AssetsDir:        pp.AssetsDir,
		Logger:           logger,
		ImageDurationSec: cfg.Images.DefaultDurationSec,
	}

	var results []story.SceneResult
	if sceneID != "" {
		results = []story.SceneResult{gen.RegenerateScene(cmd.Context(), sceneID)}
	} else {
		results, err = runGenerateBatch(cmd, gen, session, noProgress)
		if err != nil {
			return err
		}
	}

	if err := story.Save(pp.StoryboardFile, session.Snapshot()); err != nil {
		return err
	}

	return reportGenerate(cmd, results)
}

func runGenerateBatch(cmd *cobra.Command, gen *story.Generator, session *story.Session, noProgress bool) ([]story.SceneResult, error) {
	board := session.Snapshot()
	mode := tui.DetectMode(cmd.OutOrStdout(), noProgress, outputJSON)

	if mode != tui.ModeTUI {
		return gen.GenerateAll(cmd.Context())
	}

	model := tui.NewGenerateModel(board.Scenes)

	var results []story.SceneResult
	workErr := tui.RunGenerate(cmd.OutOrStdout(), model, func(send func(tea.Msg)) {
		for _, sc := range board.Scenes {
			send(tui.SceneStartedMsg{SceneID: sc.ID})
			res := gen.RegenerateScene(cmd.Context(), sc.ID)
			results = append(results, res)
			send(tui.SceneFinishedMsg{Result: res})
		}
	})
	return results, workErr
}

func reportGenerate(cmd *cobra.Command, results []story.SceneResult) error {
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}

	if outputJSON {
		type jsonResult struct {
			SceneID string `json:"scene_id"`
			ImageID string `json:"image_id,omitempty"`
			Error   string `json:"error,omitempty"`
		}
		payload := make([]jsonResult, 0, len(results))
		for _, res := range results {
			jr := jsonResult{SceneID: res.SceneID, ImageID: res.ImageID}
			if res.Err != nil {
				jr.Error = res.Err.Error()
			}
			payload = append(payload, jr)
		}
		out, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("encode generate json: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
	} else {
		cmd.Printf("Generated %d/%d scenes\n", len(results)-failed, len(results))
		for _, res := range results {
			if res.Err != nil {
				cmd.Printf("  scene %s: %v\n", res.SceneID, res.Err)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d scenes failed; rerun with --scene <id> to retry", failed, len(results))
	}
	return nil
}
