package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"storyreel/internal/logx"
	"storyreel/internal/story"
)

func newSplitCmd() *cobra.Command {
	var sceneCount int
	var force bool

	cmd := &cobra.Command{
		Use:   "split [story-file]",
		Short: "Split a story into ordered scene descriptions",
		Long: "Sends the story text to the generation service and replaces the\n" +
			"project's scenes with the returned descriptions. Reads from stdin when\n" +
			"no file is given.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(cmd, args, sceneCount, force)
		},
	}

	cmd.Flags().IntVar(&sceneCount, "scenes", 0, "Desired scene count (0 lets the service choose)")
	cmd.Flags().BoolVar(&force, "force", false, "Replace existing scenes without confirmation")
	return cmd
}

func runSplit(cmd *cobra.Command, args []string, sceneCount int, force bool) error {
	pp, cfg, board, err := loadProject()
	if err != nil {
		return err
	}

	text, err := readStoryText(cmd, args)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("story text is empty")
	}

	if len(board.Scenes) > 0 && !force {
		return fmt.Errorf("project already has %d scenes; pass --force to replace them", len(board.Scenes))
	}

	svc, err := serviceFor(pp, cfg)
	if err != nil {
		return err
	}

	logger, closer, err := logx.New(pp, "split")
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

	scenes, err := gen.SplitStory(cmd.Context(), text, sceneCount)
	if err != nil {
		return err
	}
	logger.Printf("split: %d scenes", len(scenes))

	if err := story.Save(pp.StoryboardFile, session.Snapshot()); err != nil {
		return err
	}

	if outputJSON {
		payload := make([]map[string]string, 0, len(scenes))
		for _, sc := range scenes {
			payload = append(payload, map[string]string{"id": sc.ID, "description": sc.Description})
		}
		out, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("encode split json: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	cmd.Printf("Split story into %d scenes:\n", len(scenes))
	for i, sc := range scenes {
		cmd.Printf("  %2d. %s\n", i+1, sc.Description)
	}
	return nil
}

func readStoryText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("read story file: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read story from stdin: %w", err)
	}
	return string(data), nil
}
