package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"storyreel/internal/story"
	"storyreel/internal/timeline"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Summarize the storyboard and derived timeline",
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, _ []string) error {
	pp, _, board, err := loadProject()
	if err != nil {
		return err
	}

	tl := timeline.Build(board.Scenes)

	if outputJSON {
		return writeStatusJSON(cmd, pp.Root, board, tl)
	}
	writeStatusTable(cmd, pp.Root, board, tl)

	return story.Validate(board.Scenes, board.Narration)
}

func writeStatusTable(cmd *cobra.Command, projectName string, board story.Storyboard, tl timeline.Timeline) {
	fmt.Fprintf(cmd.OutOrStdout(), "Project: %s\n", projectName)
	fmt.Fprintf(cmd.OutOrStdout(), "Timeline: %.1fs over %d segments\n", tl.Total, len(tl.Segments))
	if n := board.Narration; n != nil && n.Path != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Narration: %s (rate %.2fx)\n", n.Path, n.EffectiveRate())
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "SCENE\tSTART\tDURATION\tIMAGES\tMUSIC\tOVERLAY\tDESCRIPTION")
	for i, sc := range board.Scenes {
		timing := tl.Scenes[i]
		music := "-"
		if sc.Music != nil && sc.Music.Path != "" {
			music = "yes"
		}
		ov := "-"
		if sc.Overlay != nil && sc.Overlay.Path != "" {
			ov = string(sc.Overlay.Kind)
		}
		fmt.Fprintf(w, "%d\t%.1fs\t%.1fs\t%d/%d\t%s\t%s\t%s\n",
			i+1,
			timing.Start,
			timing.Duration,
			len(sc.EligibleImages()),
			len(sc.Images),
			music,
			ov,
			sc.Description,
		)
	}
	w.Flush()
}

func writeStatusJSON(cmd *cobra.Command, projectName string, board story.Storyboard, tl timeline.Timeline) error {
	type sceneJSON struct {
		ID          string  `json:"id"`
		Description string  `json:"description"`
		Start       float64 `json:"start_s"`
		Duration    float64 `json:"duration_s"`
		Images      int     `json:"images"`
		Eligible    int     `json:"eligible_images"`
		HasMusic    bool    `json:"has_music"`
		OverlayKind string  `json:"overlay_kind,omitempty"`
	}

	payload := struct {
		Project  string      `json:"project"`
		Total    float64     `json:"total_s"`
		Segments int         `json:"segments"`
		Scenes   []sceneJSON `json:"scenes"`
	}{
		Project:  projectName,
		Total:    tl.Total,
		Segments: len(tl.Segments),
		Scenes:   make([]sceneJSON, 0, len(board.Scenes)),
	}

	for i, sc := range board.Scenes {
		timing := tl.Scenes[i]
		entry := sceneJSON{
			ID:          sc.ID,
			Description: sc.Description,
			Start:       timing.Start,
			Duration:    timing.Duration,
			Images:      len(sc.Images),
			Eligible:    len(sc.EligibleImages()),
			HasMusic:    sc.Music != nil && sc.Music.Path != "",
		}
		if sc.Overlay != nil && sc.Overlay.Path != "" {
			entry.OverlayKind = string(sc.Overlay.Kind)
		}
		payload.Scenes = append(payload.Scenes, entry)
	}

	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode status json: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
