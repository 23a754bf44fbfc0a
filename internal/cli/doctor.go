package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"storyreel/internal/media"
	"storyreel/internal/tools"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that ffmpeg and ffprobe are available",
		RunE:  runDoctor,
	}
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	statuses := tools.Detect(cmd.Context(), media.CmdRunner{})

	if outputJSON {
		out, err := json.MarshalIndent(statuses, "", "  ")
		if err != nil {
			return fmt.Errorf("encode doctor json: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
	} else {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
		fmt.Fprintln(w, "TOOL\tFOUND\tVERSION\tPATH")
		for _, st := range statuses {
			found := "no"
			if st.Found {
				found = "yes"
			}
			detail := st.Path
			if st.Error != "" {
				detail = st.Error
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", st.Tool, found, st.Version, detail)
		}
		w.Flush()
	}

	for _, st := range statuses {
		if !st.Found {
			return fmt.Errorf("%s is required but was not found", st.Tool)
		}
	}
	return nil
}
