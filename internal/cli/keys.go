package cli

import (
	"github.com/spf13/cobra"

	"storyreel/internal/genai"
)

func newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage generation service API keys",
	}

	cmd.AddCommand(newKeysAddCmd())
	cmd.AddCommand(newKeysClearCmd())
	return cmd
}

func newKeysAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <key>",
		Short: "Store an API key for the project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pp, _, _, err := loadProject()
			if err != nil {
				return err
			}
			store := genai.NewFileKeyStore(pp.KeysFile)
			if err := store.Add(args[0]); err != nil {
				return err
			}
			cmd.Printf("Stored key in %s\n", pp.KeysFile)
			return nil
		},
	}
}

func newKeysClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-invalid",
		Short: "Reset keys previously rejected by the service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pp, _, _, err := loadProject()
			if err != nil {
				return err
			}
			store := genai.NewFileKeyStore(pp.KeysFile)
			if err := store.ClearInvalid(); err != nil {
				return err
			}
			cmd.Println("Cleared invalid markers on all stored keys")
			return nil
		},
	}
}
