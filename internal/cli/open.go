package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newOpenCommand(launch Launcher) *cobra.Command {
	return &cobra.Command{
		Use:   "open <file>",
		Short: "Open a file in the desktop application",
		Long: `Start the desktop application with a file loaded in the first tab.

CSV, Parquet and JSON files open as tables. A Delta Sharing profile
(.share) opens the share navigator.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); err != nil {
				return fmt.Errorf("cannot open %s: %w", args[0], err)
			}
			return launch(GetConfig(cmd.Context()), args[0])
		},
	}
}
