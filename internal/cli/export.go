package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/revisit/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the schedule as a JSON snapshot",
		Long:  "Write the full schedule to stdout in the JSON document format used by the json backend.",
		Run:   runExport,
	}

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	s := mustOpen(cmd)
	defer s.Close()

	if err := store.EncodeSnapshot(cmd.OutOrStdout(), s.engine.Snapshot()); err != nil {
		s.Close()
		exitErr("export", err)
	}
}
