package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show overall study statistics",
		Run:   runSummary,
	}

	RootCmd.AddCommand(cmd)
}

func runSummary(cmd *cobra.Command, args []string) {
	s := mustOpen(cmd)
	defer s.Close()

	printJSON(cmd, s.engine.Summary())
}
