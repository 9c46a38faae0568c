package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "due",
		Short: "List topics due for review, most overdue first",
		Run:   runDue,
	}

	cmd.Flags().Bool("names-only", false, "Only output topic names")

	RootCmd.AddCommand(cmd)
}

func runDue(cmd *cobra.Command, args []string) {
	namesOnly, _ := cmd.Flags().GetBool("names-only")

	s := mustOpen(cmd)
	defer s.Close()

	due := s.engine.Due()
	if namesOnly {
		for _, it := range due {
			fmt.Fprintln(cmd.OutOrStdout(), it.TopicName)
		}
		return
	}
	printJSON(cmd, due)
}
