package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "review <topic>",
		Short: "Record a review outcome",
		Long:  "Record a successful (--ok) or failed (--fail) review. Success moves the topic up one box, failure down one.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runReview,
	}

	cmd.Flags().Bool("ok", false, "The review succeeded")
	cmd.Flags().Bool("fail", false, "The review failed")
	cmd.MarkFlagsMutuallyExclusive("ok", "fail")
	cmd.MarkFlagsOneRequired("ok", "fail")

	RootCmd.AddCommand(cmd)
}

func runReview(cmd *cobra.Command, args []string) {
	ok, _ := cmd.Flags().GetBool("ok")
	name := strings.Join(args, " ")

	s := mustOpen(cmd)
	defer s.Close()

	if _, err := s.engine.Record(cmd.Context(), name, ok); err != nil {
		s.Close()
		fail(cmd, "review", err)
	}
	stats, _ := s.engine.Stats(name)
	printJSON(cmd, stats)
}
