package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/revisit/internal/leitner"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats <topic>",
		Short: "Show statistics and mastery level for a topic",
		Args:  cobra.MinimumNArgs(1),
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	name := strings.Join(args, " ")

	s := mustOpen(cmd)
	defer s.Close()

	stats, ok := s.engine.Stats(name)
	if !ok {
		s.Close()
		fail(cmd, "stats", fmt.Errorf("%w: %s", leitner.ErrNotFound, name))
	}
	printJSON(cmd, stats)
}
