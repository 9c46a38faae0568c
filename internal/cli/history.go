package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/revisit/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "history [topic]",
		Short: "Show the review history log, newest first",
		Long:  "Show recorded review events. Only the sqlite backend keeps a history log.",
		Run:   runHistory,
	}

	cmd.Flags().IntP("limit", "l", 20, "Max events (0 for all)")

	RootCmd.AddCommand(cmd)
}

func runHistory(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	topic := strings.Join(args, " ")

	s := mustOpen(cmd)
	defer s.Close()

	rec, ok := s.store.(store.EventRecorder)
	if !ok {
		s.Close()
		exitErr("history", fmt.Errorf("backend %q does not keep a review history", s.cfg.Backend))
	}

	events, err := rec.Events(cmd.Context(), topic, limit)
	if err != nil {
		s.Close()
		exitErr("history", err)
	}
	printJSON(cmd, events)
}
