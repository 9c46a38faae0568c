package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm <topic>",
		Short: "Remove a topic from the schedule",
		Args:  cobra.MinimumNArgs(1),
		Run:   runRm,
	}

	RootCmd.AddCommand(cmd)
}

func runRm(cmd *cobra.Command, args []string) {
	name := strings.Join(args, " ")

	s := mustOpen(cmd)
	defer s.Close()

	removed, err := s.engine.Remove(cmd.Context(), name)
	if err != nil {
		s.Close()
		exitErr("rm", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"topic":%q,"removed":%t}`+"\n", name, removed)
}
