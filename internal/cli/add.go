package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "add <topic>",
		Short: "Add a topic to the review schedule",
		Long:  "Add a topic in the first Leitner box. It becomes due one day from now.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runAdd,
	}

	cmd.Flags().StringP("description", "m", "", "Topic description")

	RootCmd.AddCommand(cmd)
}

func runAdd(cmd *cobra.Command, args []string) {
	desc, _ := cmd.Flags().GetString("description")
	name := strings.Join(args, " ")

	s := mustOpen(cmd)
	defer s.Close()

	item, err := s.engine.Add(cmd.Context(), name, desc)
	if err != nil {
		s.Close()
		fail(cmd, "add", err)
	}
	printJSON(cmd, item)
}
