package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all topics with their statistics",
		Run:   runList,
	}

	cmd.Flags().String("level", "", "Filter by mastery level (Learning, Beginner, Intermediate, Advanced, Mastered)")
	cmd.Flags().Bool("names-only", false, "Only output topic names")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	level, _ := cmd.Flags().GetString("level")
	namesOnly, _ := cmd.Flags().GetBool("names-only")

	s := mustOpen(cmd)
	defer s.Close()

	all := s.engine.All()
	if level != "" {
		filtered := all[:0]
		for _, st := range all {
			if st.MasteryLevel.String() == level {
				filtered = append(filtered, st)
			}
		}
		all = filtered
	}

	if namesOnly {
		for _, st := range all {
			fmt.Fprintln(cmd.OutOrStdout(), st.TopicName)
		}
		return
	}
	printJSON(cmd, all)
}
