package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

// maxDaysAhead matches the upcoming_days bound in config.
const maxDaysAhead = 365

var errDaysAhead = errors.New("days ahead must be between 1 and 365")

func init() {
	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "List topics due within the next N days",
		Run:   runUpcoming,
	}

	cmd.Flags().IntP("days", "n", 0, "Days ahead, 1-365 (default: upcoming_days from config, 7)")

	RootCmd.AddCommand(cmd)
}

func runUpcoming(cmd *cobra.Command, args []string) {
	flag, _ := cmd.Flags().GetInt("days")

	s := mustOpen(cmd)
	defer s.Close()

	days, err := daysAhead(flag, s.cfg.UpcomingDays)
	if err != nil {
		s.Close()
		exitErr("upcoming", err)
	}
	printJSON(cmd, s.engine.Upcoming(days))
}

// daysAhead resolves the -n flag; zero falls back to the configured window.
func daysAhead(flag, configured int) (int, error) {
	if flag == 0 {
		return configured, nil
	}
	if flag < 1 || flag > maxDaysAhead {
		return 0, errDaysAhead
	}
	return flag, nil
}
