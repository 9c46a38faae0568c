package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/revisit/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show storage statistics",
		Run:   runInfo,
	}

	RootCmd.AddCommand(cmd)
}

func runInfo(cmd *cobra.Command, args []string) {
	s := mustOpen(cmd)
	defer s.Close()

	db, ok := s.store.(*store.SQLiteStore)
	if !ok {
		printJSON(cmd, map[string]interface{}{
			"backend": s.cfg.Backend,
			"path":    s.cfg.Path,
			"topics":  len(s.engine.All()),
		})
		return
	}

	info, err := db.Info(cmd.Context())
	if err != nil {
		s.Close()
		exitErr("info", fmt.Errorf("stats: %w", err))
	}
	printJSON(cmd, info)
}
