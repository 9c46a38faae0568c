package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/revisit/internal/logger"
	"github.com/rcliao/revisit/internal/reminder"
)

var errInterval = errors.New("poll interval must be at least 1s")

func init() {
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Poll for due topics and print reminders",
		Long: "Check for due topics every remind.every (default 1h) inside the notification window " +
			"and print one JSON line per reminder. Runs until interrupted, or once with --once.",
		Run: runRemind,
	}

	cmd.Flags().Bool("once", false, "Check once and exit")
	cmd.Flags().Duration("every", 0, "Poll interval (overrides remind.every)")

	RootCmd.AddCommand(cmd)
}

func runRemind(cmd *cobra.Command, args []string) {
	once, _ := cmd.Flags().GetBool("once")
	every, _ := cmd.Flags().GetDuration("every")

	cfg, err := loadConfig()
	if err != nil {
		exitErr("config", err)
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		exitErr("logger", err)
	}
	defer log.Sync()

	rc := cfg.Remind
	if every > 0 {
		rc.Every = every
	}
	if rc.Every < time.Second {
		exitErr("remind", errInterval)
	}

	// The store is opened per check so the lock is held only while querying.
	open := func(ctx context.Context) (reminder.Source, func(), error) {
		s, err := openWith(ctx, cfg, log)
		if err != nil {
			return nil, nil, err
		}
		return s.engine, s.Close, nil
	}

	p := reminder.New(open, reminder.JSONNotifier{W: cmd.OutOrStdout()}, rc, log)
	if once {
		if _, err := p.Check(cmd.Context()); err != nil {
			exitErr("remind", err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := p.Run(ctx); err != nil {
		exitErr("remind", err)
	}
}
