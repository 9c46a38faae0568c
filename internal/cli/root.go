// Package cli implements the revisit CLI commands.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/revisit/internal/config"
	"github.com/rcliao/revisit/internal/leitner"
	"github.com/rcliao/revisit/internal/logger"
	"github.com/rcliao/revisit/internal/store"
)

var (
	dbPath      string
	backendFlag string
	configFile  string
	logLevel    string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "revisit",
	Short: "Spaced-repetition review scheduler",
	Long:  "Schedules topic reviews on a Leitner ladder (1, 3, 5, 11, 25, 44, 88 days). Single learner, local file, JSON out.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Data file path (default: $REVISIT_PATH or ~/.revisit/revisit.db)")
	RootCmd.PersistentFlags().StringVarP(&backendFlag, "backend", "b", "", "Storage backend: sqlite or json (default: $REVISIT_BACKEND or sqlite)")
	RootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: ~/.revisit/revisit.yaml)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// loadConfig resolves configuration, letting flags win over file and env.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if backendFlag != "" {
		if dbPath == "" && cfg.Path == config.DefaultPath(cfg.Backend) {
			cfg.Path = config.DefaultPath(backendFlag)
		}
		cfg.Backend = backendFlag
	}
	if dbPath != "" {
		cfg.Path = dbPath
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, config.Validate(cfg)
}

// session is an opened store plus the engine that owns it.
type session struct {
	cfg    *config.Config
	log    *logger.Logger
	store  store.Store
	engine *leitner.Engine
	closed bool
}

func (s *session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	if err := s.store.Close(); err != nil {
		s.log.Warn("close store", "error", err)
	}
	s.log.Sync()
}

func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return openWith(cmd.Context(), cfg, log)
}

func openWith(ctx context.Context, cfg *config.Config, log *logger.Logger) (*session, error) {
	st, err := store.Open(cfg.Backend, cfg.Path)
	if err != nil {
		return nil, err
	}
	log.Debug("store opened", "backend", cfg.Backend, "path", cfg.Path)

	e, err := leitner.New(ctx, st, leitner.WithLogger(log))
	if err != nil {
		st.Close()
		return nil, err
	}
	return &session{cfg: cfg, log: log, store: st, engine: e}, nil
}

func mustOpen(cmd *cobra.Command) *session {
	s, err := openSession(cmd)
	if err != nil {
		exitErr("open store", err)
	}
	return s
}

func printJSON(cmd *cobra.Command, v interface{}) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}

// isOutcome reports whether err is an expected, caller-facing result rather
// than a hard failure.
func isOutcome(err error) bool {
	return errors.Is(err, leitner.ErrInvalidName) ||
		errors.Is(err, leitner.ErrInvalidDescription) ||
		errors.Is(err, leitner.ErrAlreadyExists) ||
		errors.Is(err, leitner.ErrNotFound)
}

// fail prints expected outcomes as JSON on stdout and hard failures on
// stderr. Both exit 1.
func fail(cmd *cobra.Command, msg string, err error) {
	if isOutcome(err) {
		printJSON(cmd, map[string]interface{}{"ok": false, "error": err.Error()})
		os.Exit(1)
	}
	exitErr(msg, err)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
