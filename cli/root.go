/*
Package cli is the ridebook command line.

COMMANDS:
  ridebook serve                      HTTP API (+ backups, metrics)
  ridebook export [-o file]           Write all data as an export document
  ridebook import FILE [--replace]    Read an export document
  ridebook report [--month YYYY-MM]   Print a month report, or --pdf FILE
  ridebook demo [--month YYYY-MM]     Merge a demo month into the database

CONFIGURATION:
  --config points to a YAML or JSON file. Every key can be overridden from
  the environment, e.g. RIDEBOOK_DATABASE__PATH=/data/ridebook.db.
  database.driver "memory" swaps SQLite for a store that lives only as
  long as the process.

SEE ALSO:
  - config/config.go: Keys and defaults
  - cmd/server/main.go: Entry point
*/
package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/warp/ridebook/config"
	"github.com/warp/ridebook/logger"
	"github.com/warp/ridebook/metrics"
	"github.com/warp/ridebook/store/memory"
	"github.com/warp/ridebook/store/sqlite"
	"github.com/warp/ridebook/tracker"
)

// Execute runs the CLI.
func Execute() error { return NewRootCmd().Execute() }

// NewRootCmd builds the command tree. Each call returns independent
// commands and flags.
func NewRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:          "ridebook",
		Short:        "Earnings tracker for ride-hailing drivers",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")

	cfgFn := func() string { return cfgPath }
	root.AddCommand(
		newServeCmd(cfgFn),
		newExportCmd(cfgFn),
		newImportCmd(cfgFn),
		newReportCmd(cfgFn),
		newDemoCmd(cfgFn),
	)
	return root
}

// app is what every command needs: config, logger and the tracker service
// over an open store.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	store   closingStore
	metrics *metrics.Recorder
	svc     *tracker.Service
}

type closingStore interface {
	tracker.Store
	Close() error
}

func openStore(cfg config.DatabaseConfig) (closingStore, error) {
	if cfg.Driver == config.DriverMemory {
		return memory.New(), nil
	}
	db, err := sqlite.New(cfg.Path)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func openApp(cfgPath string, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Logging, logOut)

	st, err := openStore(cfg.Database)
	if err != nil {
		return nil, err
	}

	var rec *metrics.Recorder
	if cfg.Metrics.Enabled {
		if rec, err = metrics.NewRecorder(nil); err != nil {
			st.Close()
			return nil, err
		}
	}

	policy := tracker.ValidationPolicy{RejectNegative: cfg.Validation.RejectsNegative()}
	svc := tracker.NewService(st, policy, logger.Component(log, "tracker"), rec)

	log.Debug().Str("driver", cfg.Database.Driver).Str("database", cfg.Database.Path).Msg("store opened")
	return &app{cfg: cfg, log: log, store: st, metrics: rec, svc: svc}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// parseMonth reads YYYY-MM; empty means the month of now.
func parseMonth(s string, now time.Time) (int, time.Month, error) {
	if s == "" {
		return now.Year(), now.Month(), nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q, expected YYYY-MM", s)
	}
	return t.Year(), t.Month(), nil
}
