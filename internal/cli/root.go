// Package cli implements equipctl, an operator command line that works on
// the configured state backend directly through the same services as the
// HTTP server.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/equiptracker/internal/logging"
	"github.com/dmitrijs2005/equiptracker/internal/server/config"
	"github.com/dmitrijs2005/equiptracker/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/equiptracker/internal/server/services"
	"github.com/dmitrijs2005/equiptracker/internal/server/window"
	"github.com/dmitrijs2005/equiptracker/internal/timex"
)

// annotation marking commands that do not need storage
const noStorage = "equipctl/no-storage"

type options struct {
	configFile string
	backend    string
	dataFile   string
	dsn        string
	sqlitePath string
	badgerDir  string
	stateKey   string
	resetHours int
	logLevel   string
}

// App holds what a command needs once storage is open.
type App struct {
	opts    options
	clock   timex.Clock
	logErr  io.Writer
	manager *repomanager.Manager
	entries *services.EntryService
	export  *services.ExportService
}

func newApp() *App {
	return &App{clock: timex.SystemClock{}, logErr: os.Stderr}
}

// NewRootCommand builds the equipctl command tree.
func NewRootCommand() *cobra.Command {
	return newApp().rootCommand()
}

func (a *App) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "equipctl",
		Short:         "Inspect and edit equipment allocations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[noStorage] == "true" {
				return nil
			}
			return a.open(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	f := root.PersistentFlags()
	f.StringVarP(&a.opts.configFile, "config", "c", "", "JSON config file")
	f.StringVar(&a.opts.backend, "backend", "", "storage backend: memory, file, postgres, sqlite, badger, s3")
	f.StringVar(&a.opts.dataFile, "data-file", "", "JSON data file (file backend)")
	f.StringVar(&a.opts.dsn, "dsn", "", "PostgreSQL DSN (postgres backend)")
	f.StringVar(&a.opts.sqlitePath, "sqlite-path", "", "SQLite database path (sqlite backend)")
	f.StringVar(&a.opts.badgerDir, "badger-dir", "", "BadgerDB directory (badger backend)")
	f.StringVar(&a.opts.stateKey, "state-key", "", "state key")
	f.IntVar(&a.opts.resetHours, "reset-hours", 0, "reset interval in hours")
	f.StringVar(&a.opts.logLevel, "log-level", "warn", "log level")

	root.AddCommand(
		a.listCommand(),
		a.addCommand(),
		a.deleteCommand(),
		a.exportCommand(),
		a.dumpCommand(),
		catalogCommand(),
	)
	return root
}

// buildConfig applies defaults, the JSON file and then any flags that were
// set explicitly.
func (a *App) buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.LogLevel = a.opts.logLevel

	if a.opts.configFile != "" {
		if err := config.ApplyJSONFile(cfg, a.opts.configFile); err != nil {
			return nil, err
		}
	}

	f := cmd.Flags()
	set := func(name string, dst *string, v string) {
		if f.Changed(name) {
			*dst = v
		}
	}
	set("backend", &cfg.StorageBackend, a.opts.backend)
	set("data-file", &cfg.DataFile, a.opts.dataFile)
	set("dsn", &cfg.DatabaseDSN, a.opts.dsn)
	set("sqlite-path", &cfg.SQLitePath, a.opts.sqlitePath)
	set("badger-dir", &cfg.BadgerDir, a.opts.badgerDir)
	set("state-key", &cfg.StateKey, a.opts.stateKey)
	set("log-level", &cfg.LogLevel, a.opts.logLevel)
	if f.Changed("reset-hours") {
		cfg.ResetInterval = time.Duration(a.opts.resetHours) * time.Hour
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a *App) open(cmd *cobra.Command) error {
	cfg, err := a.buildConfig(cmd)
	if err != nil {
		return err
	}

	logger := logging.NewJSONLogger(a.logErr, cfg.LogLevel)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	manager, err := repomanager.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	store := window.NewStore(manager.State(), a.clock, cfg.ResetInterval, logger)
	a.manager = manager
	a.entries = services.NewEntryService(store, a.clock, logger)
	a.export = services.NewExportService(store, a.clock, logger)
	return nil
}

func (a *App) close() error {
	if a.manager == nil {
		return nil
	}
	err := a.manager.Close()
	a.manager = nil
	return err
}

// Execute runs equipctl with the process arguments. Storage is closed even
// when the command fails.
func Execute(ctx context.Context) int {
	app := newApp()
	defer app.close()

	if err := app.rootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
