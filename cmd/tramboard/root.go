package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"tramboard/internal/config"
	"tramboard/internal/departure"
	"tramboard/internal/directory"
	"tramboard/internal/messages"
	"tramboard/internal/mvg"
	"tramboard/internal/notify"
	"tramboard/internal/query"
	"tramboard/internal/stoplist"
	"tramboard/internal/storage"
)

var rootCmd = &cobra.Command{
	Use:   "tramboard",
	Short: "Live tram and bus departures for Munich stops",
	Long: `tramboard looks up a stop by part of its name, shows its next tram and bus
departures from the MVG API and remembers recent and favorite stops.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.String("config", "", "config file (default ./"+config.DefaultFile+" if present)")
	f.String("db", "", "SQLite database path")
	f.String("lang", "", "message language (en, de, zh)")
	f.String("directory", "", "stop directory file (YAML name: id, or GTFS stops.txt)")
	f.BoolP("verbose", "v", false, "debug logging")

	rootCmd.AddCommand(queryCmd, favoritesCmd, recentCmd, stopsCmd, serveCmd)
}

// app holds what every command needs.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	db      *storage.DB
	dir     *directory.Directory
	store   *stoplist.Store
	msgs    *messages.Printer
	fetcher *departure.Fetcher
}

// openApp loads configuration, applies the global flags and opens storage.
func openApp(cmd *cobra.Command) (*app, error) {
	logger := newLogger(cmd)

	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.DBPath = v
	}
	if v, _ := cmd.Flags().GetString("lang"); v != "" {
		cfg.Language = v
	}
	if v, _ := cmd.Flags().GetString("directory"); v != "" {
		cfg.DirectoryPath = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dir := directory.Default()
	if cfg.DirectoryPath != "" {
		if dir, err = directory.Load(cfg.DirectoryPath); err != nil {
			return nil, err
		}
	}
	logger.Debug("stop directory loaded", "stops", dir.Len(), "path", cfg.DirectoryPath)

	db, err := storage.Open(cfg.DBPath, logger)
	if err != nil {
		return nil, err
	}
	store, err := stoplist.Load(cmd.Context(), db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	loc, _ := cfg.Location() // checked by Validate
	client := mvg.NewClient(cfg.BaseURL, cfg.Timeout, logger)

	return &app{
		cfg:     cfg,
		logger:  logger,
		db:      db,
		dir:     dir,
		store:   store,
		msgs:    messages.New(cfg.Language),
		fetcher: departure.NewFetcher(client, loc, cfg.Timeout, logger),
	}, nil
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.logger.Warn("closing database", "error", err)
	}
}

func (a *app) options() query.Options {
	return query.Options{Limit: a.cfg.Limit, TransportTypes: a.cfg.TransportTypes}
}

// orchestrator wires a query pipeline delivering notifications through c.
func (a *app) orchestrator(f query.Fetcher, c notify.Capability) (*query.Orchestrator, *notify.Dispatcher) {
	d := notify.NewDispatcher(c, a.logger)
	return query.New(a.dir, f, a.store, d, a.msgs, a.options(), a.logger), d
}

// listOrchestrator is enough for commands that only touch the stop lists.
func (a *app) listOrchestrator() *query.Orchestrator {
	o, _ := a.orchestrator(a.fetcher, nil)
	return o
}

func withApp(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return fmt.Errorf("startup: %w", err)
		}
		defer a.Close()
		return fn(cmd.Context(), a, args)
	}
}
