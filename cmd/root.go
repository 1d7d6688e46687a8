// Package cmd implements the foogie CLI commands.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/theirongolddev/foogie/internal/config"
	"github.com/theirongolddev/foogie/internal/ledger"
	"github.com/theirongolddev/foogie/internal/logger"
	"github.com/theirongolddev/foogie/internal/mealsync"
	"github.com/theirongolddev/foogie/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagDB        string
	flagEphemeral bool
	flagNoSync    bool
	flagQuiet     bool
)

var rootCmd = &cobra.Command{
	Use:          "foogie",
	Short:        "Daily calorie ledger",
	Long:         "Track today's meals against a calorie goal, split what's left across the meals still to come.",
	SilenceUsage: true,
	RunE:         runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Ledger database path (default $XDG_DATA_HOME/foogie/foogie.db)")
	rootCmd.PersistentFlags().BoolVar(&flagEphemeral, "ephemeral", false, "Keep the ledger in memory for this run only")
	rootCmd.PersistentFlags().BoolVar(&flagNoSync, "no-sync", false, "Don't notify the backend about logged meals")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Only log errors to stderr")
}

// ledgerStorage is what a ledger needs from its backing store.
type ledgerStorage interface {
	ledger.Storage
	ledger.Archive
}

// session bundles what a command needs to work with the ledger.
type session struct {
	cfg    config.Config
	log    *slog.Logger
	ledger *ledger.Ledger
	dbPath string
	close  func() error
}

// openSession is the shared setup path used by every ledger command.
func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.Init(cfg.Log, logger.Options{Quiet: flagQuiet})

	var (
		storage ledgerStorage
		dbPath  string
		closeFn = func() error { return nil }
	)
	if flagEphemeral {
		storage = store.NewMemStore()
		dbPath = ":memory:"
	} else {
		dbPath = resolveDBPath(cfg)
		db, err := store.Open(dbPath)
		if err != nil {
			return nil, fmt.Errorf("opening ledger: %w", err)
		}
		storage = db
		closeFn = db.Close
	}

	opts := []ledger.Option{
		ledger.WithLogger(log),
		ledger.WithArchive(storage),
	}
	if syncer := newSyncer(cfg, log); syncer != nil {
		opts = append(opts, ledger.WithSyncer(syncer), ledger.WithSyncTimeout(config.SyncTimeout(cfg)))
	}

	l, err := ledger.New(ctx, storage, opts...)
	if err != nil {
		_ = closeFn()
		return nil, err
	}

	return &session{
		cfg:    cfg,
		log:    log,
		ledger: l,
		dbPath: dbPath,
		close:  closeFn,
	}, nil
}

func resolveDBPath(cfg config.Config) string {
	switch {
	case flagDB != "":
		return flagDB
	case cfg.General.DBPath != "":
		return cfg.General.DBPath
	default:
		return store.DefaultPath()
	}
}

// newSyncer returns nil when meal sync is switched off.
func newSyncer(cfg config.Config, log *slog.Logger) ledger.Syncer {
	if flagNoSync || !cfg.Sync.Enabled {
		return nil
	}
	endpoint := config.SyncEndpoint(cfg)
	if endpoint == "" {
		endpoint = mealsync.DefaultEndpoint
	}
	c, err := mealsync.New(endpoint, config.SyncTimeout(cfg))
	if err != nil {
		log.Warn("meal sync disabled", "err", err)
		return nil
	}
	return c
}

// withSession opens a session, runs fn and closes it.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = s.close() }()
	return fn(ctx, s)
}
