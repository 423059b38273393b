package commands

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/viant/descmatch/config"
	"github.com/viant/descmatch/engine"
	"github.com/viant/descmatch/knn"
	"github.com/viant/descmatch/store"
)

var (
	// Global flags
	verbose    bool
	dbPath     string
	configPath string

	params *config.Parameters
	logger = slog.New(slog.DiscardHandler)
)

var rootCmd = &cobra.Command{
	Use:   "descmatch",
	Short: "Match local image feature descriptors",
	Long: `descmatch - store extracted keypoints and descriptors and match them.

Feature sets are imported from JSON files produced by an external detector,
kept in a SQLite database, and matched with a randomized KD forest followed
by Lowe's ratio test.

Parameters are read from a YAML file (--config, $DESCMATCH_CONFIG or
./descmatch.yaml); command line flags override them.

Examples:
  descmatch import left left.json
  descmatch import right right.json
  descmatch list
  descmatch match <train-id> <query-id> --ratio 0.7 --top 20`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (default: $DESCMATCH_DB or the config value)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML parameter file (default: $DESCMATCH_CONFIG or descmatch.yaml)")
}

func setup(cmd *cobra.Command, _ []string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	path := configPath
	if path == "" {
		path = envOr("DESCMATCH_CONFIG", "descmatch.yaml")
	}
	p, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if dbPath == "" {
		p.Database = envOr("DESCMATCH_DB", p.Database)
	} else {
		p.Database = dbPath
	}
	params = p
	logger.Debug("configured", "config", path, "database", p.Database)
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// openStore opens the configured database with the knn module registered.
// The caller closes the returned db.
func openStore(ctx context.Context) (*store.SQLiteStore, *sql.DB, error) {
	db, err := engine.Open(params.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", params.Database, err)
	}
	if err := knn.Register(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	s, err := store.NewSQLiteStore(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return s, db, nil
}
