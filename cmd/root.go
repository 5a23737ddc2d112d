package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nicklittle905/football-team-season-tracker/internal/config"
	"github.com/nicklittle905/football-team-season-tracker/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "seasontracker",
	Short: "Football club season tracker",
	Long:  "Ingests fixtures and results from football-data.org into a local store and derives standings, match history, form, and position-over-time views.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("validate config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// openStore opens the configured store read-write and runs migrations.
func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		st, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close() //nolint:errcheck
			return nil, err
		}
		return st, nil
	default:
		if dir := filepath.Dir(cfg.Store.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		st, err := store.NewSQLite(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close() //nolint:errcheck
			return nil, err
		}
		return st, nil
	}
}

// openReadOnlyStore opens the store for query commands. SQLite gets a
// read-only handle; queries against a missing or empty database degrade to
// empty results in the facade rather than failing here.
func openReadOnlyStore(ctx context.Context) (store.Store, error) {
	if cfg.Store.Driver == "postgres" {
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	}
	return store.NewSQLiteReadOnly(cfg.Store.Path)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
