// Package cli implements the finhealth-admin commands.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/finhealth/finhealth/internal/config"
	"github.com/finhealth/finhealth/internal/infrastructure/monitoring"
	"github.com/finhealth/finhealth/internal/infrastructure/persistence/postgres"
	"github.com/finhealth/finhealth/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:           "finhealth-admin",
	Short:         "Operator CLI for the FinHealth service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// adminEnv holds the shared dependencies a command needs: resolved
// configuration, a logger and the database connection.
type adminEnv struct {
	cfg *config.Config
	log logger.Logger
	db  *postgres.DBConnection
}

// bootstrap loads configuration the same way the server does and opens
// the database. Callers must invoke close when done.
func bootstrap(ctx context.Context) (*adminEnv, func(), error) {
	log, err := monitoring.NewZapLogger(&config.LogConfig{Level: "warn", Format: "console"})
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}

	cfg, err := config.LoadConfig(log, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	db, err := postgres.NewDBConnection(ctx, &cfg.Database, log)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: %w", err)
	}
	if err := postgres.AutoMigrate(ctx, db.GORM()); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}

	env := &adminEnv{cfg: cfg, log: log, db: db}
	return env, db.Close, nil
}
