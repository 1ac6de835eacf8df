// Command buildsync runs the sync backend as a standalone server and manages
// its schema.
package main

import (
	"context"
	"fmt"
	"os"

	"buildsync-backend/pkg/config"
	"buildsync-backend/pkg/database"
	"buildsync-backend/pkg/logger"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

type ctxKey int

const (
	configKey ctxKey = iota
	loggerKey
	dbKey
)

var rootCmd = &cobra.Command{
	Use:          "buildsync",
	Short:        "Multi-tenant construction management sync backend",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		ctx := context.WithValue(cmd.Context(), configKey, cfg)
		ctx = context.WithValue(ctx, loggerKey, logger.New(cfg))
		cmd.SetContext(ctx)
		return nil
	},
}

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func configFromContext(ctx context.Context) *config.Config {
	cfg, _ := ctx.Value(configKey).(*config.Config)
	return cfg
}

func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// openDatabase opens the configured database and stores it in the command
// context; closeDatabase releases it.
func openDatabase(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := configFromContext(ctx)
	l := loggerFromContext(ctx)
	l.Info("connecting to database", "driver", cfg.DatabaseDriver, "dsn", maskPassword(cfg.DataSource()))

	db, err := database.NewDatabase(ctx, database.DatabaseConfig{
		Driver:      cfg.DatabaseDriver,
		PostgresDSN: cfg.PostgresDSN,
		SQLitePath:  cfg.SQLitePath,
		Debug:       cfg.Debug,
	}, l)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	cmd.SetContext(context.WithValue(ctx, dbKey, db))
	return nil
}

func closeDatabase(cmd *cobra.Command, _ []string) error {
	if db, ok := cmd.Context().Value(dbKey).(database.DatabaseInterface); ok {
		if err := db.Close(); err != nil {
			return fmt.Errorf("close database: %w", err)
		}
	}
	return nil
}

func databaseFromContext(ctx context.Context) database.DatabaseInterface {
	db, _ := ctx.Value(dbKey).(database.DatabaseInterface)
	return db
}
