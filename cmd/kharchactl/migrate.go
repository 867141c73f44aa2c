package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"kharcha/internal/backend"
	"kharcha/internal/storage/postgres"
	"kharcha/internal/storage/sqlite"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Create or update the schema of the configured SQL backend.

The server migrates on start as well; this command lets you do it ahead of
a deploy or against a database the server cannot reach yet.`,
		Args: cobra.NoArgs,
		RunE: runMigrate,
	}
}

func runMigrate(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()

	switch backend.BackendType(cfg.DataBackend) {
	case backend.SQLiteBackend:
		slog.Info("Running SQLite migrations", "path", cfg.SQLiteDBPath)
		repo, err := sqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		if err := repo.Close(); err != nil {
			return fmt.Errorf("close database: %w", err)
		}
	case backend.PostgresBackend:
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
		slog.Info("Running Postgres migrations")
		if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	case backend.MemoryBackend:
		slog.Info("The memory backend has no schema, nothing to migrate")
		return nil
	default:
		return fmt.Errorf("unknown backend %q", cfg.DataBackend)
	}

	slog.Info("Database migrations completed", "backend", cfg.DataBackend)
	return nil
}
