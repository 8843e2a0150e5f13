package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/infrastructure/config"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/infrastructure/database"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/migrations"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the SQLite schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd.Context(), opts, func(ctx context.Context, db *database.DB) error {
				if err := db.Migrate(ctx, migrations.FS); err != nil {
					return fmt.Errorf("running migrations: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd.Context(), opts, func(ctx context.Context, db *database.DB) error {
				if err := db.MigrateDown(ctx, migrations.FS); err != nil {
					return fmt.Errorf("rolling back migration: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "latest migration rolled back")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List applied and pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd.Context(), opts, func(ctx context.Context, db *database.DB) error {
				return printMigrationStatus(ctx, cmd.OutOrStdout(), db)
			})
		},
	})

	return cmd
}

// withDatabase opens the configured database for the duration of fn.
func withDatabase(ctx context.Context, opts *rootOptions, fn func(context.Context, *database.DB) error) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	db, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(ctx, db)
}

func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*database.DB, error) {
	db, err := database.Open(ctx, database.ConfigFrom(cfg))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

func printMigrationStatus(ctx context.Context, w io.Writer, db *database.DB) error {
	applied, pending, err := db.MigrationStatus(ctx, migrations.FS)
	if err != nil {
		return fmt.Errorf("reading migration status: %w", err)
	}
	for _, r := range applied {
		fmt.Fprintf(w, "applied  %s  %s\n", r.Version, r.AppliedAt.Format("2006-01-02 15:04:05"))
	}
	for _, m := range pending {
		fmt.Fprintf(w, "pending  %s  %s\n", m.Version, m.Name)
	}
	if len(applied) == 0 && len(pending) == 0 {
		fmt.Fprintln(w, "no migrations")
	}
	return nil
}
