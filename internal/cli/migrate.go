package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"creed-trivia/internal/config"
	pgmigrations "creed-trivia/internal/infra/postgres/migrations"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	var rollback bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the score and pack tables in Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			if rollback {
				return rollbackMigrations(cmd.Context(), *configPath)
			}
			return runMigrations(cmd.Context(), *configPath)
		},
	}
	cmd.Flags().BoolVar(&rollback, "rollback", false, "roll back the last migration group")
	return cmd
}

func runMigrations(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	return runMigrationsWithConfig(ctx, cfg)
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config) error {
	return withMigrator(ctx, cfg, func(migrator *migrate.Migrator) error {
		group, err := migrator.Migrate(ctx)
		if err != nil {
			return err
		}
		if group.IsZero() {
			log.Printf("no new migrations")
			return nil
		}
		log.Printf("migrations applied: %s", group)
		return nil
	})
}

func rollbackMigrations(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	return withMigrator(ctx, cfg, func(migrator *migrate.Migrator) error {
		group, err := migrator.Rollback(ctx)
		if err != nil {
			return err
		}
		log.Printf("rolled back: %s", group)
		return nil
	})
}

func withMigrator(ctx context.Context, cfg config.Config, fn func(*migrate.Migrator) error) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return err
	}
	return fn(migrator)
}
