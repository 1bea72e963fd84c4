package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/persistence"
)

var migrationsDir string

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply SQL migrations",
		Long:  `Run every .sql file in the migrations directory against POSTGRES_DSN. The scripts are idempotent.`,
		RunE:  runMigrate,
	}

	cmd.Flags().StringVarP(&migrationsDir, "dir", "d", persistence.DefaultMigrationsDir, "Directory holding the .sql files")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("POSTGRES_DSN is not set")
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := cmd.Context()
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	if err := persistence.RunMigrations(ctx, pg.Pool, migrationsDir, logger); err != nil {
		return err
	}
	logger.Info("schema up to date", zap.String("dir", migrationsDir))
	return nil
}
