package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"menuapi/internal/menu/store"
	"menuapi/internal/platform/config"
	"menuapi/internal/platform/logger"
	"menuapi/internal/platform/postgres"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the tb_menu table if it does not exist",
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log)
	ctx := cmd.Context()

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.InfoContext(ctx, "menu schema applied")
	return nil
}
