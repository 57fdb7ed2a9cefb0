package main

import (
	"github.com/spf13/cobra"

	"rosterid/internal/platform/logger"
	"rosterid/internal/platform/postgres"
	"rosterid/pkg/requestcontext"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the Postgres schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			db, err := openDatabase(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			return postgres.Migrate(cmd.Context(), db, log)
		},
	}
}

func newExpireCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "expire",
		Short: "Drop match candidates past their retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			a, err := buildApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.close()

			removed, err := a.reviews.ExpireStale(requestcontext.WithActor(cmd.Context(), expiryActor))
			if err != nil {
				return err
			}
			return writeJSON(cmd, map[string]int{"expired": removed})
		},
	}
}
