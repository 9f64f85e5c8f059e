package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"telegram-match-bot/internal/infra/db/bootstrap"
	pg "telegram-match-bot/internal/infra/db/postgres"
	"telegram-match-bot/internal/infra/logging"
)

func newSeedCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert demo players with stat history",
		Long: `Insert a handful of demo players with one stat line each, giving a fresh
environment something to balance against. Players already present (by
telegram_id) are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := logging.New(cfg.Log, true)

			pool, err := pg.ConnectWithRetry(cmd.Context(), cfg.Database.DSN(), cfg.Database.MaxConns, 5, 2*time.Second)
			if err != nil {
				return fmt.Errorf("connecting: %w", err)
			}
			defer pool.Close()

			if err := bootstrap.Migrate(cmd.Context(), pool, logger); err != nil {
				return err
			}
			if err := bootstrap.Seed(cmd.Context(), pool, logger); err != nil {
				return err
			}
			fmt.Fprintln(stdout, "seed complete")
			return nil
		},
	}
}
