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

func newMigrateCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the table schema to the bot database",
		Long: `Apply the schema to the configured database. All statements are
IF NOT EXISTS, so re-running against an initialized database is a no-op.

The bot also migrates at startup; this command exists for preparing a
database ahead of a deploy or from CI.`,
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
			fmt.Fprintln(stdout, "migrations applied")
			return nil
		},
	}
}
