package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"telegram-match-bot/internal/config"
	"telegram-match-bot/internal/infra/db/bootstrap"
	"telegram-match-bot/internal/infra/logging"
)

func newBootstrapCmd(stdout, stderr io.Writer) *cobra.Command {
	var defaultPrivileges bool

	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Create the bot role, database and privileges",
		Long: `Create the login role and database if they do not exist, then grant the
role full privileges on the public schema. Safe to re-run: existing objects
are left untouched and grants are refreshed.

Connects to the maintenance database using bootstrap.admin_url (or the
regular credentials against the "postgres" database). BOT_TOKEN is not
required.

Examples:
  botctl bootstrap
  botctl bootstrap --default-privileges`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := logging.New(cfg.Log, true)

			opts := bootstrap.Options{
				Role:              cfg.Bootstrap.Role,
				Password:          cfg.Bootstrap.RolePassword,
				Database:          cfg.Bootstrap.Database,
				DefaultPrivileges: defaultPrivileges || cfg.Bootstrap.DefaultPrivileges,
			}
			if err := bootstrap.Run(cmd.Context(), cfg.AdminDSN(), opts, logger); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "bootstrap complete: role %q, database %q\n", opts.Role, opts.Database)
			return nil
		},
	}
	cmd.Flags().BoolVar(&defaultPrivileges, "default-privileges", false,
		"also grant privileges on objects created after bootstrap")
	return cmd
}

// loadConfig resolves the --config flag, shared by all subcommands.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadConfig(path, false)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}
