// botctl is the operator CLI: database bootstrap, schema migration and seed
// data. It runs without BOT_TOKEN, so it can prepare a cluster before the bot
// is deployed.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "botctl: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "botctl",
		Short:         "Operator tooling for the match bot database",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().String("config", "config.yaml", "path to YAML config file")
	root.AddCommand(
		newBootstrapCmd(stdout, stderr),
		newMigrateCmd(stdout, stderr),
		newSeedCmd(stdout, stderr),
	)
	return root
}
