/*
Package cmd provides the CLI commands for the email queue.
*/
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/emailqueue/pkg/config"
	"github.com/dmitrymomot/emailqueue/pkg/emailqueue"
	"github.com/dmitrymomot/emailqueue/pkg/logger"
)

var (
	verbose bool

	queueCfg emailqueue.Config
	log      *slog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "emailqueue",
	Short: "Durable email dispatch queue",
	Long: `Emailqueue drains a database-backed email queue through an external
mail transport with at-least-once delivery semantics.

It is designed to be invoked by a scheduler (cron, systemd timer); each
invocation claims a batch of due messages, sends them, and exits.

Example:
  emailqueue process             # Dispatch one batch of due messages
  emailqueue process --limit 10  # Cap the batch at 10 messages
  emailqueue migrate             # Apply schema migrations
  emailqueue list --status failed`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initRuntime)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")

	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(scheduledCmd)
}

func initRuntime() {
	config.MustLoad(&queueCfg)

	opts := []logger.Option{
		logger.WithEnvironment(queueCfg.Environment, "emailqueue"),
	}
	if verbose {
		opts = append(opts, logger.WithLevel(slog.LevelDebug))
	}
	log = logger.New(opts...)
	logger.SetAsDefault(log)
}
