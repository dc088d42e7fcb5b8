package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/emailqueue/pkg/config"
	"github.com/dmitrymomot/emailqueue/pkg/pg"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply schema migrations",
	Long: `Migrate applies the queue's schema migrations to the configured
database. Migrations are embedded in the repository under the directory
named by PG_MIGRATIONS_PATH (default "migrations").`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var pgCfg pg.Config
		if err := config.Load(&pgCfg); err != nil {
			return err
		}

		pool, err := pg.Connect(ctx, pgCfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
			return err
		}

		fmt.Println("Migrations applied")
		return nil
	},
}
