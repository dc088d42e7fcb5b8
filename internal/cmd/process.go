package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/emailqueue/pkg/config"
	"github.com/dmitrymomot/emailqueue/pkg/emailqueue"
	"github.com/dmitrymomot/emailqueue/pkg/mailer"
	"github.com/dmitrymomot/emailqueue/pkg/pg"
)

var processLimit int

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Dispatch one batch of due messages",
	Long: `Process selects queued messages whose sending schedule has passed,
claims them, and sends each through the configured transport.

Individual send failures are recorded per message and never fail the
run; the command exits non-zero only for run-level faults such as an
unreachable database or a web invocation context.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := guardInvocationContext(); err != nil {
			return err
		}

		ctx := cmd.Context()

		cfg := queueCfg
		if processLimit > 0 {
			cfg.MaxBatchSize = processLimit
		}

		var pgCfg pg.Config
		if err := config.Load(&pgCfg); err != nil {
			return err
		}

		pool, err := pg.Connect(ctx, pgCfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		storage, err := emailqueue.NewPostgresStorage(pool)
		if err != nil {
			return err
		}

		transport, err := buildTransport()
		if err != nil {
			return err
		}

		dispatcher, err := emailqueue.NewDispatcher(storage, transport, cfg,
			emailqueue.WithLogger(log))
		if err != nil {
			return err
		}

		report, err := dispatcher.Run(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Selected %d message(s), claimed %d (%d lost to concurrent runs)\n",
			report.Selected, report.Claimed, report.ClaimLost)
		fmt.Printf("Sent %d, failed %d, %d scheduled for later\n",
			report.Sent, report.Failed, report.ScheduledLater)
		return nil
	},
}

func init() {
	processCmd.Flags().IntVar(&processLimit, "limit", 0, "cap the batch size for this run (0 uses QUEUE_MAX_BATCH_SIZE)")
}

// guardInvocationContext rejects runs started from a web server environment.
// The dispatcher must only run under a scheduler; CGI-style variables are the
// telltale of a request-scoped invocation.
func guardInvocationContext() error {
	if os.Getenv("GATEWAY_INTERFACE") != "" || os.Getenv("REQUEST_METHOD") != "" {
		return emailqueue.ErrWrongInvocationContext
	}
	return nil
}

// buildTransport picks the mail transport from configuration: Postmark when
// tokens are present, otherwise the file-writing development transport.
func buildTransport() (mailer.Transport, error) {
	var cfg mailer.Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}

	if cfg.PostmarkServerToken != "" {
		return mailer.NewPostmarkTransport(cfg)
	}
	return mailer.NewDevTransport(cfg.DevOutputDir), nil
}
