package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/emailqueue/pkg/config"
	"github.com/dmitrymomot/emailqueue/pkg/contact"
	"github.com/dmitrymomot/emailqueue/pkg/emailqueue"
	"github.com/dmitrymomot/emailqueue/pkg/pg"
)

var (
	listStatus string
	listLimit  int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List messages by status",
	Long: `List prints queue entries in the given lifecycle status, most
useful for inspecting failed messages after an incident.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		status := emailqueue.Status(listStatus)
		if !status.Valid() {
			return fmt.Errorf("unknown status %q: must be queued, in-progress, sent, or failed", listStatus)
		}

		return withStorage(cmd, func(storage *emailqueue.PostgresStorage) error {
			msgs, err := storage.FindByStatus(cmd.Context(), status, listLimit)
			if err != nil {
				return err
			}
			printMessages(msgs)
			return nil
		})
	},
}

var scheduledCmd = &cobra.Command{
	Use:   "scheduled",
	Short: "List queued messages scheduled for later",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStorage(cmd, func(storage *emailqueue.PostgresStorage) error {
			msgs, err := storage.FindScheduled(cmd.Context(), listLimit)
			if err != nil {
				return err
			}
			printMessages(msgs)
			return nil
		})
	},
}

func init() {
	listCmd.Flags().StringVar(&listStatus, "status", string(emailqueue.StatusQueued), "lifecycle status to list")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "maximum number of messages to print (0 = no limit)")
	scheduledCmd.Flags().IntVar(&listLimit, "limit", 0, "maximum number of messages to print (0 = no limit)")
}

// withStorage connects to the database, hands a storage to fn, and tears the
// pool down afterwards.
func withStorage(cmd *cobra.Command, fn func(*emailqueue.PostgresStorage) error) error {
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

	storage, err := emailqueue.NewPostgresStorage(pool)
	if err != nil {
		return err
	}
	return fn(storage)
}

func printMessages(msgs []emailqueue.Message) {
	if len(msgs) == 0 {
		fmt.Println("No messages")
		return
	}
	for _, msg := range msgs {
		to := "-"
		if addrs := contact.Addresses(msg.To); len(addrs) > 0 {
			to = addrs[0]
			if len(addrs) > 1 {
				to = fmt.Sprintf("%s (+%d)", to, len(addrs)-1)
			}
		}
		fmt.Printf("%s  %-11s  %-40s  to=%s  scheduled=%s\n",
			msg.ID, msg.Status, msg.TemplateClass, to,
			msg.SendingSchedule.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("%d message(s)\n", len(msgs))
}
