package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/fivetwenty-io/hscrm/internal/constants"
	"github.com/fivetwenty-io/hscrm/pkg/hscrm"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewEmailEventsCommand creates the email-events command group.
func NewEmailEventsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "email-events",
		Short: "Read marketing email events",
	}

	cmd.AddCommand(newEmailEventsListCommand())

	return cmd
}

func newEmailEventsListCommand() *cobra.Command {
	var (
		since     string
		startMS   int64
		batchSize int
		offset    string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every email event after a start time",
		Example: `  hscrm email-events list --since 2024-03-01T00:00:00Z
  hscrm email-events list --start-timestamp 1709251200000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := &hscrm.EmailEventOptions{
				StartTimestamp: startMS,
				BatchSize:      batchSize,
				Offset:         offset,
			}

			if since != "" {
				parsed, err := time.Parse(time.RFC3339Nano, since)
				if err != nil {
					return fmt.Errorf("invalid --since value: %w", err)
				}

				opts.StartTimestamp = hscrm.EpochMillis(&parsed)
			}

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			events, err := client.EmailEvents().ListAll(opts).All(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list email events: %w", err)
			}

			return renderOutput(events, renderEmailEvents)
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "only events after this RFC3339 time")
	cmd.Flags().Int64Var(&startMS, "start-timestamp", 0, "only events after this epoch-millisecond time")
	cmd.Flags().IntVar(&batchSize, "batch-size", constants.EmailEventBatchSize, "events per page")
	cmd.Flags().StringVar(&offset, "offset", "", "offset token to start from")

	return cmd
}

func renderEmailEvents(events []hscrm.EmailEvent) error {
	if len(events) == 0 {
		_, _ = os.Stdout.WriteString("No email events found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Type", "Recipient", "Created")

	for _, event := range events {
		created := NotAvailable
		if ms := event.Created(); ms > 0 {
			created = time.UnixMilli(ms).UTC().Format(time.RFC3339)
		}

		_ = table.Append(eventField(event, "type"), eventField(event, "recipient"), created)
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func eventField(event hscrm.EmailEvent, name string) string {
	value, ok := event[name].(string)
	if !ok || value == "" {
		return NotAvailable
	}

	return value
}
