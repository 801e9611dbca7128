package commands

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/hscrm/internal/constants"
	"github.com/fivetwenty-io/hscrm/pkg/hscrm"
	"github.com/spf13/cobra"
)

var (
	ticketColumns = []string{"subject", constants.PropertyTicketPipeline, "hs_pipeline_stage", "hs_ticket_priority"}
	emailColumns  = []string{"hs_email_subject", "hs_email_direction", "hs_email_status", constants.PropertyEmailTimestamp}
)

// archiver is implemented by every client that archives records.
type archiver interface {
	Archive(ctx context.Context, id string) error
}

// creator is implemented by the clients that create records from a bare
// property bag.
type creator interface {
	Create(ctx context.Context, properties hscrm.Properties) (*hscrm.Record, error)
}

// walker is implemented by every client that walks records.
type walker interface {
	ListAll(opts *hscrm.WalkOptions) *hscrm.Paginator[hscrm.Record]
}

// NewTicketsCommand creates the tickets command group.
func NewTicketsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tickets",
		Aliases: []string{"ticket"},
		Short:   "Manage tickets",
	}

	cmd.AddCommand(newCreateFromPropertiesCommand(hscrm.RecordTypeTicket, func(client hscrm.Client) creator {
		return client.Tickets()
	}))
	cmd.AddCommand(newArchiveCommand(hscrm.RecordTypeTicket, func(client hscrm.Client) archiver {
		return client.Tickets()
	}))
	cmd.AddCommand(newTicketsListAllCommand())

	return cmd
}

// NewEmailsCommand creates the emails command group.
func NewEmailsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "emails",
		Aliases: []string{"email"},
		Short:   "Manage email engagements",
	}

	cmd.AddCommand(newCreateFromPropertiesCommand(hscrm.RecordTypeEmail, func(client hscrm.Client) creator {
		return client.Emails()
	}))
	cmd.AddCommand(newArchiveCommand(hscrm.RecordTypeEmail, func(client hscrm.Client) archiver {
		return client.Emails()
	}))
	cmd.AddCommand(newListAllCommand(hscrm.RecordTypeEmail, emailColumns, func(client hscrm.Client) walker {
		return client.Emails()
	}))

	return cmd
}

func newCreateFromPropertiesCommand(recordType hscrm.RecordType, clientFor func(hscrm.Client) creator) *cobra.Command {
	var props []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: fmt.Sprintf("Create a %s", recordType),
		Example: fmt.Sprintf(`  hscrm %ss create --prop subject="Printer jam" --prop hs_pipeline=0 --prop hs_pipeline_stage=1`,
			recordType),
		RunE: func(cmd *cobra.Command, args []string) error {
			properties, err := parseProperties(props)
			if err != nil {
				return err
			}

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			record, err := clientFor(client).Create(cmd.Context(), properties)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", recordType, err)
			}

			return renderRecord(record)
		},
	}

	cmd.Flags().StringArrayVar(&props, "prop", nil, "property as key=value (repeatable)")

	return cmd
}

func newArchiveCommand(recordType hscrm.RecordType, clientFor func(hscrm.Client) archiver) *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"archive"},
		Short:   fmt.Sprintf("Archive a %s", recordType),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			err = clientFor(client).Archive(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to archive %s: %w", recordType, err)
			}

			return printSuccess("archived", string(recordType), args[0])
		},
	}
}

func newListAllCommand(recordType hscrm.RecordType, columns []string, clientFor func(hscrm.Client) walker) *cobra.Command {
	var flags walkFlags

	cmd := &cobra.Command{
		Use:   "list-all",
		Short: fmt.Sprintf("List every %s above a watermark", recordType),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			return streamRecords(cmd.Context(), clientFor(client).ListAll(opts), columnsFor(opts.Properties, columns))
		},
	}

	flags.bind(cmd)

	return cmd
}

func newTicketsListAllCommand() *cobra.Command {
	var (
		flags    walkFlags
		pipeline string
	)

	cmd := &cobra.Command{
		Use:     "list-all",
		Short:   "List every ticket above a watermark",
		Example: `  hscrm tickets list-all --ticket-pipeline 0 --since 2024-03-01T00:00:00Z`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}

			opts.PipelineID = pipeline

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			return streamRecords(cmd.Context(), client.Tickets().ListAll(opts), columnsFor(opts.Properties, ticketColumns))
		},
	}

	flags.bind(cmd)
	cmd.Flags().StringVar(&pipeline, "ticket-pipeline", "", "only tickets in this pipeline")

	return cmd
}
