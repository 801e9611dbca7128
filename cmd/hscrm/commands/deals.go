package commands

import (
	"fmt"
	"os"

	"github.com/fivetwenty-io/hscrm/internal/constants"
	"github.com/fivetwenty-io/hscrm/pkg/hscrm"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var dealColumns = []string{
	constants.PropertyDealName,
	constants.PropertyDealStage,
	constants.PropertyDealPipeline,
	"amount",
}

// NewDealsCommand creates the deals command group.
func NewDealsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "deals",
		Aliases: []string{"deal"},
		Short:   "Manage deals",
		Long: `Find, create, update, archive and list deals in the configured pipeline.

Most deal commands need a pipeline id, set with --pipeline, HUBSPOT_PIPELINE_ID
or 'hscrm config set pipeline_id <id>'.`,
	}

	cmd.AddCommand(newDealsFindCommand())
	cmd.AddCommand(newDealsCreateCommand())
	cmd.AddCommand(newDealsUpdateCommand())
	cmd.AddCommand(newArchiveCommand(hscrm.RecordTypeDeal, func(client hscrm.Client) archiver {
		return client.Deals()
	}))
	cmd.AddCommand(newDealsListAllCommand())
	cmd.AddCommand(newRecordAssociationsCommand(hscrm.RecordTypeDeal))

	return cmd
}

func newDealsFindCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "find PROPERTY VALUE",
		Short: "Find deals in the configured pipeline by a property value",
		Args:  cobra.ExactArgs(constants.TwoArguments),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			records, err := client.Deals().Find(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to find deals: %w", err)
			}

			return renderRecords(records, dealColumns)
		},
	}
}

func newDealsCreateCommand() *cobra.Command {
	var (
		name, stage          string
		companyID, contactID string
		props                []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a deal",
		Long: `Create a deal in the configured pipeline. Without --stage the deal starts
in the pipeline's first stage. With --company-id or --contact-id the deal is
associated once it is visible to reads.`,
		Example: `  hscrm deals create --name "Renewal" --prop amount=1200 --company-id 201`,
		RunE: func(cmd *cobra.Command, args []string) error {
			properties, err := parseProperties(props)
			if err != nil {
				return err
			}

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			result, err := client.Workflows().CreateDeal(cmd.Context(), &hscrm.DealInput{
				Name:       name,
				Stage:      stage,
				CompanyID:  companyID,
				ContactID:  contactID,
				Properties: properties,
			})
			if err != nil {
				return fmt.Errorf("failed to create deal: %w", err)
			}

			return renderOutput(result, renderDealResult)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "deal name")
	cmd.Flags().StringVar(&stage, "stage", "", "deal stage id (default first stage of the pipeline)")
	cmd.Flags().StringVar(&companyID, "company-id", "", "company to associate the deal with")
	cmd.Flags().StringVar(&contactID, "contact-id", "", "contact to associate the deal with")
	cmd.Flags().StringArrayVar(&props, "prop", nil, "additional property as key=value (repeatable)")

	return cmd
}

func renderDealResult(result *hscrm.DealResult) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")
	_ = table.Append("Workflow", result.WorkflowID)
	_ = table.Append("State", string(result.State))
	_ = table.Append("Deal ID", result.Deal.ID)
	_ = table.Append("Stage", result.Deal.StringProperty(constants.PropertyDealStage))

	for _, association := range result.Associations {
		_ = table.Append("Associated", association.ToObjectTypeID+" "+association.ToObjectID.String())
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func newDealsUpdateCommand() *cobra.Command {
	var props []string

	cmd := &cobra.Command{
		Use:   "update DEAL_ID",
		Short: "Update deal properties",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			properties, err := parseProperties(props)
			if err != nil {
				return err
			}

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			record, err := client.Deals().Update(cmd.Context(), args[0], properties)
			if err != nil {
				return fmt.Errorf("failed to update deal: %w", err)
			}

			return renderRecord(record)
		},
	}

	cmd.Flags().StringArrayVar(&props, "prop", nil, "property as key=value (repeatable)")

	return cmd
}

func newDealsListAllCommand() *cobra.Command {
	var (
		flags   walkFlags
		history []string
	)

	cmd := &cobra.Command{
		Use:   "list-all",
		Short: "List every deal in the pipeline above a watermark",
		Long: `List every deal in the configured pipeline above a watermark. Deals are
searched for ids first and then read in batches, so --history can request
property history.`,
		Example: `  hscrm deals list-all --pipeline default --since 2024-03-01T00:00:00Z --history dealstage`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}

			opts.PropertiesWithHistory = history
			opts.PipelineID = viper.GetString("pipeline_id")

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			return streamRecords(cmd.Context(), client.Deals().ListAll(opts), columnsFor(opts.Properties, dealColumns))
		},
	}

	flags.bind(cmd)
	cmd.Flags().StringSliceVar(&history, "history", nil, "properties to return with history (repeatable)")

	return cmd
}
