package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/hscrm/internal/constants"
	"github.com/fivetwenty-io/hscrm/pkg/hscrm"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

const fourArguments = 4

// NewAssociationsCommand creates the associations command group.
func NewAssociationsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "associations",
		Aliases: []string{"assoc"},
		Short:   "List and create associations between records",
		Long: `List and create associations between records. Record types are contact,
company, deal, ticket and email.`,
	}

	cmd.AddCommand(newAssociationsListCommand())
	cmd.AddCommand(newAssociationsCreateCommand())

	return cmd
}

func newAssociationsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list FROM_TYPE FROM_ID TO_TYPE",
		Short:   "List the associations of a record",
		Example: `  hscrm associations list contact 101 company`,
		Args:    cobra.ExactArgs(constants.ThreeArguments),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := parseRecordTypes(args[0], args[2])
			if err != nil {
				return err
			}

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			associations, err := client.Associations().List(cmd.Context(), from, args[1], to)
			if err != nil {
				return fmt.Errorf("failed to list associations: %w", err)
			}

			return renderOutput(associations, renderAssociations)
		},
	}
}

func newAssociationsCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "create FROM_TYPE FROM_ID TO_TYPE TO_ID",
		Short:   "Associate two records with the default association type",
		Example: `  hscrm associations create deal 301 company 201`,
		Args:    cobra.ExactArgs(fourArguments),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := parseRecordTypes(args[0], args[2])
			if err != nil {
				return err
			}

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			result, err := client.Associations().Create(cmd.Context(), from, args[1], to, args[3])
			if err != nil {
				return fmt.Errorf("failed to create association: %w", err)
			}

			return renderOutput(result, func(result *hscrm.AssociationCreateResult) error {
				_, _ = fmt.Fprintf(os.Stdout, "Associated %s %s with %s %s\n",
					from, result.FromObjectID, to, result.ToObjectID)

				return nil
			})
		},
	}
}

// newRecordAssociationsCommand lists associations from a fixed record type.
func newRecordAssociationsCommand(from hscrm.RecordType) *cobra.Command {
	return &cobra.Command{
		Use:   "associations ID TO_TYPE",
		Short: fmt.Sprintf("List the records a %s is associated with", from),
		Args:  cobra.ExactArgs(constants.TwoArguments),
		RunE: func(cmd *cobra.Command, args []string) error {
			to, err := hscrm.ParseRecordType(args[1])
			if err != nil {
				return err
			}

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			associations, err := client.Associations().List(cmd.Context(), from, args[0], to)
			if err != nil {
				return fmt.Errorf("failed to list associations: %w", err)
			}

			return renderOutput(associations, renderAssociations)
		},
	}
}

func parseRecordTypes(fromName, toName string) (hscrm.RecordType, hscrm.RecordType, error) {
	from, err := hscrm.ParseRecordType(fromName)
	if err != nil {
		return "", "", err
	}

	to, err := hscrm.ParseRecordType(toName)
	if err != nil {
		return "", "", err
	}

	return from, to, nil
}

func renderAssociations(associations []hscrm.Association) error {
	if len(associations) == 0 {
		_, _ = os.Stdout.WriteString("No associations found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("To ID", "Types")

	for _, association := range associations {
		types := make([]string, 0, len(association.Types))
		for _, associationType := range association.Types {
			label := strconv.Itoa(associationType.TypeID)
			if associationType.Label != "" {
				label += " (" + associationType.Label + ")"
			}

			types = append(types, label)
		}

		_ = table.Append(association.ToObjectID.String(), strings.Join(types, ", "))
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}
