package commands

import (
	"fmt"
	"os"

	"github.com/fivetwenty-io/hscrm/internal/constants"
	"github.com/fivetwenty-io/hscrm/pkg/hscrm"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var contactColumns = []string{
	constants.PropertyContactEmail,
	constants.PropertyContactFirstName,
	constants.PropertyContactLastName,
	constants.PropertyContactCompany,
}

// NewContactsCommand creates the contacts command group.
func NewContactsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "contacts",
		Aliases: []string{"contact"},
		Short:   "Manage contacts",
		Long:    "Find, create, update, purge and list CRM contacts",
	}

	cmd.AddCommand(newContactsFindCommand())
	cmd.AddCommand(newContactsCreateCommand())
	cmd.AddCommand(newContactsUpdateCommand())
	cmd.AddCommand(newContactsDeleteCommand())
	cmd.AddCommand(newContactsListAllCommand())
	cmd.AddCommand(newRecordAssociationsCommand(hscrm.RecordTypeContact))

	return cmd
}

func newContactsFindCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "find PROPERTY VALUE",
		Short: "Find contacts by a property value",
		Example: `  hscrm contacts find email jane@example.com
  hscrm contacts find hs_object_id 101`,
		Args: cobra.ExactArgs(constants.TwoArguments),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			records, err := client.Contacts().Find(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to find contacts: %w", err)
			}

			return renderRecords(records, contactColumns)
		},
	}
}

func newContactsCreateCommand() *cobra.Command {
	var (
		email, firstName, lastName string
		company                    string
		props                      []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a contact",
		Long: `Create a contact. With --company the contact is linked to a company:
the platform's automatic association is awaited first and a company is only
created when none appears.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			properties, err := parseProperties(props)
			if err != nil {
				return err
			}

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			input := hscrm.ContactInput{
				Email:      email,
				FirstName:  firstName,
				LastName:   lastName,
				Properties: properties,
			}

			if company == "" {
				record, err := client.Contacts().Create(cmd.Context(), &input)
				if err != nil {
					return fmt.Errorf("failed to create contact: %w", err)
				}

				return renderRecord(record)
			}

			result, err := client.Workflows().CreateContactWithCompany(cmd.Context(), &hscrm.ContactWithCompanyInput{
				Contact:     input,
				CompanyName: company,
			})
			if err != nil {
				return fmt.Errorf("failed to create contact with company: %w", err)
			}

			return renderOutput(result, renderContactWithCompany)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "contact email")
	cmd.Flags().StringVar(&firstName, "first-name", "", "contact first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "contact last name")
	cmd.Flags().StringVar(&company, "company", "", "company name to link the contact to")
	cmd.Flags().StringArrayVar(&props, "prop", nil, "additional property as key=value (repeatable)")

	return cmd
}

func renderContactWithCompany(result *hscrm.ContactWithCompanyResult) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")
	_ = table.Append("Workflow", result.WorkflowID)
	_ = table.Append("State", string(result.State))
	_ = table.Append("Contact ID", result.Contact.ID)
	_ = table.Append("Company ID", formatConfigValue(result.CompanyID))

	if result.Company != nil {
		_ = table.Append("Company Name", result.Company.StringProperty(constants.PropertyCompanyName))
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func newContactsUpdateCommand() *cobra.Command {
	var props []string

	cmd := &cobra.Command{
		Use:   "update CONTACT_ID",
		Short: "Update contact properties",
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

			record, err := client.Contacts().Update(cmd.Context(), args[0], properties)
			if err != nil {
				return fmt.Errorf("failed to update contact: %w", err)
			}

			return renderRecord(record)
		},
	}

	cmd.Flags().StringArrayVar(&props, "prop", nil, "property as key=value (repeatable)")

	return cmd
}

func newContactsDeleteCommand() *cobra.Command {
	var idProperty string

	cmd := &cobra.Command{
		Use:   "delete VALUE",
		Short: "Permanently delete a contact",
		Long: `Permanently delete a contact under GDPR rules. VALUE is the contact id, or
the email address when --id-property email is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch idProperty {
			case "", constants.PropertyContactEmail:
			default:
				return fmt.Errorf("%w: %s", constants.ErrUnknownIDProperty, idProperty)
			}

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			err = client.Contacts().Purge(cmd.Context(), args[0], idProperty)
			if err != nil {
				return fmt.Errorf("failed to delete contact: %w", err)
			}

			return printSuccess("purged", string(hscrm.RecordTypeContact), args[0])
		},
	}

	cmd.Flags().StringVar(&idProperty, "id-property", "", "property VALUE refers to (email), default is the record id")

	return cmd
}

func newContactsListAllCommand() *cobra.Command {
	var flags walkFlags

	cmd := &cobra.Command{
		Use:   "list-all",
		Short: "List every contact above a watermark",
		Example: `  hscrm contacts list-all --since 2024-03-01T00:00:00Z
  hscrm contacts list-all --filter-name hs_object_id --filter-value 1000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			return streamRecords(cmd.Context(), client.Contacts().ListAll(opts), columnsFor(opts.Properties, contactColumns))
		},
	}

	flags.bind(cmd)

	return cmd
}
