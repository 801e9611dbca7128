package commands

import (
	"fmt"

	"github.com/fivetwenty-io/hscrm/internal/constants"
	"github.com/fivetwenty-io/hscrm/pkg/hscrm"
	"github.com/spf13/cobra"
)

var companyColumns = []string{
	constants.PropertyCompanyName,
	constants.PropertyCompanyDomain,
}

// NewCompaniesCommand creates the companies command group.
func NewCompaniesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "companies",
		Aliases: []string{"company"},
		Short:   "Manage companies",
		Long:    "Find, create, update, archive and list CRM companies",
	}

	cmd.AddCommand(newCompaniesFindCommand())
	cmd.AddCommand(newCompaniesCreateCommand())
	cmd.AddCommand(newCompaniesUpdateCommand())
	cmd.AddCommand(newArchiveCommand(hscrm.RecordTypeCompany, func(client hscrm.Client) archiver {
		return client.Companies()
	}))
	cmd.AddCommand(newCompaniesListAllCommand())
	cmd.AddCommand(newRecordAssociationsCommand(hscrm.RecordTypeCompany))

	return cmd
}

func newCompaniesFindCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "find PROPERTY VALUE",
		Short:   "Find companies by a property value",
		Example: `  hscrm companies find domain example.com`,
		Args:    cobra.ExactArgs(constants.TwoArguments),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			records, err := client.Companies().Find(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to find companies: %w", err)
			}

			return renderRecords(records, companyColumns)
		},
	}
}

func newCompaniesCreateCommand() *cobra.Command {
	var (
		name, domain string
		props        []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a company",
		RunE: func(cmd *cobra.Command, args []string) error {
			properties, err := parseProperties(props)
			if err != nil {
				return err
			}

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			record, err := client.Companies().Create(cmd.Context(), &hscrm.CompanyInput{
				Name:       name,
				Domain:     domain,
				Properties: properties,
			})
			if err != nil {
				return fmt.Errorf("failed to create company: %w", err)
			}

			return renderRecord(record)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "company name")
	cmd.Flags().StringVar(&domain, "domain", "", "company domain")
	cmd.Flags().StringArrayVar(&props, "prop", nil, "additional property as key=value (repeatable)")

	return cmd
}

func newCompaniesUpdateCommand() *cobra.Command {
	var props []string

	cmd := &cobra.Command{
		Use:   "update COMPANY_ID",
		Short: "Update company properties",
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

			record, err := client.Companies().Update(cmd.Context(), args[0], properties)
			if err != nil {
				return fmt.Errorf("failed to update company: %w", err)
			}

			return renderRecord(record)
		},
	}

	cmd.Flags().StringArrayVar(&props, "prop", nil, "property as key=value (repeatable)")

	return cmd
}

func newCompaniesListAllCommand() *cobra.Command {
	var flags walkFlags

	cmd := &cobra.Command{
		Use:   "list-all",
		Short: "List every company above a watermark",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			return streamRecords(cmd.Context(), client.Companies().ListAll(opts), columnsFor(opts.Properties, companyColumns))
		},
	}

	flags.bind(cmd)

	return cmd
}
