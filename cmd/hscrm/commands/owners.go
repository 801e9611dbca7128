package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fivetwenty-io/hscrm/internal/constants"
	"github.com/fivetwenty-io/hscrm/pkg/hscrm"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewOwnersCommand creates the owners command group.
func NewOwnersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "owners",
		Aliases: []string{"owner"},
		Short:   "Look up record owners",
	}

	cmd.AddCommand(newOwnersFindCommand())
	cmd.AddCommand(newOwnersListCommand())

	return cmd
}

func newOwnersFindCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "find (id|email) VALUE",
		Short: "Find an owner by id or email",
		Example: `  hscrm owners find id 42
  hscrm owners find email sales@example.com`,
		Args: cobra.ExactArgs(constants.TwoArguments),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			owner, err := client.Owners().Find(cmd.Context(), hscrm.OwnerLookupKey(args[0]), args[1])
			if err != nil {
				return fmt.Errorf("failed to find owner: %w", err)
			}

			if owner == nil {
				_, _ = fmt.Fprintf(os.Stdout, "No owner found with %s %s\n", args[0], args[1])

				return nil
			}

			return renderOwners([]hscrm.Owner{*owner})
		},
	}
}

func newOwnersListCommand() *cobra.Command {
	var pageSize int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all owners",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			owners, err := client.Owners().List(pageSize).All(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list owners: %w", err)
			}

			return renderOwners(owners)
		},
	}

	cmd.Flags().IntVar(&pageSize, "page-size", constants.DefaultOwnersPageSize, "owners per page")

	return cmd
}

func renderOwners(owners []hscrm.Owner) error {
	return renderOutput(owners, func(owners []hscrm.Owner) error {
		if len(owners) == 0 {
			_, _ = os.Stdout.WriteString("No owners found\n")

			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.Header("ID", "Email", "First Name", "Last Name", "User ID", "Archived")

		for _, owner := range owners {
			_ = table.Append(owner.ID, owner.Email, owner.FirstName, owner.LastName,
				strconv.Itoa(owner.UserID), strconv.FormatBool(owner.Archived))
		}

		err := table.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	})
}
