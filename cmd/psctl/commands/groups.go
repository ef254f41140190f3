package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fivetwenty-io/psclient/internal/constants"
	"github.com/spf13/cobra"
)

// NewGroupsCommand creates the groups command group.
func NewGroupsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "groups",
		Aliases: []string{"group"},
		Short:   "Inspect groups",
		Long:    "Display PageSeeder group details",
	}

	cmd.AddCommand(newGroupsGetCommand())

	return cmd
}

func newGroupsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get [GROUP]",
		Short: "Get group details",
		Long:  "Display a group. Without an argument the profile's default group is used.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) > 0 {
				name = args[0]
			}

			name, err := resolveGroup(name)
			if err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd.Context(), constants.DefaultHTTPTimeout)
			defer cancel()

			client, err := newClient(ctx)
			if err != nil {
				return err
			}

			defer func() { _ = client.Close() }()

			group, err := client.Groups().Get(ctx, name)
			if err != nil {
				return fmt.Errorf("failed to get group: %w", err)
			}

			return render(cmd.OutOrStdout(), outputFormat(), group, func(w io.Writer) error {
				return renderProperties(w, [][]string{
					{"ID", strconv.FormatInt(group.ID, 10)},
					{"Name", group.Name},
					{"Short Name", group.ShortName()},
					{"Owner", orNA(group.Owner)},
					{"Access", orNA(string(group.Access))},
					{"Description", truncate(orNA(group.Description))},
				})
			})
		},
	}
}
