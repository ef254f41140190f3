package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/psclient/internal/constants"
	"github.com/fivetwenty-io/psclient/pkg/pageseeder"
	"github.com/spf13/cobra"
)

// NewURIsCommand creates the uris command group.
func NewURIsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "uris",
		Aliases: []string{"uri"},
		Short:   "Inspect URIs",
		Long:    "Display URI metadata and history, and create versions",
	}

	cmd.AddCommand(newURIsGetCommand())
	cmd.AddCommand(newURIsHistoryCommand())
	cmd.AddCommand(newURIsGroupHistoryCommand())
	cmd.AddCommand(newURIsVersionCommand())

	return cmd
}

func newURIsGetCommand() *cobra.Command {
	var member string

	cmd := &cobra.Command{
		Use:   "get URI",
		Short: "Get URI metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			member, err := resolveMember(member)
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

			uri, err := client.URIs().Get(ctx, member, args[0])
			if err != nil {
				return fmt.Errorf("failed to get URI: %w", err)
			}

			return render(cmd.OutOrStdout(), outputFormat(), uri, func(w io.Writer) error {
				return renderProperties(w, uriRows(uri))
			})
		},
	}

	cmd.Flags().StringVarP(&member, "member", "m", "", "member username or ID")

	return cmd
}

func newURIsHistoryCommand() *cobra.Command {
	var group string

	cmd := &cobra.Command{
		Use:   "history URI",
		Short: "Show the history of a URI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			group, err := resolveGroup(group)
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

			history, err := client.URIs().History(ctx, group, args[0])
			if err != nil {
				return fmt.Errorf("failed to get URI history: %w", err)
			}

			return renderHistory(cmd.OutOrStdout(), history)
		},
	}

	cmd.Flags().StringVarP(&group, "group", "g", "", "group name")

	return cmd
}

func newURIsGroupHistoryCommand() *cobra.Command {
	var (
		group  string
		events []string
	)

	cmd := &cobra.Command{
		Use:   "group-history",
		Short: "Show the history of every URI in a group",
		Long:  "Show URI events in a group, optionally restricted to event types such as creation or modification",
		RunE: func(cmd *cobra.Command, args []string) error {
			group, err := resolveGroup(group)
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

			types := make([]pageseeder.EventType, 0, len(events))
			for _, e := range events {
				types = append(types, pageseeder.EventType(strings.TrimSpace(e)))
			}

			history, err := client.URIs().GroupHistory(ctx, group, types, nil)
			if err != nil {
				return fmt.Errorf("failed to get group history: %w", err)
			}

			return renderHistory(cmd.OutOrStdout(), history)
		},
	}

	cmd.Flags().StringVarP(&group, "group", "g", "", "group name")
	cmd.Flags().StringSliceVar(&events, "events", nil, "event types to include")

	return cmd
}

func newURIsVersionCommand() *cobra.Command {
	var (
		member      string
		group       string
		description string
	)

	cmd := &cobra.Command{
		Use:   "version URI NAME",
		Short: "Create a named version of a URI",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			member, err := resolveMember(member)
			if err != nil {
				return err
			}

			group, err := resolveGroup(group)
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

			params := pageseeder.NewQueryParams()
			if description != "" {
				params.WithFilter("description", description)
			}

			version, err := client.URIs().CreateVersion(ctx, member, group, args[0], args[1], params)
			if err != nil {
				return fmt.Errorf("failed to create version: %w", err)
			}

			return render(cmd.OutOrStdout(), outputFormat(), version, func(w io.Writer) error {
				return renderProperties(w, [][]string{
					{"ID", version.ID},
					{"Name", version.Name},
					{"Created", formatTime(version.Created)},
					{"Description", truncate(orNA(version.Description))},
				})
			})
		},
	}

	cmd.Flags().StringVarP(&member, "member", "m", "", "member username or ID")
	cmd.Flags().StringVarP(&group, "group", "g", "", "group name")
	cmd.Flags().StringVar(&description, "description", "", "version description")

	return cmd
}

func uriRows(uri *pageseeder.URI) [][]string {
	return [][]string{
		{"ID", uri.ID},
		{"Title", orNA(uri.Title)},
		{"Path", orNA(uri.DecodedPath)},
		{"Host", orNA(uri.Host)},
		{"Doc ID", orNA(uri.DocID)},
		{"Media Type", orNA(uri.MediaType)},
		{"Document Type", orNA(uri.DocumentType)},
		{"Folder", strconv.FormatBool(uri.Folder)},
		{"External", strconv.FormatBool(uri.External)},
		{"Created", formatTime(uri.Created)},
		{"Modified", formatTime(uri.Modified)},
	}
}

func renderHistory(w io.Writer, history *pageseeder.URIHistory) error {
	return render(w, outputFormat(), history, func(w io.Writer) error {
		if len(history.Events) == 0 {
			_, _ = io.WriteString(w, "No events found\n")

			return nil
		}

		rows := make([][]string, 0, len(history.Events))

		for _, event := range history.Events {
			author := constants.NotAvailable
			if event.Author != nil {
				author = strings.TrimSpace(event.Author.FirstName + " " + event.Author.Surname)
			}

			uriID := event.URIID
			if uriID == "" && event.URI != nil {
				uriID = event.URI.ID
			}

			rows = append(rows, []string{
				event.ID,
				formatTime(event.DateTime),
				string(event.Type),
				orNA(uriID),
				truncate(orNA(event.Title)),
				orNA(author),
			})
		}

		return renderRows(w, []string{"ID", "Date", "Type", "URI", "Title", "Author"}, rows)
	})
}
