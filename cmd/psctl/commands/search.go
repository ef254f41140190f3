package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fivetwenty-io/psclient/internal/constants"
	"github.com/fivetwenty-io/psclient/pkg/pageseeder"
	"github.com/spf13/cobra"
)

// ErrInvalidFilter is returned for a --filter value without '='.
var ErrInvalidFilter = errors.New("filter must be in the form key=value")

var defaultSearchFields = []string{"psid", "pstitle", "psmediatype"}

// NewSearchCommand creates the search command.
func NewSearchCommand() *cobra.Command {
	var (
		group    string
		page     int
		pageSize int
		all      bool
		filters  []string
		fields   []string
	)

	cmd := &cobra.Command{
		Use:   "search [QUESTION]",
		Short: "Search a group",
		Long: `Search the documents of a group. Without --page and with --all every page
of results is fetched.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			group, err := resolveGroup(group)
			if err != nil {
				return err
			}

			params, err := searchParams(args, page, pageSize, filters)
			if err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd.Context(), constants.DefaultThreadWaitTimeout)
			defer cancel()

			c, err := newClient(ctx)
			if err != nil {
				return err
			}

			defer func() { _ = c.Close() }()

			var results []pageseeder.SearchResult

			total := 0

			if all {
				results, err = c.Search().Iterator(ctx, group, params).All()
				if err != nil {
					return fmt.Errorf("failed to search: %w", err)
				}

				total = len(results)
			} else {
				result, err := c.Search().Search(ctx, group, params)
				if err != nil {
					return fmt.Errorf("failed to search: %w", err)
				}

				results = result.Results
				total = result.TotalResults
			}

			return render(cmd.OutOrStdout(), outputFormat(), results, func(w io.Writer) error {
				return renderSearchResults(w, results, fields, total)
			})
		},
	}

	cmd.Flags().StringVarP(&group, "group", "g", "", "group name")
	cmd.Flags().IntVar(&page, "page", 0, "page to fetch")
	cmd.Flags().IntVar(&pageSize, "page-size", constants.DefaultPageSize, "results per page")
	cmd.Flags().BoolVar(&all, "all", false, "fetch all pages")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "search parameter as key=value, repeatable")
	cmd.Flags().StringSliceVar(&fields, "fields", defaultSearchFields, "result fields to display")

	return cmd
}

func searchParams(args []string, page, pageSize int, filters []string) (*pageseeder.QueryParams, error) {
	params := pageseeder.NewQueryParams()

	if len(args) > 0 && args[0] != "" {
		params.WithFilter("question", args[0])
	}

	if page > 0 {
		params.WithPage(page)
	}

	if pageSize > 0 {
		params.WithPageSize(pageSize)
	}

	for _, filter := range filters {
		key, value, ok := strings.Cut(filter, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidFilter, filter)
		}

		params.WithFilter(strings.TrimSpace(key), value)
	}

	return params, nil
}

func renderSearchResults(w io.Writer, results []pageseeder.SearchResult, fields []string, total int) error {
	if len(results) == 0 {
		_, _ = io.WriteString(w, "No results found\n")

		return nil
	}

	rows := make([][]string, 0, len(results))

	for i := range results {
		row := make([]string, len(fields))
		for j, name := range fields {
			value, _ := results[i].Field(name)
			row[j] = truncate(orNA(value))
		}

		rows = append(rows, row)
	}

	err := renderRows(w, fields, rows)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "%d of %d results\n", len(results), total)

	return nil
}
