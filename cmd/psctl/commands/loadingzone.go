package commands

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fivetwenty-io/psclient/internal/constants"
	"github.com/fivetwenty-io/psclient/pkg/pageseeder"
	"github.com/spf13/cobra"
)

// NewLoadingZoneCommand creates the loadingzone command group.
func NewLoadingZoneCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "loadingzone",
		Aliases: []string{"lz"},
		Short:   "Manage the loading zone",
		Long:    "Clear, unzip and load the files a member uploaded to a group's loading zone",
	}

	cmd.AddCommand(newLoadingZoneClearCommand())
	cmd.AddCommand(newLoadingZoneUnzipCommand())
	cmd.AddCommand(newLoadingZoneStartCommand())

	return cmd
}

func newLoadingZoneClearCommand() *cobra.Command {
	var flags memberGroupFlags

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every file from the loading zone",
		RunE: func(cmd *cobra.Command, args []string) error {
			member, group, err := flags.resolve()
			if err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd.Context(), constants.DefaultHTTPTimeout)
			defer cancel()

			c, err := newClient(ctx)
			if err != nil {
				return err
			}

			defer func() { _ = c.Close() }()

			result, err := c.LoadingZone().Clear(ctx, member, group)
			if err != nil {
				return fmt.Errorf("failed to clear loading zone: %w", err)
			}

			return render(cmd.OutOrStdout(), outputFormat(), result, func(w io.Writer) error {
				return renderProperties(w, [][]string{
					{"Member", orNA(result.Member)},
					{"Group", orNA(result.Group)},
					{"Files", strconv.Itoa(result.Files)},
					{"Message", truncate(orNA(result.Message))},
				})
			})
		},
	}

	flags.register(cmd)

	return cmd
}

func newLoadingZoneUnzipCommand() *cobra.Command {
	var (
		flags   memberGroupFlags
		wait    bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "unzip PATH",
		Short: "Unzip an archive in the loading zone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			member, group, err := flags.resolve()
			if err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd.Context(), timeout)
			defer cancel()

			c, err := newClient(ctx)
			if err != nil {
				return err
			}

			defer func() { _ = c.Close() }()

			result, err := c.LoadingZone().Unzip(ctx, member, group, args[0], nil)
			if err != nil {
				return fmt.Errorf("failed to unzip: %w", err)
			}

			return finishLoadingThread(ctx, cmd, c, &result.Thread, wait)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&wait, "wait", false, "wait for the unzip thread to finish")
	cmd.Flags().DurationVar(&timeout, "timeout", constants.DefaultThreadWaitTimeout, "maximum time to wait")

	return cmd
}

func newLoadingZoneStartCommand() *cobra.Command {
	var (
		flags     memberGroupFlags
		wait      bool
		timeout   time.Duration
		overwrite bool
		folder    string
	)

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Load the loading zone into the group",
		RunE: func(cmd *cobra.Command, args []string) error {
			member, group, err := flags.resolve()
			if err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd.Context(), timeout)
			defer cancel()

			c, err := newClient(ctx)
			if err != nil {
				return err
			}

			defer func() { _ = c.Close() }()

			params := pageseeder.NewQueryParams()
			if overwrite {
				params.WithFilter("overwrite", "true")
			}

			if folder != "" {
				params.WithFilter("folder", folder)
			}

			result, err := c.LoadingZone().Start(ctx, member, group, params)
			if err != nil {
				return fmt.Errorf("failed to start loading: %w", err)
			}

			return finishLoadingThread(ctx, cmd, c, &result.Thread, wait)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&wait, "wait", false, "wait for the load thread to finish")
	cmd.Flags().DurationVar(&timeout, "timeout", constants.DefaultThreadWaitTimeout, "maximum time to wait")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "overwrite existing documents")
	cmd.Flags().StringVar(&folder, "folder", "", "loading zone folder to load")

	return cmd
}
