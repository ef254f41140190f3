package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fivetwenty-io/psclient/internal/constants"
	"github.com/fivetwenty-io/psclient/pkg/pageseeder"
	"github.com/spf13/cobra"
)

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	var (
		member   string
		group    string
		wait     bool
		download string
		timeout  time.Duration
		xrefs    string
		forward  string
	)

	cmd := &cobra.Command{
		Use:   "export URI",
		Short: "Export a URI",
		Long: `Start an export of a URI. With --wait the command follows the export thread
until it finishes, and with --download it saves the resulting archive.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			member, err := resolveMember(member)
			if err != nil {
				return err
			}

			if download != "" {
				wait = true

				group, err = resolveGroup(group)
				if err != nil {
					return err
				}
			}

			ctx, cancel := commandContext(cmd.Context(), timeout)
			defer cancel()

			c, err := newClient(ctx)
			if err != nil {
				return err
			}

			defer func() { _ = c.Close() }()

			params := pageseeder.NewQueryParams()
			if xrefs != "" {
				params.WithFilter("xrefs", xrefs)
			}

			if forward != "" {
				params.WithFilter("forward", forward)
			}

			thread, err := c.URIs().Export(ctx, member, args[0], params)
			if err != nil {
				return fmt.Errorf("failed to start export: %w", err)
			}

			if wait {
				thread, err = waitForThread(ctx, c, thread.ID, constants.DefaultThreadPollInterval, cmd.ErrOrStderr())
				if err != nil {
					return err
				}
			}

			if download != "" && thread.Zip != "" {
				data, err := c.Uploads().Download(ctx, group, thread.Zip)
				if err != nil {
					return fmt.Errorf("failed to download export: %w", err)
				}

				target := download
				if info, statErr := os.Stat(download); statErr == nil && info.IsDir() {
					target = filepath.Join(download, filepath.Base(thread.Zip))
				}

				err = os.WriteFile(target, data, constants.ConfigFilePerm)
				if err != nil {
					return fmt.Errorf("failed to write export: %w", err)
				}

				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s\n", target)
			}

			return renderThread(cmd.OutOrStdout(), thread)
		},
	}

	cmd.Flags().StringVarP(&member, "member", "m", "", "member username or ID")
	cmd.Flags().StringVarP(&group, "group", "g", "", "group the export archive is stored in")
	cmd.Flags().BoolVar(&wait, "wait", false, "wait for the export to finish")
	cmd.Flags().StringVar(&download, "download", "", "save the export archive to this file or directory")
	cmd.Flags().DurationVar(&timeout, "timeout", constants.DefaultThreadWaitTimeout, "maximum time for the export")
	cmd.Flags().StringVar(&xrefs, "xrefs", "", "include cross-referenced documents (true or false)")
	cmd.Flags().StringVar(&forward, "forward", "", "forward depth of cross references")

	return cmd
}
