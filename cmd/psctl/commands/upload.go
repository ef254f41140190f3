package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fivetwenty-io/psclient/internal/constants"
	"github.com/fivetwenty-io/psclient/pkg/pageseeder"
	"github.com/spf13/cobra"
)

// NewUploadCommand creates the upload command.
func NewUploadCommand() *cobra.Command {
	var (
		group    string
		folder   string
		filename string
	)

	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload a file to a group",
		Long:  "Upload a file to the loading zone of a group. Zip archives can then be unzipped with 'psctl loadingzone unzip'.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			group, err := resolveGroup(group)
			if err != nil {
				return err
			}

			// #nosec G304
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}

			defer func() { _ = file.Close() }()

			if filename == "" {
				filename = filepath.Base(args[0])
			}

			ctx, cancel := commandContext(cmd.Context(), constants.UploadHTTPTimeout)
			defer cancel()

			c, err := newClient(ctx)
			if err != nil {
				return err
			}

			defer func() { _ = c.Close() }()

			params := pageseeder.NewQueryParams()
			if folder != "" {
				params.WithFilter("folder", folder)
			}

			upload, err := c.Uploads().Upload(ctx, group, filename, file, params)
			if err != nil {
				return fmt.Errorf("failed to upload file: %w", err)
			}

			return render(cmd.OutOrStdout(), outputFormat(), upload, func(w io.Writer) error {
				rows := [][]string{
					{"Member", orNA(upload.Member)},
					{"Upload ID", orNA(upload.UploadID)},
					{"Status", orNA(upload.Status)},
				}

				if upload.File != nil {
					rows = append(rows, []string{"File", upload.File.Path})
				}

				if upload.URI != nil {
					rows = append(rows, []string{"URI", upload.URI.ID})
				}

				if upload.Message != "" {
					rows = append(rows, []string{"Message", truncate(upload.Message)})
				}

				return renderProperties(w, rows)
			})
		},
	}

	cmd.Flags().StringVarP(&group, "group", "g", "", "group name")
	cmd.Flags().StringVar(&folder, "folder", "", "loading zone folder")
	cmd.Flags().StringVar(&filename, "filename", "", "name to store the file under (default is the base name of FILE)")

	return cmd
}

// NewDownloadCommand creates the download command.
func NewDownloadCommand() *cobra.Command {
	var (
		group  string
		output string
	)

	cmd := &cobra.Command{
		Use:   "download FILENAME",
		Short: "Download a member resource",
		Long:  "Download a file such as an export archive from a group's member resources",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			group, err := resolveGroup(group)
			if err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd.Context(), constants.UploadHTTPTimeout)
			defer cancel()

			c, err := newClient(ctx)
			if err != nil {
				return err
			}

			defer func() { _ = c.Close() }()

			data, err := c.Uploads().Download(ctx, group, args[0])
			if err != nil {
				return fmt.Errorf("failed to download file: %w", err)
			}

			if output == "-" {
				_, err = cmd.OutOrStdout().Write(data)

				return err
			}

			if output == "" {
				output = filepath.Base(args[0])
			}

			err = os.WriteFile(output, data, constants.ConfigFilePerm)
			if err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", output, len(data))

			return nil
		},
	}

	cmd.Flags().StringVarP(&group, "group", "g", "", "group name")
	cmd.Flags().StringVarP(&output, "file", "f", "", "output file, - for standard output (default is FILENAME)")

	return cmd
}
