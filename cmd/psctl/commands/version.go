package commands

import (
	"io"

	"github.com/spf13/cobra"
)

// cliVersion is sent in the User-Agent header.
var cliVersion = "dev"

// VersionInfo is the build information of psctl.
type VersionInfo struct {
	Version string `json:"version" xml:"version" yaml:"version"`
	Commit  string `json:"commit"  xml:"commit"  yaml:"commit"`
	Built   string `json:"built"   xml:"built"   yaml:"built"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(version, commit, date string) *cobra.Command {
	cliVersion = version

	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long:  "Display detailed version information about psctl",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := VersionInfo{Version: version, Commit: commit, Built: date}

			return render(cmd.OutOrStdout(), outputFormat(), info, func(w io.Writer) error {
				return renderProperties(w, [][]string{
					{"Version", version},
					{"Commit", commit},
					{"Built", date},
				})
			})
		},
	}
}
