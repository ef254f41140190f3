package commands

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/fivetwenty-io/psclient/internal/constants"
	"github.com/fivetwenty-io/psclient/pkg/psml"
	"github.com/spf13/cobra"
)

// ViolationReport is a PSML violation found in a file.
type ViolationReport struct {
	File    string `json:"file"           xml:"file,attr"           yaml:"file"`
	Path    string `json:"path"           xml:"path,attr"           yaml:"path"`
	Attr    string `json:"attr,omitempty" xml:"attr,attr,omitempty" yaml:"attr,omitempty"`
	Message string `json:"message"        xml:",chardata"           yaml:"message"`
}

// ValidationReport is the result of validating one or more files.
type ValidationReport struct {
	XMLName    xml.Name          `json:"-"          xml:"validation" yaml:"-"`
	Files      int               `json:"files"      xml:"files,attr" yaml:"files"`
	Violations []ViolationReport `json:"violations" xml:"violation"  yaml:"violations"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE...",
		Short: "Validate PSML files",
		Long: `Check PSML documents or fragments against PSML attribute rules without
contacting a server. Use - to read standard input.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report := ValidationReport{Files: len(args), Violations: []ViolationReport{}}

			for _, path := range args {
				violations, err := validateFile(cmd, path)
				if err != nil {
					return err
				}

				for _, v := range violations {
					report.Violations = append(report.Violations, ViolationReport{
						File:    path,
						Path:    v.Path,
						Attr:    v.Attr,
						Message: v.Message,
					})
				}
			}

			err := render(cmd.OutOrStdout(), outputFormat(), report, func(w io.Writer) error {
				return renderReport(w, report)
			})
			if err != nil {
				return err
			}

			if len(report.Violations) > 0 {
				return fmt.Errorf("%w: %d violations", constants.ErrDocumentInvalid, len(report.Violations))
			}

			return nil
		},
	}
}

func validateFile(cmd *cobra.Command, path string) (psml.Violations, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}

	doc, err := psml.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return psml.ValidateDocument(doc), nil
}

func renderReport(w io.Writer, report ValidationReport) error {
	if len(report.Violations) == 0 {
		_, _ = fmt.Fprintf(w, "%d file(s) valid\n", report.Files)

		return nil
	}

	rows := make([][]string, 0, len(report.Violations))
	for _, v := range report.Violations {
		rows = append(rows, []string{v.File, v.Path, orNA(v.Attr), v.Message})
	}

	return renderRows(w, []string{"File", "Path", "Attribute", "Message"}, rows)
}

// renderViolations lists violations of a single node as a table.
func renderViolations(w io.Writer, violations psml.Violations) error {
	rows := make([][]string, 0, len(violations))
	for _, v := range violations {
		rows = append(rows, []string{v.Path, orNA(v.Attr), v.Message})
	}

	return renderRows(w, []string{"Path", "Attribute", "Message"}, rows)
}
