package commands

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/fivetwenty-io/psclient/internal/constants"
	"github.com/fivetwenty-io/psclient/pkg/pageseeder"
	"github.com/fivetwenty-io/psclient/pkg/psml"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

func outputFormat() string {
	format := viper.GetString("output")
	if format == "" {
		return constants.FormatTable
	}

	return format
}

// render writes value in the selected format. Table output is delegated to
// table; PSML nodes are written with the PSML encoder in xml format.
func render(w io.Writer, format string, value interface{}, table func(io.Writer) error) error {
	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

		return encoder.Encode(value)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(w)
		defer func() { _ = encoder.Close() }()

		return encoder.Encode(value)
	case constants.FormatXML:
		return renderXML(w, value)
	case constants.FormatTable, "":
		return table(w)
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownFormat, format)
	}
}

func renderXML(w io.Writer, value interface{}) error {
	if node, ok := value.(psml.Node); ok {
		err := psml.EncodeNode(w, node)
		if err != nil {
			return fmt.Errorf("failed to encode PSML: %w", err)
		}

		_, _ = io.WriteString(w, "\n")

		return nil
	}

	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")

	err := encoder.Encode(value)
	if err != nil {
		return fmt.Errorf("failed to encode XML: %w", err)
	}

	_, _ = io.WriteString(w, "\n")

	return nil
}

// renderProperties renders key/value rows as a two column table.
func renderProperties(w io.Writer, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header("Property", "Value")

	for _, row := range rows {
		_ = table.Append(row)
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// renderRows renders a table with the given header.
func renderRows(w io.Writer, header []string, rows [][]string) error {
	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}

	table := tablewriter.NewWriter(w)
	table.Header(cells...)

	for _, row := range rows {
		_ = table.Append(row)
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func threadRows(thread *pageseeder.Thread) [][]string {
	rows := [][]string{
		{"ID", thread.ID},
		{"Name", orNA(thread.Name)},
		{"Status", formatStatus(thread.Status)},
		{"Username", orNA(thread.Username)},
		{"Group ID", orNA(thread.GroupID)},
	}

	if thread.Processing != nil {
		rows = append(rows, []string{"Processing", formatProgress(thread.Processing)})
	}

	if thread.Packaging != nil {
		rows = append(rows, []string{"Packaging", formatProgress(thread.Packaging)})
	}

	if thread.Zip != "" {
		rows = append(rows, []string{"Zip", thread.Zip})
	}

	if thread.Message != "" {
		rows = append(rows, []string{"Message", truncate(thread.Message)})
	}

	return rows
}

func formatProgress(p *pageseeder.ThreadProgress) string {
	return strconv.FormatUint(p.Current, 10) + "/" + strconv.FormatUint(p.Total, 10)
}

// formatStatus title-cases a thread status and colors it by outcome.
func formatStatus(status pageseeder.ThreadStatus) string {
	if viper.GetBool("no-color") {
		color.NoColor = true
	}

	title := cases.Title(language.English).String(string(status))

	switch {
	case status == pageseeder.ThreadCompleted:
		return color.GreenString(title)
	case status == pageseeder.ThreadWarning:
		return color.YellowString(title)
	case status.Failed():
		return color.RedString(title)
	default:
		return title
	}
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return constants.NotAvailable
	}

	return t.Format(time.RFC3339)
}

func orNA(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}

func truncate(value string) string {
	runes := []rune(value)
	if len(runes) <= constants.DescriptionDisplayLength {
		return value
	}

	return string(runes[:constants.DescriptionDisplayLength-3]) + "..."
}
