package commands

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fivetwenty-io/psclient/internal/constants"
	"github.com/fivetwenty-io/psclient/pkg/pageseeder"
	"github.com/fivetwenty-io/psclient/pkg/psml"
	"github.com/spf13/cobra"
)

// FragmentSummary is the JSON and YAML view of a fragment. The xml output
// format writes the PSML itself.
type FragmentSummary struct {
	ID              string `json:"id"                         yaml:"id"`
	Tag             string `json:"tag"                        yaml:"tag"`
	Type            string `json:"type,omitempty"             yaml:"type,omitempty"`
	Locator         string `json:"locator,omitempty"          yaml:"locator,omitempty"`
	Text            string `json:"text"                       yaml:"text"`
	PSML            string `json:"psml"                       yaml:"psml"`
	UnresolvedXRefs *bool  `json:"unresolved_xrefs,omitempty" yaml:"unresolved_xrefs,omitempty"`
}

// memberGroupFlags are the --member and --group flags of member scoped commands.
type memberGroupFlags struct {
	member   string
	group    string
	validate bool
}

func (f *memberGroupFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.member, "member", "m", "", "member username or ID")
	cmd.Flags().StringVarP(&f.group, "group", "g", "", "group name")
}

func (f *memberGroupFlags) resolve() (string, string, error) {
	member, err := resolveMember(f.member)
	if err != nil {
		return "", "", err
	}

	group, err := resolveGroup(f.group)
	if err != nil {
		return "", "", err
	}

	return member, group, nil
}

// NewFragmentsCommand creates the fragments command group.
func NewFragmentsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "fragments",
		Aliases: []string{"fragment", "frag"},
		Short:   "Read and write PSML fragments",
		Long:    "Get, replace and add fragments of a PSML document",
	}

	cmd.AddCommand(newFragmentsGetCommand())
	cmd.AddCommand(newFragmentsPutCommand())
	cmd.AddCommand(newFragmentsAddCommand())

	return cmd
}

func newFragmentsGetCommand() *cobra.Command {
	var flags memberGroupFlags

	cmd := &cobra.Command{
		Use:   "get URI FRAGMENT",
		Short: "Get a fragment",
		Args:  cobra.ExactArgs(2),
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

			fragment, err := c.Fragments().Get(ctx, member, group, args[0], args[1], nil)
			if err != nil {
				return fmt.Errorf("failed to get fragment: %w", err)
			}

			return renderFragment(cmd.OutOrStdout(), fragment.Root, fragment, nil)
		},
	}

	flags.register(cmd)

	return cmd
}

func newFragmentsPutCommand() *cobra.Command {
	flags := memberGroupFlags{validate: true}

	cmd := &cobra.Command{
		Use:   "put URI FRAGMENT FILE",
		Short: "Replace a fragment with PSML from a file",
		Long:  "Replace a fragment. FILE holds a single fragment element; use - to read standard input.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			member, group, err := flags.resolve()
			if err != nil {
				return err
			}

			content, err := readFragment(cmd, args[2], flags.validate)
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

			creation, err := c.Fragments().Put(ctx, member, group, args[0], args[1], content, nil)
			if err != nil {
				return fmt.Errorf("failed to put fragment: %w", err)
			}

			return renderCreation(cmd.OutOrStdout(), creation)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&flags.validate, "validate", true, "validate the PSML before sending it")

	return cmd
}

func newFragmentsAddCommand() *cobra.Command {
	var (
		flags    = memberGroupFlags{validate: true}
		section  string
		position int
	)

	cmd := &cobra.Command{
		Use:   "add URI FILE",
		Short: "Add a fragment from a file",
		Long:  "Add a new fragment to a section. FILE holds a single fragment element; use - to read standard input.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			member, group, err := flags.resolve()
			if err != nil {
				return err
			}

			content, err := readFragment(cmd, args[1], flags.validate)
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

			params := pageseeder.NewQueryParams()
			if section != "" {
				params.WithFilter("section", section)
			}

			if position > 0 {
				params.WithFilter("position", strconv.Itoa(position))
			}

			creation, err := c.Fragments().Add(ctx, member, group, args[0], content, params)
			if err != nil {
				return fmt.Errorf("failed to add fragment: %w", err)
			}

			return renderCreation(cmd.OutOrStdout(), creation)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&flags.validate, "validate", true, "validate the PSML before sending it")
	cmd.Flags().StringVar(&section, "section", "", "section to add the fragment to")
	cmd.Flags().IntVar(&position, "position", 0, "position of the new fragment within the section")

	return cmd
}

// readFragment decodes a PSML element from path, or stdin for "-".
func readFragment(cmd *cobra.Command, path string, validate bool) (psml.Element, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}

	content, err := psml.UnmarshalElement(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if validate {
		violations := psml.Validate(content)
		if len(violations) > 0 {
			_ = renderViolations(cmd.ErrOrStderr(), violations)

			return nil, fmt.Errorf("%w: %s", constants.ErrDocumentInvalid, path)
		}
	}

	return content, nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read standard input: %w", err)
		}

		return data, nil
	}

	// path is supplied by the user on the command line
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return data, nil
}

func renderCreation(w io.Writer, creation *pageseeder.FragmentCreation) error {
	unresolved := creation.UnresolvedXRefs

	return renderFragment(w, creation.Root, creation.DocumentFragment, &unresolved)
}

func renderFragment(w io.Writer, root psml.Element, fragment *pageseeder.DocumentFragment, unresolved *bool) error {
	format := outputFormat()
	if format == constants.FormatXML {
		return render(w, format, root, nil)
	}

	summary := summarizeFragment(fragment)
	summary.UnresolvedXRefs = unresolved

	return render(w, format, summary, func(w io.Writer) error {
		rows := [][]string{
			{"ID", orNA(summary.ID)},
			{"Element", orNA(summary.Tag)},
			{"Type", orNA(summary.Type)},
			{"Locator", orNA(summary.Locator)},
			{"Text", truncate(orNA(summary.Text))},
		}

		if unresolved != nil {
			rows = append(rows, []string{"Unresolved XRefs", strconv.FormatBool(*unresolved)})
		}

		return renderProperties(w, rows)
	})
}

func summarizeFragment(fragment *pageseeder.DocumentFragment) FragmentSummary {
	var summary FragmentSummary

	if fragment == nil {
		return summary
	}

	if fragment.Locator != nil {
		summary.Locator = fragment.Locator.Fragment()
	}

	if fragment.Fragment != nil {
		summary.ID = fragment.Fragment.ID()
		summary.Tag = fragment.Fragment.Tag()
		summary.Type = fragment.Fragment.Type()
		summary.Text = psml.TextContent(fragment.Fragment)

		data, err := psml.MarshalNode(fragment.Fragment)
		if err == nil {
			summary.PSML = string(data)
		}
	}

	return summary
}
