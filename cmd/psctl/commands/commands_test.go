package commands

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandGroups(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		use         string
		aliases     []string
		subcommands []string
	}{
		{"config", "config", nil, []string{"show", "add", "use", "set", "remove"}},
		{"groups", "groups", []string{"group"}, []string{"get"}},
		{"uris", "uris", []string{"uri"}, []string{"get", "history", "group-history", "version"}},
		{"fragments", "fragments", []string{"fragment", "frag"}, []string{"get", "put", "add"}},
		{"threads", "threads", []string{"thread"}, []string{"progress", "wait"}},
		{"loadingzone", "loadingzone", []string{"lz"}, []string{"clear", "unzip", "start"}},
	}

	constructors := map[string]func() *cobra.Command{
		"config":      NewConfigCommand,
		"groups":      NewGroupsCommand,
		"uris":        NewURIsCommand,
		"fragments":   NewFragmentsCommand,
		"threads":     NewThreadsCommand,
		"loadingzone": NewLoadingZoneCommand,
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd := constructors[tt.name]()
			assert.Equal(t, tt.use, cmd.Use)
			assert.Equal(t, tt.aliases, cmd.Aliases)
			assert.NotEmpty(t, cmd.Short)
			assert.Len(t, cmd.Commands(), len(tt.subcommands))

			for _, name := range tt.subcommands {
				sub := findSubcommand(cmd, name)
				require.NotNil(t, sub, "missing subcommand %s", name)
				assert.NotNil(t, sub.RunE)
			}
		})
	}
}

func TestCommandFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		cmd   *cobra.Command
		flags []string
	}{
		{"login", NewLoginCommand(), []string{"username", "password", "client-id", "client-secret"}},
		{"export", NewExportCommand(), []string{"member", "group", "wait", "download", "timeout", "xrefs", "forward"}},
		{"search", NewSearchCommand(), []string{"group", "page", "page-size", "all", "filter", "fields"}},
		{"upload", NewUploadCommand(), []string{"group", "folder", "filename"}},
		{"download", NewDownloadCommand(), []string{"group", "file"}},
		{"fragments put", findSubcommand(NewFragmentsCommand(), "put"), []string{"member", "group", "validate"}},
		{"fragments add", findSubcommand(NewFragmentsCommand(), "add"), []string{"member", "group", "validate", "section", "position"}},
		{"uris group-history", findSubcommand(NewURIsCommand(), "group-history"), []string{"group", "events"}},
		{"threads wait", findSubcommand(NewThreadsCommand(), "wait"), []string{"timeout", "interval"}},
		{"loadingzone start", findSubcommand(NewLoadingZoneCommand(), "start"), []string{"member", "group", "wait", "overwrite", "folder"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			require.NotNil(t, tt.cmd)

			for _, name := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(name), "flag %s should exist", name)
			}
		})
	}
}

func TestNewVersionCommand(t *testing.T) {
	useTempConfig(t)

	cmd := NewVersionCommand("1.2.3", "abc123", "2026-01-02")
	assert.Equal(t, "version", cmd.Use)

	out, err := execute(cmd)
	require.NoError(t, err)
	assert.Contains(t, out, "1.2.3")
	assert.Contains(t, out, "abc123")
	assert.Equal(t, "1.2.3", cliVersion)
}
