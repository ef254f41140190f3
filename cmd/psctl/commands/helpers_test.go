package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

// useTempConfig points the CLI at an empty config file in a temp directory.
// Tests using it share viper's global state and must not run in parallel.
func useTempConfig(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ConfigDirName, "config.yml")

	viper.Reset()
	viper.SetConfigFile(path)
	resetMetrics()
	t.Cleanup(viper.Reset)
	t.Cleanup(resetMetrics)

	return path
}

func resetMetrics() {
	metricsMu.Lock()
	defer metricsMu.Unlock()

	requestMetrics = nil
}

// addServer saves a profile and makes it current.
func addServer(t *testing.T, name string, server *ServerConfig) {
	t.Helper()

	config, err := loadConfig()
	require.NoError(t, err)

	config.Servers[name] = server
	config.CurrentServer = name

	require.NoError(t, saveConfig(config))
}

func execute(cmd *cobra.Command, args ...string) (string, error) {
	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	cmd.SilenceUsage = true

	err := cmd.ExecuteContext(context.Background())

	return out.String(), err
}

// findSubcommand finds a subcommand by name within a cobra command.
func findSubcommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, c := range cmd.Commands() {
		if c.Name() == name {
			return c
		}
	}

	return nil
}
