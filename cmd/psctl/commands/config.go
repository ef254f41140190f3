package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fivetwenty-io/psclient/internal/constants"
	"github.com/fivetwenty-io/psclient/pkg/psclient"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigDirName is the directory under $HOME holding config.yml.
	ConfigDirName  = ".psctl"
	configFileName = "config.yml"
)

// Config represents the CLI configuration.
type Config struct {
	Servers       map[string]*ServerConfig `json:"servers,omitempty"        yaml:"servers,omitempty"`
	CurrentServer string                   `json:"current_server,omitempty" yaml:"current_server,omitempty"`

	// Global settings
	Output string `json:"output,omitempty" yaml:"output,omitempty"`
}

// ServerConfig is a named PageSeeder server profile.
type ServerConfig struct {
	Endpoint       string     `json:"endpoint"                   yaml:"endpoint"`
	ClientID       string     `json:"client_id,omitempty"        yaml:"client_id,omitempty"`
	ClientSecret   string     `json:"client_secret,omitempty"    yaml:"client_secret,omitempty"`
	Username       string     `json:"username,omitempty"         yaml:"username,omitempty"`
	Member         string     `json:"member,omitempty"           yaml:"member,omitempty"`
	Group          string     `json:"group,omitempty"            yaml:"group,omitempty"`
	Token          string     `json:"token,omitempty"            yaml:"token,omitempty"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty" yaml:"token_expires_at,omitempty"`
	LastRefreshed  *time.Time `json:"last_refreshed,omitempty"   yaml:"last_refreshed,omitempty"`
	TokenStore     string     `json:"token_store,omitempty"      yaml:"token_store,omitempty"`
	NATSURL        string     `json:"nats_url,omitempty"         yaml:"nats_url,omitempty"`
	NATSBucket     string     `json:"nats_bucket,omitempty"      yaml:"nats_bucket,omitempty"`
}

// serverSetters maps the keys accepted by "config set --server".
var serverSetters = map[string]func(*ServerConfig, string){
	"endpoint":      func(s *ServerConfig, v string) { s.Endpoint = psclient.NormalizeEndpoint(v) },
	"client_id":     func(s *ServerConfig, v string) { s.ClientID = v },
	"client_secret": func(s *ServerConfig, v string) { s.ClientSecret = v },
	"username":      func(s *ServerConfig, v string) { s.Username = v },
	"member":        func(s *ServerConfig, v string) { s.Member = v },
	"group":         func(s *ServerConfig, v string) { s.Group = v },
	"token_store":   func(s *ServerConfig, v string) { s.TokenStore = v },
	"nats_url":      func(s *ServerConfig, v string) { s.NATSURL = v },
	"nats_bucket":   func(s *ServerConfig, v string) { s.NATSBucket = v },
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage psctl server profiles and settings",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigAddCommand())
	cmd.AddCommand(newConfigUseCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigRemoveCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the configured servers with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig()
			if err != nil {
				return err
			}

			masked := maskConfig(config)

			return render(cmd.OutOrStdout(), outputFormat(), masked, func(w io.Writer) error {
				return displayConfigTable(w, masked)
			})
		},
	}
}

func newConfigAddCommand() *cobra.Command {
	var server ServerConfig

	cmd := &cobra.Command{
		Use:   "add NAME ENDPOINT",
		Short: "Add a server profile",
		Long:  "Add a PageSeeder server profile. The first profile becomes the current server.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig()
			if err != nil {
				return err
			}

			server.Endpoint = psclient.NormalizeEndpoint(args[1])
			config.Servers[args[0]] = &server

			if config.CurrentServer == "" {
				config.CurrentServer = args[0]
			}

			err = saveConfig(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added server %s (%s)\n", args[0], server.Endpoint)

			return nil
		},
	}

	cmd.Flags().StringVar(&server.ClientID, "client-id", "", "OAuth2 client ID")
	cmd.Flags().StringVar(&server.ClientSecret, "client-secret", "", "OAuth2 client secret")
	cmd.Flags().StringVar(&server.Username, "username", "", "member username for the password grant")
	cmd.Flags().StringVar(&server.Member, "member", "", "default member for member scoped services")
	cmd.Flags().StringVar(&server.Group, "group", "", "default group")

	return cmd
}

func newConfigUseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "use NAME",
		Short: "Select the current server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig()
			if err != nil {
				return err
			}

			if _, ok := config.Servers[args[0]]; !ok {
				return fmt.Errorf("%w: %s", constants.ErrProfileNotFound, args[0])
			}

			config.CurrentServer = args[0]

			err = saveConfig(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Current server is now %s\n", args[0])

			return nil
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	var serverFlag string

	cmd := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long: `Set a global value (output, current_server) or, with --server, a profile value
(endpoint, client_id, client_secret, username, member, group, token_store, nats_url, nats_bucket).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig()
			if err != nil {
				return err
			}

			if serverFlag != "" {
				err = setServerConfig(config, serverFlag, args[0], args[1])
			} else {
				err = setGlobalConfig(config, args[0], args[1])
			}

			if err != nil {
				return err
			}

			err = saveConfig(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])

			return nil
		},
	}

	cmd.Flags().StringVar(&serverFlag, "server", "", "server profile to change")

	return cmd
}

func newConfigRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove NAME",
		Aliases: []string{"rm"},
		Short:   "Remove a server profile",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig()
			if err != nil {
				return err
			}

			if _, ok := config.Servers[args[0]]; !ok {
				return fmt.Errorf("%w: %s", constants.ErrProfileNotFound, args[0])
			}

			delete(config.Servers, args[0])

			if config.CurrentServer == args[0] {
				config.CurrentServer = ""
			}

			err = saveConfig(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed server %s\n", args[0])

			return nil
		},
	}
}

func setGlobalConfig(config *Config, key, value string) error {
	switch key {
	case "output":
		config.Output = value
	case "current_server":
		if _, ok := config.Servers[value]; !ok {
			return fmt.Errorf("%w: %s", constants.ErrProfileNotFound, value)
		}

		config.CurrentServer = value
	default:
		return fmt.Errorf("%w: %s", constants.ErrInvalidConfigKey, key)
	}

	return nil
}

func setServerConfig(config *Config, name, key, value string) error {
	server, ok := config.Servers[name]
	if !ok {
		return fmt.Errorf("%w: %s", constants.ErrProfileNotFound, name)
	}

	setter, ok := serverSetters[key]
	if !ok {
		return fmt.Errorf("%w: %s", constants.ErrInvalidConfigKey, key)
	}

	setter(server, value)

	return nil
}

// configFilePath returns the file viper read, or ~/.psctl/config.yml.
func configFilePath() (string, error) {
	if file := viper.ConfigFileUsed(); file != "" {
		return file, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ConfigDirName, configFileName), nil
}

func loadConfig() (*Config, error) {
	config := &Config{Servers: make(map[string]*ServerConfig)}

	path, err := configFilePath()
	if err != nil {
		return nil, err
	}

	// path is the user's own config file
	// #nosec G304
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if config.Servers == nil {
		config.Servers = make(map[string]*ServerConfig)
	}

	return config, nil
}

func saveConfig(config *Config) error {
	path, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(path), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(path, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// currentServer resolves the --server flag, PSCTL_SERVER or the current server.
func currentServer(config *Config) (string, *ServerConfig, error) {
	if len(config.Servers) == 0 {
		return "", nil, constants.ErrNoProfilesConfigured
	}

	name := viper.GetString("server")
	if name == "" {
		name = config.CurrentServer
	}

	if name == "" {
		return "", nil, constants.ErrNoCurrentProfile
	}

	server, ok := config.Servers[name]
	if !ok {
		return "", nil, fmt.Errorf("%w: %s", constants.ErrProfileNotFound, name)
	}

	return name, server, nil
}

func maskConfig(config *Config) *Config {
	masked := &Config{
		Servers:       make(map[string]*ServerConfig, len(config.Servers)),
		CurrentServer: config.CurrentServer,
		Output:        config.Output,
	}

	for name, server := range config.Servers {
		copied := *server

		if copied.ClientSecret != "" {
			copied.ClientSecret = constants.MaskedSecret
		}

		if copied.Token != "" {
			copied.Token = constants.MaskedSecret
		}

		masked.Servers[name] = &copied
	}

	return masked
}

func displayConfigTable(w io.Writer, config *Config) error {
	if len(config.Servers) == 0 {
		_, _ = io.WriteString(w, "No servers configured. Use 'psctl config add' to add one.\n")

		return nil
	}

	names := make([]string, 0, len(config.Servers))
	for name := range config.Servers {
		names = append(names, name)
	}

	sort.Strings(names)

	table := tablewriter.NewWriter(w)
	table.Header("Name", "Endpoint", "Client ID", "Username", "Member", "Group", "Token Expires", "Current")

	for _, name := range names {
		server := config.Servers[name]

		expires := "-"
		if server.TokenExpiresAt != nil {
			expires = server.TokenExpiresAt.Format(time.RFC3339)
		}

		_ = table.Append([]string{
			name,
			server.Endpoint,
			formatConfigValue(server.ClientID),
			formatConfigValue(server.Username),
			formatConfigValue(server.Member),
			formatConfigValue(server.Group),
			expires,
			formatCurrentIndicator(name == config.CurrentServer),
		})
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func formatConfigValue(value string) string {
	if value == "" {
		return "-"
	}

	return value
}

func formatCurrentIndicator(isCurrent bool) string {
	if isCurrent {
		return "*"
	}

	return ""
}
