package commands

import (
	"errors"
	"fmt"
	"syscall"
	"time"

	"github.com/fivetwenty-io/psclient/internal/constants"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// ErrNoCredentials is returned when a profile has nothing to log in with.
var ErrNoCredentials = errors.New("no credentials: configure --client-id with --client-secret or --username")

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		username     string
		password     string
		clientID     string
		clientSecret string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Obtain an access token",
		Long: `Exchange the credentials of the current server profile for an access token
and store the token in the config file. Passwords are never stored.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig()
			if err != nil {
				return err
			}

			name, server, err := currentServer(config)
			if err != nil {
				return err
			}

			changed := applyLoginFlags(server, username, clientID, clientSecret)
			if changed {
				err = saveConfig(config)
				if err != nil {
					return fmt.Errorf("failed to save configuration: %w", err)
				}
			}

			opts := clientOptions{fresh: true}

			switch {
			case server.Username != "" && server.ClientID != "":
				if password == "" {
					password, err = readPassword(cmd)
					if err != nil {
						return err
					}
				}

				opts.password = password
			case server.ClientID != "" && server.ClientSecret != "":
				// client credentials
			default:
				return ErrNoCredentials
			}

			ctx, cancel := commandContext(cmd.Context(), constants.DefaultHTTPTimeout)
			defer cancel()

			client, err := newClientWithOptions(ctx, opts)
			if err != nil {
				return err
			}

			defer func() { _ = client.Close() }()

			err = client.TokenManager().RefreshToken(ctx)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s (%s)\n", name, server.Endpoint)

			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "member username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "member password (prompted when omitted)")
	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth2 client ID")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OAuth2 client secret")

	return cmd
}

func applyLoginFlags(server *ServerConfig, username, clientID, clientSecret string) bool {
	changed := false

	for _, f := range []struct {
		value  string
		target *string
	}{
		{username, &server.Username},
		{clientID, &server.ClientID},
		{clientSecret, &server.ClientSecret},
	} {
		if f.value != "" && f.value != *f.target {
			*f.target = f.value
			changed = true
		}
	}

	return changed
}

func readPassword(cmd *cobra.Command) (string, error) {
	_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Password: ")

	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	_, _ = fmt.Fprintln(cmd.ErrOrStderr())

	return string(bytePassword), nil
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig()
			if err != nil {
				return err
			}

			name, _, err := currentServer(config)
			if err != nil {
				return err
			}

			err = NewConfigPersister().UpdateToken(name, "", time.Time{})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged out of %s\n", name)

			return nil
		},
	}
}
