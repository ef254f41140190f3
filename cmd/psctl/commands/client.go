package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fivetwenty-io/psclient/internal/auth"
	"github.com/fivetwenty-io/psclient/internal/client"
	"github.com/fivetwenty-io/psclient/internal/constants"
	"github.com/fivetwenty-io/psclient/pkg/pageseeder"
	"github.com/fivetwenty-io/psclient/pkg/psclient"
	"github.com/spf13/viper"
)

// clientOptions carries credentials that are never written to the config file.
type clientOptions struct {
	password string
	// fresh ignores the stored token so that a new one is exchanged.
	fresh bool
}

// newClient creates a client for the selected server profile.
func newClient(ctx context.Context) (*client.Client, error) {
	return newClientWithOptions(ctx, clientOptions{})
}

func newClientWithOptions(ctx context.Context, opts clientOptions) (*client.Client, error) {
	config, err := loadConfig()
	if err != nil {
		return nil, err
	}

	name, server, err := currentServer(config)
	if err != nil {
		return nil, err
	}

	psConfig := buildClientConfig(server, opts)

	if server.TokenStore == string(pageseeder.TokenStoreNATS) {
		psConfig.TokenStore = &pageseeder.TokenStoreConfig{
			Type: pageseeder.TokenStoreNATS,
			NATS: &pageseeder.NATSStoreConfig{URL: server.NATSURL, Bucket: server.NATSBucket},
		}

		c, err := client.New(ctx, psConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create client: %w", err)
		}

		return c, nil
	}

	store, err := profileStore(ctx, name, server, opts.fresh)
	if err != nil {
		return nil, err
	}

	c, err := client.NewWithStore(psConfig, store)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return c, nil
}

// buildClientConfig maps a profile and the global flags onto a client config.
func buildClientConfig(server *ServerConfig, opts clientOptions) *pageseeder.Config {
	psConfig := &pageseeder.Config{
		BaseURL:   psclient.NormalizeEndpoint(server.Endpoint),
		UserAgent: "psctl/" + cliVersion,
	}

	switch {
	case opts.password != "":
		psConfig.ClientID = server.ClientID
		psConfig.ClientSecret = server.ClientSecret
		psConfig.Username = server.Username
		psConfig.Password = opts.password
	case server.ClientID != "" && server.ClientSecret != "":
		psConfig.ClientID = server.ClientID
		psConfig.ClientSecret = server.ClientSecret
	}

	if token := viper.GetString("token"); token != "" && !opts.fresh {
		psConfig.AccessToken = token
	} else if psConfig.ClientSecret == "" && psConfig.Password == "" {
		// Without a way to renew, the stored token is used as a static one.
		psConfig.AccessToken = server.Token
	}

	if viper.GetBool("debug") || viper.GetBool("verbose") {
		level := "info"
		if viper.GetBool("debug") {
			level = "debug"
		}

		psConfig.Logger = pageseeder.NewDefaultLogger(os.Stderr, level, false)
	}

	psConfig.Interceptors = requestInterceptors(psConfig.Logger, viper.GetBool("debug"), viper.GetBool("metrics"))

	return psConfig
}

// profileStore seeds a memory store with the profile token and writes every
// renewed token back to the config file.
func profileStore(ctx context.Context, name string, server *ServerConfig, fresh bool) (auth.Store, error) {
	inner := auth.NewMemoryStore()

	if server.Token != "" && !fresh {
		token := &auth.Token{AccessToken: server.Token, TokenType: "Bearer"}

		if server.LastRefreshed != nil {
			token.IssuedAt = *server.LastRefreshed
		}

		if server.TokenExpiresAt != nil {
			token.ExpiresAt = *server.TokenExpiresAt
		}

		err := inner.Set(ctx, token)
		if err != nil {
			return nil, fmt.Errorf("failed to load stored token: %w", err)
		}
	}

	return auth.NewPersistingStore(inner, NewConfigPersister(), name), nil
}

// resolveMember returns the --member flag value, or the profile member or
// username.
func resolveMember(flag string) (string, error) {
	return resolveDefault(flag, func(s *ServerConfig) string {
		if s.Member != "" {
			return s.Member
		}

		return s.Username
	}, constants.ErrMemberRequired)
}

// resolveGroup returns the --group flag value or the profile default.
func resolveGroup(flag string) (string, error) {
	return resolveDefault(flag, func(s *ServerConfig) string { return s.Group }, constants.ErrGroupRequired)
}

func resolveDefault(flag string, get func(*ServerConfig) string, missing error) (string, error) {
	if flag != "" {
		return flag, nil
	}

	config, err := loadConfig()
	if err != nil {
		return "", err
	}

	_, server, err := currentServer(config)
	if err == nil {
		if value := get(server); value != "" {
			return value, nil
		}
	}

	return "", missing
}

// commandContext bounds a command by timeout when it is positive.
func commandContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}

	if timeout <= 0 {
		return context.WithCancel(parent)
	}

	return context.WithTimeout(parent, timeout)
}
