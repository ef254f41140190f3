// Package psclient provides the main entry point for creating PageSeeder API clients
package psclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/psclient/internal/client"
	"github.com/fivetwenty-io/psclient/pkg/pageseeder"
)

// New creates a new PageSeeder client. The config is copied; BaseURL is
// normalised on the copy.
func New(ctx context.Context, config *pageseeder.Config) (pageseeder.Client, error) {
	if config == nil {
		return nil, pageseeder.ErrConfigRequired
	}

	normalized := *config
	normalized.BaseURL = NormalizeEndpoint(config.BaseURL)

	c, err := client.New(ctx, &normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// NormalizeEndpoint trims trailing slashes and defaults the scheme to https.
func NormalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return ""
	}

	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	return endpoint
}

// NewWithEndpoint creates a new client with just a server endpoint (no auth).
func NewWithEndpoint(ctx context.Context, endpoint string) (pageseeder.Client, error) {
	return New(ctx, &pageseeder.Config{
		BaseURL: endpoint,
	})
}

// NewWithToken creates a new client with a server endpoint and access token.
func NewWithToken(ctx context.Context, endpoint, token string) (pageseeder.Client, error) {
	return New(ctx, &pageseeder.Config{
		BaseURL:     endpoint,
		AccessToken: token,
	})
}

// NewWithClientCredentials creates a new client using OAuth2 client credentials.
func NewWithClientCredentials(ctx context.Context, endpoint, clientID, clientSecret string) (pageseeder.Client, error) {
	return New(ctx, &pageseeder.Config{
		BaseURL:      endpoint,
		ClientID:     clientID,
		ClientSecret: clientSecret,
	})
}

// NewWithPassword creates a new client using the OAuth2 password grant.
func NewWithPassword(ctx context.Context, endpoint, clientID, username, password string) (pageseeder.Client, error) {
	return New(ctx, &pageseeder.Config{
		BaseURL:  endpoint,
		ClientID: clientID,
		Username: username,
		Password: password,
	})
}
