package client

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"time"

	"github.com/fivetwenty-io/psclient/internal/auth"
	"github.com/fivetwenty-io/psclient/internal/constants"
	"github.com/fivetwenty-io/psclient/internal/http"
	"github.com/fivetwenty-io/psclient/pkg/pageseeder"
)

// Client implements the pageseeder.Client interface.
type Client struct {
	httpClient   *http.Client
	tokenManager auth.TokenManager
	store        auth.Store
	baseURL      string
	logger       pageseeder.Logger

	// Resource clients
	groups      pageseeder.GroupsClient
	uris        pageseeder.URIsClient
	fragments   pageseeder.FragmentsClient
	search      pageseeder.SearchClient
	threads     pageseeder.ThreadsClient
	uploads     pageseeder.UploadsClient
	loadingZone pageseeder.LoadingZoneClient
}

// New creates a new PageSeeder client from a validated config.
func New(ctx context.Context, config *pageseeder.Config) (*Client, error) {
	if config == nil {
		return nil, pageseeder.ErrConfigRequired
	}

	err := config.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	store, err := auth.NewStoreFromConfig(ctx, config.TokenStore, firstNonEmpty(config.ClientID, config.Username))
	if err != nil {
		return nil, fmt.Errorf("creating token store: %w", err)
	}

	return NewWithStore(config, store)
}

// NewWithStore creates a client whose session keeps tokens in store instead
// of the store described by config.TokenStore.
func NewWithStore(config *pageseeder.Config, store auth.Store) (*Client, error) {
	if config == nil {
		return nil, pageseeder.ErrConfigRequired
	}

	err := config.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	tokenManager, err := createTokenManager(config, store)
	if err != nil {
		return nil, err
	}

	client := NewWithTokenManager(config, tokenManager)
	client.store = store

	return client, nil
}

// NewWithTokenManager creates a client that takes tokens from tokenManager.
// A nil token manager sends requests without authentication.
func NewWithTokenManager(config *pageseeder.Config, tokenManager auth.TokenManager) *Client {
	httpClient := http.NewClient(config.BaseURL, tokenManager, createHTTPClientOptions(config)...)

	client := &Client{
		httpClient:   httpClient,
		tokenManager: tokenManager,
		baseURL:      config.BaseURL,
		logger:       config.Logger,
	}

	client.initializeResourceClients()

	return client
}

// createTokenManager picks the token source from the configured credentials.
func createTokenManager(config *pageseeder.Config, store auth.Store) (auth.TokenManager, error) {
	hasCredentials := config.ClientID != "" && (config.ClientSecret != "" || config.Username != "")

	if config.AccessToken != "" && !hasCredentials {
		return auth.NewStaticTokenManager(config.AccessToken), nil
	}

	if !hasCredentials {
		return nil, nil //nolint:nilnil // no authentication
	}

	exchanger, err := auth.NewExchanger(&auth.OAuth2Config{
		TokenURL:     getTokenURL(config),
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Username:     config.Username,
		Password:     config.Password,
		Scopes:       config.Scopes,
		HTTPClient:   &nethttp.Client{Timeout: httpTimeout(config)},
	})
	if err != nil {
		return nil, fmt.Errorf("creating token exchanger: %w", err)
	}

	opts := []auth.SessionOption{
		auth.WithStore(store),
		auth.WithRenewTimeout(constants.DefaultRenewTimeout),
	}

	if config.Logger != nil {
		opts = append(opts, auth.WithLogger(config.Logger))
	}

	session := auth.NewSession(exchanger, opts...)

	// A configured token is used until the server rejects it.
	if config.AccessToken != "" {
		session.SetToken(config.AccessToken, time.Time{})
	}

	return session, nil
}

// getTokenURL returns token URL from config or fallback.
func getTokenURL(config *pageseeder.Config) string {
	if config.TokenURL != "" {
		return config.TokenURL
	}

	return auth.TokenURL(config.BaseURL)
}

func httpTimeout(config *pageseeder.Config) time.Duration {
	if config.HTTPTimeout > 0 {
		return config.HTTPTimeout
	}

	return constants.DefaultHTTPTimeout
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *pageseeder.Config) []http.ClientOption {
	var httpOpts []http.ClientOption

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.RetryMax != 0 || config.RetryWaitMin > 0 || config.RetryWaitMax > 0 {
		retryMax := config.RetryMax
		if retryMax == 0 {
			retryMax = constants.DefaultRetryMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(retryMax, config.RetryWaitMin, config.RetryWaitMax))
	}

	httpOpts = append(httpOpts, http.WithTimeout(httpTimeout(config)))

	if config.RateLimit > 0 {
		httpOpts = append(httpOpts, http.WithRateLimit(config.RateLimit, config.RateBurst))
	}

	if config.Interceptors != nil {
		httpOpts = append(httpOpts, http.WithInterceptors(config.Interceptors))
	}

	return httpOpts
}

// TokenManager returns the token manager for this client.
func (c *Client) TokenManager() auth.TokenManager {
	return c.tokenManager
}

// HTTPClient returns the request pipeline shared by the resource clients.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// Groups implements pageseeder.Client.Groups.
func (c *Client) Groups() pageseeder.GroupsClient {
	return c.groups
}

// URIs implements pageseeder.Client.URIs.
func (c *Client) URIs() pageseeder.URIsClient {
	return c.uris
}

// Fragments implements pageseeder.Client.Fragments.
func (c *Client) Fragments() pageseeder.FragmentsClient {
	return c.fragments
}

// Search implements pageseeder.Client.Search.
func (c *Client) Search() pageseeder.SearchClient {
	return c.search
}

// Threads implements pageseeder.Client.Threads.
func (c *Client) Threads() pageseeder.ThreadsClient {
	return c.threads
}

// Uploads implements pageseeder.Client.Uploads.
func (c *Client) Uploads() pageseeder.UploadsClient {
	return c.uploads
}

// LoadingZone implements pageseeder.Client.LoadingZone.
func (c *Client) LoadingZone() pageseeder.LoadingZoneClient {
	return c.loadingZone
}

// Close implements pageseeder.Client.Close.
func (c *Client) Close() error {
	closer, ok := c.store.(interface{ Close() error })
	if !ok {
		return nil
	}

	err := closer.Close()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("closing token store: %w", err)
	}

	return nil
}

func (c *Client) initializeResourceClients() {
	c.groups = NewGroupsClient(c.httpClient)
	c.uris = NewURIsClient(c.httpClient)
	c.fragments = NewFragmentsClient(c.httpClient)
	c.search = NewSearchClient(c.httpClient)
	c.threads = NewThreadsClient(c.httpClient)
	c.uploads = NewUploadsClient(c.httpClient)
	c.loadingZone = NewLoadingZoneClient(c.httpClient)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
