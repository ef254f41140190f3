package pageseeder

import (
	"context"
	"errors"
	"io"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-multierror"

	"github.com/fivetwenty-io/psclient/pkg/psml"
)

// GroupsClient reads group metadata.
type GroupsClient interface {
	Get(ctx context.Context, group string) (*Group, error)
}

// URIsClient reads URI metadata and history, starts exports and creates versions.
type URIsClient interface {
	Get(ctx context.Context, member, uri string) (*URI, error)
	History(ctx context.Context, group, uri string) (*URIHistory, error)
	GroupHistory(ctx context.Context, group string, events []EventType, params *QueryParams) (*URIHistory, error)
	Export(ctx context.Context, member, uri string, params *QueryParams) (*Thread, error)
	CreateVersion(ctx context.Context, member, group, uri, name string, params *QueryParams) (*Version, error)
}

// FragmentsClient reads and writes PSML fragments of a document.
type FragmentsClient interface {
	Get(ctx context.Context, member, group, uri, fragment string, params *QueryParams) (*DocumentFragment, error)
	Put(ctx context.Context, member, group, uri, fragment string, content psml.Element, params *QueryParams) (*FragmentCreation, error)
	Add(ctx context.Context, member, group, uri string, content psml.Element, params *QueryParams) (*FragmentCreation, error)
}

// SearchClient runs group searches.
type SearchClient interface {
	// Search returns a single page. Without a page parameter the first page is returned.
	Search(ctx context.Context, group string, params *QueryParams) (*SearchResultPage, error)
	// Iterator lazily walks every result of every page.
	Iterator(ctx context.Context, group string, params *QueryParams) *PaginationIterator[SearchResult]
	// All fetches every page. When params names a page only that page is fetched.
	All(ctx context.Context, group string, params *QueryParams) ([]*SearchResultPage, error)
}

// ThreadsClient tracks long-running server threads such as exports.
type ThreadsClient interface {
	Progress(ctx context.Context, id string) (*Thread, error)
	Wait(ctx context.Context, id string, opts *WaitOptions) (*Thread, error)
}

// UploadsClient transfers files to and from the server.
type UploadsClient interface {
	Upload(ctx context.Context, group, filename string, content io.Reader, params *QueryParams) (*Upload, error)
	Download(ctx context.Context, group, filename string) ([]byte, error)
}

// LoadingZoneClient manages a member's loading zone in a group.
type LoadingZoneClient interface {
	Clear(ctx context.Context, member, group string) (*LoadClear, error)
	Unzip(ctx context.Context, member, group, path string, params *QueryParams) (*LoadUnzip, error)
	Start(ctx context.Context, member, group string, params *QueryParams) (*LoadStart, error)
}

// Client is the PageSeeder service API.
type Client interface {
	Groups() GroupsClient
	URIs() URIsClient
	Fragments() FragmentsClient
	Search() SearchClient
	Threads() ThreadsClient
	Uploads() UploadsClient
	LoadingZone() LoadingZoneClient

	// Close releases resources held by the token store.
	Close() error
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Static errors for err113 compliance.
var (
	ErrConfigRequired         = errors.New("config is required")
	ErrBaseURLRequired        = errors.New("base URL is required")
	ErrIncompleteCredentials  = errors.New("client ID and client secret must be provided together")
	ErrIncompletePassword     = errors.New("username and password must be provided together")
	ErrPasswordNeedsClient    = errors.New("password grant requires a client ID")
	ErrInvalidRetryWindow     = errors.New("retry wait min must not exceed retry wait max")
	ErrNoMoreItems            = errors.New("no more items")
	ErrThreadFailed           = errors.New("thread did not complete")
	ErrUnsupportedStoreType   = errors.New("unsupported token store type")
	ErrNATSConfigRequired     = errors.New("NATS configuration required for NATS token store")
	ErrStaticTokenCannotRenew = errors.New("static token cannot be renewed")
)

// Config represents client configuration for building a pageseeder.Client.
//
// # Authentication precedence
//
//  1. AccessToken: used directly as a Bearer token. Without credentials it
//     cannot be renewed, so a 401 surfaces as *APIError. With credentials
//     it seeds the session and is replaced once the server rejects it.
//  2. ClientID/ClientSecret without Username: OAuth2 client_credentials grant.
//  3. ClientID plus Username/Password: OAuth2 password grant.
//  4. No credentials: requests are sent without authentication.
//
// Tokens are obtained from TokenURL, which defaults to
// "<BaseURL>/ps/oauth/token". Concurrent requests that find no valid token
// share a single exchange.
//
// # Timeouts and retries
//
// HTTPTimeout bounds each network round trip, including the token exchange.
// A request is attempted at most RetryMax+1 times; 429, 5xx, timeouts and
// connection failures are retried with capped exponential backoff between
// RetryWaitMin and RetryWaitMax. Context deadlines still apply across all
// attempts.
type Config struct {
	// BaseURL: server root, e.g. "https://ps.example.com". psclient.New
	// trims a trailing slash and adds "https://" if no scheme is present.
	BaseURL string

	// ClientID: OAuth2 client ID registered in PageSeeder.
	ClientID string
	// ClientSecret: secret paired with ClientID.
	ClientSecret string
	// Username: member username for the password grant.
	Username string
	// Password: member password for the password grant.
	Password string
	// AccessToken: pre-issued token used as-is.
	AccessToken string
	// TokenURL: full OAuth2 token endpoint. Defaults to BaseURL + "/ps/oauth/token".
	TokenURL string
	// Scopes: optional OAuth2 scopes.
	Scopes []string

	// HTTPTimeout: per round trip timeout. Zero uses the package default.
	HTTPTimeout time.Duration
	// RetryMax: retries after the first attempt for transient failures.
	// Negative disables retries; zero uses the package default.
	RetryMax int
	// RetryWaitMin: minimum backoff between attempts.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between attempts.
	RetryWaitMax time.Duration
	// RateLimit: client-side request rate in requests per second. Zero disables it.
	RateLimit float64
	// RateBurst: burst size for RateLimit. Defaults to 1.
	RateBurst int

	// Debug: enables HTTP request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger.
	Logger Logger
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
	// Interceptors: optional hooks run around every attempt.
	Interceptors *InterceptorChain

	// TokenStore: where tokens are kept. Nil means in-memory.
	TokenStore *TokenStoreConfig
}

// Validate checks that the configuration is usable. All problems are
// reported together.
func (c *Config) Validate() error {
	var result *multierror.Error

	err := validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required.ErrorObject(
			validation.NewError("validation_base_url_required", ErrBaseURLRequired.Error()))),
		validation.Field(&c.HTTPTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.RateLimit, validation.Min(0.0)),
		validation.Field(&c.RateBurst, validation.Min(0)),
	)
	if err != nil {
		result = multierror.Append(result, err)
	}

	if (c.ClientID == "") != (c.ClientSecret == "") && c.Username == "" {
		result = multierror.Append(result, ErrIncompleteCredentials)
	}

	if (c.Username == "") != (c.Password == "") {
		result = multierror.Append(result, ErrIncompletePassword)
	}

	if c.Username != "" && c.ClientID == "" && c.AccessToken == "" {
		result = multierror.Append(result, ErrPasswordNeedsClient)
	}

	if c.RetryWaitMin > 0 && c.RetryWaitMax > 0 && c.RetryWaitMin > c.RetryWaitMax {
		result = multierror.Append(result, ErrInvalidRetryWindow)
	}

	if c.TokenStore != nil && c.TokenStore.Type == TokenStoreNATS && c.TokenStore.NATS == nil {
		result = multierror.Append(result, ErrNATSConfigRequired)
	}

	return result.ErrorOrNil()
}

// TokenStoreType selects where access tokens are kept.
type TokenStoreType string

const (
	// TokenStoreMemory keeps tokens in process memory.
	TokenStoreMemory TokenStoreType = "memory"
	// TokenStoreNATS shares tokens through a NATS JetStream key-value bucket.
	TokenStoreNATS TokenStoreType = "nats"
	// TokenStoreNone keeps no token between requests.
	TokenStoreNone TokenStoreType = "none"
)

// TokenStoreConfig configures token storage.
type TokenStoreConfig struct {
	Type TokenStoreType
	NATS *NATSStoreConfig
}

// NATSStoreConfig configures the NATS KV token store.
type NATSStoreConfig struct {
	// URL of the NATS server, e.g. "nats://localhost:4222".
	URL string
	// Bucket is the KV bucket name. Created if missing.
	Bucket string
	// Key identifies the token within the bucket. Defaults to the client ID.
	Key string
	// Timeout bounds connection and KV operations.
	Timeout time.Duration
}
