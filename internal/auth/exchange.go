package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/fivetwenty-io/psclient/pkg/pageseeder"
)

// TokenPath is the OAuth2 token endpoint relative to the server root.
const TokenPath = "/ps/oauth/token"

// Static errors for err113 compliance.
var (
	ErrStaticTokenCannotRenew = pageseeder.ErrStaticTokenCannotRenew
	ErrNoCredentials          = errors.New("no valid credentials available")
	ErrEmptyAccessToken       = errors.New("token response has no access_token")
)

// Exchanger obtains a new token from the server.
type Exchanger interface {
	Exchange(ctx context.Context) (*Token, error)
}

// ExchangerFunc adapts a function to Exchanger.
type ExchangerFunc func(ctx context.Context) (*Token, error)

// Exchange implements Exchanger.
func (f ExchangerFunc) Exchange(ctx context.Context) (*Token, error) { return f(ctx) }

// TokenURL returns the token endpoint for a server root.
func TokenURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + TokenPath
}

// OAuth2Config holds the settings for an OAuth2 grant.
type OAuth2Config struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	Scopes       []string
	// HTTPClient sends the token request. Nil uses http.DefaultClient.
	HTTPClient *http.Client
	Clock      Clock
}

func (c *OAuth2Config) context(ctx context.Context) context.Context {
	if c.HTTPClient != nil {
		return context.WithValue(ctx, oauth2.HTTPClient, c.HTTPClient)
	}

	return ctx
}

func (c *OAuth2Config) clock() Clock {
	if c.Clock != nil {
		return c.Clock
	}

	return SystemClock()
}

// ClientCredentialsExchanger performs the client_credentials grant.
type ClientCredentialsExchanger struct {
	config *OAuth2Config
	cc     *clientcredentials.Config
}

// NewClientCredentialsExchanger creates an exchanger for the client_credentials grant.
func NewClientCredentialsExchanger(config *OAuth2Config) *ClientCredentialsExchanger {
	return &ClientCredentialsExchanger{
		config: config,
		cc: &clientcredentials.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			TokenURL:     config.TokenURL,
			Scopes:       config.Scopes,
			AuthStyle:    oauth2.AuthStyleInParams,
		},
	}
}

// Exchange implements Exchanger.
func (e *ClientCredentialsExchanger) Exchange(ctx context.Context) (*Token, error) {
	tok, err := e.cc.Token(e.config.context(ctx))
	if err != nil {
		return nil, classifyExchangeError(err)
	}

	return checkToken(tokenFromOAuth2(tok, e.config.clock().Now()))
}

// PasswordExchanger performs the password grant. When the server issued a
// refresh token, renewals use it first and fall back to the password.
type PasswordExchanger struct {
	config *OAuth2Config
	oc     *oauth2.Config

	mu           sync.Mutex
	refreshToken string
}

// NewPasswordExchanger creates an exchanger for the password grant.
func NewPasswordExchanger(config *OAuth2Config) *PasswordExchanger {
	return &PasswordExchanger{
		config: config,
		oc: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Scopes:       config.Scopes,
			Endpoint: oauth2.Endpoint{
				TokenURL:  config.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}
}

// Exchange implements Exchanger.
func (e *PasswordExchanger) Exchange(ctx context.Context) (*Token, error) {
	ctx = e.config.context(ctx)

	e.mu.Lock()
	refresh := e.refreshToken
	e.mu.Unlock()

	if refresh != "" {
		tok, err := e.oc.TokenSource(ctx, &oauth2.Token{RefreshToken: refresh}).Token()
		if err == nil {
			return e.remember(tok)
		}

		if ctx.Err() != nil {
			return nil, classifyExchangeError(err)
		}
	}

	tok, err := e.oc.PasswordCredentialsToken(ctx, e.config.Username, e.config.Password)
	if err != nil {
		return nil, classifyExchangeError(err)
	}

	return e.remember(tok)
}

func (e *PasswordExchanger) remember(tok *oauth2.Token) (*Token, error) {
	e.mu.Lock()
	e.refreshToken = tok.RefreshToken
	e.mu.Unlock()

	return checkToken(tokenFromOAuth2(tok, e.config.clock().Now()))
}

func checkToken(tok *Token) (*Token, error) {
	if tok.AccessToken == "" {
		return nil, &pageseeder.AuthError{Err: ErrEmptyAccessToken}
	}

	return tok, nil
}

// classifyExchangeError converts an x/oauth2 error into an AuthError.
func classifyExchangeError(err error) error {
	authErr := &pageseeder.AuthError{Err: err}

	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		authErr.Code = re.ErrorCode
		authErr.Description = re.ErrorDescription

		contentType := ""
		if re.Response != nil {
			authErr.StatusCode = re.Response.StatusCode
			contentType = re.Response.Header.Get("Content-Type")
		}

		if authErr.Code == "" && len(re.Body) > 0 {
			parsed := pageseeder.ParseAPIError(authErr.StatusCode, contentType, re.Body)
			authErr.Code = parsed.ID
			authErr.Description = parsed.Message
		}
	}

	return authErr
}

// NewExchanger picks the grant from the configured credentials: the
// password grant when a username is set, client_credentials otherwise.
func NewExchanger(config *OAuth2Config) (Exchanger, error) {
	switch {
	case config.ClientID != "" && config.Username != "":
		return NewPasswordExchanger(config), nil
	case config.ClientID != "" && config.ClientSecret != "":
		return NewClientCredentialsExchanger(config), nil
	default:
		return nil, ErrNoCredentials
	}
}
