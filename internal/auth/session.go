package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/fivetwenty-io/psclient/pkg/pageseeder"
)

const (
	renewKey            = "token"
	defaultRenewTimeout = 30 * time.Second
)

// State is the lifecycle state of a Session.
type State int

const (
	// StateUnauthenticated: no token, or the last exchange failed.
	StateUnauthenticated State = iota
	// StateAuthenticating: an exchange is in flight.
	StateAuthenticating
	// StateAuthenticated: a valid token is held.
	StateAuthenticated
	// StateExpired: the token passed its expiry or was rejected.
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Session owns the access token shared by all requests of a client.
// Callers that need a token while none is valid share a single exchange;
// the exchange runs on its own context so that a caller giving up does not
// abort it for the others.
type Session struct {
	exchanger    Exchanger
	store        Store
	clock        Clock
	logger       pageseeder.Logger
	renewTimeout time.Duration

	mu       sync.Mutex
	state    State
	token    *Token
	rejected string

	group singleflight.Group
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithStore sets where tokens are kept between sessions.
func WithStore(store Store) SessionOption {
	return func(s *Session) { s.store = store }
}

// WithClock sets the clock used for expiry checks.
func WithClock(clock Clock) SessionOption {
	return func(s *Session) { s.clock = clock }
}

// WithLogger sets the logger.
func WithLogger(logger pageseeder.Logger) SessionOption {
	return func(s *Session) { s.logger = logger }
}

// WithRenewTimeout bounds a single exchange.
func WithRenewTimeout(timeout time.Duration) SessionOption {
	return func(s *Session) {
		if timeout > 0 {
			s.renewTimeout = timeout
		}
	}
}

// NewSession creates an unauthenticated session.
func NewSession(exchanger Exchanger, opts ...SessionOption) *Session {
	s := &Session{
		exchanger:    exchanger,
		store:        NoOpStore{},
		clock:        SystemClock(),
		renewTimeout: defaultRenewTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkExpiryLocked()

	return s.state
}

// GetToken implements TokenManager.
func (s *Session) GetToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	s.checkExpiryLocked()

	if s.state == StateAuthenticated {
		token := s.token.AccessToken
		s.mu.Unlock()

		return token, nil
	}
	s.mu.Unlock()

	tok, err := s.await(ctx)
	if err != nil {
		return "", err
	}

	return tok.AccessToken, nil
}

// RefreshToken implements TokenManager. It discards the current token and
// waits for a new one.
func (s *Session) RefreshToken(ctx context.Context) error {
	s.mu.Lock()
	if s.token != nil {
		s.rejected = s.token.AccessToken
		s.token = nil
		s.state = StateExpired
	}
	s.mu.Unlock()

	_, err := s.await(ctx)

	return err
}

// SetToken implements TokenManager.
func (s *Session) SetToken(token string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = &Token{
		AccessToken: token,
		TokenType:   "bearer",
		IssuedAt:    s.clock.Now(),
		ExpiresAt:   expiresAt,
	}
	s.state = StateAuthenticated
	s.checkExpiryLocked()
}

// Expire implements TokenManager.
func (s *Session) Expire(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rejected = token

	if s.token != nil && s.token.AccessToken == token {
		s.token = nil
		s.state = StateExpired
	}
}

// await joins the in-flight renewal, starting one if needed.
func (s *Session) await(ctx context.Context) (*Token, error) {
	ch := s.group.DoChan(renewKey, func() (interface{}, error) {
		return s.renew()
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}

		tok, _ := res.Val.(*Token)

		return tok, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Session) renew() (*Token, error) {
	s.mu.Lock()
	s.checkExpiryLocked()

	// A renewal that finished just before this one started already
	// produced a token.
	if s.state == StateAuthenticated {
		tok := s.token
		s.mu.Unlock()

		return tok, nil
	}

	s.state = StateAuthenticating
	rejected := s.rejected
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.renewTimeout)
	defer cancel()

	if tok := s.loadStored(ctx, rejected); tok != nil {
		return s.install(tok), nil
	}

	s.log("Exchanging credentials for access token", nil)

	tok, err := s.exchanger.Exchange(ctx)
	if err != nil {
		s.mu.Lock()
		s.token = nil
		s.state = StateUnauthenticated
		s.mu.Unlock()

		s.logError("Credential exchange failed", err)

		var authErr *pageseeder.AuthError
		if !errors.As(err, &authErr) {
			err = &pageseeder.AuthError{Err: err}
		}

		return nil, err
	}

	err = s.store.Set(ctx, tok)
	if err != nil {
		s.logError("Failed to store access token", err)
	}

	return s.install(tok), nil
}

func (s *Session) loadStored(ctx context.Context, rejected string) *Token {
	tok, err := s.store.Get(ctx)
	if err != nil {
		s.logError("Failed to load stored access token", err)

		return nil
	}

	if tok == nil || tok.AccessToken == rejected || !tok.ValidAt(s.clock.Now()) {
		return nil
	}

	s.log("Using stored access token", nil)

	return tok
}

func (s *Session) install(tok *Token) *Token {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = tok
	s.state = StateAuthenticated

	fields := map[string]interface{}{}
	if !tok.ExpiresAt.IsZero() {
		fields["expires_at"] = tok.ExpiresAt.Format(time.RFC3339)
	}

	s.log("Access token acquired", fields)

	return tok
}

func (s *Session) checkExpiryLocked() {
	if s.state == StateAuthenticated && !s.token.ValidAt(s.clock.Now()) {
		s.state = StateExpired
	}
}

func (s *Session) log(msg string, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, fields)
	}
}

func (s *Session) logError(msg string, err error) {
	if s.logger != nil {
		s.logger.Warn(msg, map[string]interface{}{"error": err.Error()})
	}
}
