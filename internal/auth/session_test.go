package auth_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fivetwenty-io/psclient/internal/auth"
	"github.com/fivetwenty-io/psclient/pkg/pageseeder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBadCredentials = errors.New("bad credentials")

// countingExchanger issues token-1, token-2, ... and can be held open.
type countingExchanger struct {
	calls   atomic.Int32
	release chan struct{}
	err     error
	ttl     time.Duration
	clock   auth.Clock
}

func (e *countingExchanger) Exchange(ctx context.Context) (*auth.Token, error) {
	n := e.calls.Add(1)

	if e.release != nil {
		select {
		case <-e.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if e.err != nil {
		return nil, e.err
	}

	tok := &auth.Token{AccessToken: "token-" + strconv.Itoa(int(n))}
	if e.ttl > 0 {
		tok.ExpiresAt = e.clock.Now().Add(e.ttl)
	}

	return tok, nil
}

func TestSession_ConcurrentCallersShareOneExchange(t *testing.T) {
	t.Parallel()

	exchanger := &countingExchanger{release: make(chan struct{})}
	session := auth.NewSession(exchanger)

	const callers = 20

	var (
		wg     sync.WaitGroup
		tokens = make([]string, callers)
		errs   = make([]error, callers)
	)

	for i := range callers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			tokens[i], errs[i] = session.GetToken(context.Background())
		}()
	}

	require.Eventually(t, func() bool { return exchanger.calls.Load() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, auth.StateAuthenticating, session.State())

	close(exchanger.release)
	wg.Wait()

	assert.Equal(t, int32(1), exchanger.calls.Load())

	for i := range callers {
		require.NoError(t, errs[i])
		assert.Equal(t, "token-1", tokens[i])
	}

	assert.Equal(t, auth.StateAuthenticated, session.State())
}

func TestSession_ConcurrentCallersShareFailure(t *testing.T) {
	t.Parallel()

	exchanger := &countingExchanger{release: make(chan struct{}), err: errBadCredentials}
	session := auth.NewSession(exchanger)

	var wg sync.WaitGroup

	errs := make([]error, 5)

	for i := range errs {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, errs[i] = session.GetToken(context.Background())
		}()
	}

	require.Eventually(t, func() bool { return exchanger.calls.Load() == 1 }, time.Second, time.Millisecond)
	close(exchanger.release)
	wg.Wait()

	for _, err := range errs {
		var authErr *pageseeder.AuthError
		require.ErrorAs(t, err, &authErr)
		require.ErrorIs(t, err, errBadCredentials)
	}

	assert.Equal(t, int32(1), exchanger.calls.Load())
	assert.Equal(t, auth.StateUnauthenticated, session.State())
}

func TestSession_FailedExchangeAllowsRetry(t *testing.T) {
	t.Parallel()

	exchanger := &countingExchanger{err: errBadCredentials}
	session := auth.NewSession(exchanger)

	_, err := session.GetToken(context.Background())
	require.True(t, pageseeder.IsAuthError(err))
	assert.Equal(t, auth.StateUnauthenticated, session.State())

	exchanger.err = nil

	token, err := session.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-2", token)
}

func TestSession_CancelledWaiterDoesNotBlockRenewal(t *testing.T) {
	t.Parallel()

	exchanger := &countingExchanger{release: make(chan struct{})}
	session := auth.NewSession(exchanger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		_, err := session.GetToken(ctx)
		done <- err
	}()

	require.Eventually(t, func() bool { return exchanger.calls.Load() == 1 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller did not return")
	}

	close(exchanger.release)

	token, err := session.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", token, "the detached exchange still completed")
	assert.Equal(t, int32(1), exchanger.calls.Load())
}

func TestSession_ExpiryFollowsClock(t *testing.T) {
	t.Parallel()

	clock := auth.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	exchanger := &countingExchanger{ttl: time.Hour, clock: clock}
	session := auth.NewSession(exchanger, auth.WithClock(clock))

	token, err := session.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)

	clock.Advance(30 * time.Minute)

	token, err = session.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)

	clock.Advance(29*time.Minute + 45*time.Second)
	assert.Equal(t, auth.StateExpired, session.State(), "inside the expiry buffer")

	token, err = session.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-2", token)
	assert.Equal(t, int32(2), exchanger.calls.Load())
}

func TestSession_ExpireOnlyAffectsMatchingToken(t *testing.T) {
	t.Parallel()

	exchanger := &countingExchanger{}
	session := auth.NewSession(exchanger)

	token, err := session.GetToken(context.Background())
	require.NoError(t, err)

	session.Expire("some-older-token")
	assert.Equal(t, auth.StateAuthenticated, session.State())

	session.Expire(token)
	assert.Equal(t, auth.StateExpired, session.State())

	token, err = session.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-2", token)
}

func TestSession_RefreshToken(t *testing.T) {
	t.Parallel()

	exchanger := &countingExchanger{}
	session := auth.NewSession(exchanger)
	session.SetToken("manual", time.Time{})

	token, err := session.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "manual", token)
	assert.Zero(t, exchanger.calls.Load())

	require.NoError(t, session.RefreshToken(context.Background()))

	token, err = session.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)
}

func TestSession_UsesStoredToken(t *testing.T) {
	t.Parallel()

	store := auth.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), &auth.Token{AccessToken: "shared"}))

	exchanger := &countingExchanger{}
	session := auth.NewSession(exchanger, auth.WithStore(store))

	token, err := session.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "shared", token)
	assert.Zero(t, exchanger.calls.Load())

	session.Expire("shared")

	token, err = session.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", token, "a rejected stored token is not reused")

	stored, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", stored.AccessToken)
}

func TestStaticTokenManager(t *testing.T) {
	t.Parallel()

	manager := auth.NewStaticTokenManager("static")
	manager.Expire("static")

	token, err := manager.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "static", token)
	require.ErrorIs(t, manager.RefreshToken(context.Background()), auth.ErrStaticTokenCannotRenew)
}

func TestState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "authenticating", auth.StateAuthenticating.String())
	assert.Equal(t, "unknown", auth.State(42).String())
}
