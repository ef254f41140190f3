package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/fivetwenty-io/psclient/internal/auth"
	. "github.com/fivetwenty-io/psclient/internal/client"
	"github.com/fivetwenty-io/psclient/pkg/pageseeder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("nil config", func(t *testing.T) {
		t.Parallel()

		_, err := New(context.Background(), nil)
		require.ErrorIs(t, err, pageseeder.ErrConfigRequired)
	})

	t.Run("invalid config reports every problem", func(t *testing.T) {
		t.Parallel()

		_, err := New(context.Background(), &pageseeder.Config{ClientID: "app"})
		require.Error(t, err)
		assert.ErrorIs(t, err, pageseeder.ErrIncompleteCredentials)
		assert.Contains(t, err.Error(), pageseeder.ErrBaseURLRequired.Error())
	})

	t.Run("NATS store without settings", func(t *testing.T) {
		t.Parallel()

		_, err := New(context.Background(), &pageseeder.Config{
			BaseURL:    "https://ps.example.com",
			TokenStore: &pageseeder.TokenStoreConfig{Type: pageseeder.TokenStoreNATS},
		})
		require.ErrorIs(t, err, pageseeder.ErrNATSConfigRequired)
	})

	t.Run("resource clients", func(t *testing.T) {
		t.Parallel()

		c, err := New(context.Background(), &pageseeder.Config{BaseURL: "https://ps.example.com"})
		require.NoError(t, err)

		assert.NotNil(t, c.Groups())
		assert.NotNil(t, c.URIs())
		assert.NotNil(t, c.Fragments())
		assert.NotNil(t, c.Search())
		assert.NotNil(t, c.Threads())
		assert.NotNil(t, c.Uploads())
		assert.NotNil(t, c.LoadingZone())
		assert.NotNil(t, c.HTTPClient())
		require.NoError(t, c.Close())
	})
}

func TestNew_TokenManager(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		config pageseeder.Config
		check  func(t *testing.T, tm auth.TokenManager)
	}{
		{
			name:   "no credentials",
			config: pageseeder.Config{},
			check: func(t *testing.T, tm auth.TokenManager) {
				t.Helper()
				assert.Nil(t, tm)
			},
		},
		{
			name:   "access token only",
			config: pageseeder.Config{AccessToken: "static"},
			check: func(t *testing.T, tm auth.TokenManager) {
				t.Helper()
				assert.IsType(t, &auth.StaticTokenManager{}, tm)
			},
		},
		{
			name:   "client credentials",
			config: pageseeder.Config{ClientID: "app", ClientSecret: "secret"},
			check: func(t *testing.T, tm auth.TokenManager) {
				t.Helper()
				assert.IsType(t, &auth.Session{}, tm)
			},
		},
		{
			name:   "password grant",
			config: pageseeder.Config{ClientID: "app", Username: "jdoe", Password: "pw"},
			check: func(t *testing.T, tm auth.TokenManager) {
				t.Helper()
				assert.IsType(t, &auth.Session{}, tm)
			},
		},
		{
			name:   "access token seeds the session",
			config: pageseeder.Config{ClientID: "app", ClientSecret: "secret", AccessToken: "seed"},
			check: func(t *testing.T, tm auth.TokenManager) {
				t.Helper()

				token, err := tm.GetToken(context.Background())
				require.NoError(t, err)
				assert.Equal(t, "seed", token)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			config := tt.config
			config.BaseURL = "https://ps.example.com"

			c, err := New(context.Background(), &config)
			require.NoError(t, err)
			tt.check(t, c.TokenManager())
		})
	}
}

func TestClient_ClientCredentialsFlow(t *testing.T) {
	t.Parallel()

	var exchanges, rejected atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/ps/oauth/token":
			assert.NoError(t, request.ParseForm())
			assert.Equal(t, "client_credentials", request.PostForm.Get("grant_type"))
			assert.Equal(t, "app", request.PostForm.Get("client_id"))

			n := exchanges.Add(1)

			writer.Header().Set("Content-Type", "application/json")
			_, _ = writer.Write([]byte(`{"access_token":"issued-` + strconv.Itoa(int(n)) +
				`","token_type":"bearer","expires_in":3600}`))
		case "/ps/service/groups/acme-docs":
			if request.Header.Get("Authorization") == "Bearer stale" {
				rejected.Add(1)
				writeXML(writer, http.StatusUnauthorized, `<error><message>Token expired</message></error>`)

				return
			}

			assert.Equal(t, "Bearer issued-1", request.Header.Get("Authorization"))
			writeXML(writer, http.StatusOK, `<group id="1" name="acme-docs"/>`)
		default:
			t.Errorf("unexpected request %s", request.URL.Path)
		}
	}))
	defer server.Close()

	c, err := New(context.Background(), &pageseeder.Config{
		BaseURL:      server.URL,
		ClientID:     "app",
		ClientSecret: "secret",
		AccessToken:  "stale",
		RetryMax:     -1,
	})
	require.NoError(t, err)

	defer func() { _ = c.Close() }()

	group, err := c.Groups().Get(context.Background(), "acme-docs")
	require.NoError(t, err)
	assert.Equal(t, "acme-docs", group.Name)
	assert.Equal(t, int32(1), rejected.Load())
	assert.Equal(t, int32(1), exchanges.Load())

	_, err = c.Groups().Get(context.Background(), "acme-docs")
	require.NoError(t, err)
	assert.Equal(t, int32(1), exchanges.Load())
}

func TestClient_StaticTokenRejected(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "Bearer static", request.Header.Get("Authorization"))
		writeXML(writer, http.StatusUnauthorized, `<error><message>Invalid token</message></error>`)
	})

	c, err := New(context.Background(), &pageseeder.Config{BaseURL: server.URL, AccessToken: "static", RetryMax: -1})
	require.NoError(t, err)

	_, err = c.Groups().Get(context.Background(), "acme-docs")
	require.Error(t, err)
	assert.True(t, pageseeder.IsUnauthorized(err))
	assert.Equal(t, int32(1), server.requests.Load())
}

func TestClient_UserAgentAndInterceptors(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "psctl-test/0.1", request.Header.Get("User-Agent"))
		assert.Equal(t, "acme", request.Header.Get("X-Tenant"))
		writeXML(writer, http.StatusOK, `<group id="1" name="acme-docs"/>`)
	})

	chain := pageseeder.NewInterceptorChain()
	chain.AddRequestInterceptor(pageseeder.HeaderInterceptor(map[string]string{"X-Tenant": "acme"}))

	c, err := New(context.Background(), &pageseeder.Config{
		BaseURL:      server.URL,
		UserAgent:    "psctl-test/0.1",
		Interceptors: chain,
		RetryMax:     -1,
	})
	require.NoError(t, err)

	_, err = c.Groups().Get(context.Background(), "acme-docs")
	require.NoError(t, err)
}
