package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/fivetwenty-io/psclient/internal/client"
	"github.com/fivetwenty-io/psclient/pkg/pageseeder"
	"github.com/stretchr/testify/require"
)

// testServer counts the requests it receives.
type testServer struct {
	*httptest.Server

	requests atomic.Int32
}

func newTestServer(t *testing.T, handler http.HandlerFunc) *testServer {
	t.Helper()

	ts := &testServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ts.requests.Add(1)
		handler(writer, request)
	}))
	t.Cleanup(ts.Close)

	return ts
}

// newTestClient returns an unauthenticated client for server without retries.
func newTestClient(t *testing.T, server *testServer) *Client {
	t.Helper()

	c, err := New(context.Background(), &pageseeder.Config{
		BaseURL:     server.URL,
		RetryMax:    -1,
		HTTPTimeout: 5 * time.Second,
	})
	require.NoError(t, err)

	return c
}

func writeXML(writer http.ResponseWriter, status int, body string) {
	writer.Header().Set("Content-Type", "application/xml")
	writer.WriteHeader(status)
	_, _ = writer.Write([]byte(body))
}

// staticXML answers every request with body.
func staticXML(body string) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		writeXML(writer, http.StatusOK, body)
	}
}
