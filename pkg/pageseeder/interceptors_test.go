package pageseeder_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/fivetwenty-io/psclient/pkg/pageseeder"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDenied = errors.New("denied")

type recordingLogger struct {
	entries []string
	fields  []map[string]interface{}
}

func (l *recordingLogger) record(level, msg string, fields map[string]interface{}) {
	l.entries = append(l.entries, level+" "+msg)
	l.fields = append(l.fields, fields)
}

func (l *recordingLogger) Debug(msg string, fields map[string]interface{}) { l.record("debug", msg, fields) }
func (l *recordingLogger) Info(msg string, fields map[string]interface{})  { l.record("info", msg, fields) }
func (l *recordingLogger) Warn(msg string, fields map[string]interface{})  { l.record("warn", msg, fields) }
func (l *recordingLogger) Error(msg string, fields map[string]interface{}) { l.record("error", msg, fields) }

func TestInterceptorChain_Order(t *testing.T) {
	t.Parallel()

	var order []string

	chain := pageseeder.NewInterceptorChain().
		AddRequestInterceptor(func(ctx context.Context, req *pageseeder.Request) error {
			order = append(order, "first")

			return nil
		}).
		AddRequestInterceptor(func(ctx context.Context, req *pageseeder.Request) error {
			order = append(order, "second")

			return nil
		})

	err := chain.ExecuteRequestInterceptors(context.Background(), &pageseeder.Request{Method: http.MethodGet, Path: "/x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestInterceptorChain_ErrorStopsChain(t *testing.T) {
	t.Parallel()

	called := false

	chain := pageseeder.NewInterceptorChain().
		AddResponseInterceptor(func(ctx context.Context, req *pageseeder.Request, resp *pageseeder.Response) error {
			return errDenied
		}).
		AddResponseInterceptor(func(ctx context.Context, req *pageseeder.Request, resp *pageseeder.Response) error {
			called = true

			return nil
		})

	err := chain.ExecuteResponseInterceptors(context.Background(), &pageseeder.Request{}, &pageseeder.Response{})
	require.ErrorIs(t, err, errDenied)
	assert.False(t, called)
}

func TestInterceptorChain_NilIsNoop(t *testing.T) {
	t.Parallel()

	var chain *pageseeder.InterceptorChain

	require.NoError(t, chain.ExecuteRequestInterceptors(context.Background(), &pageseeder.Request{}))
	require.NoError(t, chain.ExecuteResponseInterceptors(context.Background(), &pageseeder.Request{}, &pageseeder.Response{}))
}

func TestRequestIDInterceptor(t *testing.T) {
	t.Parallel()

	interceptor := pageseeder.RequestIDInterceptor()

	req := &pageseeder.Request{}
	require.NoError(t, interceptor(context.Background(), req))

	id := req.Headers.Get(pageseeder.RequestIDHeader)
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	require.NoError(t, interceptor(context.Background(), req))
	assert.Equal(t, id, req.Headers.Get(pageseeder.RequestIDHeader), "retries keep the ID")
}

func TestHeaderInterceptor(t *testing.T) {
	t.Parallel()

	req := &pageseeder.Request{}
	require.NoError(t, pageseeder.HeaderInterceptor(map[string]string{"X-Team": "docs"})(context.Background(), req))
	assert.Equal(t, "docs", req.Headers.Get("X-Team"))
}

func TestRateLimitInterceptor_RespectsContext(t *testing.T) {
	t.Parallel()

	limit := pageseeder.RateLimitInterceptor(0.001, 1)

	require.NoError(t, limit(context.Background(), &pageseeder.Request{}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	require.Error(t, limit(ctx, &pageseeder.Request{}))
}

func TestLoggingInterceptors(t *testing.T) {
	t.Parallel()

	logger := &recordingLogger{}
	req := &pageseeder.Request{Method: http.MethodGet, Path: "/ps/service/groups/g", Attempt: 1}

	require.NoError(t, pageseeder.LoggingInterceptor(logger)(context.Background(), req))
	require.NoError(t, pageseeder.LoggingResponseInterceptor(logger)(context.Background(), req, &pageseeder.Response{StatusCode: 200}))
	require.NoError(t, pageseeder.LoggingResponseInterceptor(logger)(context.Background(), req, &pageseeder.Response{Error: errDenied}))

	assert.Equal(t, []string{"debug API Request", "debug API Response", "error API Response Error"}, logger.entries)
	assert.Equal(t, "denied", logger.fields[2]["error"])
}

func TestMetricsInterceptors(t *testing.T) {
	t.Parallel()

	collector := pageseeder.NewMetricsCollector()

	var changes int

	collector.SetOnChange(func(endpoint string, m pageseeder.Metrics) { changes++ })

	chain := pageseeder.NewInterceptorChain().
		AddRequestInterceptor(pageseeder.MetricsRequestInterceptor(collector)).
		AddResponseInterceptor(pageseeder.MetricsResponseInterceptor(collector))

	for _, status := range []int{200, 500} {
		req := &pageseeder.Request{Method: http.MethodGet, Path: "/ps/service/threads/1/progress"}
		require.NoError(t, chain.ExecuteRequestInterceptors(context.Background(), req))
		require.NoError(t, chain.ExecuteResponseInterceptors(context.Background(), req, &pageseeder.Response{StatusCode: status}))
	}

	m, ok := collector.GetMetrics("GET /ps/service/threads/1/progress")
	require.True(t, ok)
	assert.Equal(t, int64(2), m.TotalRequests)
	assert.Equal(t, int64(1), m.TotalErrors)
	assert.Equal(t, 2, changes)

	_, ok = collector.GetMetrics("GET /other")
	assert.False(t, ok)

	all := collector.All()
	require.Len(t, all, 1)
	assert.Equal(t, m, all["GET /ps/service/threads/1/progress"])
}
