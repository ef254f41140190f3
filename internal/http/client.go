package http

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/fivetwenty-io/psclient/internal/auth"
	"github.com/fivetwenty-io/psclient/internal/constants"
	"github.com/fivetwenty-io/psclient/pkg/pageseeder"
)

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "psclient-go/1.0"

const (
	contentTypeXML  = "application/xml"
	contentTypeForm = "application/x-www-form-urlencoded"
)

// Client is an HTTP client for the PageSeeder service API.
type Client struct {
	baseURL      string
	httpClient   *retryablehttp.Client
	tokenManager auth.TokenManager
	logger       pageseeder.Logger
	debug        bool
	userAgent    string
	interceptors *pageseeder.InterceptorChain
	limiter      pageseeder.RequestInterceptor
}

// Request represents an HTTP request.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Body is nil, []byte, string, io.Reader or url.Values (sent as a form).
	Body        interface{}
	ContentType string
	Headers     map[string]string
	// Operation names the call in errors. Defaults to "METHOD path".
	Operation string
}

// Response represents an HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithLogger sets the logger.
func WithLogger(logger pageseeder.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) ClientOption {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets the user agent.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithRetryConfig sets the retry configuration. A negative retryMax
// disables retries.
func WithRetryConfig(retryMax int, retryWaitMin, retryWaitMax time.Duration) ClientOption {
	return func(c *Client) {
		if retryMax < 0 {
			retryMax = 0
		}

		c.httpClient.RetryMax = retryMax

		if retryWaitMin > 0 {
			c.httpClient.RetryWaitMin = retryWaitMin
		}

		if retryWaitMax > 0 {
			c.httpClient.RetryWaitMax = retryWaitMax
		}
	}
}

// WithTimeout bounds each round trip.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.HTTPClient.Timeout = timeout
		}
	}
}

// WithRateLimit throttles attempts to rps per second. Zero disables it.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = pageseeder.RateLimitInterceptor(rps, burst)
		}
	}
}

// WithHTTPClient sets the underlying HTTP client. Its transport is wrapped,
// the client itself is not modified.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			clone := *client
			c.httpClient.HTTPClient = &clone
		}
	}
}

// WithInterceptors runs chain around every attempt.
func WithInterceptors(chain *pageseeder.InterceptorChain) ClientOption {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// NewClient creates a new HTTP client. tokenManager may be nil for
// unauthenticated calls.
func NewClient(baseURL string, tokenManager auth.TokenManager, opts ...ClientOption) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = cleanhttp.DefaultPooledClient()
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	retryClient.RetryMax = constants.DefaultRetryMax
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.Logger = nil
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   retryClient,
		tokenManager: tokenManager,
		userAgent:    DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	retryClient.CheckRetry = checkRetry

	if client.logger != nil && client.debug {
		retryClient.Logger = &leveledLogger{logger: client.logger}
	}

	base := retryClient.HTTPClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	retryClient.HTTPClient.Transport = &attemptTransport{base: base, client: client}

	return client
}

// MaxAttempts returns how many times a retryable request is sent at most.
func (c *Client) MaxAttempts() int {
	return c.httpClient.RetryMax + 1
}

// Do sends the request and classifies the response.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	operation := req.Operation
	if operation == "" {
		operation = req.Method + " " + req.Path
	}

	payload, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, err
	}

	if req.ContentType != "" {
		contentType = req.ContentType
	}

	requestID := uuid.NewString()
	renewed := false
	token := ""

	if c.tokenManager != nil {
		token, err = c.tokenManager.GetToken(ctx)
		if err != nil {
			return nil, err
		}
	}

	for {

		resp, attempts, err := c.send(ctx, req, payload, contentType, token, requestID)
		if err != nil {
			return nil, c.classifyError(ctx, operation, attempts, err)
		}

		if isAuthFailure(resp.StatusCode) && c.tokenManager != nil && token != "" && !renewed {
			renewed = true

			c.tokenManager.Expire(token)

			next, err := c.tokenManager.GetToken(ctx)
			if err != nil {
				return nil, err
			}

			// A manager that cannot renew hands back the rejected token.
			if next != token {
				if c.logger != nil {
					c.logger.Debug("Access token rejected, renewing", map[string]interface{}{
						"status":     resp.StatusCode,
						"request_id": requestID,
					})
				}

				token = next

				continue
			}
		}

		if resp.StatusCode >= http.StatusBadRequest {
			return resp, pageseeder.ParseAPIError(resp.StatusCode, resp.Headers.Get("Content-Type"), resp.Body)
		}

		return resp, nil
	}
}

func (c *Client) send(
	ctx context.Context, req *Request, payload []byte, contentType, token, requestID string,
) (*Response, int, error) {
	fullURL := c.baseURL + req.Path
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	var body interface{}
	if payload != nil {
		body = payload
	}

	counter := &attemptCounter{}
	ctx = context.WithValue(ctx, attemptKey{}, counter)

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Accept", contentTypeXML)
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set(pageseeder.RequestIDHeader, requestID)

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if httpResp != nil {
			_ = httpResp.Body.Close()
		}

		return nil, counter.load(), err
	}

	defer func() { _ = httpResp.Body.Close() }()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, counter.load(), &pageseeder.TransportError{
			Operation:  req.Method + " " + req.Path,
			Attempts:   counter.load(),
			StatusCode: httpResp.StatusCode,
			Err:        fmt.Errorf("failed to read response body: %w", err),
		}
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       data,
	}, counter.load(), nil
}

// classifyError maps a failed exchange to the error taxonomy. Cancellation
// by the caller is returned as is.
func (c *Client) classifyError(ctx context.Context, operation string, attempts int, err error) error {
	var typed *pageseeder.TransportError
	if errors.As(err, &typed) {
		return err
	}

	var intercepted *interceptorError
	if errors.As(err, &intercepted) {
		err = intercepted.err
	}

	if errors.Is(err, context.Canceled) {
		return err
	}

	if ctx.Err() != nil && errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}

	if isTimeout(err) {
		return &pageseeder.TimeoutError{Operation: operation, Attempts: attempts, Err: err}
	}

	if intercepted != nil {
		return err
	}

	return &pageseeder.TransportError{Operation: operation, Attempts: attempts, Err: err}
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
	})
}

// Post performs a POST request with a raw body.
func (c *Client) Post(ctx context.Context, path string, query url.Values, body []byte, contentType string) (*Response, error) {
	return c.Do(ctx, &Request{
		Method:      http.MethodPost,
		Path:        path,
		Query:       query,
		Body:        body,
		ContentType: contentType,
	})
}

// PostForm performs a POST request with a form encoded body.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodPost,
		Path:   path,
		Body:   form,
	})
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, path string, query url.Values, body interface{}, contentType string) (*Response, error) {
	return c.Do(ctx, &Request{
		Method:      http.MethodPut,
		Path:        path,
		Query:       query,
		Body:        body,
		ContentType: contentType,
	})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodDelete,
		Path:   path,
		Query:  query,
	})
}

// DecodeXML unmarshals a successful response body into v.
func DecodeXML(operation string, resp *Response, v interface{}) error {
	err := xml.Unmarshal(resp.Body, v)
	if err != nil {
		return &pageseeder.MalformedResponseError{
			Operation:   operation,
			StatusCode:  resp.StatusCode,
			ContentType: resp.Headers.Get("Content-Type"),
			Err:         err,
		}
	}

	return nil
}

// encodeBody reads the request body once so it can be replayed on retries.
func encodeBody(body interface{}) ([]byte, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case []byte:
		if len(b) == 0 {
			return nil, "", nil
		}

		return b, contentTypeXML, nil
	case string:
		return []byte(b), contentTypeXML, nil
	case url.Values:
		return []byte(b.Encode()), contentTypeForm, nil
	case io.Reader:
		data, err := io.ReadAll(b)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read request body: %w", err)
		}

		return data, "application/octet-stream", nil
	default:
		return nil, "", fmt.Errorf("unsupported request body type %T", body)
	}
}

// checkRetry retries 429, 5xx and transport failures.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if err != nil {
		var intercepted *interceptorError
		if errors.As(err, &intercepted) {
			return false, err
		}

		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}

	return isRetryableStatus(resp.StatusCode), nil
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

func isAuthFailure(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}

type attemptKey struct{}

type attemptCounter struct {
	n atomic.Int32
}

func (a *attemptCounter) next() int { return int(a.n.Add(1)) }

func (a *attemptCounter) load() int { return int(a.n.Load()) }

// interceptorError marks an error returned by an interceptor so that it is
// not retried.
type interceptorError struct {
	err error
}

func (e *interceptorError) Error() string { return e.err.Error() }

func (e *interceptorError) Unwrap() error { return e.err }

// attemptTransport runs the interceptors and debug logging around every
// attempt made by the retrying client.
type attemptTransport struct {
	base   http.RoundTripper
	client *Client
}

func (t *attemptTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	attempt := 1
	if counter, ok := ctx.Value(attemptKey{}).(*attemptCounter); ok {
		attempt = counter.next()
	}

	req = req.Clone(ctx)

	info := &pageseeder.Request{
		Method:   req.Method,
		Path:     req.URL.Path,
		Headers:  req.Header,
		Attempt:  attempt,
		Metadata: map[string]interface{}{},
	}

	if t.client.limiter != nil {
		err := t.client.limiter(ctx, info)
		if err != nil {
			return nil, &interceptorError{err: err}
		}
	}

	err := t.client.interceptors.ExecuteRequestInterceptors(ctx, info)
	if err != nil {
		return nil, &interceptorError{err: err}
	}

	start := time.Now()
	t.logRequest(info)

	resp, err := t.base.RoundTrip(req)

	result := &pageseeder.Response{Error: err}
	if resp != nil {
		result.StatusCode = resp.StatusCode
		result.Headers = resp.Header
	}

	t.logResponse(info, result, time.Since(start))

	ierr := t.client.interceptors.ExecuteResponseInterceptors(ctx, info, result)
	if ierr != nil {
		if resp != nil {
			_ = resp.Body.Close()
		}

		return nil, &interceptorError{err: ierr}
	}

	return resp, err
}

func (t *attemptTransport) logRequest(req *pageseeder.Request) {
	if t.client.logger == nil || !t.client.debug {
		return
	}

	t.client.logger.Debug("HTTP Request", map[string]interface{}{
		"method":     req.Method,
		"path":       req.Path,
		"attempt":    req.Attempt,
		"request_id": req.Headers.Get(pageseeder.RequestIDHeader),
	})
}

func (t *attemptTransport) logResponse(req *pageseeder.Request, resp *pageseeder.Response, duration time.Duration) {
	if t.client.logger == nil || !t.client.debug {
		return
	}

	fields := map[string]interface{}{
		"method":     req.Method,
		"path":       req.Path,
		"status":     resp.StatusCode,
		"attempt":    req.Attempt,
		"request_id": req.Headers.Get(pageseeder.RequestIDHeader),
		"duration":   duration.String(),
	}

	if resp.Error != nil {
		fields["error"] = resp.Error.Error()
	}

	t.client.logger.Debug("HTTP Response", fields)
}

// leveledLogger routes retryablehttp's own logging to a pageseeder.Logger.
type leveledLogger struct {
	logger pageseeder.Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, fieldsOf(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, fieldsOf(keysAndValues))
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, fieldsOf(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, fieldsOf(keysAndValues))
}

func fieldsOf(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}

	return fields
}
