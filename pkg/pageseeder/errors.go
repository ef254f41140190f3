package pageseeder

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

const maxErrorMessageLen = 512

// APIError is a non-success response from the server that is not retried.
type APIError struct {
	StatusCode int    `json:"status_code"       yaml:"status_code"`
	ID         string `json:"id,omitempty"      yaml:"id,omitempty"`
	Request    string `json:"request,omitempty" yaml:"request,omitempty"`
	Message    string `json:"message"           yaml:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "pageseeder API error (status %d", e.StatusCode)

	if e.ID != "" {
		fmt.Fprintf(&b, ", id %s", e.ID)
	}

	b.WriteString(")")

	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}

	return b.String()
}

// AuthError is a failed token exchange.
type AuthError struct {
	StatusCode  int
	Code        string
	Description string
	Err         error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	switch {
	case e.Code != "" && e.Description != "":
		return fmt.Sprintf("authentication failed: %s: %s", e.Code, e.Description)
	case e.Code != "":
		return "authentication failed: " + e.Code
	case e.Err != nil:
		return "authentication failed: " + e.Err.Error()
	default:
		return "authentication failed"
	}
}

// Unwrap returns the underlying error.
func (e *AuthError) Unwrap() error { return e.Err }

// InvalidRequestError is returned before any request is sent.
type InvalidRequestError struct {
	Operation string
	Parameter string
	Err       error
}

// Error implements the error interface.
func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("%s: invalid %s: %v", e.Operation, e.Parameter, e.Err)
}

// Unwrap returns the underlying error.
func (e *InvalidRequestError) Unwrap() error { return e.Err }

// MalformedResponseError is a success response whose body could not be decoded.
type MalformedResponseError struct {
	Operation   string
	StatusCode  int
	ContentType string
	Err         error
}

// Error implements the error interface.
func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: malformed response (status %d, %s): %v", e.Operation, e.StatusCode, e.ContentType, e.Err)
}

// Unwrap returns the underlying error.
func (e *MalformedResponseError) Unwrap() error { return e.Err }

// TimeoutError is returned when the request or the retry window timed out.
type TimeoutError struct {
	Operation string
	Attempts  int
	Err       error
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: timed out after %d attempt(s): %v", e.Operation, e.Attempts, e.Err)
}

// Unwrap returns the underlying error.
func (e *TimeoutError) Unwrap() error { return e.Err }

// TransportError is a connection level failure, or retries exhausted on
// retryable status codes.
type TransportError struct {
	Operation  string
	Attempts   int
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: giving up after %d attempt(s), last status %d: %v", e.Operation, e.Attempts, e.StatusCode, e.Err)
	}

	return fmt.Sprintf("%s: giving up after %d attempt(s): %v", e.Operation, e.Attempts, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error { return e.Err }

// Sentinels used with InvalidRequestError.
var (
	ErrEmptyParameter   = errors.New("must not be empty")
	ErrInvalidParameter = errors.New("contains invalid characters")
	ErrNilContent       = errors.New("content is required")
)

// IsNotFound checks if the error is a 404 API error.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized checks if the error is a 401 API error.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsForbidden checks if the error is a 403 API error.
func IsForbidden(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

// IsAuthError checks if the error came from the token exchange.
func IsAuthError(err error) bool {
	var authErr *AuthError

	return errors.As(err, &authErr)
}

// IsInvalidRequest checks if the error was raised before sending.
func IsInvalidRequest(err error) bool {
	var reqErr *InvalidRequestError

	return errors.As(err, &reqErr)
}

// IsMalformedResponse checks if the error is an undecodable success body.
func IsMalformedResponse(err error) bool {
	var malformed *MalformedResponseError

	return errors.As(err, &malformed)
}

// IsTimeout checks if the error is a timeout.
func IsTimeout(err error) bool {
	var timeout *TimeoutError

	return errors.As(err, &timeout)
}

// IsTransport checks if the error is a transport failure.
func IsTransport(err error) bool {
	var transport *TransportError

	return errors.As(err, &transport)
}

// IsRetryable reports whether an error may succeed if the call is repeated.
func IsRetryable(err error) bool {
	if IsTimeout(err) || IsTransport(err) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= http.StatusInternalServerError
	}

	return false
}

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == status
	}

	return false
}

type xmlErrorBody struct {
	XMLName xml.Name `xml:"error"`
	ID      string   `xml:"id,attr"`
	Request string   `xml:"request"`
	Message string   `xml:"message"`
}

// ParseAPIError builds an APIError from a response body. PageSeeder
// reports errors as <error id="..."><request/><message/></error>; JSON
// bodies from the OAuth endpoints and proxies are also understood. Any
// other body becomes the message, truncated.
func ParseAPIError(statusCode int, contentType string, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}

	trimmed := bytes.TrimSpace(body)

	switch {
	case len(trimmed) > 0 && trimmed[0] == '<':
		var parsed xmlErrorBody
		if err := xml.Unmarshal(trimmed, &parsed); err == nil {
			apiErr.ID = parsed.ID
			apiErr.Request = strings.TrimSpace(parsed.Request)
			apiErr.Message = strings.TrimSpace(parsed.Message)
		}
	case strings.Contains(contentType, "json") || (len(trimmed) > 0 && trimmed[0] == '{'):
		if gjson.ValidBytes(trimmed) {
			result := gjson.ParseBytes(trimmed)
			apiErr.ID = firstString(result, "id", "error.id", "error")
			apiErr.Request = firstString(result, "request", "error.request")
			apiErr.Message = firstString(result, "message", "error.message", "error_description", "detail")

			if apiErr.ID == apiErr.Message {
				apiErr.ID = ""
			}
		}
	}

	if apiErr.Message == "" {
		apiErr.Message = truncate(string(trimmed), maxErrorMessageLen)
	}

	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(statusCode)
	}

	return apiErr
}

func firstString(result gjson.Result, paths ...string) string {
	for _, p := range paths {
		v := result.Get(p)
		if v.Exists() && v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}

	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}

	return s[:cut] + "..."
}
