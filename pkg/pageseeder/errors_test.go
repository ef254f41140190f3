package pageseeder_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/fivetwenty-io/psclient/pkg/pageseeder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAPIError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		expected    *pageseeder.APIError
	}{
		{
			name:        "pageseeder xml error",
			status:      404,
			contentType: "application/xml",
			body:        `<error id="0x1001"><request>GET /ps/service/groups/nope</request><message>Unable to find group</message></error>`,
			expected: &pageseeder.APIError{
				StatusCode: 404,
				ID:         "0x1001",
				Request:    "GET /ps/service/groups/nope",
				Message:    "Unable to find group",
			},
		},
		{
			name:        "oauth json error",
			status:      400,
			contentType: "application/json;charset=utf-8",
			body:        `{"error":"invalid_request","error_description":"Missing grant type"}`,
			expected: &pageseeder.APIError{
				StatusCode: 400,
				ID:         "invalid_request",
				Message:    "Missing grant type",
			},
		},
		{
			name:        "nested json error",
			status:      409,
			contentType: "application/json",
			body:        `{"error":{"id":"E7","message":"Conflict on fragment"}}`,
			expected: &pageseeder.APIError{
				StatusCode: 409,
				ID:         "E7",
				Message:    "Conflict on fragment",
			},
		},
		{
			name:        "plain text body",
			status:      400,
			contentType: "text/plain",
			body:        "  bad input  ",
			expected:    &pageseeder.APIError{StatusCode: 400, Message: "bad input"},
		},
		{
			name:     "empty body uses status text",
			status:   403,
			expected: &pageseeder.APIError{StatusCode: 403, Message: "Forbidden"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := pageseeder.ParseAPIError(tt.status, tt.contentType, []byte(tt.body))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseAPIError_TruncatesLongBodies(t *testing.T) {
	t.Parallel()

	got := pageseeder.ParseAPIError(500, "text/html", []byte(strings.Repeat("x", 2000)))
	assert.Len(t, got.Message, 515)
	assert.True(t, strings.HasSuffix(got.Message, "..."))
}

func TestAPIError_Error(t *testing.T) {
	t.Parallel()

	err := &pageseeder.APIError{StatusCode: 404, ID: "0x1001", Message: "Unable to find group"}
	assert.Equal(t, "pageseeder API error (status 404, id 0x1001): Unable to find group", err.Error())
}

func TestErrorHelpers(t *testing.T) {
	t.Parallel()

	notFound := fmt.Errorf("get group: %w", &pageseeder.APIError{StatusCode: 404})
	assert.True(t, pageseeder.IsNotFound(notFound))
	assert.False(t, pageseeder.IsUnauthorized(notFound))
	assert.False(t, pageseeder.IsRetryable(notFound))

	assert.True(t, pageseeder.IsUnauthorized(&pageseeder.APIError{StatusCode: 401}))
	assert.True(t, pageseeder.IsForbidden(&pageseeder.APIError{StatusCode: 403}))
	assert.True(t, pageseeder.IsRetryable(&pageseeder.APIError{StatusCode: 503}))

	timeout := &pageseeder.TimeoutError{Operation: "GET /x", Attempts: 2, Err: context.DeadlineExceeded}
	assert.True(t, pageseeder.IsTimeout(timeout))
	assert.True(t, pageseeder.IsRetryable(timeout))
	require.ErrorIs(t, timeout, context.DeadlineExceeded)

	invalid := &pageseeder.InvalidRequestError{Operation: "get group", Parameter: "group", Err: pageseeder.ErrEmptyParameter}
	assert.True(t, pageseeder.IsInvalidRequest(invalid))
	require.ErrorIs(t, invalid, pageseeder.ErrEmptyParameter)
	assert.Equal(t, "get group: invalid group: must not be empty", invalid.Error())

	assert.True(t, pageseeder.IsAuthError(&pageseeder.AuthError{Code: "invalid_client"}))
	assert.True(t, pageseeder.IsMalformedResponse(&pageseeder.MalformedResponseError{}))
	assert.True(t, pageseeder.IsTransport(&pageseeder.TransportError{}))
}
