package client

import (
	"context"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/psclient/internal/http"
	"github.com/fivetwenty-io/psclient/pkg/pageseeder"
)

const (
	uploadPath         = "/ps/servlet/upload"
	memberResourcePath = "/ps/member-resource/"
)

// UploadsClient implements pageseeder.UploadsClient.
type UploadsClient struct {
	httpClient *http.Client
}

// NewUploadsClient creates a new uploads client.
func NewUploadsClient(httpClient *http.Client) *UploadsClient {
	return &UploadsClient{
		httpClient: httpClient,
	}
}

// Upload implements pageseeder.UploadsClient.Upload. The file is sent as
// the raw request body to the upload servlet.
func (c *UploadsClient) Upload(
	ctx context.Context, group, filename string, content io.Reader, params *pageseeder.QueryParams,
) (*pageseeder.Upload, error) {
	const op = "upload"

	err := checkParams(op, param{"group", group}, param{"filename", filename})
	if err != nil {
		return nil, err
	}

	if content == nil {
		return nil, &pageseeder.InvalidRequestError{Operation: op, Parameter: "content", Err: pageseeder.ErrNilContent}
	}

	resp, err := c.httpClient.Do(ctx, &http.Request{
		Method:      nethttp.MethodPut,
		Path:        uploadPath,
		Query:       queryValues(params, "group", group, "filename", filename),
		Body:        content,
		ContentType: contentTypeFor(filename),
		Operation:   op,
	})
	if err != nil {
		return nil, fmt.Errorf("uploading file: %w", err)
	}

	var result pageseeder.Upload

	err = http.DecodeXML(op, resp, &result)
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// Download implements pageseeder.UploadsClient.Download. It fetches a member
// resource, such as the archive produced by an export thread.
func (c *UploadsClient) Download(ctx context.Context, group, filename string) ([]byte, error) {
	const op = "download member resource"

	err := checkParams(op, param{"group", group}, param{"filename", filename})
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(ctx, &http.Request{
		Method:    nethttp.MethodGet,
		Path:      memberResourcePath + url.PathEscape(group) + "/" + url.PathEscape(filename),
		Headers:   map[string]string{"Accept": "*/*"},
		Operation: op,
	})
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", filename, err)
	}

	return resp.Body, nil
}

func contentTypeFor(filename string) string {
	switch {
	case strings.HasSuffix(strings.ToLower(filename), ".zip"):
		return "application/zip"
	case strings.HasSuffix(strings.ToLower(filename), ".psml"), strings.HasSuffix(strings.ToLower(filename), ".xml"):
		return "application/xml"
	default:
		return "application/octet-stream"
	}
}
