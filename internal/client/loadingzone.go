package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/psclient/internal/http"
	"github.com/fivetwenty-io/psclient/pkg/pageseeder"
)

// LoadingZoneClient implements pageseeder.LoadingZoneClient.
type LoadingZoneClient struct {
	httpClient *http.Client
}

// NewLoadingZoneClient creates a new loading zone client.
func NewLoadingZoneClient(httpClient *http.Client) *LoadingZoneClient {
	return &LoadingZoneClient{
		httpClient: httpClient,
	}
}

// Clear implements pageseeder.LoadingZoneClient.Clear.
func (c *LoadingZoneClient) Clear(ctx context.Context, member, group string) (*pageseeder.LoadClear, error) {
	const op = "clear loading zone"

	err := checkParams(op, param{"member", member}, param{"group", group})
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Post(ctx, servicePath("members", member, "groups", group, "loadingzone", "clear"), nil, nil, "")
	if err != nil {
		return nil, fmt.Errorf("clearing loading zone: %w", err)
	}

	var result pageseeder.LoadClear

	err = http.DecodeXML(op, resp, &result)
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// Unzip implements pageseeder.LoadingZoneClient.Unzip.
func (c *LoadingZoneClient) Unzip(
	ctx context.Context, member, group, path string, params *pageseeder.QueryParams,
) (*pageseeder.LoadUnzip, error) {
	const op = "unzip loading zone content"

	err := checkParams(op, param{"member", member}, param{"group", group}, param{"path", path})
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Post(ctx, servicePath("members", member, "groups", group, "loadingzone", "unzip"),
		queryValues(params, "path", path), nil, "")
	if err != nil {
		return nil, fmt.Errorf("unzipping loading zone content: %w", err)
	}

	var result pageseeder.LoadUnzip

	err = http.DecodeXML(op, resp, &result)
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// Start implements pageseeder.LoadingZoneClient.Start.
func (c *LoadingZoneClient) Start(ctx context.Context, member, group string, params *pageseeder.QueryParams) (*pageseeder.LoadStart, error) {
	const op = "start loading"

	err := checkParams(op, param{"member", member}, param{"group", group})
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Post(ctx, servicePath("members", member, "groups", group, "loadingzone", "start"),
		queryValues(params), nil, "")
	if err != nil {
		return nil, fmt.Errorf("starting loading: %w", err)
	}

	var result pageseeder.LoadStart

	err = http.DecodeXML(op, resp, &result)
	if err != nil {
		return nil, err
	}

	return &result, nil
}
