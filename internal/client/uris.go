package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/psclient/internal/http"
	"github.com/fivetwenty-io/psclient/pkg/pageseeder"
)

// URIsClient implements pageseeder.URIsClient.
type URIsClient struct {
	httpClient *http.Client
}

// NewURIsClient creates a new URIs client.
func NewURIsClient(httpClient *http.Client) *URIsClient {
	return &URIsClient{
		httpClient: httpClient,
	}
}

// Get implements pageseeder.URIsClient.Get.
func (c *URIsClient) Get(ctx context.Context, member, uri string) (*pageseeder.URI, error) {
	const op = "get uri"

	err := checkParams(op, param{"member", member}, param{"uri", uri})
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, servicePath("members", member, "uris", uri), nil)
	if err != nil {
		return nil, fmt.Errorf("getting uri: %w", err)
	}

	var result pageseeder.URI

	err = http.DecodeXML(op, resp, &result)
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// History implements pageseeder.URIsClient.History.
func (c *URIsClient) History(ctx context.Context, group, uri string) (*pageseeder.URIHistory, error) {
	const op = "get uri history"

	err := checkParams(op, param{"group", group}, param{"uri", uri})
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, servicePath("groups", group, "uris", uri, "history"), nil)
	if err != nil {
		return nil, fmt.Errorf("getting uri history: %w", err)
	}

	var result pageseeder.URIHistory

	err = http.DecodeXML(op, resp, &result)
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// GroupHistory implements pageseeder.URIsClient.GroupHistory. The event
// types are sent as one comma separated "events" parameter.
func (c *URIsClient) GroupHistory(
	ctx context.Context, group string, events []pageseeder.EventType, params *pageseeder.QueryParams,
) (*pageseeder.URIHistory, error) {
	const op = "get uris history"

	err := checkParams(op, param{"group", group})
	if err != nil {
		return nil, err
	}

	query := queryValues(params)
	if len(events) > 0 {
		query.Set("events", pageseeder.JoinEventTypes(events))
	}

	resp, err := c.httpClient.Get(ctx, servicePath("groups", group, "uris", "history"), query)
	if err != nil {
		return nil, fmt.Errorf("getting uris history: %w", err)
	}

	var result pageseeder.URIHistory

	err = http.DecodeXML(op, resp, &result)
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// Export implements pageseeder.URIsClient.Export. The export runs as a
// server thread; use Threads().Wait to follow it.
func (c *URIsClient) Export(ctx context.Context, member, uri string, params *pageseeder.QueryParams) (*pageseeder.Thread, error) {
	const op = "uri export"

	err := checkParams(op, param{"member", member}, param{"uri", uri})
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, servicePath("members", member, "uris", uri, "export"), queryValues(params))
	if err != nil {
		return nil, fmt.Errorf("starting export: %w", err)
	}

	var result pageseeder.Thread

	err = http.DecodeXML(op, resp, &result)
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// CreateVersion implements pageseeder.URIsClient.CreateVersion.
func (c *URIsClient) CreateVersion(
	ctx context.Context, member, group, uri, name string, params *pageseeder.QueryParams,
) (*pageseeder.Version, error) {
	const op = "create version"

	err := checkParams(op, param{"member", member}, param{"group", group}, param{"uri", uri}, param{"name", name})
	if err != nil {
		return nil, err
	}

	path := servicePath("members", member, "groups", group, "uris", uri, "versions")

	resp, err := c.httpClient.Post(ctx, path, queryValues(params, "name", name), nil, "")
	if err != nil {
		return nil, fmt.Errorf("creating version: %w", err)
	}

	var result pageseeder.Version

	err = http.DecodeXML(op, resp, &result)
	if err != nil {
		return nil, err
	}

	return &result, nil
}
