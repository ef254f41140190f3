package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/psclient/internal/http"
	"github.com/fivetwenty-io/psclient/pkg/pageseeder"
)

// GroupsClient implements pageseeder.GroupsClient.
type GroupsClient struct {
	httpClient *http.Client
}

// NewGroupsClient creates a new groups client.
func NewGroupsClient(httpClient *http.Client) *GroupsClient {
	return &GroupsClient{
		httpClient: httpClient,
	}
}

// Get implements pageseeder.GroupsClient.Get.
func (c *GroupsClient) Get(ctx context.Context, group string) (*pageseeder.Group, error) {
	const op = "get group"

	err := checkParams(op, param{"group", group})
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, servicePath("groups", group), nil)
	if err != nil {
		return nil, fmt.Errorf("getting group: %w", err)
	}

	var result pageseeder.Group

	err = http.DecodeXML(op, resp, &result)
	if err != nil {
		return nil, err
	}

	return &result, nil
}
