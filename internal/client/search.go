package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/psclient/internal/constants"
	"github.com/fivetwenty-io/psclient/internal/http"
	"github.com/fivetwenty-io/psclient/pkg/pageseeder"
)

// SearchClient implements pageseeder.SearchClient.
type SearchClient struct {
	httpClient *http.Client
	maxPages   int
}

// NewSearchClient creates a new search client.
func NewSearchClient(httpClient *http.Client) *SearchClient {
	return &SearchClient{
		httpClient: httpClient,
		maxPages:   constants.MaxSearchPages,
	}
}

// Search implements pageseeder.SearchClient.Search.
func (c *SearchClient) Search(ctx context.Context, group string, params *pageseeder.QueryParams) (*pageseeder.SearchResultPage, error) {
	const op = "group search"

	err := checkParams(op, param{"group", group})
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, servicePath("groups", group, "search"), queryValues(params))
	if err != nil {
		return nil, fmt.Errorf("searching group: %w", err)
	}

	var result pageseeder.SearchResponse

	err = http.DecodeXML(op, resp, &result)
	if err != nil {
		return nil, err
	}

	return &result.Results, nil
}

// Iterator implements pageseeder.SearchClient.Iterator.
func (c *SearchClient) Iterator(
	ctx context.Context, group string, params *pageseeder.QueryParams,
) *pageseeder.PaginationIterator[pageseeder.SearchResult] {
	return pageseeder.NewPaginationIterator[pageseeder.SearchResult](ctx, c.Fetcher(group, params))
}

// All implements pageseeder.SearchClient.All. Without a page parameter the
// first page is fetched, then pages 2 to total-pages.
func (c *SearchClient) All(ctx context.Context, group string, params *pageseeder.QueryParams) ([]*pageseeder.SearchResultPage, error) {
	first, err := c.Search(ctx, group, params)
	if err != nil {
		return nil, err
	}

	pages := []*pageseeder.SearchResultPage{first}

	if params.Has("page") {
		return pages, nil
	}

	last := first.TotalPages
	if c.maxPages > 0 && last > c.maxPages {
		last = c.maxPages
	}

	for page := 2; page <= last; page++ {
		next, err := c.Search(ctx, group, params.Clone().WithPage(page))
		if err != nil {
			return pages, fmt.Errorf("fetching page %d of %d: %w", page, first.TotalPages, err)
		}

		pages = append(pages, next)
	}

	return pages, nil
}

// Fetcher returns a page fetcher over the search results of group. When
// params names a page only that page is fetched.
func (c *SearchClient) Fetcher(group string, params *pageseeder.QueryParams) *SearchPageFetcher {
	return &SearchPageFetcher{client: c, group: group, params: params.Clone()}
}

// SearchPageFetcher implements pageseeder.PageFetcher for search results.
type SearchPageFetcher struct {
	client *SearchClient
	group  string
	params *pageseeder.QueryParams
}

// FetchPage implements pageseeder.PageFetcher.
func (f *SearchPageFetcher) FetchPage(ctx context.Context, cursor *pageseeder.Cursor) (*pageseeder.Page[pageseeder.SearchResult], error) {
	params := f.params.Clone()
	single := params.Has("page")

	if cursor != nil {
		params.WithPage(cursor.Page)
	}

	result, err := f.client.Search(ctx, f.group, params)
	if err != nil {
		return nil, err
	}

	page := &pageseeder.Page[pageseeder.SearchResult]{
		Items: result.Results,
		Total: result.TotalResults,
	}

	current := result.Page
	if current == 0 {
		current = params.Page
	}

	if current == 0 {
		current = 1
	}

	if !single && current < result.TotalPages && (f.client.maxPages <= 0 || current < f.client.maxPages) {
		page.Next = &pageseeder.Cursor{Page: current + 1}
	}

	return page, nil
}

