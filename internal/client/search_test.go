package client_test

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/fivetwenty-io/psclient/pkg/pageseeder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// searchPages serves pages with the given result counts.
func searchPages(t *testing.T, counts ...int) http.HandlerFunc {
	t.Helper()

	total := 0
	for _, n := range counts {
		total += n
	}

	return func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/ps/service/groups/acme-docs/search", request.URL.Path)

		page := 1
		if p := request.URL.Query().Get("page"); p != "" {
			page, _ = strconv.Atoi(p)
		}

		if page < 1 || page > len(counts) {
			writeXML(writer, http.StatusOK, fmt.Sprintf(
				`<search><results page="%d" total-pages="%d" total-results="%d"/></search>`, page, len(counts), total))

			return
		}

		var b strings.Builder

		fmt.Fprintf(&b, `<search><results page="%d" page-size="50" total-pages="%d" total-results="%d">`,
			page, len(counts), total)

		for i := range counts[page-1] {
			fmt.Fprintf(&b, `<result><field name="title">p%d-r%d</field><field name="uriid">%d</field></result>`,
				page, i, page*1000+i)
		}

		b.WriteString(`</results></search>`)

		writeXML(writer, http.StatusOK, b.String())
	}
}

func TestSearchClient_Search(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "GET", request.Method)
		assert.Equal(t, "psml", request.URL.Query().Get("type"))
		assert.Equal(t, "guide", request.URL.Query().Get("question"))

		searchPages(t, 2)(writer, request)
	})

	c := newTestClient(t, server)

	params := pageseeder.NewQueryParams().WithFilter("question", "guide").WithFilter("type", "psml")

	page, err := c.Search().Search(context.Background(), "acme-docs", params)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 2, page.TotalResults)
	require.Len(t, page.Results, 2)

	title, ok := page.Results[0].Field("title")
	assert.True(t, ok)
	assert.Equal(t, "p1-r0", title)

	_, ok = page.Results[0].Field("missing")
	assert.False(t, ok)
}

func TestSearchClient_All(t *testing.T) {
	t.Parallel()

	t.Run("fetches every page", func(t *testing.T) {
		t.Parallel()

		server := newTestServer(t, searchPages(t, 50, 50, 17))
		c := newTestClient(t, server)

		pages, err := c.Search().All(context.Background(), "acme-docs", nil)
		require.NoError(t, err)
		require.Len(t, pages, 3)

		count := 0
		for i, p := range pages {
			assert.Equal(t, i+1, p.Page)
			count += len(p.Results)
		}

		assert.Equal(t, 117, count)
		assert.Equal(t, int32(3), server.requests.Load())
	})

	t.Run("explicit page fetches only that page", func(t *testing.T) {
		t.Parallel()

		server := newTestServer(t, searchPages(t, 50, 50, 17))
		c := newTestClient(t, server)

		pages, err := c.Search().All(context.Background(), "acme-docs", pageseeder.NewQueryParams().WithPage(2))
		require.NoError(t, err)
		require.Len(t, pages, 1)
		assert.Equal(t, 2, pages[0].Page)
		assert.Len(t, pages[0].Results, 50)
		assert.Equal(t, int32(1), server.requests.Load())
	})

	t.Run("no results", func(t *testing.T) {
		t.Parallel()

		server := newTestServer(t, staticXML(`<search><results page="1" total-pages="0" total-results="0"/></search>`))
		c := newTestClient(t, server)

		pages, err := c.Search().All(context.Background(), "acme-docs", nil)
		require.NoError(t, err)
		require.Len(t, pages, 1)
		assert.Empty(t, pages[0].Results)
		assert.Equal(t, int32(1), server.requests.Load())
	})

	t.Run("failing page keeps earlier pages", func(t *testing.T) {
		t.Parallel()

		pages := searchPages(t, 50, 50, 17)
		server := newTestServer(t, func(writer http.ResponseWriter, request *http.Request) {
			if request.URL.Query().Get("page") == "3" {
				writeXML(writer, http.StatusInternalServerError, `<error><message>index unavailable</message></error>`)

				return
			}

			pages(writer, request)
		})
		c := newTestClient(t, server)

		got, err := c.Search().All(context.Background(), "acme-docs", nil)
		require.Error(t, err)
		assert.Len(t, got, 2)

		var apiErr *pageseeder.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	})
}

func TestSearchClient_Iterator(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, searchPages(t, 50, 50, 17))
	c := newTestClient(t, server)

	it := c.Search().Iterator(context.Background(), "acme-docs", pageseeder.NewQueryParams().WithPageSize(50))

	var uriids []string

	for it.HasNext() {
		result, err := it.Next()
		require.NoError(t, err)

		id, _ := result.Field("uriid")
		uriids = append(uriids, id)
	}

	require.Len(t, uriids, 117)
	assert.Equal(t, "1000", uriids[0])
	assert.Equal(t, "3016", uriids[116])
	assert.Equal(t, int32(3), server.requests.Load())
}

func TestSearchClient_Iterator_ExplicitPage(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, searchPages(t, 50, 50, 17))
	c := newTestClient(t, server)

	all, err := c.Search().Iterator(context.Background(), "acme-docs", pageseeder.NewQueryParams().WithPage(3)).All()
	require.NoError(t, err)
	assert.Len(t, all, 17)
	assert.Equal(t, int32(1), server.requests.Load())
}

func TestSearchClient_Iterator_Error(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, searchPages(t, 50))
	c := newTestClient(t, server)

	it := c.Search().Iterator(context.Background(), " ", nil)
	require.True(t, it.HasNext())

	_, err := it.Next()
	require.Error(t, err)
	assert.True(t, pageseeder.IsInvalidRequest(err))
	assert.Equal(t, int32(0), server.requests.Load())
}
