package pageseeder_test

import (
	"encoding/xml"
	"net/url"
	"testing"
	"time"

	"github.com/fivetwenty-io/psclient/pkg/pageseeder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryParams_ToValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		params   *pageseeder.QueryParams
		expected url.Values
	}{
		{
			name:     "nil params",
			params:   nil,
			expected: url.Values{},
		},
		{
			name:     "empty params",
			params:   pageseeder.NewQueryParams(),
			expected: url.Values{},
		},
		{
			name:   "with pagination",
			params: pageseeder.NewQueryParams().WithPage(2).WithPageSize(50),
			expected: url.Values{
				"page":     []string{"2"},
				"pagesize": []string{"50"},
			},
		},
		{
			name:   "with filters",
			params: pageseeder.NewQueryParams().WithFilter("types", "document", "folder").WithFilter("question", "install"),
			expected: url.Values{
				"types":    []string{"document,folder"},
				"question": []string{"install"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, tt.params.ToValues())
		})
	}
}

func TestQueryParams_CloneAndHas(t *testing.T) {
	t.Parallel()

	orig := pageseeder.NewQueryParams().WithFilter("question", "a")
	cp := orig.Clone().WithPage(3).WithFilter("question", "b")

	assert.False(t, orig.Has("page"))
	assert.True(t, cp.Has("page"))
	assert.Equal(t, []string{"a"}, orig.Filters["question"])
	assert.Equal(t, []string{"a", "b"}, cp.Filters["question"])
	assert.False(t, (*pageseeder.QueryParams)(nil).Has("question"))
}

func TestGroup_ShortName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "docs", (&pageseeder.Group{Name: "acme-product-docs"}).ShortName())
	assert.Equal(t, "plain", (&pageseeder.Group{Name: "plain"}).ShortName())
}

func TestThreadStatus(t *testing.T) {
	t.Parallel()

	assert.True(t, pageseeder.ThreadInitialised.Running())
	assert.True(t, pageseeder.ThreadInProgress.Running())
	assert.False(t, pageseeder.ThreadCompleted.Running())
	assert.False(t, pageseeder.ThreadWarning.Failed())
	assert.True(t, pageseeder.ThreadCancelled.Failed())
}

func TestJoinEventTypes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "upload,xref", pageseeder.JoinEventTypes([]pageseeder.EventType{pageseeder.EventUpload, pageseeder.EventXRef}))
	assert.Empty(t, pageseeder.JoinEventTypes(nil))
}

func TestThread_UnmarshalXML(t *testing.T) {
	t.Parallel()

	var thread pageseeder.Thread

	err := xml.Unmarshal([]byte(`<thread id="t1" name="export" username="jdoe" groupid="7" status="inprogress">
		<processing current="3" total="10"/>
		<zip>export.zip</zip>
		<message>Packaging</message>
	</thread>`), &thread)
	require.NoError(t, err)

	assert.Equal(t, "t1", thread.ID)
	assert.Equal(t, pageseeder.ThreadInProgress, thread.Status)
	require.NotNil(t, thread.Processing)
	assert.Equal(t, uint64(3), thread.Processing.Current)
	assert.Nil(t, thread.Packaging)
	assert.Equal(t, "export.zip", thread.Zip)
	assert.Equal(t, "Packaging", thread.Message)
}

func TestURIHistory_UnmarshalXML(t *testing.T) {
	t.Parallel()

	var history pageseeder.URIHistory

	err := xml.Unmarshal([]byte(`<uri-history events="edit,version">
		<event id="1" datetime="2024-03-01T10:00:00+10:00" type="edit" fragment="2">
			<author id="9" firstname="Jo" surname="Doe" username="jdoe" status="activated"/>
		</event>
		<event id="2" type="version" version="1.0"><uri id="55" scheme="https" host="ps" port="443" path="/a.psml" decodedpath="/a.psml" external="false"/></event>
	</uri-history>`), &history)
	require.NoError(t, err)

	assert.Equal(t, "edit,version", history.EventTypes)
	require.Len(t, history.Events, 2)

	first := history.Events[0]
	assert.Equal(t, pageseeder.EventEdit, first.Type)
	require.NotNil(t, first.DateTime)
	assert.True(t, first.DateTime.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	require.NotNil(t, first.Author)
	assert.Equal(t, "jdoe", first.Author.Username)

	require.NotNil(t, history.Events[1].URI)
	assert.Equal(t, "55", history.Events[1].URI.ID)
}

func TestSearchResponse_UnmarshalXML(t *testing.T) {
	t.Parallel()

	var resp pageseeder.SearchResponse

	err := xml.Unmarshal([]byte(`<search><results page="2" page-size="2" total-pages="3" total-results="5" first-result="3" last-result="4">
		<result><field name="title">Guide</field><field name="uriid">1</field></result>
		<result><field name="title"/></result>
	</results></search>`), &resp)
	require.NoError(t, err)

	page := resp.Results
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 5, page.TotalResults)
	require.Len(t, page.Results, 2)

	title, ok := page.Results[0].Field("title")
	assert.True(t, ok)
	assert.Equal(t, "Guide", title)

	_, ok = page.Results[1].Field("uriid")
	assert.False(t, ok)
}
