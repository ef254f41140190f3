package pageseeder

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/psclient/pkg/psml"
)

// GroupAccess is the visibility of a group.
type GroupAccess string

const (
	GroupAccessPublic GroupAccess = "public"
	GroupAccessMember GroupAccess = "member"
)

// Group is a PageSeeder group.
type Group struct {
	ID          int64       `json:"id"          xml:"id,attr"          yaml:"id"`
	Name        string      `json:"name"        xml:"name,attr"        yaml:"name"`
	Owner       string      `json:"owner"       xml:"owner,attr"       yaml:"owner"`
	Description string      `json:"description" xml:"description,attr" yaml:"description"`
	Access      GroupAccess `json:"access"      xml:"access,attr"      yaml:"access"`
}

// ShortName returns the part of the group name after the last '-'.
func (g *Group) ShortName() string {
	if i := strings.LastIndexByte(g.Name, '-'); i >= 0 {
		return g.Name[i+1:]
	}

	return g.Name
}

// URI is the metadata of a document, folder or external resource.
type URI struct {
	ID           string     `json:"id"                     xml:"id,attr"                     yaml:"id"`
	Scheme       string     `json:"scheme"                 xml:"scheme,attr"                 yaml:"scheme"`
	Host         string     `json:"host"                   xml:"host,attr"                   yaml:"host"`
	Port         string     `json:"port"                   xml:"port,attr"                   yaml:"port"`
	Path         string     `json:"path"                   xml:"path,attr"                   yaml:"path"`
	DecodedPath  string     `json:"decodedpath"            xml:"decodedpath,attr"            yaml:"decodedpath"`
	External     bool       `json:"external"               xml:"external,attr"               yaml:"external"`
	Archived     bool       `json:"archived,omitempty"     xml:"archived,attr,omitempty"     yaml:"archived,omitempty"`
	Folder       bool       `json:"folder,omitempty"       xml:"folder,attr,omitempty"       yaml:"folder,omitempty"`
	DocID        string     `json:"docid,omitempty"        xml:"docid,attr,omitempty"        yaml:"docid,omitempty"`
	MediaType    string     `json:"mediatype,omitempty"    xml:"mediatype,attr,omitempty"    yaml:"mediatype,omitempty"`
	DocumentType string     `json:"documenttype,omitempty" xml:"documenttype,attr,omitempty" yaml:"documenttype,omitempty"`
	Title        string     `json:"title,omitempty"        xml:"title,attr,omitempty"        yaml:"title,omitempty"`
	Created      *time.Time `json:"created,omitempty"      xml:"created,attr,omitempty"      yaml:"created,omitempty"`
	Modified     *time.Time `json:"modified,omitempty"     xml:"modified,attr,omitempty"     yaml:"modified,omitempty"`
}

// EventType is a kind of URI history event.
type EventType string

const (
	EventUpload       EventType = "upload"
	EventCreation     EventType = "creation"
	EventMove         EventType = "move"
	EventModification EventType = "modification"
	EventStructure    EventType = "structure"
	EventWorkflow     EventType = "workflow"
	EventVersion      EventType = "version"
	EventEdit         EventType = "edit"
	EventDraft        EventType = "draft"
	EventNote         EventType = "note"
	EventXRef         EventType = "xref"
	EventImage        EventType = "image"
	EventComment      EventType = "comment"
	EventTask         EventType = "task"
)

// JoinEventTypes renders event types as the comma separated "events" parameter.
func JoinEventTypes(events []EventType) string {
	names := make([]string, len(events))
	for i, e := range events {
		names[i] = string(e)
	}

	return strings.Join(names, ",")
}

// Author is the member responsible for an event.
type Author struct {
	ID        string `json:"id"        xml:"id,attr"        yaml:"id"`
	FirstName string `json:"firstname" xml:"firstname,attr" yaml:"firstname"`
	Surname   string `json:"surname"   xml:"surname,attr"   yaml:"surname"`
	Username  string `json:"username"  xml:"username,attr"  yaml:"username"`
	Status    string `json:"status"    xml:"status,attr"    yaml:"status"`
}

// Event is an entry of a URI history.
type Event struct {
	ID             string     `json:"id"                       xml:"id,attr"                       yaml:"id"`
	DateTime       *time.Time `json:"datetime,omitempty"       xml:"datetime,attr,omitempty"       yaml:"datetime,omitempty"`
	Type           EventType  `json:"type"                     xml:"type,attr"                     yaml:"type"`
	Fragment       string     `json:"fragment,omitempty"       xml:"fragment,attr,omitempty"       yaml:"fragment,omitempty"`
	Title          string     `json:"title,omitempty"          xml:"title,attr,omitempty"          yaml:"title,omitempty"`
	URIID          string     `json:"uriid,omitempty"          xml:"uriid,attr,omitempty"          yaml:"uriid,omitempty"`
	TargetFragment string     `json:"targetfragment,omitempty" xml:"targetfragment,attr,omitempty" yaml:"targetfragment,omitempty"`
	Version        string     `json:"version,omitempty"        xml:"version,attr,omitempty"        yaml:"version,omitempty"`
	Author         *Author    `json:"author,omitempty"         xml:"author,omitempty"              yaml:"author,omitempty"`
	URI            *URI       `json:"uri,omitempty"            xml:"uri,omitempty"                 yaml:"uri,omitempty"`
}

// URIHistory is the list of events for one or more URIs.
type URIHistory struct {
	EventTypes string  `json:"event_types" xml:"events,attr" yaml:"event_types"`
	Events     []Event `json:"events"      xml:"event"       yaml:"events"`
}

// DocumentFragment is a single fragment of a document with its locator.
// Fragment holds the PSML element returned by the server, which may be a
// fragment, properties-fragment, xref-fragment or media-fragment.
type DocumentFragment struct {
	Locator  *psml.Locator
	Fragment psml.FragmentElement
	// Root is the full decoded response.
	Root psml.Element
}

// FragmentCreation is the response to adding or replacing a fragment.
type FragmentCreation struct {
	UnresolvedXRefs  bool
	DocumentFragment *DocumentFragment
	Root             psml.Element
}

// ThreadStatus is the state of a server thread.
type ThreadStatus string

const (
	ThreadInitialised ThreadStatus = "initialised"
	ThreadInProgress  ThreadStatus = "inprogress"
	ThreadError       ThreadStatus = "error"
	ThreadWarning     ThreadStatus = "warning"
	ThreadCancelled   ThreadStatus = "cancelled"
	ThreadFailed      ThreadStatus = "failed"
	ThreadCompleted   ThreadStatus = "completed"
)

// Running reports whether the thread has not reached a final state.
func (s ThreadStatus) Running() bool {
	return s == ThreadInitialised || s == ThreadInProgress
}

// Failed reports whether the thread ended without completing its work.
func (s ThreadStatus) Failed() bool {
	return s == ThreadError || s == ThreadFailed || s == ThreadCancelled
}

// ThreadProgress counts processed items.
type ThreadProgress struct {
	Current uint64 `json:"current" xml:"current,attr" yaml:"current"`
	Total   uint64 `json:"total"   xml:"total,attr"   yaml:"total"`
}

// Thread is a long-running server task.
type Thread struct {
	ID         string          `json:"id"                   xml:"id,attr"              yaml:"id"`
	Name       string          `json:"name"                 xml:"name,attr"            yaml:"name"`
	Username   string          `json:"username"             xml:"username,attr"        yaml:"username"`
	GroupID    string          `json:"groupid"              xml:"groupid,attr"         yaml:"groupid"`
	Status     ThreadStatus    `json:"status"               xml:"status,attr"          yaml:"status"`
	Processing *ThreadProgress `json:"processing,omitempty" xml:"processing,omitempty" yaml:"processing,omitempty"`
	Packaging  *ThreadProgress `json:"packaging,omitempty"  xml:"packaging,omitempty"  yaml:"packaging,omitempty"`
	Zip        string          `json:"zip,omitempty"        xml:"zip,omitempty"        yaml:"zip,omitempty"`
	Message    string          `json:"message,omitempty"    xml:"message,omitempty"    yaml:"message,omitempty"`
}

// WaitOptions controls Threads.Wait polling.
type WaitOptions struct {
	// InitialInterval is the first delay between polls.
	InitialInterval time.Duration
	// MaxInterval caps the delay between polls.
	MaxInterval time.Duration
	// MaxElapsed stops waiting after this long. Zero waits until ctx is done.
	MaxElapsed time.Duration
	// OnProgress is called after every poll.
	OnProgress func(*Thread)
}

// SearchResultField is a named value in a search result.
type SearchResultField struct {
	Name  string `json:"name"  xml:"name,attr" yaml:"name"`
	Value string `json:"value" xml:",chardata" yaml:"value"`
}

// SearchResult is a single hit.
type SearchResult struct {
	Fields []SearchResultField `json:"fields" xml:"field" yaml:"fields"`
}

// Field returns the first value of the named field.
func (r *SearchResult) Field(name string) (string, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}

	return "", false
}

// SearchResultPage is one page of search results.
type SearchResultPage struct {
	Page         int            `json:"page"                   xml:"page,attr"                   yaml:"page"`
	PageSize     int            `json:"page_size"              xml:"page-size,attr"              yaml:"page_size"`
	TotalPages   int            `json:"total_pages"            xml:"total-pages,attr"            yaml:"total_pages"`
	TotalResults int            `json:"total_results"          xml:"total-results,attr"          yaml:"total_results"`
	FirstResult  int            `json:"first_result,omitempty" xml:"first-result,attr,omitempty" yaml:"first_result,omitempty"`
	LastResult   int            `json:"last_result,omitempty"  xml:"last-result,attr,omitempty"  yaml:"last_result,omitempty"`
	Results      []SearchResult `json:"results"                xml:"result"                      yaml:"results"`
}

// SearchResponse is the envelope returned by the search service.
type SearchResponse struct {
	Results SearchResultPage `xml:"results"`
}

// UploadedFile describes a stored upload.
type UploadedFile struct {
	Name string `json:"name" xml:"name,attr" yaml:"name"`
	Path string `json:"path" xml:"path,attr" yaml:"path"`
	Type string `json:"type" xml:"type,attr" yaml:"type"`
}

// Upload is the response of the upload servlet.
type Upload struct {
	Member                   string        `json:"member"                     xml:"member,attr"                     yaml:"member"`
	UploadID                 string        `json:"uploadid,omitempty"         xml:"uploadid,attr,omitempty"         yaml:"uploadid,omitempty"`
	Status                   string        `json:"status,omitempty"           xml:"status,attr,omitempty"           yaml:"status,omitempty"`
	MaxWorkflowNotifications int           `json:"max_workflow_notifications" xml:"max-workflow-notifications,attr" yaml:"max_workflow_notifications"`
	Message                  string        `json:"message,omitempty"          xml:"message,omitempty"               yaml:"message,omitempty"`
	URI                      *URI          `json:"uri,omitempty"              xml:"uri,omitempty"                   yaml:"uri,omitempty"`
	File                     *UploadedFile `json:"file,omitempty"             xml:"file,omitempty"                  yaml:"file,omitempty"`
}

// LoadClear is the response to clearing a loading zone.
type LoadClear struct {
	Member  string `json:"member,omitempty"  xml:"member,attr,omitempty" yaml:"member,omitempty"`
	Group   string `json:"group,omitempty"   xml:"group,attr,omitempty"  yaml:"group,omitempty"`
	Files   int    `json:"files"             xml:"files,attr,omitempty"  yaml:"files"`
	Message string `json:"message,omitempty" xml:"message,omitempty"     yaml:"message,omitempty"`
}

// LoadUnzip wraps the thread unzipping a loading zone archive.
type LoadUnzip struct {
	Thread Thread `json:"thread" xml:"thread" yaml:"thread"`
}

// LoadStart wraps the thread loading files into the group.
type LoadStart struct {
	Thread Thread `json:"thread" xml:"thread" yaml:"thread"`
}

// Version is a named version of a URI.
type Version struct {
	ID          string     `json:"id"                    xml:"id,attr"                yaml:"id"`
	Name        string     `json:"name"                  xml:"name,attr"              yaml:"name"`
	Created     *time.Time `json:"created,omitempty"     xml:"created,attr,omitempty" yaml:"created,omitempty"`
	Description string     `json:"description,omitempty" xml:"description,omitempty"  yaml:"description,omitempty"`
	Author      *Author    `json:"author,omitempty"      xml:"author,omitempty"       yaml:"author,omitempty"`
}

// QueryParams holds optional service parameters.
type QueryParams struct {
	Page     int
	PageSize int
	Filters  map[string][]string
}

// NewQueryParams creates new query parameters.
func NewQueryParams() *QueryParams {
	return &QueryParams{
		Filters: make(map[string][]string),
	}
}

// WithPage sets the page number.
func (q *QueryParams) WithPage(page int) *QueryParams {
	q.Page = page

	return q
}

// WithPageSize sets the number of results per page.
func (q *QueryParams) WithPageSize(size int) *QueryParams {
	q.PageSize = size

	return q
}

// WithFilter adds a parameter. Multiple values are sent comma separated.
func (q *QueryParams) WithFilter(key string, values ...string) *QueryParams {
	if q.Filters == nil {
		q.Filters = make(map[string][]string)
	}

	q.Filters[key] = append(q.Filters[key], values...)

	return q
}

// Has reports whether the parameter is set, including page and pagesize.
func (q *QueryParams) Has(key string) bool {
	if q == nil {
		return false
	}

	switch key {
	case "page":
		if q.Page > 0 {
			return true
		}
	case "pagesize":
		if q.PageSize > 0 {
			return true
		}
	}

	_, ok := q.Filters[key]

	return ok
}

// Clone returns an independent copy.
func (q *QueryParams) Clone() *QueryParams {
	if q == nil {
		return NewQueryParams()
	}

	out := &QueryParams{Page: q.Page, PageSize: q.PageSize, Filters: make(map[string][]string, len(q.Filters))}
	for k, v := range q.Filters {
		out.Filters[k] = append([]string(nil), v...)
	}

	return out
}

// ToValues converts the parameters to url.Values.
func (q *QueryParams) ToValues() url.Values {
	values := url.Values{}
	if q == nil {
		return values
	}

	keys := make([]string, 0, len(q.Filters))
	for k := range q.Filters {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {
		values.Set(k, strings.Join(q.Filters[k], ","))
	}

	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}

	if q.PageSize > 0 {
		values.Set("pagesize", strconv.Itoa(q.PageSize))
	}

	return values
}
