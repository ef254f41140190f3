package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/psclient/internal/http"
	"github.com/fivetwenty-io/psclient/pkg/pageseeder"
	"github.com/fivetwenty-io/psclient/pkg/psml"
)

const (
	tagDocumentFragment = "document-fragment"
	tagFragmentCreation = "fragment-creation"
)

// Static errors for err113 compliance.
var (
	ErrUnexpectedRoot = errors.New("unexpected root element")
)

// FragmentsClient implements pageseeder.FragmentsClient. Fragment bodies
// go through the PSML codec in both directions.
type FragmentsClient struct {
	httpClient *http.Client
}

// NewFragmentsClient creates a new fragments client.
func NewFragmentsClient(httpClient *http.Client) *FragmentsClient {
	return &FragmentsClient{
		httpClient: httpClient,
	}
}

// Get implements pageseeder.FragmentsClient.Get.
func (c *FragmentsClient) Get(
	ctx context.Context, member, group, uri, fragment string, params *pageseeder.QueryParams,
) (*pageseeder.DocumentFragment, error) {
	const op = "get uri fragment"

	err := checkParams(op, param{"member", member}, param{"group", group}, param{"uri", uri}, param{"fragment", fragment})
	if err != nil {
		return nil, err
	}

	path := servicePath("members", member, "groups", group, "uris", uri, "fragments", fragment)

	resp, err := c.httpClient.Get(ctx, path, queryValues(params))
	if err != nil {
		return nil, fmt.Errorf("getting fragment: %w", err)
	}

	root, err := decodeRoot(op, resp)
	if err != nil {
		return nil, err
	}

	result, err := documentFragment(root)
	if err != nil {
		return nil, malformed(op, resp, err)
	}

	return result, nil
}

// Put implements pageseeder.FragmentsClient.Put.
func (c *FragmentsClient) Put(
	ctx context.Context, member, group, uri, fragment string, content psml.Element, params *pageseeder.QueryParams,
) (*pageseeder.FragmentCreation, error) {
	const op = "put uri fragment"

	err := checkParams(op, param{"member", member}, param{"group", group}, param{"uri", uri}, param{"fragment", fragment})
	if err != nil {
		return nil, err
	}

	body, err := encodeContent(op, content)
	if err != nil {
		return nil, err
	}

	path := servicePath("members", member, "groups", group, "uris", uri, "fragments", fragment)

	resp, err := c.httpClient.Put(ctx, path, queryValues(params), body, "application/xml; charset=utf-8")
	if err != nil {
		return nil, fmt.Errorf("putting fragment: %w", err)
	}

	return fragmentCreation(op, resp)
}

// Add implements pageseeder.FragmentsClient.Add. The content is sent as the
// "content" form parameter.
func (c *FragmentsClient) Add(
	ctx context.Context, member, group, uri string, content psml.Element, params *pageseeder.QueryParams,
) (*pageseeder.FragmentCreation, error) {
	const op = "add uri fragment"

	err := checkParams(op, param{"member", member}, param{"group", group}, param{"uri", uri})
	if err != nil {
		return nil, err
	}

	body, err := encodeContent(op, content)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	for k, v := range queryValues(params) {
		form[k] = v
	}

	form.Set("content", string(body))

	path := servicePath("members", member, "groups", group, "uris", uri, "fragments")

	resp, err := c.httpClient.PostForm(ctx, path, form)
	if err != nil {
		return nil, fmt.Errorf("adding fragment: %w", err)
	}

	return fragmentCreation(op, resp)
}

func encodeContent(op string, content psml.Element) ([]byte, error) {
	if content == nil {
		return nil, &pageseeder.InvalidRequestError{Operation: op, Parameter: "content", Err: pageseeder.ErrNilContent}
	}

	body, err := psml.MarshalNode(content)
	if err != nil {
		return nil, &pageseeder.InvalidRequestError{Operation: op, Parameter: "content", Err: err}
	}

	return body, nil
}

func fragmentCreation(op string, resp *http.Response) (*pageseeder.FragmentCreation, error) {
	root, err := decodeRoot(op, resp)
	if err != nil {
		return nil, err
	}

	if root.Tag() != tagFragmentCreation {
		return nil, malformed(op, resp, fmt.Errorf("%w <%s>", ErrUnexpectedRoot, root.Tag()))
	}

	result := &pageseeder.FragmentCreation{Root: root}

	if v, ok := root.Attrs().Get("unresolved-xrefs"); ok {
		result.UnresolvedXRefs = v == "true"
	}

	for _, child := range root.Children() {
		el, ok := child.(psml.Element)
		if !ok || el.Tag() != tagDocumentFragment {
			continue
		}

		result.DocumentFragment, err = documentFragment(el)
		if err != nil {
			return nil, malformed(op, resp, err)
		}

		break
	}

	return result, nil
}

// documentFragment reads a <document-fragment> wrapper. A bare fragment
// element is accepted as well.
func documentFragment(root psml.Element) (*pageseeder.DocumentFragment, error) {
	if frag, ok := root.(psml.FragmentElement); ok {
		return &pageseeder.DocumentFragment{Fragment: frag, Root: root}, nil
	}

	if root.Tag() != tagDocumentFragment {
		return nil, fmt.Errorf("%w <%s>", ErrUnexpectedRoot, root.Tag())
	}

	result := &pageseeder.DocumentFragment{Root: root}

	for _, child := range root.Children() {
		switch el := child.(type) {
		case *psml.Locator:
			result.Locator = el
		case psml.FragmentElement:
			if result.Fragment == nil {
				result.Fragment = el
			}
		}
	}

	return result, nil
}

func decodeRoot(op string, resp *http.Response) (psml.Element, error) {
	root, err := psml.UnmarshalElement(resp.Body)
	if err != nil {
		return nil, malformed(op, resp, err)
	}

	if root == nil {
		return nil, malformed(op, resp, ErrUnexpectedRoot)
	}

	return root, nil
}

func malformed(op string, resp *http.Response, err error) error {
	return &pageseeder.MalformedResponseError{
		Operation:   op,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Headers.Get("Content-Type"),
		Err:         err,
	}
}
