package client

import (
	"net/url"
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/fivetwenty-io/psclient/pkg/pageseeder"
)

const servicePrefix = "/ps/service/"

// param is a named identifier that goes into a request path.
type param struct {
	name  string
	value string
}

var identifierRules = []validation.Rule{
	validation.Required.ErrorObject(validation.NewError("validation_required", pageseeder.ErrEmptyParameter.Error())),
	validation.By(printable),
}

func printable(value interface{}) error {
	s, _ := value.(string)
	if strings.IndexFunc(s, func(r rune) bool { return unicode.IsControl(r) }) >= 0 {
		return pageseeder.ErrInvalidParameter
	}

	return nil
}

// checkParams rejects empty or unprintable identifiers before any request
// is sent.
func checkParams(operation string, params ...param) error {
	for _, p := range params {
		err := validation.Validate(strings.TrimSpace(p.value), identifierRules...)
		if err == nil {
			continue
		}

		cause := pageseeder.ErrInvalidParameter
		if strings.TrimSpace(p.value) == "" {
			cause = pageseeder.ErrEmptyParameter
		}

		return &pageseeder.InvalidRequestError{Operation: operation, Parameter: p.name, Err: cause}
	}

	return nil
}

// servicePath joins escaped segments under /ps/service/.
func servicePath(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}

	return servicePrefix + strings.Join(escaped, "/")
}

// queryValues converts params to url.Values, adding extra pairs after them.
func queryValues(params *pageseeder.QueryParams, extra ...string) url.Values {
	values := params.ToValues()

	for i := 0; i+1 < len(extra); i += 2 {
		values.Set(extra[i], extra[i+1])
	}

	return values
}
