package psml

import (
	"errors"
	"fmt"
)

// Static errors for err113 compliance.
var (
	ErrMismatchedTag    = errors.New("mismatched end tag")
	ErrUnclosedElement  = errors.New("unclosed element")
	ErrNoRootElement    = errors.New("no root element")
	ErrMultipleRoots    = errors.New("content after root element")
	ErrTextOutsideRoot  = errors.New("text outside root element")
	ErrDuplicateAttr    = errors.New("duplicate attribute")
	ErrInvalidName      = errors.New("invalid XML name")
	ErrInvalidChar      = errors.New("invalid XML character")
	ErrInvalidComment   = errors.New("comment contains \"--\" or ends with \"-\"")
	ErrInvalidProcInst  = errors.New("invalid processing instruction")
	ErrInvalidDirective = errors.New("invalid directive")
	ErrNilRoot          = errors.New("document has no root element")
	ErrUnsupportedNode  = errors.New("unsupported node type")
	ErrUnexpectedEndTag = errors.New("end tag without matching start tag")
)

// ParseError reports malformed markup. Line and Column are 1-based; Offset
// is the byte offset into the input.
type ParseError struct {
	Line   int
	Column int
	Offset int64
	Err    error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("psml: parse error at line %d, column %d (offset %d): %v", e.Line, e.Column, e.Offset, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// EncodeError reports a node that cannot be written as well-formed markup.
// Path locates the node, e.g. /document/section[1]/fragment[2]/para[1]/text()[1].
type EncodeError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *EncodeError) Error() string {
	return fmt.Sprintf("psml: cannot encode %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *EncodeError) Unwrap() error {
	return e.Err
}
