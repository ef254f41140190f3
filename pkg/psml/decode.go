package psml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Decode reads a complete PSML document from r.
//
// Elements, attributes, text, comments and processing instructions are kept
// in document order. Whitespace outside the root element is dropped;
// whitespace inside it is kept as text. Namespace prefixes are preserved
// verbatim and never resolved.
func Decode(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = true

	b := &builder{doc: &Document{}}

	for {
		line, col := dec.InputPos()
		offset := dec.InputOffset()

		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, syntaxError(dec, err)
		}

		err = b.add(tok)
		if err != nil {
			return nil, &ParseError{Line: line, Column: col, Offset: offset, Err: err}
		}
	}

	if len(b.stack) > 0 {
		line, col := dec.InputPos()

		return nil, &ParseError{
			Line:   line,
			Column: col,
			Offset: dec.InputOffset(),
			Err:    fmt.Errorf("%w: <%s>", ErrUnclosedElement, b.stack[len(b.stack)-1].Tag()),
		}
	}

	if b.doc.Root == nil {
		line, col := dec.InputPos()

		return nil, &ParseError{Line: line, Column: col, Offset: dec.InputOffset(), Err: ErrNoRootElement}
	}

	return b.doc, nil
}

// Unmarshal parses a PSML document from data.
func Unmarshal(data []byte) (*Document, error) {
	return Decode(bytes.NewReader(data))
}

// DecodeElement parses a document and returns only its root element.
func DecodeElement(r io.Reader) (Element, error) {
	doc, err := Decode(r)
	if err != nil {
		return nil, err
	}

	return doc.Root, nil
}

// UnmarshalElement parses data and returns only its root element.
func UnmarshalElement(data []byte) (Element, error) {
	return DecodeElement(bytes.NewReader(data))
}

func syntaxError(dec *xml.Decoder, err error) *ParseError {
	line, col := dec.InputPos()

	return &ParseError{Line: line, Column: col, Offset: dec.InputOffset(), Err: err}
}

// builder assembles nodes from raw tokens using an element stack.
type builder struct {
	doc   *Document
	stack []Element
}

func (b *builder) add(tok xml.Token) error {
	switch t := tok.(type) {
	case xml.StartElement:
		return b.start(t)
	case xml.EndElement:
		return b.end(t)
	case xml.CharData:
		return b.text(string(t))
	case xml.Comment:
		b.appendNode(&Comment{Data: string(t)})
	case xml.ProcInst:
		if strings.EqualFold(t.Target, "xml") && (b.doc.Root != nil || len(b.doc.Prolog) > 0) {
			return fmt.Errorf("%w: XML declaration must come first", ErrInvalidProcInst)
		}

		b.appendNode(&ProcInst{Target: t.Target, Inst: string(t.Inst)})
	case xml.Directive:
		if len(b.stack) > 0 || b.doc.Root != nil {
			return fmt.Errorf("%w: declaration outside prolog", ErrInvalidDirective)
		}

		b.doc.Prolog = append(b.doc.Prolog, &Directive{Data: string(t)})
	}

	return nil
}

func (b *builder) start(t xml.StartElement) error {
	if len(b.stack) == 0 && b.doc.Root != nil {
		return fmt.Errorf("%w: <%s>", ErrMultipleRoots, qualified(t.Name))
	}

	attrs := make([]Attr, 0, len(t.Attr))
	seen := make(map[string]struct{}, len(t.Attr))

	for _, a := range t.Attr {
		name := qualified(a.Name)
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateAttr, name)
		}

		seen[name] = struct{}{}
		attrs = append(attrs, Attr{Name: name, Value: a.Value})
	}

	e := New(qualified(t.Name), attrs)

	if len(b.stack) == 0 {
		b.doc.Root = e
	} else {
		b.stack[len(b.stack)-1].Append(e)
	}

	b.stack = append(b.stack, e)

	return nil
}

func (b *builder) end(t xml.EndElement) error {
	name := qualified(t.Name)

	if len(b.stack) == 0 {
		return fmt.Errorf("%w: </%s>", ErrUnexpectedEndTag, name)
	}

	top := b.stack[len(b.stack)-1]
	if top.Tag() != name {
		return fmt.Errorf("%w: expected </%s>, found </%s>", ErrMismatchedTag, top.Tag(), name)
	}

	b.stack = b.stack[:len(b.stack)-1]

	return nil
}

func (b *builder) text(data string) error {
	if len(b.stack) == 0 {
		if strings.TrimSpace(data) != "" {
			return ErrTextOutsideRoot
		}

		return nil
	}

	parent := b.stack[len(b.stack)-1]

	// CDATA sections and entity boundaries can split text into several
	// tokens; adjacent runs are merged into one node.
	children := parent.Children()
	if n := len(children); n > 0 {
		if last, ok := children[n-1].(*Text); ok {
			last.Data += data

			return nil
		}
	}

	parent.Append(&Text{Data: data})

	return nil
}

func (b *builder) appendNode(n Node) {
	switch {
	case len(b.stack) > 0:
		b.stack[len(b.stack)-1].Append(n)
	case b.doc.Root == nil:
		b.doc.Prolog = append(b.doc.Prolog, n)
	default:
		b.doc.Epilog = append(b.doc.Epilog, n)
	}
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}

	return n.Space + ":" + n.Local
}
