package psml

import (
	"regexp"
	"strconv"
)

var propertyBadName = regexp.MustCompile(`(^-|[^a-zA-Z0-9_-]+)`)

// SanitizePropertyName replaces every run of characters not allowed in a
// property name, and a leading hyphen, with repl.
func SanitizePropertyName(name, repl string) string {
	return propertyBadName.ReplaceAllLiteralString(name, repl)
}

// NewDocument returns a document with a <document level="portable"> root
// containing the given sections.
func NewDocument(docType string, sections ...*Section) *Document {
	root := &DocumentElement{}
	root.attrs.Set("level", string(LevelPortable))

	if docType != "" {
		root.attrs.Set("type", docType)
	}

	for _, s := range sections {
		root.Append(s)
	}

	return &Document{Root: root}
}

// NewSection returns a section with the given id and children. When title is
// not empty a <title> child is added first.
func NewSection(id, title string, children ...Node) *Section {
	s := &Section{}
	s.attrs.Set("id", id)

	if title != "" {
		s.Append(&Title{elem: elem{children: []Node{NewText(title)}}})
	}

	s.Append(children...)

	return s
}

// NewFragment returns a fragment with the given id and children.
func NewFragment(id string, children ...Node) *Fragment {
	f := &Fragment{}
	f.attrs.Set("id", id)
	f.Append(children...)

	return f
}

// NewPropertiesFragment returns a properties-fragment holding props.
func NewPropertiesFragment(id string, props ...*Property) *PropertiesFragment {
	f := &PropertiesFragment{}
	f.attrs.Set("id", id)

	for _, p := range props {
		f.Append(p)
	}

	return f
}

// NewXRefFragment returns an xref-fragment holding xrefs.
func NewXRefFragment(id string, xrefs ...*BlockXRef) *XRefFragment {
	f := &XRefFragment{}
	f.attrs.Set("id", id)

	for _, x := range xrefs {
		f.Append(x)
	}

	return f
}

// NewProperty returns a single-valued string property. The name is sanitized
// with SanitizePropertyName.
func NewProperty(name, title, value string) *Property {
	p := &Property{}
	p.attrs.Set("name", SanitizePropertyName(name, "_"))

	if title != "" {
		p.attrs.Set("title", title)
	}

	p.attrs.Set("value", value)

	return p
}

// NewMultiProperty returns a property with multiple="true" and one <value>
// child per value.
func NewMultiProperty(name, title string, datatype PropertyDatatype, values ...string) *Property {
	p := &Property{}
	p.attrs.Set("name", SanitizePropertyName(name, "_"))

	if title != "" {
		p.attrs.Set("title", title)
	}

	if datatype != "" && datatype != DatatypeString {
		p.attrs.Set("datatype", string(datatype))
	}

	p.attrs.Set("multiple", "true")

	for _, v := range values {
		p.Append(&Value{elem: elem{children: []Node{NewText(v)}}})
	}

	return p
}

// NewHeading returns a heading of the given level with text content.
func NewHeading(level int, text string) *Heading {
	h := &Heading{}
	h.attrs.Set("level", strconv.Itoa(level))
	h.Append(NewText(text))

	return h
}

// NewPara returns a paragraph with the given inline content.
func NewPara(children ...Node) *Para {
	p := &Para{}
	p.Append(children...)

	return p
}

// NewXRefToURI returns an xref targeting a URI id.
func NewXRefToURI(uriid, frag string) *XRef {
	return newXRef("uriid", uriid, frag)
}

// NewXRefToDocID returns an xref targeting a document id.
func NewXRefToDocID(docid, frag string) *XRef {
	return newXRef("docid", docid, frag)
}

// NewXRefToHref returns an xref targeting a relative or absolute href.
func NewXRefToHref(href, frag string) *XRef {
	return newXRef("href", href, frag)
}

func newXRef(attr, target, frag string) *XRef {
	x := &XRef{}
	x.attrs.Set(attr, target)

	if frag != "" {
		x.attrs.Set("frag", frag)
	}

	return x
}

// NewBlockXRefToURI returns a blockxref targeting a URI id.
func NewBlockXRefToURI(uriid string, typ XRefType) *BlockXRef {
	x := &BlockXRef{}
	x.attrs.Set("uriid", uriid)
	x.attrs.Set("frag", DefaultFragment)

	if typ != "" {
		x.attrs.Set("type", string(typ))
	}

	return x
}

// NewImage returns an image with the given source.
func NewImage(src, alt string) *Image {
	i := &Image{}
	i.attrs.Set("src", src)

	if alt != "" {
		i.attrs.Set("alt", alt)
	}

	return i
}

// NewLink returns a link with text content.
func NewLink(href, text string) *Link {
	l := &Link{}
	l.attrs.Set("href", href)
	l.Append(NewText(text))

	return l
}

// NewList returns a bulleted list with one text item per entry.
func NewList(items ...string) *List {
	l := &List{}
	for _, it := range items {
		l.Append(&Item{elem: elem{children: []Node{NewText(it)}}})
	}

	return l
}

// NewBasicTable returns a table with cols empty column definitions, one row
// per entry of cells, and an optional caption.
func NewBasicTable(cols int, cells [][]string, caption string) *Table {
	t := &Table{}

	if caption != "" {
		t.Append(&Caption{elem: elem{children: []Node{NewText(caption)}}})
	}

	for range cols {
		t.Append(&Col{})
	}

	for _, row := range cells {
		r := &Row{}
		for _, c := range row {
			r.Append(&Cell{elem: elem{children: []Node{NewText(c)}}})
		}

		t.Append(r)
	}

	return t
}

// Wrap returns a new element of kind k around children, e.g.
// Wrap(KindBold, NewText("x")). KindUnknown yields nil.
func Wrap(k Kind, children ...Node) Element {
	if k == KindUnknown {
		return nil
	}

	return New(k.Tag(), nil, children...)
}
