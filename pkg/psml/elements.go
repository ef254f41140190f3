package psml

import (
	"strconv"
	"strings"
)

// DocumentLevel is the processing level of a document.
type DocumentLevel string

// Document levels.
const (
	LevelMetadata  DocumentLevel = "metadata"
	LevelPortable  DocumentLevel = "portable"
	LevelProcessed DocumentLevel = "processed"
)

// PropertyDatatype is the value type of a property.
type PropertyDatatype string

// Property datatypes.
const (
	DatatypeString   PropertyDatatype = "string"
	DatatypeDate     PropertyDatatype = "date"
	DatatypeDatetime PropertyDatatype = "datetime"
	DatatypeXRef     PropertyDatatype = "xref"
	DatatypeLink     PropertyDatatype = "link"
	DatatypeMarkdown PropertyDatatype = "markdown"
	DatatypeMarkup   PropertyDatatype = "markup"
)

// XRefDisplay controls how a cross-reference renders its text.
type XRefDisplay string

// Cross-reference display modes.
const (
	DisplayDocument         XRefDisplay = "document"
	DisplayDocumentManual   XRefDisplay = "document+manual"
	DisplayDocumentFragment XRefDisplay = "document+fragment"
	DisplayManual           XRefDisplay = "manual"
	DisplayTemplate         XRefDisplay = "template"
)

// XRefType is the relationship type of a cross-reference.
type XRefType string

// Cross-reference types. Embed and Transclude are only valid on blockxref.
const (
	XRefTypeNone       XRefType = "none"
	XRefTypeAlternate  XRefType = "alternate"
	XRefTypeMath       XRefType = "math"
	XRefTypeEmbed      XRefType = "embed"
	XRefTypeTransclude XRefType = "transclude"
)

// Align is the horizontal alignment of a table column or cell.
type Align string

// Alignments.
const (
	AlignLeft    Align = "left"
	AlignCenter  Align = "center"
	AlignRight   Align = "right"
	AlignJustify Align = "justify"
)

// RowPart is the table part a row or column belongs to.
type RowPart string

// Table parts.
const (
	PartHeader RowPart = "header"
	PartBody   RowPart = "body"
	PartFooter RowPart = "footer"
)

// DefaultFragment is the fragment targeted by an xref without a frag attribute.
const DefaultFragment = "default"

func boolAttr(e *elem, name string, def bool) bool {
	switch e.attr(name) {
	case "true":
		return true
	case "false":
		return false
	default:
		return def
	}
}

func intAttr(e *elem, name string, def int) int {
	v, ok := e.attrs.Get(name)
	if !ok {
		return def
	}

	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}

	return n
}

func splitLabels(v string) []string {
	var labels []string

	for _, l := range strings.Split(v, ",") {
		if l = strings.TrimSpace(l); l != "" {
			labels = append(labels, l)
		}
	}

	return labels
}

func childrenOf[T Element](e *elem) []T {
	var out []T

	for _, c := range e.children {
		if t, ok := c.(T); ok {
			out = append(out, t)
		}
	}

	return out
}

func firstChild[T Element](e *elem) T {
	var zero T

	for _, c := range e.children {
		if t, ok := c.(T); ok {
			return t
		}
	}

	return zero
}

// Type returns the document type.
func (d *DocumentElement) Type() string { return d.attr("type") }

// Level returns the document level, "portable" when unset.
func (d *DocumentElement) Level() DocumentLevel {
	return DocumentLevel(d.attrOr("level", string(LevelPortable)))
}

// Edit reports whether the document may be edited.
func (d *DocumentElement) Edit() bool { return boolAttr(&d.elem, "edit", true) }

// LockStructure reports whether sections and fragments are locked.
func (d *DocumentElement) LockStructure() bool { return boolAttr(&d.elem, "lockstructure", false) }

// Info returns the documentinfo child or nil.
func (d *DocumentElement) Info() *DocumentInfo { return firstChild[*DocumentInfo](&d.elem) }

// FragmentInfo returns the fragmentinfo child or nil.
func (d *DocumentElement) FragmentInfo() *FragmentInfo { return firstChild[*FragmentInfo](&d.elem) }

// Sections returns the section children in order.
func (d *DocumentElement) Sections() []*Section { return childrenOf[*Section](&d.elem) }

// URI returns the uri child or nil.
func (i *DocumentInfo) URI() *URI { return firstChild[*URI](&i.elem) }

// Publication returns the publication child or nil.
func (i *DocumentInfo) Publication() *Publication { return firstChild[*Publication](&i.elem) }

// ID returns the URI id.
func (u *URI) ID() string { return u.attr("id") }

// DocID returns the document id.
func (u *URI) DocID() string { return u.attr("docid") }

// DocumentType returns the document type of the URI.
func (u *URI) DocumentType() string { return u.attr("documenttype") }

// Folder reports whether the URI is a folder.
func (u *URI) Folder() bool { return boolAttr(&u.elem, "folder", false) }

// Title returns the display title if set, otherwise the title attribute.
func (u *URI) Title() string {
	if dt := firstChild[*DisplayTitle](&u.elem); dt != nil {
		return TextContent(dt)
	}

	return u.attr("title")
}

// Description returns the text of the description child.
func (u *URI) Description() string {
	if d := firstChild[*Description](&u.elem); d != nil {
		return TextContent(d)
	}

	return ""
}

// Labels returns the labels declared in the labels child.
func (u *URI) Labels() []string {
	if l := firstChild[*Labels](&u.elem); l != nil {
		return splitLabels(TextContent(l))
	}

	return nil
}

// ID returns the publication id.
func (p *Publication) ID() string { return p.attr("id") }

// Type returns the publication type.
func (p *Publication) Type() string { return p.attr("type") }

// Fragment returns the id of the fragment the locator points to.
func (l *Locator) Fragment() string { return l.attr("fragment") }

// Notes returns the note children.
func (n *Notes) Notes() []*Note { return childrenOf[*Note](&n.elem) }

// Properties returns the property children.
func (p *Properties) Properties() []*Property { return childrenOf[*Property](&p.elem) }

// Properties returns the properties declared under metadata/properties.
func (m *Metadata) Properties() []*Property {
	if p := firstChild[*Properties](&m.elem); p != nil {
		return p.Properties()
	}

	return nil
}

// ID returns the section id.
func (s *Section) ID() string { return s.attr("id") }

// Title returns the text of the title child, falling back to the title attribute.
func (s *Section) Title() string {
	if t := firstChild[*Title](&s.elem); t != nil {
		return TextContent(t)
	}

	return s.attr("title")
}

// Edit reports whether the section is editable.
func (s *Section) Edit() bool { return boolAttr(&s.elem, "edit", true) }

// LockStructure reports whether fragments may be added or removed.
func (s *Section) LockStructure() bool { return boolAttr(&s.elem, "lockstructure", false) }

// Overwrite reports whether the section content may be replaced.
func (s *Section) Overwrite() bool { return boolAttr(&s.elem, "overwrite", true) }

// FragmentType returns the default type for new fragments in the section.
func (s *Section) FragmentType() string { return s.attr("fragmenttype") }

// Fragments returns the fragment-like children of the section.
func (s *Section) Fragments() []FragmentElement { return childrenOf[FragmentElement](&s.elem) }

// Fragment returns the child fragment with the given id or nil.
func (s *Section) Fragment(id string) FragmentElement {
	for _, f := range s.Fragments() {
		if f.ID() == id {
			return f
		}
	}

	return nil
}

// FragmentElement is implemented by fragment, properties-fragment,
// xref-fragment and media-fragment.
type FragmentElement interface {
	Element
	ID() string
	Type() string
	Labels() []string
}

// ID returns the fragment id.
func (f *Fragment) ID() string { return f.attr("id") }

// Type returns the fragment type.
func (f *Fragment) Type() string { return f.attr("type") }

// Labels returns the fragment labels.
func (f *Fragment) Labels() []string { return splitLabels(f.attr("labels")) }

// ID returns the fragment id.
func (f *PropertiesFragment) ID() string { return f.attr("id") }

// Type returns the fragment type.
func (f *PropertiesFragment) Type() string { return f.attr("type") }

// Labels returns the fragment labels.
func (f *PropertiesFragment) Labels() []string { return splitLabels(f.attr("labels")) }

// Properties returns the property children.
func (f *PropertiesFragment) Properties() []*Property { return childrenOf[*Property](&f.elem) }

// ID returns the fragment id.
func (f *XRefFragment) ID() string { return f.attr("id") }

// Type returns the fragment type.
func (f *XRefFragment) Type() string { return f.attr("type") }

// Labels returns the fragment labels.
func (f *XRefFragment) Labels() []string { return splitLabels(f.attr("labels")) }

// BlockXRefs returns the blockxref children.
func (f *XRefFragment) BlockXRefs() []*BlockXRef { return childrenOf[*BlockXRef](&f.elem) }

// ID returns the fragment id.
func (f *MediaFragment) ID() string { return f.attr("id") }

// Type returns the fragment type.
func (f *MediaFragment) Type() string { return f.attr("type") }

// Labels returns the fragment labels.
func (f *MediaFragment) Labels() []string { return splitLabels(f.attr("labels")) }

// MediaType returns the media type of the fragment content.
func (f *MediaFragment) MediaType() string { return f.attr("mediatype") }

// Name returns the property name.
func (p *Property) Name() string { return p.attr("name") }

// Title returns the property title.
func (p *Property) Title() string { return p.attr("title") }

// Datatype returns the property datatype, "string" when unset.
func (p *Property) Datatype() PropertyDatatype {
	return PropertyDatatype(p.attrOr("datatype", string(DatatypeString)))
}

// Multiple reports whether the property holds several values.
func (p *Property) Multiple() bool { return boolAttr(&p.elem, "multiple", false) }

// Values returns the value attribute if present, otherwise the text of each
// value child.
func (p *Property) Values() []string {
	if v, ok := p.attrs.Get("value"); ok {
		return []string{v}
	}

	var values []string
	for _, v := range childrenOf[*Value](&p.elem) {
		values = append(values, TextContent(v))
	}

	return values
}

// Value returns the first value and whether there is one.
func (p *Property) Value() (string, bool) {
	values := p.Values()
	if len(values) == 0 {
		return "", false
	}

	return values[0], true
}

// XRefs returns the xref children of an xref property.
func (p *Property) XRefs() []*XRef { return childrenOf[*XRef](&p.elem) }

// SetValue stores a single value in the value attribute and drops value children.
func (p *Property) SetValue(v string) {
	p.attrs.Set("value", v)

	kept := p.children[:0]
	for _, c := range p.children {
		if _, ok := c.(*Value); !ok {
			kept = append(kept, c)
		}
	}

	p.children = kept
}

// URIID returns the target URI id.
func (x *XRef) URIID() string { return x.attr("uriid") }

// DocID returns the target document id.
func (x *XRef) DocID() string { return x.attr("docid") }

// Href returns the target href.
func (x *XRef) Href() string { return x.attr("href") }

// Frag returns the target fragment, "default" when unset.
func (x *XRef) Frag() string { return x.attrOr("frag", DefaultFragment) }

// Display returns the display mode, "document" when unset.
func (x *XRef) Display() XRefDisplay { return XRefDisplay(x.attrOr("display", string(DisplayDocument))) }

// Type returns the xref type, "none" when unset.
func (x *XRef) Type() XRefType { return XRefType(x.attrOr("type", string(XRefTypeNone))) }

// Title returns the xref title.
func (x *XRef) Title() string { return x.attr("title") }

// ReverseLink reports whether a reverse link is generated, true when unset.
func (x *XRef) ReverseLink() bool { return boolAttr(&x.elem, "reverselink", true) }

// ReverseTitle returns the reverse link title.
func (x *XRef) ReverseTitle() string { return x.attr("reversetitle") }

// Level returns the heading level of the xref, 0 when unset.
func (x *XRef) Level() int { return intAttr(&x.elem, "level", 0) }

// Labels returns the xref labels.
func (x *XRef) Labels() []string { return splitLabels(x.attr("labels")) }

// URIID returns the target URI id.
func (x *BlockXRef) URIID() string { return x.attr("uriid") }

// DocID returns the target document id.
func (x *BlockXRef) DocID() string { return x.attr("docid") }

// Href returns the target href.
func (x *BlockXRef) Href() string { return x.attr("href") }

// Frag returns the target fragment, "default" when unset.
func (x *BlockXRef) Frag() string { return x.attrOr("frag", DefaultFragment) }

// Display returns the display mode, "document" when unset.
func (x *BlockXRef) Display() XRefDisplay {
	return XRefDisplay(x.attrOr("display", string(DisplayDocument)))
}

// Type returns the blockxref type, "none" when unset.
func (x *BlockXRef) Type() XRefType { return XRefType(x.attrOr("type", string(XRefTypeNone))) }

// Title returns the blockxref title.
func (x *BlockXRef) Title() string { return x.attr("title") }

// ReverseLink reports whether a reverse link is generated, true when unset.
func (x *BlockXRef) ReverseLink() bool { return boolAttr(&x.elem, "reverselink", true) }

// Unresolved reports whether the server could not resolve the target.
func (x *BlockXRef) Unresolved() bool { return boolAttr(&x.elem, "unresolved", false) }

// Labels returns the blockxref labels.
func (x *BlockXRef) Labels() []string { return splitLabels(x.attr("labels")) }

// Level returns the heading level, 1 when unset.
func (h *Heading) Level() int { return intAttr(&h.elem, "level", 1) }

// Indent returns the paragraph indent level, 0 when unset.
func (p *Para) Indent() int { return intAttr(&p.elem, "indent", 0) }

// Numbered reports whether the paragraph is auto-numbered.
func (p *Para) Numbered() bool { return boolAttr(&p.elem, "numbered", false) }

// Prefix returns the paragraph prefix.
func (p *Para) Prefix() string { return p.attr("prefix") }

// Src returns the image source.
func (i *Image) Src() string { return i.attr("src") }

// Alt returns the alternate text.
func (i *Image) Alt() string { return i.attr("alt") }

// Width returns the width attribute.
func (i *Image) Width() string { return i.attr("width") }

// Height returns the height attribute.
func (i *Image) Height() string { return i.attr("height") }

// URIID returns the image URI id.
func (i *Image) URIID() string { return i.attr("uriid") }

// DocID returns the image document id.
func (i *Image) DocID() string { return i.attr("docid") }

// Href returns the link target.
func (l *Link) Href() string { return l.attr("href") }

// Name returns the anchor name.
func (a *Anchor) Name() string { return a.attr("name") }

// Label returns the block label.
func (b *Block) Label() string { return b.attr("label") }

// Label returns the inline label.
func (i *Inline) Label() string { return i.attr("label") }

// Role returns the preformat role, typically a language name.
func (p *Preformat) Role() string { return p.attr("role") }

// Type returns the bullet type.
func (l *List) Type() string { return l.attr("type") }

// Role returns the list role.
func (l *List) Role() string { return l.attr("role") }

// Items returns the item children.
func (l *List) Items() []*Item { return childrenOf[*Item](&l.elem) }

// Type returns the numbering type.
func (l *NList) Type() string { return l.attr("type") }

// Start returns the first number, 1 when unset.
func (l *NList) Start() int { return intAttr(&l.elem, "start", 1) }

// Items returns the item children.
func (l *NList) Items() []*Item { return childrenOf[*Item](&l.elem) }

// Role returns the table role.
func (t *Table) Role() string { return t.attr("role") }

// Summary returns the table summary.
func (t *Table) Summary() string { return t.attr("summary") }

// Width returns the table width.
func (t *Table) Width() string { return t.attr("width") }

// Height returns the table height.
func (t *Table) Height() string { return t.attr("height") }

// Caption returns the caption text.
func (t *Table) Caption() string {
	if c := firstChild[*Caption](&t.elem); c != nil {
		return TextContent(c)
	}

	return ""
}

// Cols returns the col children.
func (t *Table) Cols() []*Col { return childrenOf[*Col](&t.elem) }

// Rows returns the row children.
func (t *Table) Rows() []*Row { return childrenOf[*Row](&t.elem) }

// Align returns the column alignment.
func (c *Col) Align() Align { return Align(c.attr("align")) }

// Width returns the column width.
func (c *Col) Width() string { return c.attr("width") }

// Part returns the table part, "body" when unset.
func (c *Col) Part() RowPart { return RowPart(c.attrOr("part", string(PartBody))) }

// Align returns the row alignment.
func (r *Row) Align() Align { return Align(r.attr("align")) }

// Part returns the table part, "body" when unset.
func (r *Row) Part() RowPart { return RowPart(r.attrOr("part", string(PartBody))) }

// Cells returns cell and hcell children in order.
func (r *Row) Cells() []Element {
	var cells []Element

	for _, c := range r.children {
		switch c := c.(type) {
		case *Cell:
			cells = append(cells, c)
		case *HCell:
			cells = append(cells, c)
		}
	}

	return cells
}

// Align returns the cell alignment.
func (c *Cell) Align() Align { return Align(c.attr("align")) }

// ColSpan returns the column span, 1 when unset.
func (c *Cell) ColSpan() int { return intAttr(&c.elem, "colspan", 1) }

// RowSpan returns the row span, 1 when unset.
func (c *Cell) RowSpan() int { return intAttr(&c.elem, "rowspan", 1) }

// Align returns the cell alignment.
func (c *HCell) Align() Align { return Align(c.attr("align")) }

// ColSpan returns the column span, 1 when unset.
func (c *HCell) ColSpan() int { return intAttr(&c.elem, "colspan", 1) }

// RowSpan returns the row span, 1 when unset.
func (c *HCell) RowSpan() int { return intAttr(&c.elem, "rowspan", 1) }
