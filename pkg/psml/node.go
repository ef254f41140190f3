package psml

// Node is any item that can appear in a PSML tree. The set of
// implementations is closed: element types declared in this package,
// *Unknown, *Text, *Comment, *ProcInst and *Directive.
type Node interface {
	psmlNode()
}

// Element is a Node with a tag, attributes and children.
type Element interface {
	Node

	// Kind identifies the element variant. Unrecognised tags report KindUnknown.
	Kind() Kind
	// Tag is the element name as it appears in markup, including any prefix.
	Tag() string
	// Attrs returns the element's attribute list. It is never nil.
	Attrs() *Attributes
	// Children returns the element's child nodes in document order.
	Children() []Node
	// SetChildren replaces the child nodes.
	SetChildren(children []Node)
	// Append adds nodes after the existing children.
	Append(children ...Node)

	base() *elem
}

// elem holds the data shared by every element variant.
type elem struct {
	attrs    Attributes
	children []Node
}

func (e *elem) psmlNode() {}

func (e *elem) Attrs() *Attributes { return &e.attrs }

func (e *elem) Children() []Node { return e.children }

func (e *elem) SetChildren(children []Node) { e.children = children }

func (e *elem) Append(children ...Node) { e.children = append(e.children, children...) }

func (e *elem) base() *elem { return e }

// attr returns the named attribute value or "" when absent.
func (e *elem) attr(name string) string {
	v, _ := e.attrs.Get(name)

	return v
}

// attrOr returns the named attribute value or def when absent.
func (e *elem) attrOr(name, def string) string {
	if v, ok := e.attrs.Get(name); ok {
		return v
	}

	return def
}

// Unknown is an element whose tag is not part of PSML. It keeps the raw tag,
// attributes and children so unrecognised markup survives a round trip.
type Unknown struct {
	elem

	name string
}

// NewUnknown creates an Unknown element with the given raw tag.
func NewUnknown(tag string) *Unknown {
	return &Unknown{name: tag}
}

// Kind implements Element.
func (u *Unknown) Kind() Kind { return KindUnknown }

// Tag implements Element.
func (u *Unknown) Tag() string { return u.name }

// Text is character data.
type Text struct {
	Data string
}

func (*Text) psmlNode() {}

// NewText creates a text node.
func NewText(data string) *Text {
	return &Text{Data: data}
}

// Comment is an XML comment. Data excludes the <!-- and --> delimiters.
type Comment struct {
	Data string
}

func (*Comment) psmlNode() {}

// ProcInst is a processing instruction such as <?xml version="1.0"?>.
type ProcInst struct {
	Target string
	Inst   string
}

func (*ProcInst) psmlNode() {}

// Directive is a markup declaration such as <!DOCTYPE ...>. Data excludes
// the <! and > delimiters.
type Directive struct {
	Data string
}

func (*Directive) psmlNode() {}

// New constructs an element from a raw tag, attribute list and children.
// Known PSML tags produce their typed variant; any other tag yields *Unknown.
func New(tag string, attrs []Attr, children ...Node) Element {
	var e Element

	kind := KindOf(tag)
	if kind == KindUnknown {
		e = NewUnknown(tag)
	} else {
		e = newKnown(kind)
	}

	b := e.base()
	b.attrs = Attributes{list: append([]Attr(nil), attrs...)}

	if len(children) > 0 {
		b.children = append([]Node(nil), children...)
	}

	return e
}
