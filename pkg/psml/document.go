package psml

import "strings"

// Document is a parsed PSML file: the root element plus any comments,
// processing instructions or declarations around it.
type Document struct {
	Prolog []Node
	Root   Element
	Epilog []Node
}

// Element returns the root as a *DocumentElement, or nil when the root is
// some other element (e.g. a bare fragment).
func (d *Document) Element() *DocumentElement {
	root, _ := d.Root.(*DocumentElement)

	return root
}

// URI returns the documentinfo/uri element or nil.
func (d *Document) URI() *URI {
	root := d.Element()
	if root == nil {
		return nil
	}

	if info := root.Info(); info != nil {
		return info.URI()
	}

	return nil
}

// Title returns the document title from documentinfo/uri.
func (d *Document) Title() string {
	if u := d.URI(); u != nil {
		return u.Title()
	}

	return ""
}

// URIID returns the URI id from documentinfo/uri.
func (d *Document) URIID() string {
	if u := d.URI(); u != nil {
		return u.ID()
	}

	return ""
}

// DocID returns the document id from documentinfo/uri.
func (d *Document) DocID() string {
	if u := d.URI(); u != nil {
		return u.DocID()
	}

	return ""
}

// Sections returns the top-level sections.
func (d *Document) Sections() []*Section {
	if root := d.Element(); root != nil {
		return root.Sections()
	}

	return nil
}

// Properties returns the document metadata properties followed by the
// properties of every properties-fragment, in document order.
func (d *Document) Properties() []*Property {
	if d.Root == nil {
		return nil
	}

	var props []*Property

	Walk(d.Root, func(n Node) bool {
		switch n := n.(type) {
		case *Metadata:
			props = append(props, n.Properties()...)

			return false
		case *PropertiesFragment:
			props = append(props, n.Properties()...)

			return false
		}

		return true
	})

	return props
}

// Fragment finds the fragment with the given id anywhere in the document.
func (d *Document) Fragment(id string) FragmentElement {
	if d.Root == nil {
		return nil
	}

	var found FragmentElement

	Walk(d.Root, func(n Node) bool {
		if found != nil {
			return false
		}

		if f, ok := n.(FragmentElement); ok && f.ID() == id {
			found = f

			return false
		}

		return true
	})

	return found
}

// Walk visits n and its descendants depth-first in document order. When fn
// returns false the children of that node are skipped.
func Walk(n Node, fn func(Node) bool) {
	if !fn(n) {
		return
	}

	if e, ok := n.(Element); ok {
		for _, c := range e.Children() {
			Walk(c, fn)
		}
	}
}

// FindAll returns every descendant of root (root included) of type T.
func FindAll[T Element](root Node) []T {
	var out []T

	Walk(root, func(n Node) bool {
		if t, ok := n.(T); ok {
			out = append(out, t)
		}

		return true
	})

	return out
}

// TextContent concatenates all text below n.
func TextContent(n Node) string {
	var sb strings.Builder

	Walk(n, func(n Node) bool {
		if t, ok := n.(*Text); ok {
			sb.WriteString(t.Data)
		}

		return true
	})

	return sb.String()
}

// Equal reports whether two nodes are structurally identical: same kinds,
// tags, attributes (order and presence), text and child order.
func Equal(a, b Node) bool {
	switch a := a.(type) {
	case *Text:
		b, ok := b.(*Text)

		return ok && a.Data == b.Data
	case *Comment:
		b, ok := b.(*Comment)

		return ok && a.Data == b.Data
	case *ProcInst:
		b, ok := b.(*ProcInst)

		return ok && a.Target == b.Target && a.Inst == b.Inst
	case *Directive:
		b, ok := b.(*Directive)

		return ok && a.Data == b.Data
	case Element:
		b, ok := b.(Element)
		if !ok || a.Kind() != b.Kind() || a.Tag() != b.Tag() || !a.Attrs().Equal(b.Attrs()) {
			return false
		}

		return equalNodes(a.Children(), b.Children())
	case nil:
		return b == nil
	default:
		return false
	}
}

// EqualDocuments compares prolog, root and epilog with Equal.
func EqualDocuments(a, b *Document) bool {
	if a == nil || b == nil {
		return a == b
	}

	if (a.Root == nil) != (b.Root == nil) {
		return false
	}

	if a.Root != nil && !Equal(a.Root, b.Root) {
		return false
	}

	return equalNodes(a.Prolog, b.Prolog) && equalNodes(a.Epilog, b.Epilog)
}

func equalNodes(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}

	return true
}

// Clone returns a deep copy of n.
func Clone(n Node) Node {
	switch n := n.(type) {
	case *Text:
		return &Text{Data: n.Data}
	case *Comment:
		return &Comment{Data: n.Data}
	case *ProcInst:
		return &ProcInst{Target: n.Target, Inst: n.Inst}
	case *Directive:
		return &Directive{Data: n.Data}
	case Element:
		children := make([]Node, 0, len(n.Children()))
		for _, c := range n.Children() {
			children = append(children, Clone(c))
		}

		return New(n.Tag(), n.Attrs().All(), children...)
	default:
		return nil
	}
}
