package psml

// Attr is a single attribute. Name is the raw qualified name, e.g. "xml:lang".
type Attr struct {
	Name  string
	Value string
}

// Attributes is an ordered attribute list. An attribute that is present with
// an empty value is distinct from one that is absent.
type Attributes struct {
	list []Attr
}

// NewAttributes builds an attribute list from name/value pairs.
// A trailing name without a value is ignored.
func NewAttributes(pairs ...string) Attributes {
	var a Attributes
	for i := 0; i+1 < len(pairs); i += 2 {
		a.Set(pairs[i], pairs[i+1])
	}

	return a
}

// Get returns the value of the named attribute and whether it is present.
func (a *Attributes) Get(name string) (string, bool) {
	for _, attr := range a.list {
		if attr.Name == name {
			return attr.Value, true
		}
	}

	return "", false
}

// Has reports whether the named attribute is present.
func (a *Attributes) Has(name string) bool {
	_, ok := a.Get(name)

	return ok
}

// Set assigns an attribute. Overwriting keeps the attribute's position.
func (a *Attributes) Set(name, value string) {
	for i := range a.list {
		if a.list[i].Name == name {
			a.list[i].Value = value

			return
		}
	}

	a.list = append(a.list, Attr{Name: name, Value: value})
}

// Delete removes the named attribute if present.
func (a *Attributes) Delete(name string) {
	for i := range a.list {
		if a.list[i].Name == name {
			a.list = append(a.list[:i], a.list[i+1:]...)

			return
		}
	}
}

// Len returns the number of attributes.
func (a *Attributes) Len() int {
	return len(a.list)
}

// All returns a copy of the attributes in order.
func (a *Attributes) All() []Attr {
	return append([]Attr(nil), a.list...)
}

// Equal reports whether both lists hold the same attributes in the same order.
func (a *Attributes) Equal(other *Attributes) bool {
	if len(a.list) != len(other.list) {
		return false
	}

	for i := range a.list {
		if a.list[i] != other.list[i] {
			return false
		}
	}

	return true
}
