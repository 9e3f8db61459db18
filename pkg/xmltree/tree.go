// Package xmltree holds a small mutable XML element tree.
//
// Builders produce trees, exporters rewrite them, and the encoder turns them
// into indented documents. The tree keeps attribute order as inserted.
package xmltree

import "strings"

// Attr is a single unqualified attribute.
type Attr struct {
	Name  string
	Value string
}

// Element is a node of the tree.
// Namespace is emitted as a default namespace declaration whenever it
// differs from the parent's namespace.
type Element struct {
	Name      string
	Namespace string
	Text      string
	Attrs     []Attr
	Children  []*Element
}

// New returns an element with the given local name.
func New(name string) *Element {
	return &Element{Name: name}
}

// SetAttr sets name to value, replacing an existing attribute in place.
func (e *Element) SetAttr(name, value string) *Element {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			e.Attrs[i].Value = value
			return e
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
	return e
}

// SetAttrIf sets the attribute only when value is not blank.
func (e *Element) SetAttrIf(name, value string) *Element {
	if strings.TrimSpace(value) == "" {
		return e
	}
	return e.SetAttr(name, value)
}

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	if e == nil {
		return "", false
	}
	for _, attr := range e.Attrs {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// HasAttr reports whether the named attribute is present.
func (e *Element) HasAttr(name string) bool {
	_, ok := e.Attr(name)
	return ok
}

// Append adds children in order. Nil children are skipped.
func (e *Element) Append(children ...*Element) *Element {
	for _, child := range children {
		if child != nil {
			e.Children = append(e.Children, child)
		}
	}
	return e
}

// Child returns the first direct child with the given name.
func (e *Element) Child(name string) *Element {
	if e == nil {
		return nil
	}
	for _, child := range e.Children {
		if child.Name == name {
			return child
		}
	}
	return nil
}

// Elements returns the direct children with the given name.
func (e *Element) Elements(name string) []*Element {
	if e == nil {
		return nil
	}
	var out []*Element
	for _, child := range e.Children {
		if child.Name == name {
			out = append(out, child)
		}
	}
	return out
}

// Descendants returns every element below e with the given name, in document order.
func (e *Element) Descendants(name string) []*Element {
	var out []*Element
	_ = e.Walk(func(el *Element) error {
		if el != e && el.Name == name {
			out = append(out, el)
		}
		return nil
	})
	return out
}

// Walk visits e and its descendants depth-first, stopping at the first error.
func (e *Element) Walk(fn func(*Element) error) error {
	if e == nil {
		return nil
	}
	if err := fn(e); err != nil {
		return err
	}
	for _, child := range e.Children {
		if err := child.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy of e.
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	out := &Element{
		Name:      e.Name,
		Namespace: e.Namespace,
		Text:      e.Text,
	}
	if len(e.Attrs) > 0 {
		out.Attrs = append([]Attr(nil), e.Attrs...)
	}
	if len(e.Children) > 0 {
		out.Children = make([]*Element, len(e.Children))
		for i, child := range e.Children {
			out.Children[i] = child.Clone()
		}
	}
	return out
}
