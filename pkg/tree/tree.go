// Package tree is a minimal element tree for hosting abbreviation nodes. The
// tree itself is not a node: top-level elements report no parent.
package tree

import (
	"strings"

	"github.com/emmetio/lorem/pkg/node"
)

// Tree holds the top-level elements of an expanded abbreviation.
type Tree struct {
	children []*Element
}

// Element is a named tree node with a text value and children.
type Element struct {
	name     string
	value    string
	repeat   *node.Repeat
	parent   *Element
	tree     *Tree
	children []*Element
}

var _ node.Node = (*Element)(nil)

// New creates an empty tree.
func New() *Tree {
	return &Tree{}
}

// NewElement creates a detached element.
func NewElement(name string) *Element {
	return &Element{name: name}
}

// Append adds e as a top-level element and returns it.
func (t *Tree) Append(e *Element) *Element {
	e.detach()
	e.tree = t
	t.children = append(t.children, e)
	return e
}

// Children returns the top-level elements.
func (t *Tree) Children() []*Element {
	return t.children
}

// Append adds child as the last child of e and returns it.
func (e *Element) Append(child *Element) *Element {
	child.detach()
	child.parent = e
	e.children = append(e.children, child)
	return child
}

// Children returns the element's children.
func (e *Element) Children() []*Element {
	return e.children
}

// SetRepeat marks e as the value-th element of a group of count.
func (e *Element) SetRepeat(count, value int) *Element {
	e.repeat = &node.Repeat{Count: count, Value: value}
	return e
}

func (e *Element) Name() string          { return e.name }
func (e *Element) SetName(name string)   { e.name = name }
func (e *Element) Value() string         { return e.value }
func (e *Element) SetValue(value string) { e.value = value }
func (e *Element) Repeat() *node.Repeat  { return e.repeat }

// Parent returns the parent element, or nil for top-level and detached
// elements.
func (e *Element) Parent() node.Node {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

// Remove detaches e from its parent or tree.
func (e *Element) Remove() {
	e.detach()
}

func (e *Element) detach() {
	switch {
	case e.parent != nil:
		e.parent.children = without(e.parent.children, e)
	case e.tree != nil:
		e.tree.children = without(e.tree.children, e)
	}
	e.parent = nil
	e.tree = nil
}

func without(list []*Element, e *Element) []*Element {
	out := list[:0]
	for _, c := range list {
		if c != e {
			out = append(out, c)
		}
	}
	// clear the tail so the removed pointer is not retained
	for i := len(out); i < len(list); i++ {
		list[i] = nil
	}
	return out
}

// Walk calls fn for every element in depth-first order. Children appended or
// removed by fn for the current element are not visited.
func (t *Tree) Walk(fn func(*Element)) {
	walk(append([]*Element(nil), t.children...), fn)
}

func walk(list []*Element, fn func(*Element)) {
	for _, e := range list {
		children := append([]*Element(nil), e.children...)
		fn(e)
		walk(children, fn)
	}
}

// String renders the tree as indented markup.
func (t *Tree) String() string {
	var b strings.Builder
	for _, e := range t.children {
		writeElement(&b, e, 0)
	}
	return b.String()
}

func writeElement(b *strings.Builder, e *Element, depth int) {
	indent := strings.Repeat("  ", depth)
	b.WriteString(indent)
	if e.name != "" {
		b.WriteString("<" + e.name + ">")
	}
	b.WriteString(e.value)

	if len(e.children) > 0 {
		b.WriteString("\n")
		for _, c := range e.children {
			writeElement(b, c, depth+1)
		}
		b.WriteString(indent)
	}

	if e.name != "" {
		b.WriteString("</" + e.name + ">")
	}
	b.WriteString("\n")
}
