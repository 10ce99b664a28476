// Package node fills abbreviation tree nodes with placeholder text.
//
// A node that is neither repeated nor top-level hands its text to its parent
// and removes itself, so "p>lorem" becomes a paragraph of text. Otherwise the
// node keeps the text and, if unnamed, gets an implicit element name: in
// "ul>lorem*3" every item becomes an li and only the first one opens with
// "Lorem ipsum dolor".
package node

import (
	"github.com/emmetio/lorem/pkg/dictionary"
	"github.com/emmetio/lorem/pkg/generator"
	"github.com/emmetio/lorem/pkg/implicittag"
)

// Repeat describes a node's position inside a repeated group.
type Repeat struct {
	// Count is the size of the group.
	Count int
	// Value is the 1-based index of the node in the group.
	Value int
}

// Node is the capability set the filler needs from an externally owned tree
// node. An empty name means the node has none.
type Node interface {
	Name() string
	SetName(name string)
	Value() string
	SetValue(value string)
	// Repeat returns nil for nodes that are not part of a repeated group.
	Repeat() *Repeat
	// Parent returns nil for top-level nodes.
	Parent() Node
	// Remove detaches the node from its tree.
	Remove()
}

// Resolver returns the element name for an unnamed node given its parent's
// name, or "" when there is no parent.
type Resolver func(parentName string) string

// Filler writes generated paragraphs into tree nodes.
type Filler struct {
	Generator generator.TextGenerator
	Resolve   Resolver
}

// NewFiller returns a filler using a time-seeded generator and HTML implicit
// tag rules.
func NewFiller() *Filler {
	return &Filler{
		Generator: generator.NewLoremGenerator(),
		Resolve:   implicittag.Resolve,
	}
}

var defaultFiller = NewFiller()

// Fill fills n using the package default filler.
func Fill(n Node, opts Options) Node {
	return defaultFiller.Fill(n, opts)
}

// Fill generates a paragraph for n according to opts and returns n. Panics
// raised by the resolver are not recovered.
func (f *Filler) Fill(n Node, opts Options) Node {
	opts = opts.WithDefaults()
	dict := dictionary.Lookup(opts.Lang)

	parent := n.Parent()
	repeat := n.Repeat()

	if repeat == nil && parent != nil {
		parent.SetValue(f.Generator.Paragraph(dict, opts.Words(), !opts.SkipsCommon()))
		n.Remove()
		return n
	}

	startWithCommon := !opts.SkipsCommon() && (repeat == nil || repeat.Value == 1)
	n.SetValue(f.Generator.Paragraph(dict, opts.Words(), startWithCommon))

	if n.Name() == "" {
		var parentName string
		if parent != nil {
			parentName = parent.Name()
		}
		n.SetName(f.Resolve(parentName))
	}
	return n
}
