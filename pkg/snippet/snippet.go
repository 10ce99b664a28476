// Package snippet recognizes lorem abbreviation names such as "lorem",
// "lorem10" or "loremru25" and expands them into a filled element tree.
package snippet

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/emmetio/lorem/pkg/node"
	"github.com/emmetio/lorem/pkg/tree"
	"github.com/emmetio/lorem/pkg/utils"
)

var reLorem = regexp.MustCompile(`^(?:lorem|lipsum)([a-z]*)(\d*)$`)

// Match parses name and returns the options it encodes. Fields not present
// in name are left zero so they can be merged over other defaults.
func Match(name string) (node.Options, bool) {
	m := reLorem.FindStringSubmatch(name)
	if m == nil {
		return node.Options{}, false
	}

	var opts node.Options
	if m[1] != "" {
		opts.Lang = m[1]
	}
	if m[2] != "" {
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return node.Options{}, false
		}
		opts.WordCount = utils.Pointer(n)
	}
	return opts, true
}

// Request describes a lorem abbreviation to expand, optionally nested in a
// parent element and repeated.
type Request struct {
	// Abbreviation is the snippet name, e.g. "loremru10".
	Abbreviation string
	// Parent wraps the snippet in an element of that name when set.
	Parent string
	// Repeat repeats the snippet that many times when > 0.
	Repeat int
	// Options are the defaults the abbreviation is merged over.
	Options node.Options
}

// Expand builds the tree described by req and fills every lorem node with f.
func Expand(f *node.Filler, req Request) (*tree.Tree, error) {
	abbr := req.Abbreviation
	if abbr == "" {
		abbr = "lorem"
	}
	parsed, ok := Match(abbr)
	if !ok {
		return nil, fmt.Errorf("not a lorem abbreviation: %q", abbr)
	}
	if req.Repeat < 0 {
		return nil, fmt.Errorf("invalid repeat count %d", req.Repeat)
	}
	opts := req.Options.Merge(parsed)

	t := tree.New()
	var targets []*tree.Element
	add := func(e *tree.Element) *tree.Element {
		targets = append(targets, e)
		return e
	}

	var parent *tree.Element
	if req.Parent != "" {
		parent = t.Append(tree.NewElement(req.Parent))
	}

	count := max(req.Repeat, 1)
	for i := 1; i <= count; i++ {
		e := tree.NewElement("")
		if req.Repeat > 0 {
			e.SetRepeat(req.Repeat, i)
		}
		if parent != nil {
			parent.Append(add(e))
		} else {
			t.Append(add(e))
		}
	}

	for _, e := range targets {
		f.Fill(e, opts)
	}
	return t, nil
}
