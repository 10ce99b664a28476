// Package implicittag picks the element name used when an abbreviation node
// has none, based on the name of its parent.
package implicittag

import "strings"

// Default is returned for block-level or unknown parents.
const Default = "div"

var childOf = map[string]string{
	"p":        "span",
	"ul":       "li",
	"ol":       "li",
	"table":    "tr",
	"tbody":    "tr",
	"thead":    "tr",
	"tfoot":    "tr",
	"tr":       "td",
	"colgroup": "col",
	"select":   "option",
	"optgroup": "option",
	"audio":    "source",
	"video":    "source",
	"object":   "param",
	"map":      "area",
}

var inline = map[string]bool{
	"a": true, "abbr": true, "acronym": true, "applet": true, "b": true,
	"basefont": true, "bdo": true, "big": true, "br": true, "button": true,
	"cite": true, "code": true, "del": true, "dfn": true, "em": true,
	"font": true, "i": true, "iframe": true, "img": true, "input": true,
	"ins": true, "kbd": true, "label": true, "q": true, "s": true,
	"samp": true, "small": true, "span": true, "strike": true,
	"strong": true, "sub": true, "sup": true, "textarea": true, "tt": true,
	"u": true, "var": true,
}

// Resolve returns the implicit child element name for parentName. An empty
// parentName stands for a missing or unnamed parent.
func Resolve(parentName string) string {
	name := strings.ToLower(parentName)
	if child, ok := childOf[name]; ok {
		return child
	}
	if inline[name] {
		return "span"
	}
	return Default
}
