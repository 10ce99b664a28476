// Package dictionary holds the bundled word pools used to build placeholder
// text. Dictionaries are decoded once at start-up and are read-only afterward.
package dictionary

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Latin is the key of the fallback dictionary.
const Latin = "latin"

//go:embed data/*.yaml
var dataFS embed.FS

// Dictionary is a language resource: a general word pool and an optional
// canonical opening ("lorem ipsum dolor ...").
type Dictionary struct {
	// Lang is the registry key, e.g. "latin" or "ru".
	Lang string
	// Tag is the BCP 47 tag used for capitalization rules.
	Tag language.Tag
	// Words is the pool sampled for random sentences.
	Words []string
	// Common is the fixed opening; empty when the language has none.
	Common []string
}

// document is the on-disk shape of a dictionary file.
type document struct {
	Lang   string   `yaml:"lang"`
	Tag    string   `yaml:"tag"`
	Words  []string `yaml:"words"`
	Common []string `yaml:"common"`
}

// HasCommon reports whether the dictionary defines a canonical opening.
func (d *Dictionary) HasCommon() bool {
	return d != nil && len(d.Common) > 0
}

var registry = mustLoad(dataFS)

// Lookup returns the dictionary registered under lang, falling back to the
// latin dictionary when lang is unknown.
func Lookup(lang string) *Dictionary {
	if d, ok := registry[lang]; ok {
		return d
	}
	return registry[Latin]
}

// Get returns the dictionary registered under lang without falling back.
func Get(lang string) (*Dictionary, bool) {
	d, ok := registry[lang]
	return d, ok
}

// Names returns the registered language keys in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Parse decodes a single YAML dictionary document.
func Parse(data []byte) (*Dictionary, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode dictionary: %w", err)
	}
	if doc.Lang == "" {
		return nil, fmt.Errorf("dictionary has no lang key")
	}
	if len(doc.Words) == 0 {
		return nil, fmt.Errorf("dictionary %q has no words", doc.Lang)
	}

	tag := language.Und
	if doc.Tag != "" {
		parsed, err := language.Parse(doc.Tag)
		if err != nil {
			return nil, fmt.Errorf("dictionary %q: invalid tag %q: %w", doc.Lang, doc.Tag, err)
		}
		tag = parsed
	}

	return &Dictionary{
		Lang:   doc.Lang,
		Tag:    tag,
		Words:  doc.Words,
		Common: doc.Common,
	}, nil
}

func load(fsys fs.FS) (map[string]*Dictionary, error) {
	files, err := fs.Glob(fsys, "data/*.yaml")
	if err != nil {
		return nil, err
	}

	out := make(map[string]*Dictionary, len(files))
	for _, name := range files {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path.Base(name), err)
		}
		d, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path.Base(name), err)
		}
		if _, dup := out[d.Lang]; dup {
			return nil, fmt.Errorf("%s: duplicate dictionary %q", path.Base(name), d.Lang)
		}
		out[d.Lang] = d
	}

	if _, ok := out[Latin]; !ok {
		return nil, fmt.Errorf("no %q dictionary bundled", Latin)
	}
	return out, nil
}

func mustLoad(fsys fs.FS) map[string]*Dictionary {
	dicts, err := load(fsys)
	if err != nil {
		panic(err)
	}
	return dicts
}
