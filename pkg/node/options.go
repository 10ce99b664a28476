package node

import "github.com/emmetio/lorem/pkg/utils"

// Default option values.
const (
	DefaultWordCount = 30
	DefaultLang      = "latin"
)

// Options configures a single fill call. Nil fields are unset and take
// their defaults, so an explicit zero word count or false skip flag still
// overrides whatever it is merged over.
type Options struct {
	// WordCount is the number of words to produce. Zero and negative values
	// are kept; see generator.LoremGenerator.Paragraph.
	WordCount *int `json:"word_count,omitempty" koanf:"word_count"`
	// SkipCommon suppresses the canonical "Lorem ipsum dolor" opening.
	SkipCommon *bool `json:"skip_common,omitempty" koanf:"skip_common"`
	// Lang selects the dictionary. Unknown keys fall back to latin.
	Lang string `json:"lang,omitempty" koanf:"lang"`
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		WordCount:  utils.Pointer(DefaultWordCount),
		SkipCommon: utils.Pointer(false),
		Lang:       DefaultLang,
	}
}

// WithDefaults fills unset fields with their default values.
func (o Options) WithDefaults() Options {
	return DefaultOptions().Merge(o)
}

// Merge returns o with every field set in over taking precedence.
func (o Options) Merge(over Options) Options {
	if over.WordCount != nil {
		o.WordCount = utils.Pointer(*over.WordCount)
	}
	if over.SkipCommon != nil {
		o.SkipCommon = utils.Pointer(*over.SkipCommon)
	}
	if over.Lang != "" {
		o.Lang = over.Lang
	}
	return o
}

// Words returns the word count, or DefaultWordCount when unset.
func (o Options) Words() int {
	if o.WordCount == nil {
		return DefaultWordCount
	}
	return *o.WordCount
}

// SkipsCommon reports whether the common opening is suppressed.
func (o Options) SkipsCommon() bool {
	return o.SkipCommon != nil && *o.SkipCommon
}
