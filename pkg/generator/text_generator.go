package generator

import (
	"strings"
	"unicode/utf8"

	"github.com/emmetio/lorem/pkg/dictionary"
	"github.com/emmetio/lorem/pkg/utils"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// terminators holds three periods so a sentence ends with "." 3 times
	// out of 5.
	terminators = "?!..."

	minChunk = 2
	maxChunk = 30
)

// TextGenerator defines the interface for generating placeholder text
type TextGenerator interface {
	Paragraph(dict *dictionary.Dictionary, wordCount int, startWithCommon bool) string
}

// LoremGenerator builds randomized "Lorem Ipsum" paragraphs from a dictionary
type LoremGenerator struct {
	src utils.Source
}

// NewLoremGenerator creates a generator backed by a time-seeded source
func NewLoremGenerator() *LoremGenerator {
	return &LoremGenerator{src: utils.DefaultSource()}
}

// NewLoremGeneratorWithSeed creates a generator with a specific seed. The
// result must not be shared between goroutines.
func NewLoremGeneratorWithSeed(seed int64) *LoremGenerator {
	return &LoremGenerator{src: utils.NewSeededSource(seed)}
}

// NewLoremGeneratorWithSource creates a generator drawing from src
func NewLoremGeneratorWithSource(src utils.Source) *LoremGenerator {
	return &LoremGenerator{src: src}
}

// Paragraph generates about wordCount words of text from dict. When
// startWithCommon is set and dict has a common opening, the paragraph starts
// with it and those words count toward the total.
//
// A non-positive wordCount yields "" without the opening. With it, the
// opening is cut as by commonPrefix and always emitted, so 0 gives "." and
// -3 gives the first five latin words.
func (g *LoremGenerator) Paragraph(dict *dictionary.Dictionary, wordCount int, startWithCommon bool) string {
	if dict == nil {
		return ""
	}

	var sentences []string
	total := 0

	if startWithCommon && dict.HasCommon() {
		words := commonPrefix(dict.Common, wordCount)
		total += len(words)
		sentences = append(sentences, g.sentence(g.InsertCommas(words), ".", dict.Tag))
	}

	for total < wordCount {
		chunk := min(utils.RandInt(g.src, minChunk, maxChunk), wordCount-total)
		words := utils.Sample(g.src, dict.Words, chunk)
		if len(words) == 0 {
			break
		}
		total += len(words)
		sentences = append(sentences, g.sentence(g.InsertCommas(words), "", dict.Tag))
	}

	return strings.Join(sentences, " ")
}

// Sentence joins words with single spaces, capitalizes the first one and
// appends end. An empty end is replaced by a random terminator.
func (g *LoremGenerator) Sentence(words []string, end string) string {
	return g.sentence(words, end, language.Und)
}

func (g *LoremGenerator) sentence(words []string, end string, tag language.Tag) string {
	if len(words) > 0 {
		words = append([]string{capitalize(words[0], tag)}, words[1:]...)
	}
	if end == "" {
		end = string(utils.Choice(g.src, []rune(terminators)))
	}
	return strings.Join(words, " ") + end
}

// InsertCommas appends commas to randomly chosen words. The input is never
// modified; sequences shorter than two words are returned as is.
func (g *LoremGenerator) InsertCommas(words []string) []string {
	if len(words) < 2 {
		return words
	}

	out := append([]string(nil), words...)
	n := len(out)

	var total int
	switch {
	case n <= 3:
		total = 0
	case n <= 6:
		total = utils.RandIntInclusive(g.src, 0, 1)
	case n <= 12:
		total = utils.RandIntInclusive(g.src, 0, 2)
	default:
		total = utils.RandIntInclusive(g.src, 1, 3)
	}

	// A position that already carries a comma is skipped, not retried.
	for i := 0; i < total; i++ {
		pos := utils.RandInt(g.src, 0, n-2)
		if !strings.HasSuffix(out[pos], ",") {
			out[pos] += ","
		}
	}
	return out
}

// capitalize upper-cases the first rune of word using the rules of tag.
func capitalize(word string, tag language.Tag) string {
	r, size := utf8.DecodeRuneInString(word)
	if r == utf8.RuneError {
		return word
	}
	return cases.Upper(tag).String(string(r)) + word[size:]
}

// commonPrefix returns the first n words. A negative n drops that many words
// from the end instead.
func commonPrefix(words []string, n int) []string {
	if n < 0 {
		n = max(0, len(words)+n)
	}
	return words[:min(n, len(words))]
}
