package utils

import (
	"strings"

	"github.com/google/uuid"
)

// IDGenerator generates unique IDs
type IDGenerator struct {
	prefix string
}

// NewIDGenerator creates a new ID generator
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{prefix: "lorem-"}
}

// GenerateID generates a unique ID for a generation response
func (g *IDGenerator) GenerateID() string {
	return g.prefix + uuid.New().String()[:12]
}

// GenerateStreamID generates an ID shared by every chunk of one stream
func (g *IDGenerator) GenerateStreamID() string {
	return g.prefix + "stream-" + uuid.New().String()[:24]
}

// CountWords counts the whitespace separated words in text
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// TokenizeText tokenizes text into words
func TokenizeText(text string) []string {
	return strings.Fields(text)
}

// Pointer returns a pointer to a value
func Pointer[T any](v T) *T {
	return &v
}
