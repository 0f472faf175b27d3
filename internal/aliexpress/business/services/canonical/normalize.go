package canonical

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// SynonymTable maps upstream property spellings to their canonical form.
// It is read-only after initialization and safe to share across goroutines.
type SynonymTable map[string]string

// DefaultSynonyms returns the documented upstream synonym set.
func DefaultSynonyms() SynonymTable {
	return SynonymTable{
		"색깔": "색상",
	}
}

// Normalize applies Unicode compatibility normalization and removes every
// whitespace and zero-width character. Idempotent.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || isZeroWidth(r) {
			return -1
		}
		return r
	}, s)
}

func isZeroWidth(r rune) bool {
	switch r {
	case '\u200B', '\u200C', '\u200D', '\uFEFF':
		return true
	}
	return false
}

// Canonicalizer canonicalizes property keys and values against a fixed
// synonym table.
type Canonicalizer struct {
	synonyms SynonymTable
}

func NewCanonicalizer(synonyms SynonymTable) *Canonicalizer {
	if synonyms == nil {
		synonyms = DefaultSynonyms()
	}
	return &Canonicalizer{synonyms: synonyms}
}

// Token canonicalizes a single key or value. The synonym table is consulted
// under the raw spelling first and the normalized spelling second, so entries
// keyed either way are honored; without a hit the normalized form is returned.
func (c *Canonicalizer) Token(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if mapped, ok := c.synonyms[trimmed]; ok {
		return mapped
	}
	normalized := Normalize(trimmed)
	if mapped, ok := c.synonyms[normalized]; ok {
		return mapped
	}
	return normalized
}

// Color canonicalizes a variant color value.
func (c *Canonicalizer) Color(raw string) string {
	return c.Token(raw)
}
