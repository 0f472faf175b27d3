package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRemovesWhitespaceAndZeroWidth(t *testing.T) {
	testCases := []struct {
		name     string
		in       string
		expected string
	}{
		{name: "plain", in: "Red", expected: "Red"},
		{name: "trailing space", in: "Red ", expected: "Red"},
		{name: "inner spaces and tabs", in: " R e\td ", expected: "Red"},
		{name: "zero width space", in: "빨\u200B강", expected: "빨강"},
		{name: "zero width joiners", in: "a\u200Cb\u200Dc", expected: "abc"},
		{name: "byte order mark", in: "\uFEFFRed", expected: "Red"},
		{name: "non breaking space", in: "Red\u00A0Blue", expected: "RedBlue"},
		{name: "empty", in: "", expected: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Normalize(tc.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Red ",
		"빨 강\u200B",
		"\uFEFF  a b c ",
		"no-change",
		"ｆｕｌｌｗｉｄｔｈ", // NFKC folds fullwidth forms
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "Normalize must be idempotent for %q", in)
	}
}

func TestTokenSynonymLookup(t *testing.T) {
	c := NewCanonicalizer(nil)

	// documented shorthand color-term key
	assert.Equal(t, "색상", c.Token("색깔"))
	// raw spelling is tried before normalization
	assert.Equal(t, "색상", c.Token(" 색깔 "))
	// no synonym hit falls back to the normalized form
	assert.Equal(t, "Red", c.Token("Red "))
}

func TestTokenSynonymKeyedByNormalizedForm(t *testing.T) {
	c := NewCanonicalizer(SynonymTable{"colour": "color"})

	// raw "c o l o u r" misses, its normalized form hits
	assert.Equal(t, "color", c.Token("c o l o u r"))
}

func TestColorCanonicalization(t *testing.T) {
	c := NewCanonicalizer(nil)
	assert.Equal(t, "Red", c.Color("Red "))
	assert.Equal(t, "빨강", c.Color("빨 강\u200B"))
}
