package canonical

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// noiseClass matches the separator runs that accumulate in stored fields over
// time: whitespace, brackets, common punctuation, zero-width space, NBSP,
// hyphen and underscore.
const noiseClass = "[\\s()\\[\\]{}:;,'\"`\u00B7\u2022\u30FB\u318D\u200B\u00A0\\-_]*"

// TolerantPattern builds an anchored, separator-tolerant pattern from a
// canonical string, used to recognize stored fields written before the current
// canonicalization rules. Every input rune is escaped literally, with an
// optional noise run allowed between runes and at both ends.
func TolerantPattern(canonical string) string {
	cleaned := norm.NFKC.String(canonical)
	var b strings.Builder
	b.WriteByte('^')
	b.WriteString(noiseClass)
	for _, r := range cleaned {
		b.WriteString(regexp.QuoteMeta(string(r)))
		b.WriteString(noiseClass)
	}
	b.WriteByte('$')
	return b.String()
}
