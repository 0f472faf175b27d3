package canonical

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// PropertyList is the structured form of a variant property set.
type PropertyList []map[string]any

type pair struct {
	key   string
	value string
}

// ParseProperties accepts a property set in whatever shape it arrives:
// a structured list, a JSON string encoding of one, raw JSON bytes, or
// nothing. Unparseable input yields an empty list.
func ParseProperties(v any) PropertyList {
	switch t := v.(type) {
	case nil:
		return nil
	case PropertyList:
		return t
	case []map[string]any:
		return PropertyList(t)
	case json.RawMessage:
		return parseJSONProps([]byte(t))
	case []byte:
		return parseJSONProps(t)
	case string:
		return parseJSONProps([]byte(t))
	default:
		return nil
	}
}

// RawString reports the original string encoding of a property set, when the
// provider sent one.
func RawString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case []byte:
		return rawFromJSON(t)
	case json.RawMessage:
		return rawFromJSON([]byte(t))
	}
	return "", false
}

func rawFromJSON(b []byte) (string, bool) {
	trimmed := strings.TrimSpace(string(b))
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal([]byte(trimmed), &inner); err == nil {
			return inner, true
		}
	}
	return "", false
}

func parseJSONProps(b []byte) PropertyList {
	trimmed := strings.TrimSpace(string(b))
	if trimmed == "" {
		return nil
	}
	if trimmed[0] == '"' {
		// string-encoded JSON, nested one level deeper
		var inner string
		if err := json.Unmarshal([]byte(trimmed), &inner); err != nil {
			return nil
		}
		return parseJSONProps([]byte(inner))
	}
	var list PropertyList
	if err := json.Unmarshal([]byte(trimmed), &list); err != nil {
		return nil
	}
	return list
}

func isEmptyProps(list PropertyList) bool {
	if len(list) == 0 {
		return true
	}
	return len(list) == 1 && len(list[0]) == 0
}

func stringifyValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// canonicalPairs canonicalizes one mapping into key-sorted pairs. Source keys
// are walked in ordinal order so that duplicate canonical keys introduced by
// synonym substitution merge deterministically, first value winning.
func (c *Canonicalizer) canonicalPairs(m map[string]any) []pair {
	rawKeys := make([]string, 0, len(m))
	for k := range m {
		rawKeys = append(rawKeys, k)
	}
	sort.Strings(rawKeys)

	pairs := make([]pair, 0, len(m))
	for _, k := range rawKeys {
		pairs = append(pairs, pair{key: c.Token(k), value: c.Token(stringifyValue(m[k]))})
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })

	merged := pairs[:0]
	seen := make(map[string]struct{}, len(pairs))
	for _, p := range pairs {
		if _, ok := seen[p.key]; ok {
			continue
		}
		seen[p.key] = struct{}{}
		merged = append(merged, p)
	}
	return merged
}

// Properties reduces a property set to its canonical JSON encoding: every key
// and value canonicalized, keys ordinally sorted, duplicate keys merged, and a
// byte-stable serialization. Empty, absent and single-empty-mapping inputs all
// produce the empty marker "".
func (c *Canonicalizer) Properties(v any) string {
	list := ParseProperties(v)
	if isEmptyProps(list) {
		return ""
	}
	var b strings.Builder
	b.WriteByte('[')
	for i, m := range list {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('{')
		for j, p := range c.canonicalPairs(m) {
			if j > 0 {
				b.WriteByte(',')
			}
			writeJSONString(&b, p.key)
			b.WriteByte(':')
			writeJSONString(&b, p.value)
		}
		b.WriteByte('}')
	}
	b.WriteByte(']')
	return b.String()
}

// Fingerprint reduces a property set to its canonicalized values only, keys
// discarded, ordinally sorted and joined. It tolerates upstream key-naming
// drift while still requiring matching value sets.
func (c *Canonicalizer) Fingerprint(v any) string {
	list := ParseProperties(v)
	if isEmptyProps(list) {
		return ""
	}
	var values []string
	for _, m := range list {
		for _, p := range c.canonicalPairs(m) {
			values = append(values, p.value)
		}
	}
	sort.Strings(values)
	return strings.Join(values, keySeparator)
}

func writeJSONString(b *strings.Builder, s string) {
	enc, err := json.Marshal(s)
	if err != nil {
		enc = []byte(`""`)
	}
	b.Write(enc)
}
