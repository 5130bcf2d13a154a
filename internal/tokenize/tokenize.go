// Package tokenize turns log text and field values into the lowercase terms
// a segment indexes: whitespace/punctuation splitting on text, with field
// values joined to their field name by a delimiter that cannot appear in a
// term.
package tokenize

import (
	"sort"
	"strings"
	"unicode"
)

// FieldDelimiter separates a field name from its tokenized value in an
// indexed term, e.g. "status\x1f500". It is the ASCII unit separator, a
// control character that never appears in tokenized text.
const FieldDelimiter = "\x1f"

// Tokens splits s into lowercase terms, treating any rune that isn't a
// letter or digit as a separator. Empty tokens are discarded.
func Tokens(s string) []string {
	lower := strings.ToLower(s)
	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return fields
}

// Terms returns the full set of index terms for a log message's free text
// and its field map: one term per token of text, plus one
// "field<FieldDelimiter>value" term per tokenized value of each field.
// The result is deduplicated but not sorted, matching the set semantics the
// segment's term dictionary relies on.
func Terms(text string, fields map[string]string) []string {
	seen := make(map[string]struct{})
	terms := make([]string, 0, len(text)/4+len(fields))

	add := func(term string) {
		if _, ok := seen[term]; ok {
			return
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}

	for _, tok := range Tokens(text) {
		add(tok)
	}

	// Field names are sorted before tokenizing their values only so that
	// term ordering is deterministic across calls with the same input,
	// which keeps tests reproducible; the term dictionary itself is a set.
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, value := range Tokens(fields[name]) {
			add(name + FieldDelimiter + value)
		}
	}

	return terms
}
