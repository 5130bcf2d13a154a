// Package query implements the boolean must/match query-DSL document
// search_logs accepts, parsing it into a Matcher AST that is evaluated
// against one segment's term dictionary and inverted map at a time. The
// manager re-parses this AST fresh per segment: the parser here holds no
// state across calls, so sharing one parse across segments would have been
// equally valid, but the per-segment reparse keeps each goroutine's AST
// private with no cross-segment sharing to reason about.
package query

import (
	"encoding/json"

	"github.com/iamNilotpal/ember/pkg/errors"
)

// AllField is the virtual field a bare URL-string query is wrapped under.
const AllField = "_all"

// Matcher is the parsed form of a query-DSL document: a boolean AND of one
// or more field/value matches.
type Matcher struct {
	Must []Match
}

// Match is a single leaf matcher: a field name and the value it must contain.
type Match struct {
	Field string
	Value string
}

type document struct {
	Query struct {
		Bool struct {
			Must []struct {
				Match map[string]string `json:"match"`
			} `json:"must"`
		} `json:"bool"`
	} `json:"query"`
}

// WrapURLQuery wraps a bare URL-string query into the canonical boolean
// must/match JSON document matching it against AllField.
func WrapURLQuery(urlQuery string) []byte {
	doc := document{}
	doc.Query.Bool.Must = []struct {
		Match map[string]string `json:"match"`
	}{{Match: map[string]string{AllField: urlQuery}}}
	raw, _ := json.Marshal(doc)
	return raw
}

// ParseJSON parses a query-DSL document into a Matcher. An empty document
// produces an error the caller should already have ruled out by checking
// for NoQueryProvided before calling this.
func ParseJSON(raw []byte) (Matcher, error) {
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Matcher{}, errors.NewJSONParseError(err)
	}

	matcher := Matcher{Must: make([]Match, 0, len(doc.Query.Bool.Must))}
	for _, clause := range doc.Query.Bool.Must {
		for field, value := range clause.Match {
			matcher.Must = append(matcher.Must, Match{Field: field, Value: value})
		}
	}
	return matcher, nil
}

// Terms builds the list of index terms a Matcher's clauses correspond to,
// given the same tokenization rule the segment indexed its content with.
// A Match on AllField produces one term per token of Value; a Match on a
// named field produces one field-qualified term per tokenized value.
func (m Matcher) Terms(tokenize func(field, value string) []string) []string {
	terms := make([]string, 0, len(m.Must))
	for _, match := range m.Must {
		terms = append(terms, tokenize(match.Field, match.Value)...)
	}
	return terms
}
