package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapURLQueryProducesBoolMust(t *testing.T) {
	raw := WrapURLQuery("thisisunique")
	matcher, err := ParseJSON(raw)
	require.NoError(t, err)
	require.Len(t, matcher.Must, 1)
	assert.Equal(t, AllField, matcher.Must[0].Field)
	assert.Equal(t, "thisisunique", matcher.Must[0].Value)
}

func TestParseJSONMultipleMustClauses(t *testing.T) {
	doc := []byte(`{"query":{"bool":{"must":[{"match":{"_all":"hello"}},{"match":{"status":"500"}}]}}}`)
	matcher, err := ParseJSON(doc)
	require.NoError(t, err)
	require.Len(t, matcher.Must, 2)
}

func TestParseJSONMalformedFails(t *testing.T) {
	_, err := ParseJSON([]byte(`not json`))
	require.Error(t, err)
}

func TestMatcherTermsAppliesTokenizeFunc(t *testing.T) {
	matcher := Matcher{Must: []Match{{Field: AllField, Value: "a b"}, {Field: "status", Value: "c"}}}
	terms := matcher.Terms(func(field, value string) []string {
		if field == AllField {
			return []string{value}
		}
		return []string{field + ":" + value}
	})
	assert.Equal(t, []string{"a b", "status:c"}, terms)
}
