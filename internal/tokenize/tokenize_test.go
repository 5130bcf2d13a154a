package tokenize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokensLowercasesAndSplits(t *testing.T) {
	got := Tokens("Hello, World! Foo-Bar123")
	assert.Equal(t, []string{"hello", "world", "foo", "bar123"}, got)
}

func TestTokensEmptyString(t *testing.T) {
	assert.Empty(t, Tokens(""))
	assert.Empty(t, Tokens("   ---   "))
}

func TestTermsIncludesFieldQualifiedTerms(t *testing.T) {
	terms := Terms("this is my log message", map[string]string{"status": "500 OK"})

	assert.Contains(t, terms, "this")
	assert.Contains(t, terms, "message")
	assert.Contains(t, terms, "status"+FieldDelimiter+"500")
	assert.Contains(t, terms, "status"+FieldDelimiter+"ok")
}

func TestTermsDeduplicates(t *testing.T) {
	terms := Terms("log log log", nil)
	count := 0
	for _, term := range terms {
		if term == "log" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
