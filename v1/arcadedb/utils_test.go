package arcadedb

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterCommandForLogTruncatesEmbeddings(t *testing.T) {
	cmd := "INSERT INTO Chunk SET embedding = [0.123456, -0.234567, 0.345678, -0.456789, 0.567891, 0.678912, 0.789123, 0.891234]"
	filtered := filterCommandForLog(cmd)

	assert.Contains(t, filtered, "[0.123456, -0.234567, ...] (dim:8)")
	assert.NotContains(t, filtered, "0.891234")
}

func TestFilterCommandForLogKeepsShortArrays(t *testing.T) {
	cmd := "SELECT FROM Point WHERE coords = [1, 2, 3]"
	assert.Equal(t, cmd, filterCommandForLog(cmd))
}

func TestFilterCommandForLogCapsLength(t *testing.T) {
	cmd := "SELECT FROM Person WHERE name = '" + strings.Repeat("x", 600) + "'"
	filtered := filterCommandForLog(cmd)
	assert.Len(t, filtered, maxLoggedCommand+3)
	assert.True(t, strings.HasSuffix(filtered, "..."))
}

func TestSqlLiteral(t *testing.T) {
	assert.Equal(t, "null", sqlLiteral(nil))
	assert.Equal(t, "'ada'", sqlLiteral("ada"))
	assert.Equal(t, `'o\'brien'`, sqlLiteral("o'brien"))
	assert.Equal(t, "42", sqlLiteral(42))
	assert.Equal(t, "3.14", sqlLiteral(3.14))
	assert.Equal(t, "true", sqlLiteral(true))
	assert.Equal(t, `'["a","b"]'`, sqlLiteral([]interface{}{"a", "b"}))
	assert.Equal(t, `'{"k":"v"}'`, sqlLiteral(map[string]interface{}{"k": "v"}))
}

func TestSetClauseIsDeterministic(t *testing.T) {
	record := map[string]interface{}{"zeta": 1, "alpha": "x", "mid": true}
	clause := setClause(record)
	assert.Equal(t, "alpha = 'x', mid = true, zeta = 1", clause)

	// Same statement text on every call despite map iteration order.
	for i := 0; i < 10; i++ {
		assert.Equal(t, clause, setClause(record))
	}
}

func TestSelectStatement(t *testing.T) {
	assert.Equal(t, "SELECT * FROM Person", selectStatement("Person", "", 0))
	assert.Equal(t, "SELECT * FROM Person WHERE age > 30", selectStatement("Person", "age > 30", 0))
	assert.Equal(t, "SELECT * FROM Person WHERE age > 30 LIMIT 5", selectStatement("Person", "age > 30", 5))
}

func TestInlineCypherParams(t *testing.T) {
	statement, remaining := inlineCypherParams(
		"MATCH (p:Person {name: $name}) WHERE p.age > $age RETURN p",
		map[string]interface{}{"name": "o'brien", "age": 30})

	assert.Equal(t, `MATCH (p:Person {name: 'o\'brien'}) WHERE p.age > 30 RETURN p`, statement)
	assert.Empty(t, remaining)
}

func TestInlineCypherParamsKeepsUnsafeValuesBound(t *testing.T) {
	statement, remaining := inlineCypherParams(
		"MATCH (p:Person) WHERE p.name = $name AND p.tags = $tags RETURN p",
		map[string]interface{}{
			"name": "costs $5",
			"tags": []interface{}{"a", "b"},
		})

	// Dollar-bearing strings and collections stay server-bound.
	assert.Equal(t, "MATCH (p:Person) WHERE p.name = $name AND p.tags = $tags RETURN p", statement)
	assert.Equal(t, "costs $5", remaining["name"])
	assert.Len(t, remaining, 2)
}

func TestInlineCypherParamsLeavesUnknownPlaceholders(t *testing.T) {
	statement, remaining := inlineCypherParams(
		"MATCH (p:Person {name: $name, city: $city}) RETURN p",
		map[string]interface{}{"name": "ada"})

	assert.Equal(t, "MATCH (p:Person {name: 'ada', city: $city}) RETURN p", statement)
	assert.Empty(t, remaining)
}

func TestQuoteList(t *testing.T) {
	assert.Equal(t, "'a', 'b'", quoteList([]string{"a", "b"}))
	assert.Equal(t, "", quoteList(nil))
}
