package arcadedb

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// maxLoggedCommand caps how much statement text reaches the logs.
const maxLoggedCommand = 500

var embeddingArrayPattern = regexp.MustCompile(`\[[-0-9.,\s]+\]`)
var numberPattern = regexp.MustCompile(`[-0-9.]+`)
var cypherParamPattern = regexp.MustCompile(`\$([a-zA-Z_][a-zA-Z0-9_]*)`)

// inlineCypherParams substitutes named $name parameters in a cypher statement
// with literals, since the server's cypher layer does not bind every parameter
// shape. Slices, maps and strings containing '$' stay bound; they come back in
// the remaining parameter map together with names the statement never
// references.
func inlineCypherParams(statement string, params map[string]interface{}) (string, map[string]interface{}) {
	remaining := make(map[string]interface{}, len(params))
	for name, value := range params {
		remaining[name] = value
	}
	inlined := cypherParamPattern.ReplaceAllStringFunc(statement, func(match string) string {
		name := match[1:]
		value, ok := params[name]
		if !ok {
			return match
		}
		switch v := value.(type) {
		case string:
			if strings.Contains(v, "$") {
				return match
			}
		case []interface{}, map[string]interface{}:
			return match
		}
		delete(remaining, name)
		return sqlLiteral(value)
	})
	return inlined, remaining
}

// filterCommandForLog truncates embedding-style float arrays inside a
// statement so that bulk vector loads do not clutter the logs, and caps the
// total logged length.
func filterCommandForLog(command string) string {
	filtered := embeddingArrayPattern.ReplaceAllStringFunc(command, func(arr string) string {
		if len(arr) <= 50 {
			return arr
		}
		total := len(numberPattern.FindAllString(arr, -1))
		head := numberPattern.FindAllString(arr[:min(100, len(arr))], 2)
		if len(head) >= 2 {
			return fmt.Sprintf("[%s, %s, ...] (dim:%d)", head[0], head[1], total)
		}
		return fmt.Sprintf("[...] (dim:%d)", total)
	})
	if len(filtered) > maxLoggedCommand {
		filtered = filtered[:maxLoggedCommand] + "..."
	}
	return filtered
}

// escapeString makes a value safe for single-quoted SQL string literals.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "'", `\'`)
}

// sqlLiteral renders a property value as an SQL literal. Strings are quoted
// and escaped; nested maps and slices are embedded as JSON strings, matching
// how the server stores them.
func sqlLiteral(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return "'" + escapeString(v) + "'"
	case []interface{}, map[string]interface{}:
		encoded, err := json.Marshal(v)
		if err != nil {
			return "null"
		}
		return "'" + escapeString(string(encoded)) + "'"
	default:
		return fmt.Sprint(v)
	}
}

// sortedKeys returns the map keys in deterministic order. Statement text
// must not depend on Go's random map iteration.
func sortedKeys(record map[string]interface{}) []string {
	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// setClause renders "k1 = v1, k2 = v2" for INSERT/UPDATE statements with
// deterministic key order.
func setClause(record map[string]interface{}) string {
	keys := sortedKeys(record)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s = %s", k, sqlLiteral(record[k])))
	}
	return strings.Join(parts, ", ")
}

// selectStatement builds "SELECT * FROM type [WHERE ...] [LIMIT n]".
func selectStatement(typeName, where string, limit int) string {
	var b strings.Builder
	b.WriteString("SELECT * FROM ")
	b.WriteString(typeName)
	if where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(where)
	}
	if limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", limit)
	}
	return b.String()
}

// quoteList renders 'a', 'b', 'c' for IN clauses and edge type filters.
func quoteList(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, "'"+escapeString(v)+"'")
	}
	return strings.Join(quoted, ", ")
}

// contains reports whether list has the given entry.
func contains(list []string, entry string) bool {
	for _, v := range list {
		if v == entry {
			return true
		}
	}
	return false
}
