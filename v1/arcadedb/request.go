package arcadedb

import (
	"sort"
	"strings"
)

// Request is the value object for one logical query or command. It is built
// fresh per call and never mutated afterwards.
type Request struct {
	// Language selects the query language: sql, sqlscript, graphql,
	// cypher, gremlin or mongo.
	Language string

	// Command is the statement text. Opaque to the driver.
	Command string

	// Params are named (map) or positional (slice) statement parameters.
	Params interface{}

	// Limit caps the number of returned results. Zero means unset.
	Limit int

	// Serializer selects the server-side result serializer: "",
	// SerializerGraph or SerializerRecord.
	Serializer string

	// SessionID attaches the request to a server-side transaction.
	SessionID string

	// IsCommand routes the request to the command endpoint, which the
	// server requires for statements it cannot prove idempotent.
	IsCommand bool
}

// validate checks the request fields locally. It fails fast with an
// ErrValidation error before any network traffic happens.
func (r Request) validate() error {
	if strings.TrimSpace(r.Command) == "" {
		return newValidationError("command must not be empty")
	}
	if _, ok := availableLanguages[r.Language]; !ok {
		return newValidationError("language %q not supported, available languages: %s",
			r.Language, strings.Join(languageNames(), ", "))
	}
	if r.Limit < 0 {
		return newValidationError("limit must be a non-negative integer")
	}
	switch r.Serializer {
	case "", SerializerGraph, SerializerRecord:
	default:
		return newValidationError("serializer must be empty, %q or %q", SerializerGraph, SerializerRecord)
	}
	return nil
}

// payload builds the wire body for the query/command endpoints.
func (r Request) payload() map[string]interface{} {
	p := map[string]interface{}{
		"command":  r.Command,
		"language": r.Language,
	}
	if r.Limit > 0 {
		p["limit"] = r.Limit
	}
	if r.Params != nil {
		p["params"] = r.Params
	}
	if r.Serializer != "" {
		p["serializer"] = r.Serializer
	}
	return p
}

// headers builds the extra request headers: the session id travels as a
// header, not a body field.
func (r Request) headers() map[string]string {
	if r.SessionID == "" {
		return nil
	}
	return map[string]string{SessionHeader: r.SessionID}
}

func languageNames() []string {
	names := make([]string, 0, len(availableLanguages))
	for l := range availableLanguages {
		names = append(names, l)
	}
	sort.Strings(names)
	return names
}
