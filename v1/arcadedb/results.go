package arcadedb

import (
	"encoding/json"
)

// Record is one server-returned row: a mapping from property name to a
// dynamically typed value. Metadata properties use the server's @-prefixed
// keys (@rid, @type, @in, @out).
type Record map[string]interface{}

// RID returns the record identity, or "" when absent.
func (r Record) RID() string {
	s, _ := r["@rid"].(string)
	return s
}

// TypeName returns the record's type. The server reports it as @type, older
// releases as @class; both are honoured.
func (r Record) TypeName() string {
	if s, ok := r["@type"].(string); ok {
		return s
	}
	s, _ := r["@class"].(string)
	return s
}

// GetString returns the named property as a string.
func (r Record) GetString(key string) (string, bool) {
	s, ok := r[key].(string)
	return s, ok
}

// Triplet is one (subject, relation, object) graph traversal hop.
type Triplet struct {
	Subject  Record
	Relation Record
	Object   Record
}

// Result is the decoded success payload of one query or command. Depending
// on the statement and the serializer mode the server returns a list of
// records, a list of scalar values, or a bare non-JSON body; Result is the
// union over those shapes.
type Result struct {
	records []Record
	values  []interface{}
	text    string
}

// Records returns the record rows, nil when the result was scalar or text.
func (r *Result) Records() []Record {
	if r == nil {
		return nil
	}
	return r.records
}

// Values returns the scalar values of a non-record result.
func (r *Result) Values() []interface{} {
	if r == nil {
		return nil
	}
	return r.values
}

// Scalar returns the single scalar value of the result, if there is exactly
// one.
func (r *Result) Scalar() (interface{}, bool) {
	if r == nil || len(r.values) != 1 {
		return nil, false
	}
	return r.values[0], true
}

// Text returns the raw body for responses that were not JSON result
// envelopes.
func (r *Result) Text() string {
	if r == nil {
		return ""
	}
	return r.text
}

// Len returns the number of rows or values in the result.
func (r *Result) Len() int {
	if r == nil {
		return 0
	}
	if r.records != nil {
		return len(r.records)
	}
	return len(r.values)
}

// IsEmpty reports whether the result carries no rows, values or text.
func (r *Result) IsEmpty() bool {
	return r.Len() == 0 && r.Text() == ""
}

// resultEnvelope is the server's success payload shape.
type resultEnvelope struct {
	Result json.RawMessage `json:"result"`
}

// decodeResult turns a 2xx response body into a Result. Bodies without the
// {"result": ...} envelope are preserved verbatim as text, matching the
// server's behaviour for a few administrative endpoints.
func decodeResult(body []byte) (*Result, error) {
	if len(body) == 0 {
		return &Result{}, nil
	}

	var envelope resultEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Result == nil {
		return &Result{text: string(body)}, nil
	}

	var rows []interface{}
	if err := json.Unmarshal(envelope.Result, &rows); err != nil {
		// Non-array result: a single scalar, string or object.
		var single interface{}
		if err := json.Unmarshal(envelope.Result, &single); err != nil {
			return &Result{text: string(envelope.Result)}, nil
		}
		if m, ok := single.(map[string]interface{}); ok {
			return &Result{records: []Record{Record(m)}}, nil
		}
		return &Result{values: []interface{}{single}}, nil
	}

	res := &Result{}
	for _, row := range rows {
		if m, ok := row.(map[string]interface{}); ok {
			res.records = append(res.records, Record(m))
		} else {
			res.values = append(res.values, row)
		}
	}
	// Mixed rows should not happen; if they did, record rows win and the
	// scalars are kept alongside.
	return res, nil
}

// affectedCount extracts the row count commands like DELETE report as
// [{"count": N}]. Returns 0 when the result has no such shape.
func affectedCount(res *Result) int {
	for _, rec := range res.Records() {
		if v, ok := rec["count"]; ok {
			if f, ok := v.(float64); ok {
				return int(f)
			}
		}
	}
	return 0
}
