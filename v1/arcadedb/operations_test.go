package arcadedb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCall is one recorded transport invocation.
type fakeCall struct {
	method  string
	path    string
	body    map[string]interface{}
	headers map[string]string
}

func (c fakeCall) command() string {
	s, _ := c.body["command"].(string)
	return s
}

// fakeTransport records calls and answers them through a handler. Shared by
// the unit tests across this package.
type fakeTransport struct {
	mu      sync.Mutex
	calls   []fakeCall
	handler func(call fakeCall) (*Response, error)
}

func (f *fakeTransport) Send(_ context.Context, method, path string, body []byte, headers map[string]string) (*Response, error) {
	call := fakeCall{method: method, path: path, headers: headers}
	if len(body) > 0 {
		_ = json.Unmarshal(body, &call.body)
	}
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
	return f.handler(call)
}

func (f *fakeTransport) recorded() []fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]fakeCall, len(f.calls))
	copy(out, f.calls)
	return out
}

func okResponse(result interface{}) *Response {
	body, _ := json.Marshal(map[string]interface{}{"result": result})
	return &Response{StatusCode: http.StatusOK, Body: body, Header: http.Header{}}
}

func errResponse(status int, message, exception string) *Response {
	body, _ := json.Marshal(map[string]interface{}{"error": message, "exception": exception})
	return &Response{StatusCode: status, Body: body, Header: http.Header{}}
}

func countResponse(n int) *Response {
	return okResponse([]map[string]interface{}{{"count": n}})
}

func newTestClient(ft Transport) *Client {
	cfg := Config{
		Connection: Connection{Host: "localhost", Database: "testdb"},
		Retry:      Retry{MaxAttempts: 2, Delay: time.Millisecond, Backoff: 1.1},
	}
	return &Client{cfg: cfg.withDefaults(), transport: ft, logger: nopLogger{}}
}

func TestQueryDecodesRecords(t *testing.T) {
	ft := &fakeTransport{handler: func(call fakeCall) (*Response, error) {
		return okResponse([]map[string]interface{}{
			{"@rid": "#1:0", "@type": "Person", "name": "ada"},
			{"@rid": "#1:1", "@type": "Person", "name": "grace"},
		}), nil
	}}
	c := newTestClient(ft)

	res, err := c.Query(context.Background(), "sql", "SELECT FROM Person", nil)
	require.NoError(t, err)
	require.Len(t, res.Records(), 2)
	assert.Equal(t, "#1:0", res.Records()[0].RID())
	assert.Equal(t, "Person", res.Records()[0].TypeName())

	calls := ft.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPost, calls[0].method)
	assert.Equal(t, "/api/v1/query/testdb", calls[0].path)
	assert.Equal(t, "SELECT FROM Person", calls[0].command())
}

func TestCommandUsesCommandEndpoint(t *testing.T) {
	ft := &fakeTransport{handler: func(call fakeCall) (*Response, error) {
		return countResponse(1), nil
	}}
	c := newTestClient(ft)

	_, err := c.Command(context.Background(), "sql", "DELETE FROM Person WHERE name = 'x' LIMIT 10", nil)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/command/testdb", ft.recorded()[0].path)
}

func TestCypherQueryInlinesNamedParams(t *testing.T) {
	ft := &fakeTransport{handler: func(call fakeCall) (*Response, error) {
		return okResponse([]map[string]interface{}{}), nil
	}}
	c := newTestClient(ft)

	_, err := c.Query(context.Background(), "cypher",
		"MATCH (p:Person {name: $name}) WHERE p.tags = $tags RETURN p",
		&QueryOptions{Params: map[string]interface{}{
			"name": "ada",
			"tags": []interface{}{"x"},
		}})
	require.NoError(t, err)

	call := ft.recorded()[0]
	assert.Equal(t, "MATCH (p:Person {name: 'ada'}) WHERE p.tags = $tags RETURN p", call.command())

	// The collection stays server-bound, the inlined scalar is dropped.
	params, ok := call.body["params"].(map[string]interface{})
	require.True(t, ok)
	require.Len(t, params, 1)
	assert.Equal(t, []interface{}{"x"}, params["tags"])
}

func TestCypherQueryOmitsFullyInlinedParams(t *testing.T) {
	ft := &fakeTransport{handler: func(call fakeCall) (*Response, error) {
		return okResponse([]map[string]interface{}{}), nil
	}}
	c := newTestClient(ft)

	_, err := c.Query(context.Background(), "cypher",
		"MATCH (p:Person {name: $name}) RETURN p",
		&QueryOptions{Params: map[string]interface{}{"name": "ada"}})
	require.NoError(t, err)

	call := ft.recorded()[0]
	assert.Equal(t, "MATCH (p:Person {name: 'ada'}) RETURN p", call.command())
	assert.NotContains(t, call.body, "params")
}

func TestSQLQueryKeepsParamsBound(t *testing.T) {
	ft := &fakeTransport{handler: func(call fakeCall) (*Response, error) {
		return okResponse([]map[string]interface{}{}), nil
	}}
	c := newTestClient(ft)

	_, err := c.Query(context.Background(), "sql", "SELECT FROM Person WHERE name = :name",
		&QueryOptions{Params: map[string]interface{}{"name": "ada"}})
	require.NoError(t, err)

	params, ok := ft.recorded()[0].body["params"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ada", params["name"])
}

func TestQueryValidationFailsWithoutNetwork(t *testing.T) {
	ft := &fakeTransport{handler: func(call fakeCall) (*Response, error) {
		t.Fatal("no network call expected")
		return nil, nil
	}}
	c := newTestClient(ft)

	_, err := c.Query(context.Background(), "sparql", "SELECT 1", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Empty(t, ft.recorded())
}

func TestQueryWithoutDatabaseConfigured(t *testing.T) {
	ft := &fakeTransport{handler: func(call fakeCall) (*Response, error) {
		t.Fatal("no network call expected")
		return nil, nil
	}}
	c := newTestClient(ft)
	c.cfg.Connection.Database = ""

	_, err := c.Query(context.Background(), "sql", "SELECT 1", nil)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestQueryClassifiesServerError(t *testing.T) {
	ft := &fakeTransport{handler: func(call fakeCall) (*Response, error) {
		return errResponse(500, "Error on parsing command", "SQLParsingException"), nil
	}}
	c := newTestClient(ft)

	_, err := c.Query(context.Background(), "sql", "SELEC broken", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQueryParsing))
	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, "SELEC broken", e.Query)
}

func TestQueryTransportFailureIsConnectionError(t *testing.T) {
	ft := &fakeTransport{handler: func(call fakeCall) (*Response, error) {
		return nil, fmt.Errorf("dial tcp: connection refused")
	}}
	c := newTestClient(ft)

	_, err := c.Query(context.Background(), "sql", "SELECT 1", nil)
	assert.True(t, errors.Is(err, ErrConnection))
}

func TestQueryRetriesNonIdempotentAsCommand(t *testing.T) {
	ft := &fakeTransport{handler: func(call fakeCall) (*Response, error) {
		if strings.HasPrefix(call.path, "/api/v1/query/") {
			return errResponse(400, "Query is not idempotent", "IllegalArgumentException"), nil
		}
		return countResponse(3), nil
	}}
	c := newTestClient(ft)

	res, err := c.Query(context.Background(), "sql", "UPDATE Person SET seen = true", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, affectedCount(res))

	calls := ft.recorded()
	require.Len(t, calls, 2)
	assert.Equal(t, "/api/v1/query/testdb", calls[0].path)
	assert.Equal(t, "/api/v1/command/testdb", calls[1].path)
	assert.Equal(t, calls[0].command(), calls[1].command())
}

func TestQueryIdempotentRetryFailurePropagatesOnce(t *testing.T) {
	ft := &fakeTransport{handler: func(call fakeCall) (*Response, error) {
		return errResponse(400, "Query is not idempotent", "IllegalArgumentException"), nil
	}}
	c := newTestClient(ft)

	_, err := c.Query(context.Background(), "sql", "UPDATE Person SET seen = true", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransaction))
	// Exactly one retry: the query call plus the command call, no third.
	assert.Len(t, ft.recorded(), 2)
}

func TestQueryIdempotentRetryCanBeDisabled(t *testing.T) {
	ft := &fakeTransport{handler: func(call fakeCall) (*Response, error) {
		return errResponse(400, "Query is not idempotent", "IllegalArgumentException"), nil
	}}
	c := newTestClient(ft)

	_, err := c.Query(context.Background(), "sql", "UPDATE Person SET seen = true",
		&QueryOptions{DisableIdempotentRetry: true})
	require.Error(t, err)
	assert.True(t, IsIdempotentError(err))
	assert.Len(t, ft.recorded(), 1)
}

func TestCommandNeverRetriesIdempotent(t *testing.T) {
	ft := &fakeTransport{handler: func(call fakeCall) (*Response, error) {
		return errResponse(400, "Query is not idempotent", "IllegalArgumentException"), nil
	}}
	c := newTestClient(ft)

	_, err := c.Command(context.Background(), "sql", "UPDATE Person SET seen = true", nil)
	require.Error(t, err)
	assert.Len(t, ft.recorded(), 1)
}

func TestQueryRejectsInactiveSession(t *testing.T) {
	ft := &fakeTransport{handler: func(call fakeCall) (*Response, error) {
		t.Fatal("no network call expected")
		return nil, nil
	}}
	c := newTestClient(ft)

	session := &Session{ID: "AS-1", state: SessionCommitted}
	_, err := c.Query(context.Background(), "sql", "SELECT 1", &QueryOptions{Session: session})
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestQueryAttachesSessionHeader(t *testing.T) {
	ft := &fakeTransport{handler: func(call fakeCall) (*Response, error) {
		return okResponse([]map[string]interface{}{}), nil
	}}
	c := newTestClient(ft)

	session := &Session{ID: "AS-9"}
	_, err := c.Query(context.Background(), "sql", "SELECT 1", &QueryOptions{Session: session})
	require.NoError(t, err)
	assert.Equal(t, "AS-9", ft.recorded()[0].headers[SessionHeader])
}

func TestExecuteBatchStopsAtFirstFailure(t *testing.T) {
	ft := &fakeTransport{handler: func(call fakeCall) (*Response, error) {
		if strings.Contains(call.command(), "boom") {
			return errResponse(500, "Internal error", "NullPointerException"), nil
		}
		return countResponse(1), nil
	}}
	c := newTestClient(ft)

	_, err := c.ExecuteBatch(context.Background(), []string{
		"INSERT INTO Person SET name = 'a'",
		"INSERT INTO Person SET name = 'boom'",
		"INSERT INTO Person SET name = 'c'",
	}, nil)
	require.Error(t, err)
	assert.Len(t, ft.recorded(), 2)

	_, err = c.ExecuteBatch(context.Background(), nil, nil)
	assert.True(t, errors.Is(err, ErrValidation))
}
