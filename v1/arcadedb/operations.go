package arcadedb

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// QueryOptions carries the optional parameters of Query and Command.
// The zero value selects the defaults: no limit, no params, server-chosen
// serializer, no session and idempotent retry enabled.
type QueryOptions struct {
	// Limit caps the number of returned results. Zero means unset.
	Limit int

	// Params are named (map) or positional (slice) statement parameters.
	Params interface{}

	// Serializer selects the server-side serializer: "", SerializerGraph
	// or SerializerRecord.
	Serializer string

	// Session attaches the statement to a running transaction.
	Session *Session

	// DisableIdempotentRetry turns off the automatic query-as-command
	// retry when the server rejects a query as non-idempotent.
	DisableIdempotentRetry bool
}

// Query executes a read statement against the database. When the server
// rejects it as non-idempotent — common for mutating statements submitted
// through the query endpoint — the statement is re-issued once as a command,
// unless opts.DisableIdempotentRetry is set. A second rejection propagates
// without a further retry.
func (c *Client) Query(ctx context.Context, language, command string, opts *QueryOptions) (*Result, error) {
	return c.run(ctx, language, command, opts, false)
}

// Command executes a mutating statement through the command endpoint.
func (c *Client) Command(ctx context.Context, language, command string, opts *QueryOptions) (*Result, error) {
	return c.run(ctx, language, command, opts, true)
}

func (c *Client) run(ctx context.Context, language, command string, opts *QueryOptions, isCommand bool) (*Result, error) {
	if opts == nil {
		opts = &QueryOptions{}
	}

	req := Request{
		Language:   language,
		Command:    command,
		Params:     opts.Params,
		Limit:      opts.Limit,
		Serializer: opts.Serializer,
		IsCommand:  isCommand,
	}
	if language == "cypher" {
		if named, ok := opts.Params.(map[string]interface{}); ok && len(named) > 0 {
			inlined, remaining := inlineCypherParams(command, named)
			req.Command = inlined
			req.Params = remaining
			if len(remaining) == 0 {
				req.Params = nil
			}
		}
	}
	if opts.Session != nil {
		if opts.Session.State() != SessionActive {
			return nil, newValidationError("session %s is %s, not active",
				opts.Session.ID, opts.Session.State())
		}
		req.SessionID = opts.Session.ID
	}

	return c.execute(ctx, req, !opts.DisableIdempotentRetry)
}

// execute drives one request through validation, transport, decoding and
// classification. retryIdempotent permits at most one query-as-command
// retry; the recursive call always passes false.
func (c *Client) execute(ctx context.Context, req Request, retryIdempotent bool) (*Result, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	if c.cfg.Connection.Database == "" {
		return nil, newValidationError("no database configured")
	}

	endpoint := queryEndpoint
	operation := "query"
	if req.IsCommand {
		endpoint = commandEndpoint
		operation = "command"
	}

	requestID := uuid.NewString()
	payload := req.payload()
	c.logger.Debug("executing statement", nil, map[string]interface{}{
		"request_id": requestID,
		"operation":  operation,
		"language":   req.Language,
		"command":    filterCommandForLog(req.Command),
		"session_id": req.SessionID,
	})

	start := time.Now()
	resp, err := c.post(ctx, endpoint+"/"+c.cfg.Connection.Database, payload, req.headers(),
		errorContext{query: req.Command, sessionID: req.SessionID})
	c.observeOperation(operation, c.cfg.Connection.Database, req.Language,
		time.Since(start), err, int64(len(req.Command)),
		map[string]interface{}{"request_id": requestID})

	if err != nil {
		if retryIdempotent && !req.IsCommand && IsIdempotentError(err) {
			c.logger.Info("retrying non-idempotent query as command", nil, map[string]interface{}{
				"request_id": requestID,
				"command":    filterCommandForLog(req.Command),
			})
			retryReq := req
			retryReq.IsCommand = true
			res, retryErr := c.execute(ctx, retryReq, false)
			if retryErr != nil {
				return nil, newTransactionError(
					"statement failed as both query and command",
					req.SessionID, true, retryErr)
			}
			return res, nil
		}
		return nil, err
	}

	return decodeResult(resp.Body)
}

// ExecuteBatch runs the statements sequentially as commands, outside of any
// transaction unless a session is supplied. It stops at the first failure;
// the returned error carries the failing statement.
func (c *Client) ExecuteBatch(ctx context.Context, statements []string, session *Session) ([]*Result, error) {
	if len(statements) == 0 {
		return nil, newValidationError("statements must be a non-empty list")
	}

	results := make([]*Result, 0, len(statements))
	for _, stmt := range statements {
		res, err := c.Command(ctx, "sql", stmt, &QueryOptions{Session: session})
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}
