package arcadedb

import (
	"context"
	"sync"

	"github.com/cenkalti/backoff/v4"
)

// IsolationLevel selects the server-side transaction isolation.
type IsolationLevel string

const (
	ReadCommitted  IsolationLevel = "READ_COMMITTED"
	RepeatableRead IsolationLevel = "REPEATABLE_READ"
)

// SessionState is the lifecycle state of a transaction session.
type SessionState int

const (
	SessionActive SessionState = iota
	SessionCommitted
	SessionRolledBack
)

// String implements fmt.Stringer.
func (s SessionState) String() string {
	switch s {
	case SessionActive:
		return "active"
	case SessionCommitted:
		return "committed"
	case SessionRolledBack:
		return "rolled back"
	default:
		return "unknown"
	}
}

// Session is a server-tracked transaction context. It is owned by the caller
// that began it and must not be shared across concurrent logical operations.
// Committed and RolledBack are terminal: a session is never reused past
// either.
type Session struct {
	// ID is the opaque server-assigned session identifier.
	ID string

	// Isolation is the level the session was begun with.
	Isolation IsolationLevel

	mu    sync.Mutex
	state SessionState
}

// State returns the session's lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// transition moves the session into a new state when it is still active.
func (s *Session) transition(to SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SessionActive {
		return newValidationError("session %s is %s, not active", s.ID, s.state)
	}
	s.state = to
	return nil
}

// BeginTransaction starts a server-side transaction and returns the session
// in state Active. The session id arrives in the response headers, not the
// body.
func (c *Client) BeginTransaction(ctx context.Context, isolation IsolationLevel) (*Session, error) {
	if isolation == "" {
		isolation = ReadCommitted
	}

	resp, err := c.post(ctx, beginEndpoint+"/"+c.cfg.Connection.Database,
		map[string]interface{}{"isolationLevel": string(isolation)}, nil, errorContext{})
	if err != nil {
		return nil, err
	}

	sessionID := resp.Header.Get(SessionHeader)
	if sessionID == "" {
		return nil, newTransactionError("server did not return a session id", "", false, nil)
	}

	c.logger.Debug("transaction begun", nil, map[string]interface{}{
		"session_id": sessionID,
		"isolation":  string(isolation),
	})
	return &Session{ID: sessionID, Isolation: isolation}, nil
}

// Commit commits the session. The session must be Active; on server failure
// it stays Active so the caller can retry the commit or roll back.
func (c *Client) Commit(ctx context.Context, session *Session) error {
	if session == nil {
		return newValidationError("session is required")
	}
	if session.State() != SessionActive {
		return newValidationError("session %s is %s, not active", session.ID, session.State())
	}

	_, err := c.post(ctx, commitEndpoint+"/"+c.cfg.Connection.Database, map[string]interface{}{},
		map[string]string{SessionHeader: session.ID}, errorContext{sessionID: session.ID})
	if err != nil {
		return err
	}

	return session.transition(SessionCommitted)
}

// Rollback rolls the session back. Rollback is best-effort: the session ends
// up RolledBack even when the server call fails, since straddling an unknown
// server-side state is worse than leaking a session. The server error, if
// any, is still returned.
func (c *Client) Rollback(ctx context.Context, session *Session) error {
	if session == nil {
		return newValidationError("session is required")
	}
	if session.State() != SessionActive {
		return newValidationError("session %s is %s, not active", session.ID, session.State())
	}

	_, err := c.post(ctx, rollbackEndpoint+"/"+c.cfg.Connection.Database, map[string]interface{}{},
		map[string]string{SessionHeader: session.ID}, errorContext{sessionID: session.ID})

	if terr := session.transition(SessionRolledBack); terr != nil {
		return terr
	}
	if err != nil {
		c.logger.Warn("rollback call failed, session marked rolled back anyway", err,
			map[string]interface{}{"session_id": session.ID})
	}
	return err
}

// GetTransactionStatus looks up the server-side status of a transaction
// session id. Sessions the server no longer tracks yield a record with status
// "unknown" rather than an error.
func (c *Client) GetTransactionStatus(ctx context.Context, sessionID string) (Record, error) {
	if sessionID == "" {
		return nil, newValidationError("session id is required")
	}

	res, err := c.Query(ctx, "sql", "SELECT FROM sys:transactions WHERE session_id = ?",
		&QueryOptions{Params: []interface{}{sessionID}})
	if err != nil {
		return nil, newTransactionError("failed to get transaction status", sessionID, false, err)
	}

	records := res.Records()
	if len(records) == 0 {
		return Record{"session_id": sessionID, "status": "unknown"}, nil
	}
	return records[0], nil
}

// TransactionOptions carries the optional parameters of ExecuteTransaction.
type TransactionOptions struct {
	// MaxRetries bounds how often the whole statement sequence is retried
	// on transient failure. Defaults to the client's Retry.MaxAttempts.
	MaxRetries int

	// Isolation is the level each attempt's session is begun with.
	Isolation IsolationLevel
}

// ExecuteTransaction runs the statements in order inside one server-side
// transaction and returns the per-statement results. On any statement
// failure the session is rolled back; when the failure is a transient
// transaction error (idempotency rejection, lock, timeout) the entire
// sequence is retried on a fresh session, up to MaxRetries times. A session
// id is never reused across attempts.
func (c *Client) ExecuteTransaction(ctx context.Context, statements []string, opts *TransactionOptions) ([]*Result, error) {
	if len(statements) == 0 {
		return nil, newValidationError("statements must be a non-empty list")
	}
	if opts == nil {
		opts = &TransactionOptions{}
	}
	maxRetries := opts.MaxRetries
	if maxRetries == 0 {
		maxRetries = c.cfg.Retry.MaxAttempts
	}
	// uint64(-1) would make the retry budget effectively unbounded.
	if maxRetries < 0 {
		maxRetries = 0
	}

	var results []*Result
	attempt := 0

	operation := func() error {
		attempt++
		session, err := c.BeginTransaction(ctx, opts.Isolation)
		if err != nil {
			if isTransientTransactionError(err) {
				return err
			}
			return backoff.Permanent(err)
		}

		res := make([]*Result, 0, len(statements))
		for _, stmt := range statements {
			r, execErr := c.Command(ctx, "sql", stmt, &QueryOptions{Session: session})
			if execErr != nil {
				_ = c.Rollback(ctx, session)
				c.logger.Warn("transaction attempt failed", execErr, map[string]interface{}{
					"session_id": session.ID,
					"attempt":    attempt,
					"statement":  filterCommandForLog(stmt),
				})
				if isTransientTransactionError(execErr) {
					return execErr
				}
				return backoff.Permanent(execErr)
			}
			res = append(res, r)
		}

		if err := c.Commit(ctx, session); err != nil {
			_ = c.Rollback(ctx, session)
			if isTransientTransactionError(err) {
				return err
			}
			return backoff.Permanent(err)
		}

		results = res
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(
		backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(c.cfg.Retry.Delay),
			backoff.WithMultiplier(c.cfg.Retry.Backoff),
		),
		uint64(maxRetries),
	), ctx)

	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return results, nil
}
