package arcadedb

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error kinds. Every error returned by the remote-call path wraps exactly one
// of these sentinels, so callers can classify with errors.Is:
//
//	if errors.Is(err, arcadedb.ErrQueryParsing) { ... }
//
// ErrValidation is raised locally, before any network call, for malformed
// caller input. ErrConnection marks transport-level failures where no server
// response was received.
var (
	// ErrLoginFailed is returned when authentication is rejected
	ErrLoginFailed = errors.New("arcadedb: login failed")

	// ErrConnection is returned when the server could not be reached
	ErrConnection = errors.New("arcadedb: connection failed")

	// ErrDatabase is returned for database existence/creation conflicts
	ErrDatabase = errors.New("arcadedb: database operation failed")

	// ErrSchema is returned when a type or schema element is missing
	ErrSchema = errors.New("arcadedb: schema operation failed")

	// ErrQueryParsing is returned when the server rejects a query as unparsable
	ErrQueryParsing = errors.New("arcadedb: query parsing failed")

	// ErrTransaction is returned for transaction and idempotency failures
	ErrTransaction = errors.New("arcadedb: transaction failed")

	// ErrValidation is returned for malformed caller input, before any network call
	ErrValidation = errors.New("arcadedb: validation failed")

	// ErrBulkOperation is returned when part of a bulk operation failed
	ErrBulkOperation = errors.New("arcadedb: bulk operation failed")

	// ErrVectorOperation is returned when a vector index or search operation fails
	ErrVectorOperation = errors.New("arcadedb: vector operation failed")

	// ErrServer is the base kind for server errors no more specific rule matched
	ErrServer = errors.New("arcadedb: server error")
)

// Error carries the classified failure of one driver operation. Kind is one
// of the package sentinels above; the remaining fields are populated
// depending on the kind.
type Error struct {
	// Kind is the sentinel this error wraps.
	Kind error

	// Message is the server-reported error string, or a locally generated
	// description for Validation/Connection errors.
	Message string

	// ExceptionClass is the server-side (Java) exception class name, when
	// the server reported one.
	ExceptionClass string

	// Detail is the server-reported detail string, often a stack fragment.
	Detail string

	// Query is the offending command text. Set for query-parsing errors.
	Query string

	// SessionID is the transaction session involved, when known.
	SessionID string

	// IdempotentError reports that the server rejected the statement
	// because it could not prove it idempotent. Set on Transaction errors.
	IdempotentError bool

	// FailedRecords and TotalRecords are set on bulk-operation errors.
	FailedRecords int
	TotalRecords  int

	cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Query != "" {
		b.WriteString(" (query: ")
		b.WriteString(e.Query)
		b.WriteString(")")
	}
	if errors.Is(e.Kind, ErrBulkOperation) {
		fmt.Fprintf(&b, " (%d/%d records failed)", e.FailedRecords, e.TotalRecords)
	}
	return b.String()
}

// Unwrap exposes both the kind sentinel and the underlying cause, so that
// errors.Is works against the sentinels and wrapped transport errors alike.
func (e *Error) Unwrap() []error {
	if e.cause != nil {
		return []error{e.Kind, e.cause}
	}
	return []error{e.Kind}
}

// AsError extracts the driver's typed error from an error chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// IsIdempotentError reports whether err is a Transaction error caused by the
// server's non-idempotent statement restriction.
func IsIdempotentError(err error) bool {
	e, ok := AsError(err)
	return ok && errors.Is(e.Kind, ErrTransaction) && e.IdempotentError
}

func newValidationError(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func newConnectionError(err error) *Error {
	return &Error{Kind: ErrConnection, Message: "unable to reach server", cause: err}
}

func newTransactionError(message, sessionID string, idempotent bool, cause error) *Error {
	return &Error{
		Kind:            ErrTransaction,
		Message:         message,
		SessionID:       sessionID,
		IdempotentError: idempotent,
		cause:           cause,
	}
}

func newDatabaseError(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrDatabase, Message: fmt.Sprintf(format, args...)}
}

func newBulkError(message string, failed, total int, cause error) *Error {
	return &Error{
		Kind:          ErrBulkOperation,
		Message:       message,
		FailedRecords: failed,
		TotalRecords:  total,
		cause:         cause,
	}
}

func newVectorError(message string, cause error) *Error {
	return &Error{Kind: ErrVectorOperation, Message: message, cause: cause}
}

// serverSecurityException is the exception class ArcadeDB reports on
// credential failures.
const serverSecurityException = "com.arcadedb.server.security.ServerSecurityException"

// errorBody is the JSON shape of the server's error responses.
type errorBody struct {
	Error     string `json:"error"`
	Detail    string `json:"detail"`
	Exception string `json:"exception"`
}

// errorContext is the request-side context handed to the classifier.
type errorContext struct {
	query     string
	sessionID string
}

// parseErrorResponse maps a failed HTTP response onto a typed error. The
// server's error vocabulary is not contractually stable, so classification is
// best-effort substring matching with the more specific rules first;
// unmatched errors degrade to the base ErrServer kind rather than failing
// classification itself.
func parseErrorResponse(status int, body []byte, ectx errorContext) *Error {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || (eb.Error == "" && eb.Exception == "") {
		// Non-JSON error pages (proxies, HTML error bodies) get a
		// synthetic shape so the rules below still apply.
		eb = errorBody{
			Error:     fmt.Sprintf("HTTP %d Error", status),
			Detail:    strings.TrimSpace(string(body)),
			Exception: "HTTPException",
		}
	}

	base := Error{
		Message:        eb.Error,
		ExceptionClass: eb.Exception,
		Detail:         eb.Detail,
	}
	lowerMsg := strings.ToLower(eb.Error)

	switch {
	case strings.Contains(eb.Exception, "SQLParsing") || strings.Contains(lowerMsg, "parsing"):
		base.Kind = ErrQueryParsing
		base.Query = ectx.query

	case strings.Contains(lowerMsg, "idempotent") || strings.Contains(lowerMsg, "transaction"):
		base.Kind = ErrTransaction
		base.SessionID = ectx.sessionID
		base.IdempotentError = strings.Contains(lowerMsg, "idempotent")

	case eb.Exception == serverSecurityException ||
		status == http.StatusUnauthorized || status == http.StatusForbidden ||
		strings.Contains(lowerMsg, "authentication") || strings.Contains(lowerMsg, "credential"):
		base.Kind = ErrLoginFailed

	case strings.Contains(eb.Exception, "Schema") ||
		(strings.Contains(lowerMsg, "type") && strings.Contains(lowerMsg, "was not found")) ||
		strings.Contains(lowerMsg, "schema"):
		base.Kind = ErrSchema

	case strings.Contains(eb.Exception, "Database") || strings.Contains(lowerMsg, "database"):
		base.Kind = ErrDatabase

	default:
		base.Kind = ErrServer
	}

	return &base
}

// isTransientTransactionError reports whether err is worth retrying with a
// fresh session: idempotency rejections and lock/timeout style transaction
// failures qualify, everything else does not.
func isTransientTransactionError(err error) bool {
	e, ok := AsError(err)
	if !ok || !errors.Is(e.Kind, ErrTransaction) {
		return false
	}
	if e.IdempotentError {
		return true
	}
	msg := strings.ToLower(e.Message)
	return strings.Contains(msg, "timed out") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "concurrent") ||
		strings.Contains(msg, "lock")
}
