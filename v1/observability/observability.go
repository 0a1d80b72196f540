package observability

import "time"

// OperationContext describes one completed client operation. Instances are
// handed to an Observer after the operation finished, successfully or not.
type OperationContext struct {
	// Component is the emitting package, e.g. "arcadedb".
	Component string

	// Operation is the logical operation name, e.g. "query", "command",
	// "bulk_insert", "begin".
	Operation string

	// Resource is the primary resource the operation touched, typically the
	// database name.
	Resource string

	// SubResource carries additional context such as the record type or the
	// query language.
	SubResource string

	// Duration is the wall-clock time the operation took.
	Duration time.Duration

	// Error is nil when the operation succeeded.
	Error error

	// Size is an operation-specific magnitude: payload bytes for a single
	// request, record count for bulk operations.
	Size int64

	// Metadata carries free-form key/value context, e.g. a request id or a
	// session id.
	Metadata map[string]interface{}
}

// Observer receives completed operations for metrics and tracing purposes.
// Implementations must be safe for concurrent use.
type Observer interface {
	ObserveOperation(ctx OperationContext)
}

// MultiObserver fans one operation out to several observers.
type MultiObserver []Observer

// ObserveOperation forwards the operation to every contained observer.
func (m MultiObserver) ObserveOperation(ctx OperationContext) {
	for _, o := range m {
		if o != nil {
			o.ObserveOperation(ctx)
		}
	}
}
