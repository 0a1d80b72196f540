package arcadedb

import (
	"time"

	"github.com/Aleph-Alpha/arcadedb/v1/observability"
)

// observeOperation notifies the observer about an operation if one is configured.
// This is used internally to track driver operations for metrics and tracing.
//
// Notes:
//   - resource: the database the operation addressed
//   - subResource: additional context like the type name or statement language
func (c *Client) observeOperation(operation, resource, subResource string, duration time.Duration, err error, size int64, metadata map[string]interface{}) {
	if c == nil || c.observer == nil {
		return
	}

	c.observer.ObserveOperation(observability.OperationContext{
		Component:   "arcadedb",
		Operation:   operation,
		Resource:    resource,
		SubResource: subResource,
		Duration:    duration,
		Error:       err,
		Size:        size,
		Metadata:    metadata,
	})
}
