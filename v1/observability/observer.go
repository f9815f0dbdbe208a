// Package observability defines the hook that instrumented packages use to
// report operations to metrics, tracing or audit backends.
//
// Packages in this module never import a metrics backend directly. They call
// an optional Observer, and the application decides what to do with the
// reported OperationContext (see the metrics package for a Prometheus
// implementation).
package observability

import "time"

// OperationContext describes one completed operation.
type OperationContext struct {
	// Component is the reporting package, e.g. "toolcall" or "embedding".
	Component string

	// Operation is the action that ran, e.g. "call", "poll" or "generate".
	Operation string

	// Resource is the primary target of the operation (a tool name).
	Resource string

	// SubResource adds detail to Resource (the transport that served it).
	SubResource string

	// Duration is the wall-clock time the operation took.
	Duration time.Duration

	// Error is the error the operation returned, nil on success.
	Error error

	// Size is an operation specific count (bytes, vectors, polls).
	Size int64

	// Metadata carries additional labels.
	Metadata map[string]interface{}
}

// Observer receives OperationContext values. Implementations must be safe for
// concurrent use because operations complete on many goroutines.
type Observer interface {
	ObserveOperation(ctx OperationContext)
}
