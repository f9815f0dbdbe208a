package toolcall

import "context"

// Transport performs one tool call over one wire protocol.
//
//go:generate mockgen -source=transport.go -destination=mock_transport.go -package=toolcall
type Transport interface {
	// Call sends req and returns its outcome. OutcomeUnsupported is a normal
	// return, not an error.
	Call(ctx context.Context, req Request) (Outcome, error)

	// Name identifies the transport in logs and metrics.
	Name() string
}
