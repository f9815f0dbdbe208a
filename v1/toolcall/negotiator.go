package toolcall

import (
	"context"
	"fmt"
	"time"

	"github.com/Aleph-Alpha/embedtools/v1/observability"
)

// Negotiator tries the direct transport first and falls back to the
// streaming transport once, only when the direct endpoint is unsupported.
// Either transport may be nil; with no direct transport the stream is used
// straight away.
type Negotiator struct {
	direct   Transport
	stream   Transport
	logger   Logger
	observer observability.Observer
}

// NewNegotiator creates a Negotiator over the given transports.
func NewNegotiator(direct, stream Transport, logger Logger) *Negotiator {
	return &Negotiator{direct: direct, stream: stream, logger: orNop(logger)}
}

// WithObserver sets the observer notified on every fallback and returns the
// Negotiator for method chaining.
func (n *Negotiator) WithObserver(observer observability.Observer) *Negotiator {
	n.observer = observer
	return n
}

// Call sends req and returns the final outcome together with the transport
// that produced it. The returned Outcome is never OutcomeUnsupported.
func (n *Negotiator) Call(ctx context.Context, req Request) (Outcome, Transport, error) {
	if n.direct == nil {
		return n.callStream(ctx, req)
	}

	out, err := n.direct.Call(ctx, req)
	if err != nil || out.Kind != OutcomeUnsupported {
		return out, n.direct, err
	}
	if n.stream == nil {
		return Outcome{}, nil, fmt.Errorf("%w: %s endpoint unsupported and no stream endpoint configured", ErrNoTransport, n.direct.Name())
	}

	n.logger.InfoWithContext(ctx, "direct transport unsupported, falling back to stream", nil, map[string]interface{}{
		"tool":       req.Tool,
		"request_id": req.ID,
	})
	start := time.Now()
	out, served, err := n.callStream(ctx, req)
	n.observeFallback(req, time.Since(start), err)
	return out, served, err
}

func (n *Negotiator) callStream(ctx context.Context, req Request) (Outcome, Transport, error) {
	if n.stream == nil {
		return Outcome{}, nil, ErrNoTransport
	}
	out, err := n.stream.Call(ctx, req)
	if err == nil && out.Kind == OutcomeUnsupported {
		return Outcome{}, n.stream, ErrStreamingUnsupported
	}
	return out, n.stream, err
}

func (n *Negotiator) observeFallback(req Request, duration time.Duration, err error) {
	if n.observer == nil {
		return
	}
	n.observer.ObserveOperation(observability.OperationContext{
		Component:   component,
		Operation:   "fallback",
		Resource:    req.Tool,
		SubResource: n.stream.Name(),
		Duration:    duration,
		Error:       err,
	})
}
