package metrics

import (
	"github.com/Aleph-Alpha/embedtools/v1/observability"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// ObserveOperation records tool-call and embedding operations. Operations
// of other components are ignored.
func (m *Metrics) ObserveOperation(ctx observability.OperationContext) {
	status := statusSuccess
	if ctx.Error != nil {
		status = statusError
	}

	switch ctx.Component {
	case "toolcall":
		m.observeToolCall(ctx, status)
	case "embedding":
		if ctx.Operation != "generate" {
			return
		}
		m.embeddingRequestsTotal.WithLabelValues(ctx.Resource, status).Inc()
		if ctx.Error == nil {
			m.embeddingsTotal.WithLabelValues(ctx.Resource).Add(float64(ctx.Size))
		}
	}
}

func (m *Metrics) observeToolCall(ctx observability.OperationContext, status string) {
	switch ctx.Operation {
	case "call", "invoke":
		m.toolCallsTotal.WithLabelValues(ctx.Operation, ctx.Resource, ctx.SubResource, status).Inc()
		m.toolCallDuration.WithLabelValues(ctx.Operation, ctx.Resource, ctx.SubResource).Observe(ctx.Duration.Seconds())
	case "fallback":
		m.fallbacksTotal.WithLabelValues(ctx.Resource, status).Inc()
	case "poll":
		m.jobPollsTotal.WithLabelValues(ctx.SubResource, status).Inc()
	}
}
