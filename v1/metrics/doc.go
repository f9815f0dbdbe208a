// Package metrics provides Prometheus metrics for tool calls.
//
// *Metrics implements observability.Observer. Attach it to a toolcall.Client
// with WithObserver, or include FXModule next to toolcall.FXModule and the
// client receives it automatically.
//
// # Metrics
//
//   - tool_calls_total{operation, tool, transport, status}: one per Call and
//     per Invoke; status is "success" or "error".
//   - tool_call_duration_seconds{operation, tool, transport}
//   - transport_fallbacks_total{tool, status}: direct endpoint unsupported,
//     streaming endpoint used.
//   - job_polls_total{state, status}: job status checks by reported state.
//
// Every metric carries a constant service label from Config.ServiceName.
//
// # Direct Usage (Without FX)
//
//	m := metrics.NewMetrics(metrics.Config{Address: ":9090", ServiceName: "embedctl"})
//	go m.Server.ListenAndServe()
//	client.WithObserver(m)
//
// Access metrics at: http://localhost:9090/metrics
package metrics
