package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics encapsulates the Prometheus registry and HTTP server responsible
// for exposing tool-call metrics.
type Metrics struct {
	// Server defines the HTTP server used to expose the /metrics endpoint.
	Server *http.Server

	// Registry is the Prometheus registry where all metrics are registered.
	// Each service maintains its own isolated registry to prevent metric name collisions.
	Registry *prometheus.Registry

	toolCallsTotal   *prometheus.CounterVec
	toolCallDuration *prometheus.HistogramVec
	fallbacksTotal   *prometheus.CounterVec
	jobPollsTotal    *prometheus.CounterVec

	embeddingRequestsTotal *prometheus.CounterVec
	embeddingsTotal        *prometheus.CounterVec
}

// NewMetrics initializes and returns a new instance of the Metrics struct.
// It sets up a dedicated Prometheus registry, wraps all metrics with a
// constant `service` label, and creates an HTTP server exposing /metrics.
//
// The tool-call metrics are:
//   - tool_calls_total{operation, tool, transport, status}
//   - tool_call_duration_seconds{operation, tool, transport}
//   - transport_fallbacks_total{tool, status}
//   - job_polls_total{state, status}
//   - embedding_requests_total{tool, status}
//   - embeddings_generated_total{tool}
//
// Example:
//
//	m := metrics.NewMetrics(metrics.Config{Address: ":9090", ServiceName: "embedctl"})
//	client.WithObserver(m)
func NewMetrics(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()

	// All metrics emitted by this service carry service="<cfg.ServiceName>".
	wrappedRegistry := prometheus.WrapRegistererWith(
		prometheus.Labels{"service": cfg.ServiceName},
		registry,
	)

	m := &Metrics{
		Registry: registry,
	}

	m.toolCallsTotal = createCounterVec("tool_calls_total", "Total number of tool calls and invocations", []string{"operation", "tool", "transport", "status"})
	m.toolCallDuration = createHistogramVec("tool_call_duration_seconds", "Duration of tool calls and invocations in seconds", []string{"operation", "tool", "transport"}, prometheus.DefBuckets)
	m.fallbacksTotal = createCounterVec("transport_fallbacks_total", "Total number of fallbacks from the direct to the streaming transport", []string{"tool", "status"})
	m.jobPollsTotal = createCounterVec("job_polls_total", "Total number of job status checks", []string{"state", "status"})
	m.embeddingRequestsTotal = createCounterVec("embedding_requests_total", "Total number of embedding requests", []string{"tool", "status"})
	m.embeddingsTotal = createCounterVec("embeddings_generated_total", "Total number of vectors returned by embedding requests", []string{"tool"})

	wrappedRegistry.MustRegister(
		m.toolCallsTotal,
		m.toolCallDuration,
		m.fallbacksTotal,
		m.jobPollsTotal,
		m.embeddingRequestsTotal,
		m.embeddingsTotal,
	)

	// Register standard collectors if enabled.
	//   - GoCollector: Memory usage, goroutines, GC stats
	//   - ProcessCollector: CPU, file descriptors, memory stats
	//   - BuildInfoCollector: Binary version/build info
	if cfg.EnableDefaultCollectors {
		wrappedRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	m.Server = &http.Server{
		Addr:    cfg.Address,
		Handler: mux,
	}
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// createCounterVec defines a new CounterVec with standard options.
func createCounterVec(name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
}

// createHistogramVec defines a new HistogramVec with configurable buckets.
func createHistogramVec(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    name,
			Help:    help,
			Buckets: buckets,
		},
		labels,
	)
}
