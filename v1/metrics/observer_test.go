package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/embedtools/v1/observability"
)

func TestObserveOperation(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "test"})

	m.ObserveOperation(observability.OperationContext{
		Component: "toolcall", Operation: "call", Resource: "embeddings_generate", SubResource: "direct",
		Duration: 120 * time.Millisecond,
	})
	m.ObserveOperation(observability.OperationContext{
		Component: "toolcall", Operation: "call", Resource: "embeddings_generate", SubResource: "stream",
		Error: errors.New("boom"),
	})
	m.ObserveOperation(observability.OperationContext{
		Component: "toolcall", Operation: "fallback", Resource: "embeddings_generate", SubResource: "stream",
	})
	m.ObserveOperation(observability.OperationContext{
		Component: "toolcall", Operation: "poll", Resource: "embeddings_get_status", SubResource: "queued",
	})
	m.ObserveOperation(observability.OperationContext{
		Component: "toolcall", Operation: "poll", Resource: "embeddings_get_status", SubResource: "queued",
	})
	m.ObserveOperation(observability.OperationContext{
		Component: "redis", Operation: "call",
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.toolCallsTotal.WithLabelValues("call", "embeddings_generate", "direct", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.toolCallsTotal.WithLabelValues("call", "embeddings_generate", "stream", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fallbacksTotal.WithLabelValues("embeddings_generate", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.jobPollsTotal.WithLabelValues("queued", "success")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.toolCallsTotal))
}

func TestObserveEmbeddingGenerate(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "test"})

	m.ObserveOperation(observability.OperationContext{
		Component: "embedding", Operation: "generate", Resource: "embeddings_generate", Size: 3,
	})
	m.ObserveOperation(observability.OperationContext{
		Component: "embedding", Operation: "generate", Resource: "embeddings_generate", Size: 2,
	})
	m.ObserveOperation(observability.OperationContext{
		Component: "embedding", Operation: "generate", Resource: "embeddings_generate",
		Error: errors.New("count mismatch"),
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.embeddingRequestsTotal.WithLabelValues("embeddings_generate", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.embeddingRequestsTotal.WithLabelValues("embeddings_generate", "error")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.embeddingsTotal.WithLabelValues("embeddings_generate")))
	assert.Equal(t, 0, testutil.CollectAndCount(m.toolCallsTotal))
}

func TestMetricsEndpoint(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "embedctl"})
	m.ObserveOperation(observability.OperationContext{
		Component: "toolcall", Operation: "invoke", Resource: "embeddings_generate",
	})

	srv := httptest.NewServer(m.Server.Handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "# TYPE tool_calls_total counter")
	assert.Contains(t, string(body), `service="embedctl"`)
	assert.Contains(t, string(body), `tool="embeddings_generate"`)
}

func TestMetricsImplementsCollector(t *testing.T) {
	var _ MetricsCollector = NewMetrics(Config{})
}
