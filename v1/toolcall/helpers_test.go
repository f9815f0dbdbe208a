package toolcall

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/Aleph-Alpha/embedtools/v1/observability"
	"github.com/Aleph-Alpha/embedtools/v1/sse"
)

// Test servers run handlers on their own goroutines, so helpers used there
// report with assert rather than require.

// rpcCall is a decoded tools/call request as seen by a test server.
type rpcCall struct {
	ID   int64
	Tool string
	Args map[string]any
}

func decodeCall(t *testing.T, r *http.Request) rpcCall {
	t.Helper()
	body, err := io.ReadAll(r.Body)
	assert.NoError(t, err)
	assert.True(t, gjson.ValidBytes(body), "request body is JSON")

	doc := gjson.ParseBytes(body)
	assert.Equal(t, "2.0", doc.Get("jsonrpc").String())
	assert.Equal(t, MethodToolsCall, doc.Get("method").String())

	args, _ := doc.Get("params.arguments").Value().(map[string]any)
	return rpcCall{
		ID:   doc.Get("id").Int(),
		Tool: doc.Get("params.name").String(),
		Args: args,
	}
}

func rpcResult(id int64, result any) []byte {
	data, _ := json.Marshal(map[string]any{"jsonrpc": "2.0", "id": id, "result": result})
	return data
}

func rpcError(id int64, code int, message string) []byte {
	data, _ := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error":   map[string]any{"code": code, "message": message},
	})
	return data
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeEvents answers with an event stream made of the given data payloads.
func writeEvents(t *testing.T, w http.ResponseWriter, payloads ...[]byte) {
	t.Helper()
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	for _, p := range payloads {
		assert.NoError(t, sse.WriteFrame(w, sse.Frame{Event: "message", RawData: string(p)}))
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// autoClock is a fake clock whose After advances time by the waited
// duration, so polling runs instantly and deterministically.
type autoClock struct {
	*clocktesting.FakeClock
}

func newAutoClock() *autoClock {
	return &autoClock{FakeClock: clocktesting.NewFakeClock(time.Unix(0, 0))}
}

func (c *autoClock) After(d time.Duration) <-chan time.Time {
	ch := c.FakeClock.After(d)
	c.FakeClock.Step(d)
	return ch
}

// TestObserver records operations for assertions.
type TestObserver struct {
	mu  sync.Mutex
	ops []observability.OperationContext
}

func (o *TestObserver) ObserveOperation(ctx observability.OperationContext) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ops = append(o.ops, ctx)
}

func (o *TestObserver) operations(name string) []observability.OperationContext {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []observability.OperationContext
	for _, op := range o.ops {
		if op.Operation == name {
			out = append(out, op)
		}
	}
	return out
}

func statusOutcome(fields map[string]any) Outcome {
	return Outcome{Kind: OutcomeResult, Result: Result{Value: fields}}
}
