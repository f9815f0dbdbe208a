package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type rpcCall struct {
	ID     int64  `json:"id"`
	Method string `json:"method"`
	Params struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	} `json:"params"`
}

// toolServer answers every tools/call with the result returned by reply.
func toolServer(t *testing.T, reply func(rpcCall) map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var call rpcCall
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&call)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Equal(t, "tools/call", call.Method)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      call.ID,
			"result":  reply(call),
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeConfig(t *testing.T, directURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "embedctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("direct_url: "+directURL+"\n"), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGenerateJSON(t *testing.T) {
	var got rpcCall
	srv := toolServer(t, func(c rpcCall) map[string]any {
		got = c
		return map[string]any{"embeddings": [][]float64{{0.1, 0.2}, {0.3, 0.4}}}
	})

	out, err := execute(t, "generate", "--config", writeConfig(t, srv.URL), "--normalize", "a", "b")
	require.NoError(t, err)

	var decoded generateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, [][]float64{{0.1, 0.2}, {0.3, 0.4}}, decoded.Embeddings)

	assert.Equal(t, "embeddings_generate", got.Params.Name)
	assert.Equal(t, []any{"a", "b"}, got.Params.Arguments["texts"])
	assert.Equal(t, true, got.Params.Arguments["normalize"])
	assert.Equal(t, false, got.Params.Arguments["use_worker_pool"])
}

func TestCallYAML(t *testing.T) {
	srv := toolServer(t, func(c rpcCall) map[string]any {
		assert.Equal(t, "embeddings_get_status", c.Params.Name)
		assert.Equal(t, "t1", c.Params.Arguments["task_id"])
		return map[string]any{"status": "completed"}
	})

	out, err := execute(t, "call", "embeddings_get_status",
		"--config", writeConfig(t, srv.URL),
		"--args", `{"task_id":"t1"}`,
		"-o", "yaml")
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "completed", decoded["status"])
}

func TestCallReadsEnvironment(t *testing.T) {
	srv := toolServer(t, func(rpcCall) map[string]any {
		return map[string]any{"ok": true}
	})
	t.Setenv("TOOLCALL_DIRECT_URL", srv.URL)

	out, err := execute(t, "call", "ping")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, out)
}

func TestCallToolFailure(t *testing.T) {
	srv := toolServer(t, func(rpcCall) map[string]any {
		return map[string]any{
			"isError": true,
			"content": []any{map[string]any{"type": "text", "text": "model unavailable"}},
		}
	})

	_, err := execute(t, "call", "embeddings_generate", "--config", writeConfig(t, srv.URL))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model unavailable")
}

func TestRejectsBadInput(t *testing.T) {
	_, err := execute(t, "call", "ping", "--args", "[1,2]")
	assert.ErrorContains(t, err, "--args must be a JSON object")

	_, err = execute(t, "call", "ping", "-o", "xml")
	assert.ErrorContains(t, err, "unknown output format")

	_, err = execute(t, "generate")
	assert.Error(t, err)
}

func TestCallContinuesTraceFromEnvironment(t *testing.T) {
	const traceID = "4bf92f3577b34da6a3ce929d0e0e4736"
	t.Setenv("TRACEPARENT", "00-"+traceID+"-00f067aa0ba902b7-01")

	var traceparent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceparent = r.Header.Get("traceparent")
		var call rpcCall
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&call))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": call.ID, "result": map[string]any{"ok": true}})
	}))
	defer srv.Close()

	_, err := execute(t, "call", "ping", "--config", writeConfig(t, srv.URL))
	require.NoError(t, err)
	assert.Contains(t, traceparent, traceID)
	assert.NotContains(t, traceparent, "00f067aa0ba902b7", "the request carries a child span")
}
