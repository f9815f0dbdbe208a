package toolcall

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestRequestEncode(t *testing.T) {
	data, err := Request{
		ID:        7,
		Tool:      "embeddings_generate",
		Arguments: map[string]any{"texts": []string{"hello"}, "normalize": true},
	}.Encode()
	require.NoError(t, err)

	doc := gjson.ParseBytes(data)
	assert.Equal(t, "2.0", doc.Get("jsonrpc").String())
	assert.Equal(t, "tools/call", doc.Get("method").String())
	assert.Equal(t, int64(7), doc.Get("id").Int())
	assert.Equal(t, gjson.Number, doc.Get("id").Type)
	assert.Equal(t, "embeddings_generate", doc.Get("params.name").String())
	assert.Equal(t, "hello", doc.Get("params.arguments.texts.0").String())
	assert.True(t, doc.Get("params.arguments.normalize").Bool())
}

func TestRequestEncodeNilArguments(t *testing.T) {
	data, err := Request{ID: 1, Tool: "ping"}.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, gjson.GetBytes(data, "params.arguments").Raw)
}

func TestDecodeResponse(t *testing.T) {
	code := int64(-32601)

	tests := []struct {
		name      string
		body      string
		wantKind  OutcomeKind
		wantValue map[string]any
		wantFail  *ToolError
		wantJob   JobHandle
		violation bool
		malformed bool
	}{
		{
			name:      "result",
			body:      `{"jsonrpc":"2.0","id":3,"result":{"embeddings":[[0.1,0.2]]}}`,
			wantValue: map[string]any{"embeddings": []any{[]any{0.1, 0.2}}},
		},
		{
			name:      "result without id",
			body:      `{"result":{"embeddings":[[0.1,0.2],[0.3,0.4]]}}`,
			wantValue: map[string]any{"embeddings": []any{[]any{0.1, 0.2}, []any{0.3, 0.4}}},
		},
		{
			name:     "json-rpc error",
			body:     `{"jsonrpc":"2.0","id":3,"error":{"code":-32601,"message":"unknown tool"}}`,
			wantFail: &ToolError{Code: &code, Message: "unknown tool"},
		},
		{
			name:      "other id",
			body:      `{"jsonrpc":"2.0","id":4,"result":{}}`,
			violation: true,
		},
		{
			name:      "string id",
			body:      `{"jsonrpc":"2.0","id":"3","result":{}}`,
			violation: true,
		},
		{
			name:      "neither result nor error",
			body:      `{"jsonrpc":"2.0","id":3}`,
			violation: true,
		},
		{
			name:      "not json",
			body:      `<html>bad gateway</html>`,
			malformed: true,
		},
		{
			name:      "json array",
			body:      `[{"id":3,"result":{}}]`,
			malformed: true,
		},
		{
			name:      "structured content",
			body:      `{"id":3,"result":{"content":[{"type":"text","text":"ignored"}],"structuredContent":{"embeddings":[[1]]}}}`,
			wantValue: map[string]any{"embeddings": []any{[]any{float64(1)}}},
		},
		{
			name:      "text content holding json",
			body:      `{"id":3,"result":{"content":[{"type":"text","text":"{\"embeddings\":[[2]]}"}]}}`,
			wantValue: map[string]any{"embeddings": []any{[]any{float64(2)}}},
		},
		{
			name:     "isError",
			body:     `{"id":3,"result":{"isError":true,"content":[{"type":"text","text":"model overloaded"}]}}`,
			wantFail: &ToolError{Message: "model overloaded"},
		},
		{
			name:      "job handle",
			body:      `{"id":3,"result":{"task_id":"t1","status":"queued"}}`,
			wantKind:  OutcomeJob,
			wantJob:   "t1",
			wantValue: map[string]any{"task_id": "t1", "status": "queued"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := decodeResponse([]byte(tt.body), 3)
			if tt.violation {
				assert.True(t, IsProtocolViolationError(err), "got %v", err)
				assert.False(t, IsMalformedResponseError(err))
				return
			}
			if tt.malformed {
				assert.True(t, IsMalformedResponseError(err), "got %v", err)
				assert.False(t, IsProtocolViolationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, out.Kind)
			assert.Equal(t, tt.wantJob, out.Job)
			if tt.wantFail != nil {
				require.NotNil(t, out.Result.Failure)
				assert.Equal(t, tt.wantFail.Message, out.Result.Failure.Message)
				assert.Equal(t, tt.wantFail.Code, out.Result.Failure.Code)
				assert.True(t, IsToolError(out.Result.Err()))
				return
			}
			assert.Nil(t, out.Result.Failure)
			assert.Equal(t, tt.wantValue, out.Result.Value)
		})
	}
}

func TestToolErrorMessage(t *testing.T) {
	code := int64(-32000)
	assert.Equal(t, "toolcall: tool error -32000: boom", (&ToolError{Code: &code, Message: "boom"}).Error())
	assert.Equal(t, "toolcall: tool error: x", (&ToolError{Message: "x"}).Error())
}

func TestIsTransientError(t *testing.T) {
	assert.True(t, IsTransientError(&StatusError{StatusCode: 503}))
	assert.True(t, IsTransientError(&StatusError{StatusCode: 429}))
	assert.False(t, IsTransientError(&StatusError{StatusCode: 400}))
	assert.True(t, IsTransientError(ErrStreamExhausted))
	assert.False(t, IsTransientError(&ToolError{Message: "x"}))
	assert.False(t, IsTransientError(ErrProtocolViolation))
	assert.True(t, IsTransientError(fmt.Errorf("%w: response is not valid JSON", ErrMalformedResponse)))
	assert.False(t, IsTransientError(nil))
}
