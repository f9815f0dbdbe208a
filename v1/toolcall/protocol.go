package toolcall

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/tidwall/gjson"
	"golang.org/x/exp/jsonrpc2"

	"github.com/Aleph-Alpha/embedtools/v1/sse"
)

const (
	contentTypeJSON   = "application/json"
	contentTypeStream = "text/event-stream"

	// jobHandleField marks a result as an asynchronous job.
	jobHandleField = "task_id"

	// maxDrainBytes is read from discarded bodies so the connection can be reused.
	maxDrainBytes = 4 << 10
)

type callParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// Encode returns the JSON-RPC 2.0 "tools/call" message for r.
func (r Request) Encode() ([]byte, error) {
	args := r.Arguments
	if args == nil {
		args = map[string]any{}
	}
	call, err := jsonrpc2.NewCall(jsonrpc2.Int64ID(r.ID), MethodToolsCall, callParams{Name: r.Tool, Arguments: args})
	if err != nil {
		return nil, fmt.Errorf("toolcall: build request: %w", err)
	}
	data, err := jsonrpc2.EncodeMessage(call)
	if err != nil {
		return nil, fmt.Errorf("toolcall: encode request: %w", err)
	}
	return data, nil
}

// newRequest builds an HTTP request carrying the JSON-RPC headers and the
// optional service token. A nil body makes a GET.
func newRequest(ctx context.Context, url, token string, body []byte, accept string) (*http.Request, error) {
	method := http.MethodGet
	var reader io.Reader
	if body != nil {
		method = http.MethodPost
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("toolcall: build http request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}
	req.Header.Set("Accept", accept)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func isEventStream(resp *http.Response) bool {
	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	return err == nil && mediaType == contentTypeStream
}

func drain(body io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxDrainBytes))
}

// statusFailure turns a non-2xx response into a result when its body is a
// JSON-RPC error, and into a *StatusError otherwise.
func statusFailure(resp *http.Response, id int64) (Outcome, error) {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDrainBytes))
	if err == nil && gjson.ValidBytes(data) && gjson.GetBytes(data, "error").IsObject() {
		return decodeResponse(data, id)
	}
	return Outcome{}, &StatusError{StatusCode: resp.StatusCode, URL: resp.Request.URL.Redacted()}
}

// idMatches reports whether a JSON-RPC id equals want. Only JSON integers
// match; string ids never do.
func idMatches(id gjson.Result, want int64) bool {
	return id.Type == gjson.Number && id.Num == float64(want) && id.Int() == want
}

// decodeResponse interprets a JSON-RPC response to request id. A body that is
// not a JSON object is malformed. An absent or null id is accepted; a
// different id is a protocol violation.
func decodeResponse(data []byte, id int64) (Outcome, error) {
	if !gjson.ValidBytes(data) {
		return Outcome{}, fmt.Errorf("%w: response is not valid JSON", ErrMalformedResponse)
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return Outcome{}, fmt.Errorf("%w: response is not a JSON object", ErrMalformedResponse)
	}

	if got := doc.Get("id"); got.Exists() && got.Type != gjson.Null && !idMatches(got, id) {
		return Outcome{}, fmt.Errorf("%w: response id %s does not match request %d", ErrProtocolViolation, got.Raw, id)
	}

	if e := doc.Get("error"); e.Exists() && e.Type != gjson.Null {
		return Outcome{Kind: OutcomeResult, Result: Result{Failure: toolErrorFrom(e)}}, nil
	}

	result := doc.Get("result")
	if !result.IsObject() {
		return Outcome{}, fmt.Errorf("%w: response has neither an object result nor an error", ErrProtocolViolation)
	}
	return outcomeFromResult(result)
}

func toolErrorFrom(e gjson.Result) *ToolError {
	if e.Type == gjson.String {
		return &ToolError{Message: e.String()}
	}
	te := &ToolError{Message: e.Get("message").String()}
	if code := e.Get("code"); code.Type == gjson.Number {
		c := code.Int()
		te.Code = &c
	}
	if te.Message == "" {
		te.Message = e.Raw
	}
	return te
}

// outcomeFromResult unwraps MCP tool results and detects job handles.
//
// A result carrying structuredContent yields that object; otherwise the first
// text content holding a JSON object is used; otherwise the result itself.
// isError results become failures with the text content as message.
func outcomeFromResult(result gjson.Result) (Outcome, error) {
	text := firstTextContent(result.Get("content"))

	if result.Get("isError").Bool() {
		msg := text
		if msg == "" {
			msg = "tool reported an error"
		}
		return Outcome{Kind: OutcomeResult, Result: Result{Failure: &ToolError{Message: msg}}}, nil
	}

	payload := result
	switch sc := result.Get("structuredContent"); {
	case sc.IsObject():
		payload = sc
	case text != "" && gjson.Valid(text) && gjson.Parse(text).IsObject():
		payload = gjson.Parse(text)
	}

	value, ok := payload.Value().(map[string]any)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: result payload is not an object", ErrProtocolViolation)
	}

	if task := payload.Get(jobHandleField); task.Type == gjson.String && task.String() != "" {
		return Outcome{Kind: OutcomeJob, Job: JobHandle(task.String()), Result: Result{Value: value}}, nil
	}
	return Outcome{Kind: OutcomeResult, Result: Result{Value: value}}, nil
}

func firstTextContent(content gjson.Result) string {
	if !content.IsArray() {
		return ""
	}
	for _, item := range content.Array() {
		if item.Get("type").String() == "text" {
			return item.Get("text").String()
		}
	}
	return ""
}

// awaitResponse reads frames until one carries the response to request id.
// Frames without JSON data or with another id are skipped.
func awaitResponse(ctx context.Context, parser *sse.Parser, id int64, log Logger) (Outcome, error) {
	for {
		frame, err := parser.Next()
		if errors.Is(err, io.EOF) {
			return Outcome{}, fmt.Errorf("%w: request %d", ErrStreamExhausted, id)
		}
		if err != nil {
			return Outcome{}, err
		}

		if !frame.HasData() || !gjson.Valid(frame.RawData) {
			continue
		}
		if got := gjson.Get(frame.RawData, "id"); !idMatches(got, id) {
			log.DebugWithContext(ctx, "skipping stream frame for another request", nil, map[string]interface{}{
				"request_id": id,
				"frame_id":   got.Raw,
				"event":      frame.Event,
			})
			continue
		}
		return decodeResponse([]byte(frame.RawData), id)
	}
}
