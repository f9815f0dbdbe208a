/*
Package toolcall invokes remote tools over JSON-RPC 2.0 "tools/call".

A server may expose the protocol as a plain request/response endpoint, as an
event stream, or both. The Client hides the difference:

  - DirectTransport posts the request and reads one response.
  - StreamTransport reads the response from a server-sent event stream, either
    from the POST response itself (combined) or from a stream opened with GET
    that announces where requests go (dedicated).
  - Negotiator tries the direct endpoint and falls back to the stream exactly
    once when the direct endpoint answers 404 or 405.
  - Poller resolves asynchronous jobs by calling a status tool at a fixed
    interval until the job completes, fails or MaxWait passes.

Basic usage:

	cfg, err := toolcall.NewConfig() // TOOLCALL_* environment variables
	if err != nil {
		return err
	}
	client, err := toolcall.NewClient(cfg, log)
	if err != nil {
		return err
	}
	defer client.Close()

	result, err := client.Invoke(ctx, "embeddings_generate", map[string]any{
		"texts": []string{"hello"},
	})
	switch {
	case toolcall.IsToolError(err):
		// the tool failed; err is a *toolcall.ToolError
	case toolcall.IsPollTimeoutError(err):
		// the job did not finish in time
	}

Request ids come from one atomic counter per Client, so concurrent calls
never share an id. Responses on a stream are matched to their request by
numeric id; frames for other requests are skipped.

Tool results following the MCP convention are unwrapped: structuredContent
is preferred, then the first text content holding a JSON object, and
isError results become failures. A result carrying a "task_id" string is
treated as a job handle.
*/
package toolcall
