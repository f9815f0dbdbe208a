// Package embedding provides a high-level API for computing text embeddings
// through a remote tool server.
//
// # Overview
//
// The package exposes a single public entrypoint, Client, which hides tool
// names, transports, job polling and result decoding. It runs on top of any
// ToolInvoker, normally a *toolcall.Client.
//
// A client is constructed using:
//
//	tools, err := toolcall.NewClient(toolcallCfg, log)
//	client, err := embedding.NewClient(cfg, tools, log)
//
// Once created, the client can generate embeddings via:
//
//	vectors, err := client.Generate(ctx, []string{"hello", "world"}, embedding.GenerateOptions{
//	    Normalize: true,
//	})
//
// The vectors are returned in the order of the input texts.
//
// # Options
//
// Normalize and UseWorkerPool are forwarded to the server as the
// "normalize" and "use_worker_pool" tool arguments. Their meaning is defined
// by the server.
//
// # Asynchronous jobs
//
// When the server answers with a job handle instead of vectors, the
// ToolInvoker polls the status tool until the job completes, fails or the
// configured max wait elapses. Generate blocks until then.
//
// # Configuration
//
// Config is read from the environment:
//
//	EMBEDDING_TOOL       tool name (default "embeddings_generate")
//	EMBEDDING_DIMENSION  expected vector length, 0 accepts any
//
// # Errors
//
//   - ErrInvalidInput: no texts were given; nothing is sent.
//   - toolcall.ErrToolError: the tool or the job failed. The error is a
//     *toolcall.ToolError carrying the remote code and message.
//   - toolcall.ErrProtocolViolation: the result is inconsistent, e.g. the
//     vector count differs from the number of texts or vectors differ in
//     length. A result without an "embeddings" field matches both
//     ErrToolError and ErrProtocolViolation.
//   - toolcall.ErrPollTimeout: the job did not finish in time.
//
// # Fx integration
//
//	app := fx.New(
//	    logger.FXModule,
//	    toolcall.FXModule,
//	    embedding.FXModule,
//	    fx.Provide(toolcall.NewConfig),
//	)
//
// The module binds *toolcall.Client as the ToolInvoker.
package embedding
