package embedding

import (
	"context"

	"github.com/Aleph-Alpha/embedtools/v1/toolcall"
)

// DefaultTool is the tool producing embeddings.
const DefaultTool = "embeddings_generate"

// GenerateOptions are passed through to the embedding tool unchanged.
type GenerateOptions struct {
	Normalize     bool
	UseWorkerPool bool
}

// ToolInvoker runs a tool to completion, polling asynchronous jobs.
// *toolcall.Client implements it.
//
//go:generate mockgen -source=types.go -destination=mock_invoker.go -package=embedding
type ToolInvoker interface {
	Invoke(ctx context.Context, tool string, args map[string]any) (toolcall.Result, error)
}

// Logger is the logging contract used by this package.
type Logger interface {
	Debug(msg string, err error, fields ...map[string]interface{})
	Info(msg string, err error, fields ...map[string]interface{})
}
