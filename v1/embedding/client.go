package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/Aleph-Alpha/embedtools/v1/logger"
	"github.com/Aleph-Alpha/embedtools/v1/observability"
)

// Client is the public entrypoint for computing embeddings.
//
// It hides the tool protocol (transports, job polling, result shapes)
// from the application layer. It is safe for concurrent use when its
// ToolInvoker is.
type Client struct {
	tools    ToolInvoker
	cfg      Config
	logger   Logger
	observer observability.Observer
}

// NewClient constructs a Client running cfg.Tool through tools.
func NewClient(cfg Config, tools ToolInvoker, log Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("embedding: invalid config: %w", err)
	}
	if tools == nil {
		return nil, fmt.Errorf("embedding: tool invoker is required")
	}
	if cfg.Tool == "" {
		cfg.Tool = DefaultTool
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Client{tools: tools, cfg: cfg, logger: log}, nil
}

// WithObserver sets the observer notified after every Generate call and
// returns the client for method chaining.
func (c *Client) WithObserver(observer observability.Observer) *Client {
	c.observer = observer
	return c
}

// Generate returns one vector per text, in input order. It fails with
// ErrInvalidInput before any network activity when texts is empty.
func (c *Client) Generate(ctx context.Context, texts []string, opts GenerateOptions) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, ErrInvalidInput
	}

	start := time.Now()
	vectors, err := c.generate(ctx, texts, opts)
	duration := time.Since(start)
	c.observeOperation("generate", c.cfg.Tool, len(vectors), duration, err)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("embeddings generated", nil, map[string]interface{}{
		"count":       len(vectors),
		"dimension":   len(vectors[0]),
		"duration_ms": duration.Milliseconds(),
	})
	return vectors, nil
}

func (c *Client) generate(ctx context.Context, texts []string, opts GenerateOptions) ([][]float64, error) {
	result, err := c.tools.Invoke(ctx, c.cfg.Tool, map[string]any{
		"texts":           texts,
		"normalize":       opts.Normalize,
		"use_worker_pool": opts.UseWorkerPool,
	})
	if err == nil {
		err = result.Err()
	}
	if err != nil {
		return nil, fmt.Errorf("embedding: %s: %w", c.cfg.Tool, err)
	}
	return decodeEmbeddings(result.Value, len(texts), c.cfg.Dimension)
}

// Close allows the client to release resources held by its ToolInvoker.
// It is a no-op unless the invoker implements Close().
func (c *Client) Close() error {
	if closer, ok := c.tools.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
