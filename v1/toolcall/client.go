package toolcall

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"k8s.io/utils/clock"

	"github.com/Aleph-Alpha/embedtools/v1/observability"
	"github.com/Aleph-Alpha/embedtools/v1/tracer"
)

// Client invokes remote tools. It owns the request id counter and a lazily
// created HTTP connection pool shared by all concurrent calls.
type Client struct {
	cfg      Config
	logger   Logger
	observer observability.Observer
	clock    clock.Clock
	tracer   *tracer.Tracer

	lastID atomic.Int64

	mu         sync.Mutex
	httpClient *http.Client
	closed     bool

	negotiator *Negotiator
}

// NewClient creates a Client from cfg. No connection is opened until the
// first call.
func NewClient(cfg Config, logger Logger) (*Client, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		cfg:    cfg,
		logger: orNop(logger),
		clock:  clock.RealClock{},
	}

	var direct, stream Transport
	if cfg.DirectURL != "" {
		direct = NewDirectTransport(cfg.DirectURL, cfg.ServiceToken, c, c.logger)
	}
	if cfg.StreamURL != "" {
		stream = NewStreamTransport(cfg.StreamURL, cfg.ServiceToken, cfg.StreamVariant(), c, c.logger)
	}
	c.negotiator = NewNegotiator(direct, stream, c.logger)

	return c, nil
}

// WithObserver sets the observer for this client and returns the client for
// method chaining. The observer receives call, invoke, fallback and poll
// operations.
func (c *Client) WithObserver(observer observability.Observer) *Client {
	c.observer = observer
	c.negotiator.WithObserver(observer)
	return c
}

// WithTracer sets the tracer used for spans and for the trace headers of
// outgoing requests. Without one the global OpenTelemetry provider is used.
func (c *Client) WithTracer(t *tracer.Tracer) *Client {
	c.tracer = t
	return c
}

// WithClock replaces the time source used by job polling.
func (c *Client) WithClock(cl clock.Clock) *Client {
	c.clock = cl
	return c
}

// NewRequest returns a request with a fresh id. Safe for concurrent use.
func (c *Client) NewRequest(tool string, args map[string]any) Request {
	return Request{ID: c.lastID.Add(1), Tool: tool, Arguments: args}
}

// Do sends req through the pooled HTTP client, adding trace headers.
// It fails with ErrClientClosed after Close.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	hc, err := c.pool()
	if err != nil {
		return nil, err
	}
	for key, value := range c.tracer.GetCarrier(req.Context()) {
		req.Header.Set(key, value)
	}
	return hc.Do(req)
}

func (c *Client) pool() (*http.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClientClosed
	}
	if c.httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.MaxIdleConnsPerHost = c.cfg.MaxIdleConns
		c.httpClient = &http.Client{Transport: transport, Timeout: c.cfg.RequestTimeout}
	}
	return c.httpClient, nil
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Call performs one negotiated tool call and returns the raw outcome and the
// transport that served it. Job handles are returned, not polled.
func (c *Client) Call(ctx context.Context, tool string, args map[string]any) (Outcome, Transport, error) {
	if c.isClosed() {
		return Outcome{}, nil, ErrClientClosed
	}

	req := c.NewRequest(tool, args)
	ctx, span := c.tracer.StartSpan(ctx, "toolcall.call", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	c.tracer.SetAttributes(span, map[string]interface{}{
		"tool.name":          tool,
		"jsonrpc.request_id": req.ID,
	})

	start := time.Now()
	out, served, err := c.negotiator.Call(ctx, req)

	transport := ""
	if served != nil {
		transport = served.Name()
	}
	c.tracer.SetAttributes(span, map[string]interface{}{
		"toolcall.transport": transport,
		"toolcall.outcome":   out.Kind.String(),
	})
	if err != nil {
		c.tracer.RecordErrorOnSpan(span, err)
	}
	c.observeOperation("call", tool, transport, time.Since(start), err, map[string]interface{}{
		"outcome": out.Kind.String(),
	})
	return out, served, err
}

// Invoke calls tool and, when the call starts a job, polls it through the
// transport that served the call. A remote failure is returned as a
// *ToolError.
func (c *Client) Invoke(ctx context.Context, tool string, args map[string]any) (Result, error) {
	callID := uuid.NewString()
	ctx, span := c.tracer.StartSpan(ctx, "toolcall.invoke")
	defer span.End()
	c.tracer.SetAttributes(span, map[string]interface{}{
		"tool.name":        tool,
		"toolcall.call_id": callID,
	})

	start := time.Now()
	result, err := c.invoke(ctx, callID, tool, args)
	if err != nil {
		c.tracer.RecordErrorOnSpan(span, err)
	}
	c.observeOperation("invoke", tool, "", time.Since(start), err, map[string]interface{}{
		"call_id": callID,
	})
	return result, err
}

func (c *Client) invoke(ctx context.Context, callID, tool string, args map[string]any) (Result, error) {
	out, served, err := c.Call(ctx, tool, args)
	if err != nil {
		return Result{}, err
	}

	if out.Kind == OutcomeJob {
		c.logger.InfoWithContext(ctx, "tool call started a job, polling", nil, map[string]interface{}{
			"tool":      tool,
			"job":       string(out.Job),
			"call_id":   callID,
			"transport": served.Name(),
		})
		poller, err := c.poller(served)
		if err != nil {
			return Result{}, err
		}
		result, err := poller.Wait(ctx, out.Job)
		if err != nil {
			return Result{}, err
		}
		out.Result = result
	}

	return out.Result, out.Result.Err()
}

func (c *Client) poller(t Transport) (*Poller, error) {
	return NewPoller(t, func() int64 { return c.lastID.Add(1) }, PollOptions{
		Interval:       c.cfg.PollInterval,
		MaxWait:        c.cfg.MaxWait,
		StatusTool:     c.cfg.StatusTool,
		StatusArgument: c.cfg.StatusArgument,
		Clock:          c.clock,
		Logger:         c.logger,
		Observer:       c.observer,
	})
}

// Close releases idle pooled connections. Later calls fail with
// ErrClientClosed. Close is idempotent.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
	}
	return nil
}
