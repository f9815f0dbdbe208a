package toolcall

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/mitchellh/mapstructure"
	"k8s.io/utils/clock"

	"github.com/Aleph-Alpha/embedtools/v1/observability"
)

// PollOptions configures a Poller. Zero fields take the package defaults.
type PollOptions struct {
	Interval       time.Duration
	MaxWait        time.Duration
	StatusTool     string
	StatusArgument string

	// Clock is the time source for the deadline and the pauses.
	Clock clock.Clock

	// BackOff yields the pause before each further check. It defaults to a
	// constant Interval. Pauses never run past MaxWait.
	BackOff backoff.BackOff

	Logger   Logger
	Observer observability.Observer
}

// Poller resolves a JobHandle by calling the status tool until the job
// completes, fails or MaxWait elapses. Checks are strictly sequential.
type Poller struct {
	transport Transport
	nextID    func() int64
	opts      PollOptions
	logger    Logger
}

// NewPoller creates a Poller issuing status calls through transport. nextID
// provides a fresh request id for each check.
func NewPoller(transport Transport, nextID func() int64, opts PollOptions) (*Poller, error) {
	if opts.Interval == 0 {
		opts.Interval = DefaultPollInterval
	}
	if opts.MaxWait == 0 {
		opts.MaxWait = DefaultMaxWait
	}
	if opts.Interval <= 0 || opts.Interval >= opts.MaxWait {
		return nil, fmt.Errorf("%w: poll interval %s must be positive and shorter than max wait %s", ErrInvalidConfig, opts.Interval, opts.MaxWait)
	}
	if opts.StatusTool == "" {
		opts.StatusTool = DefaultStatusTool
	}
	if opts.StatusArgument == "" {
		opts.StatusArgument = DefaultStatusArgument
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if opts.BackOff == nil {
		opts.BackOff = backoff.NewConstantBackOff(opts.Interval)
	}

	return &Poller{
		transport: transport,
		nextID:    nextID,
		opts:      opts,
		logger:    orNop(opts.Logger),
	}, nil
}

// Wait polls handle until a terminal status. A completed job yields its
// result, a failed job a *ToolError with the reported message. Transient
// transport failures are logged and retried until MaxWait; ErrPollTimeout is
// returned once MaxWait has elapsed, never earlier.
func (p *Poller) Wait(ctx context.Context, handle JobHandle) (Result, error) {
	start := p.opts.Clock.Now()
	p.opts.BackOff.Reset()

	for attempt := 1; ; attempt++ {
		elapsed := p.opts.Clock.Since(start)
		if elapsed >= p.opts.MaxWait {
			return Result{}, fmt.Errorf("%w: job %s after %s and %d checks", ErrPollTimeout, handle, elapsed, attempt-1)
		}

		status, err := p.check(ctx, handle)
		switch {
		case err == nil && status.State == JobCompleted:
			return status.Result, nil
		case err == nil && status.State == JobFailed:
			return Result{}, &ToolError{Message: status.Message}
		case err == nil:
		case ctx.Err() != nil:
			return Result{}, ctx.Err()
		case IsTransientError(err):
			p.logger.WarnWithContext(ctx, "job status check failed, retrying", err, map[string]interface{}{
				"job":     string(handle),
				"attempt": attempt,
			})
		default:
			return Result{}, err
		}

		wait := p.opts.BackOff.NextBackOff()
		if wait == backoff.Stop {
			return Result{}, fmt.Errorf("%w: job %s, backoff exhausted after %d checks", ErrPollTimeout, handle, attempt)
		}
		if remaining := p.opts.MaxWait - p.opts.Clock.Since(start); wait > remaining {
			wait = remaining
		}

		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-p.opts.Clock.After(wait):
		}
	}
}

// check performs one status call.
func (p *Poller) check(ctx context.Context, handle JobHandle) (status JobStatus, err error) {
	start := time.Now()
	defer func() {
		p.observe(handle, status, time.Since(start), err)
	}()

	req := Request{
		ID:        p.nextID(),
		Tool:      p.opts.StatusTool,
		Arguments: map[string]any{p.opts.StatusArgument: string(handle)},
	}
	out, err := p.transport.Call(ctx, req)
	if err != nil {
		return JobStatus{}, err
	}
	if out.Kind == OutcomeUnsupported {
		return JobStatus{}, fmt.Errorf("%w: %s transport rejected the status call", ErrProtocolViolation, p.transport.Name())
	}
	if out.Result.Failure != nil {
		return JobStatus{}, out.Result.Failure
	}
	return p.decodeStatus(ctx, handle, out.Result.Value)
}

type statusPayload struct {
	Status  string         `mapstructure:"status"`
	Result  map[string]any `mapstructure:"result"`
	Error   any            `mapstructure:"error"`
	Message string         `mapstructure:"message"`
}

func (p *Poller) decodeStatus(ctx context.Context, handle JobHandle, value map[string]any) (JobStatus, error) {
	var payload statusPayload
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &payload,
	})
	if err != nil {
		return JobStatus{}, err
	}
	if err := decoder.Decode(value); err != nil {
		return JobStatus{}, fmt.Errorf("%w: status payload: %w", ErrProtocolViolation, err)
	}
	if payload.Status == "" {
		return JobStatus{}, fmt.Errorf("%w: status payload has no status field", ErrProtocolViolation)
	}

	switch strings.ToLower(payload.Status) {
	case "queued", "pending", "submitted":
		return JobStatus{State: JobQueued}, nil
	case "processing", "running", "in_progress", "started":
		return JobStatus{State: JobProcessing}, nil
	case "completed", "succeeded", "success", "done":
		result := payload.Result
		if result == nil {
			result = value
		}
		return JobStatus{State: JobCompleted, Result: Result{Value: result}}, nil
	case "failed", "error", "cancelled", "canceled":
		return JobStatus{State: JobFailed, Message: failureMessage(payload)}, nil
	default:
		p.logger.WarnWithContext(ctx, "unknown job status, treating as processing", nil, map[string]interface{}{
			"job":    string(handle),
			"status": payload.Status,
		})
		return JobStatus{State: JobProcessing}, nil
	}
}

func failureMessage(payload statusPayload) string {
	switch e := payload.Error.(type) {
	case string:
		if e != "" {
			return e
		}
	case map[string]any:
		if msg, ok := e["message"].(string); ok && msg != "" {
			return msg
		}
	}
	if payload.Message != "" {
		return payload.Message
	}
	return "job " + payload.Status
}

func (p *Poller) observe(handle JobHandle, status JobStatus, duration time.Duration, err error) {
	if p.opts.Observer == nil {
		return
	}
	state := ""
	if err == nil {
		state = status.State.String()
	}
	p.opts.Observer.ObserveOperation(observability.OperationContext{
		Component:   component,
		Operation:   "poll",
		Resource:    p.opts.StatusTool,
		SubResource: state,
		Duration:    duration,
		Error:       err,
		Metadata:    map[string]interface{}{"job": string(handle)},
	})
}
