package toolcall

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Aleph-Alpha/embedtools/v1/sse"
)

var (
	// ErrToolError is matched by every *ToolError: the remote reported a
	// JSON-RPC error or a failed job.
	ErrToolError = errors.New("toolcall: tool error")

	// ErrProtocolViolation is returned for well-formed responses that are
	// semantically inconsistent, such as a mismatched id or a missing field.
	ErrProtocolViolation = errors.New("toolcall: protocol violation")

	// ErrMalformedResponse is returned when a response body, or the data of
	// the matched stream frame, is not a JSON object at all.
	ErrMalformedResponse = errors.New("toolcall: malformed response")

	// ErrStreamExhausted is returned when an event stream ends before the
	// response for the outstanding request arrived.
	ErrStreamExhausted = errors.New("toolcall: stream ended without a response")

	// ErrStreamingUnsupported is returned when the streaming endpoint itself
	// answers 405. There is no further fallback.
	ErrStreamingUnsupported = errors.New("toolcall: streaming transport unsupported")

	// ErrPollTimeout is returned when a job did not finish within MaxWait.
	ErrPollTimeout = errors.New("toolcall: job poll timed out")

	// ErrTransport wraps network failures and unexpected HTTP statuses.
	ErrTransport = errors.New("toolcall: transport failure")

	// ErrNoTransport is returned when the direct endpoint is unsupported and
	// no streaming endpoint is configured.
	ErrNoTransport = errors.New("toolcall: no usable transport")

	// ErrClientClosed is returned for calls made after Close.
	ErrClientClosed = errors.New("toolcall: client is closed")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("toolcall: invalid config")
)

// ToolError is a failure reported by the remote tool, either as a JSON-RPC
// error object or as a failed job.
type ToolError struct {
	// Code is the JSON-RPC error code, nil for job failures.
	Code    *int64
	Message string
}

func (e *ToolError) Error() string {
	if e.Code != nil {
		return fmt.Sprintf("toolcall: tool error %d: %s", *e.Code, e.Message)
	}
	return "toolcall: tool error: " + e.Message
}

// Is makes errors.Is(err, ErrToolError) hold for every *ToolError.
func (e *ToolError) Is(target error) bool {
	return target == ErrToolError
}

// StatusError is an HTTP response status the transports could not turn into
// a result. It matches ErrTransport.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("toolcall: http %d for %s", e.StatusCode, e.URL)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrTransport
}

// IsToolError checks if the error was reported by the remote tool.
func IsToolError(err error) bool {
	return errors.Is(err, ErrToolError)
}

// IsProtocolViolationError checks if the error is a protocol violation.
func IsProtocolViolationError(err error) bool {
	return errors.Is(err, ErrProtocolViolation)
}

// IsMalformedResponseError checks if the error is an undecodable response.
func IsMalformedResponseError(err error) bool {
	return errors.Is(err, ErrMalformedResponse)
}

// IsPollTimeoutError checks if the error is a job poll timeout.
func IsPollTimeoutError(err error) bool {
	return errors.Is(err, ErrPollTimeout)
}

// IsClosedError checks if the error is a "client is closed" error.
func IsClosedError(err error) bool {
	return errors.Is(err, ErrClientClosed)
}

// IsTransientError reports whether a failed call may succeed when repeated:
// network failures, 5xx and 429 statuses, broken or truncated streams and
// garbled bodies, which usually come from a proxy in front of the server.
func IsTransientError(err error) bool {
	if err == nil || errors.Is(err, ErrClientClosed) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= http.StatusInternalServerError || se.StatusCode == http.StatusTooManyRequests
	}
	return errors.Is(err, ErrTransport) ||
		errors.Is(err, ErrStreamExhausted) ||
		errors.Is(err, ErrMalformedResponse) ||
		sse.IsStreamReadError(err)
}
