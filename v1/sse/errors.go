package sse

import "errors"

var (
	// ErrStreamRead is returned when the underlying reader fails with
	// anything other than io.EOF.
	ErrStreamRead = errors.New("sse: stream read failed")
)

// IsStreamReadError checks if the error came from the underlying reader.
func IsStreamReadError(err error) bool {
	return errors.Is(err, ErrStreamRead)
}
