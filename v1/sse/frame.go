package sse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Frame is one blank-line terminated record of an event stream.
type Frame struct {
	// Event is the event type, empty when the record had no event field.
	Event string

	// Data is the decoded JSON value of the data lines, or the joined text
	// when it is not valid JSON. Nil when the record had no data field.
	Data any

	// RawData is the data lines joined with "\n".
	RawData string

	// ID is the last event id of the record.
	ID string

	// Retry is the reconnection time in milliseconds, nil when absent.
	Retry *int
}

// HasData reports whether the record carried at least one data line.
func (f Frame) HasData() bool {
	return f.Data != nil || f.RawData != ""
}

// WriteFrame writes f in wire format, terminated by a blank line.
//
// The data written is RawData when set, otherwise Data (strings as is, any
// other value JSON encoded). Multi-line data becomes several data lines.
func WriteFrame(w io.Writer, f Frame) error {
	var b bytes.Buffer
	if f.Event != "" {
		fmt.Fprintf(&b, "event: %s\n", f.Event)
	}
	if f.ID != "" {
		fmt.Fprintf(&b, "id: %s\n", f.ID)
	}
	if f.Retry != nil {
		fmt.Fprintf(&b, "retry: %d\n", *f.Retry)
	}

	data := f.RawData
	if data == "" && f.Data != nil {
		switch v := f.Data.(type) {
		case string:
			data = v
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("sse: encode data: %w", err)
			}
			data = string(encoded)
		}
	}
	if data != "" || f.Data != nil {
		for _, line := range strings.Split(data, "\n") {
			fmt.Fprintf(&b, "data: %s\n", line)
		}
	}
	b.WriteByte('\n')

	_, err := w.Write(b.Bytes())
	return err
}
