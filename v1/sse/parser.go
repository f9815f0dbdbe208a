package sse

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"
)

const defaultReadSize = 4096

// Parser reads frames from an event stream. It is not safe for concurrent
// use and cannot be restarted once the stream is consumed.
type Parser struct {
	r     io.Reader
	chunk []byte
	buf   []byte
	err   error

	rec record
}

// record accumulates the fields of the frame being read.
type record struct {
	seen    bool
	event   string
	data    []string
	hasData bool
	id      string
	retry   *int
}

// NewParser creates a Parser reading from r.
func NewParser(r io.Reader) *Parser {
	return &Parser{
		r:     r,
		chunk: make([]byte, defaultReadSize),
	}
}

// Next returns the next frame. It returns io.EOF once the stream ended and
// every frame was returned, or an error wrapping ErrStreamRead when the
// reader failed. Empty reads are skipped however many arrive; a stream that
// stops making progress is ended by cancelling the request behind r.
func (p *Parser) Next() (Frame, error) {
	for {
		if f, ok := p.drain(); ok {
			return f, nil
		}
		if p.err != nil {
			return Frame{}, p.err
		}

		n, err := p.r.Read(p.chunk)
		if n > 0 {
			p.buf = append(p.buf, p.chunk[:n]...)
		}
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			// Terminate a trailing partial line and flush the open record.
			p.buf = append(p.buf, '\n', '\n')
			p.err = io.EOF
		default:
			p.err = fmt.Errorf("%w: %w", ErrStreamRead, err)
		}
	}
}

// Frames returns an iterator over the remaining frames. A read failure is
// yielded once as a non-nil error, after which iteration stops; end of
// stream stops iteration without an error.
func (p *Parser) Frames() iter.Seq2[Frame, error] {
	return func(yield func(Frame, error) bool) {
		for {
			f, err := p.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(Frame{}, err)
				return
			}
			if !yield(f, nil) {
				return
			}
		}
	}
}

// drain consumes complete lines from the buffer until a record is finished.
func (p *Parser) drain() (Frame, bool) {
	for {
		i := bytes.IndexByte(p.buf, '\n')
		if i < 0 {
			return Frame{}, false
		}
		line := bytes.TrimSuffix(p.buf[:i], []byte{'\r'})
		p.buf = p.buf[i+1:]

		if len(line) == 0 {
			if !p.rec.seen {
				continue
			}
			f := p.rec.frame()
			p.rec = record{}
			return f, true
		}
		p.field(line)
	}
}

func (p *Parser) field(line []byte) {
	if line[0] == ':' {
		return
	}

	name, value, _ := bytes.Cut(line, []byte{':'})
	value = bytes.TrimPrefix(value, []byte{' '})

	switch string(name) {
	case "event":
		p.rec.event = string(value)
	case "data":
		p.rec.data = append(p.rec.data, string(value))
		p.rec.hasData = true
	case "id":
		p.rec.id = string(value)
	case "retry":
		ms, err := strconv.Atoi(string(value))
		if err != nil || ms < 0 {
			return
		}
		p.rec.retry = &ms
	default:
		return
	}
	p.rec.seen = true
}

func (r record) frame() Frame {
	f := Frame{
		Event: r.event,
		ID:    r.id,
		Retry: r.retry,
	}
	if !r.hasData {
		return f
	}

	f.RawData = strings.Join(r.data, "\n")
	f.Data = f.RawData
	if raw := []byte(f.RawData); json.Valid(raw) {
		var v any
		if err := json.Unmarshal(raw, &v); err == nil {
			f.Data = v
		}
	}
	return f
}
