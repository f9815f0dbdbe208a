/*
Package sse decodes and encodes server-sent event streams.

A Parser turns a byte stream into Frame values. The stream may arrive in
chunks of any size and boundary; the frames produced only depend on the
total byte content, not on how it was split.

Basic usage:

	p := sse.NewParser(resp.Body)
	for frame, err := range p.Frames() {
		if err != nil {
			return err // wraps sse.ErrStreamRead
		}
		fmt.Println(frame.Event, frame.Data)
	}

Wire rules:

  - Lines are split on "\n"; a trailing "\r" is dropped.
  - A blank line ends the current record. Records without any field are skipped.
  - "event", "data", "id" and "retry" fields fill the frame. Several data lines
    are joined with "\n".
  - Data that is valid JSON is decoded into Frame.Data; anything else is kept
    as a string. Frame.RawData always holds the joined text.
  - Lines starting with ":" are comments. Unknown fields and retry values that
    are not non-negative integers are ignored.
  - An unterminated record left at end of stream is returned as a last frame.

Only a failing read of the underlying reader is fatal; it is returned wrapped
in ErrStreamRead and nothing after it is produced.
*/
package sse
