package toolcall

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Aleph-Alpha/embedtools/v1/sse"
)

// endpointEvent announces the URL requests are posted to on a dedicated stream.
const endpointEvent = "endpoint"

// StreamTransport performs a tool call whose response arrives on an event
// stream. The URL convention is fixed at construction.
type StreamTransport struct {
	url     string
	token   string
	variant StreamMode
	doer    HTTPDoer
	logger  Logger
}

// NewStreamTransport creates a streaming transport. variant must be
// StreamModeCombined or StreamModeDedicated; see Config.StreamVariant.
func NewStreamTransport(url, token string, variant StreamMode, doer HTTPDoer, logger Logger) *StreamTransport {
	return &StreamTransport{url: url, token: token, variant: variant, doer: doer, logger: orNop(logger)}
}

func (t *StreamTransport) Name() string { return "stream" }

// Variant returns the URL convention in use.
func (t *StreamTransport) Variant() StreamMode { return t.variant }

// Call sends req and waits for the frame whose id matches req.ID.
func (t *StreamTransport) Call(ctx context.Context, req Request) (Outcome, error) {
	body, err := req.Encode()
	if err != nil {
		return Outcome{}, err
	}
	if t.variant == StreamModeDedicated {
		return t.callDedicated(ctx, req.ID, body)
	}
	return t.callCombined(ctx, req.ID, body)
}

// callCombined posts the request and reads the stream from the response.
// Servers may still answer with a plain JSON body.
func (t *StreamTransport) callCombined(ctx context.Context, id int64, body []byte) (Outcome, error) {
	httpReq, err := newRequest(ctx, t.url, t.token, body, contentTypeStream+", "+contentTypeJSON)
	if err != nil {
		return Outcome{}, err
	}
	resp, err := t.doer.Do(httpReq)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if err := checkStreamStatus(resp); err != nil {
		return statusFailureOr(resp, id, err)
	}
	if !isEventStream(resp) {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return Outcome{}, fmt.Errorf("%w: read response: %w", ErrTransport, err)
		}
		return decodeResponse(data, id)
	}
	return awaitResponse(ctx, sse.NewParser(resp.Body), id, t.logger)
}

// callDedicated opens the stream, waits for the endpoint event, then posts
// the request while reading the stream for the answer.
func (t *StreamTransport) callDedicated(ctx context.Context, id int64, body []byte) (Outcome, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	streamReq, err := newRequest(gctx, t.url, t.token, nil, contentTypeStream)
	if err != nil {
		return Outcome{}, err
	}
	stream, err := t.doer.Do(streamReq)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: open stream: %w", ErrTransport, err)
	}
	defer stream.Body.Close()

	if err := checkStreamStatus(stream); err != nil {
		return statusFailureOr(stream, id, err)
	}

	parser := sse.NewParser(stream.Body)
	endpoint, err := t.awaitEndpoint(parser)
	if err != nil {
		return Outcome{}, err
	}

	var out Outcome
	g.Go(func() error {
		return t.post(gctx, endpoint, body)
	})
	g.Go(func() error {
		var err error
		out, err = awaitResponse(gctx, parser, id, t.logger)
		return err
	})
	if err := g.Wait(); err != nil {
		return Outcome{}, err
	}
	return out, nil
}

func (t *StreamTransport) awaitEndpoint(parser *sse.Parser) (string, error) {
	for {
		frame, err := parser.Next()
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%w: no %q event", ErrStreamExhausted, endpointEvent)
		}
		if err != nil {
			return "", err
		}
		if frame.Event != endpointEvent {
			continue
		}
		return t.resolve(strings.TrimSpace(frame.RawData))
	}
}

// resolve turns a possibly relative endpoint into an absolute URL.
func (t *StreamTransport) resolve(endpoint string) (string, error) {
	base, err := url.Parse(t.url)
	if err != nil {
		return "", fmt.Errorf("%w: stream url: %w", ErrInvalidConfig, err)
	}
	ref, err := url.Parse(endpoint)
	if err != nil || endpoint == "" {
		return "", fmt.Errorf("%w: bad endpoint event %q", ErrProtocolViolation, endpoint)
	}
	return base.ResolveReference(ref).String(), nil
}

// post delivers the request on a dedicated stream. The response body is
// ignored; the answer arrives on the stream.
func (t *StreamTransport) post(ctx context.Context, endpoint string, body []byte) error {
	req, err := newRequest(ctx, endpoint, t.token, body, contentTypeJSON)
	if err != nil {
		return err
	}
	resp, err := t.doer.Do(req)
	if err != nil {
		return fmt.Errorf("%w: post request: %w", ErrTransport, err)
	}
	defer resp.Body.Close()
	drain(resp.Body)

	if resp.StatusCode == http.StatusMethodNotAllowed {
		return ErrStreamingUnsupported
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, URL: resp.Request.URL.Redacted()}
	}
	return nil
}

// checkStreamStatus maps a 405 to ErrStreamingUnsupported and any other
// non-2xx status to a *StatusError.
func checkStreamStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusMethodNotAllowed:
		return fmt.Errorf("%w: %s answered 405", ErrStreamingUnsupported, resp.Request.URL.Redacted())
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return &StatusError{StatusCode: resp.StatusCode, URL: resp.Request.URL.Redacted()}
	}
	return nil
}

// statusFailureOr lets a JSON-RPC error body win over the status error,
// except for 405 which is always terminal.
func statusFailureOr(resp *http.Response, id int64, err error) (Outcome, error) {
	if errors.Is(err, ErrStreamingUnsupported) {
		drain(resp.Body)
		return Outcome{}, err
	}
	return statusFailure(resp, id)
}
