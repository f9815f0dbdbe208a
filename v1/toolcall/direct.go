package toolcall

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/Aleph-Alpha/embedtools/v1/sse"
)

// DirectTransport performs a tool call as one HTTP request/response round trip.
type DirectTransport struct {
	url    string
	token  string
	doer   HTTPDoer
	logger Logger
}

// NewDirectTransport creates a transport posting to url.
func NewDirectTransport(url, token string, doer HTTPDoer, logger Logger) *DirectTransport {
	return &DirectTransport{url: url, token: token, doer: doer, logger: orNop(logger)}
}

func (t *DirectTransport) Name() string { return "direct" }

// Call posts req. A 404 or 405 answer yields OutcomeUnsupported. A response
// served as an event stream is searched for the frame answering req.
func (t *DirectTransport) Call(ctx context.Context, req Request) (Outcome, error) {
	body, err := req.Encode()
	if err != nil {
		return Outcome{}, err
	}
	httpReq, err := newRequest(ctx, t.url, t.token, body, contentTypeJSON+", "+contentTypeStream)
	if err != nil {
		return Outcome{}, err
	}

	resp, err := t.doer.Do(httpReq)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusMethodNotAllowed:
		drain(resp.Body)
		return Outcome{Kind: OutcomeUnsupported}, nil
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return statusFailure(resp, req.ID)
	case isEventStream(resp):
		return awaitResponse(ctx, sse.NewParser(resp.Body), req.ID, t.logger)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: read response: %w", ErrTransport, err)
	}
	return decodeResponse(data, req.ID)
}
