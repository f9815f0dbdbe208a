package toolcall

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newMockTransports(t *testing.T) (*MockTransport, *MockTransport) {
	ctrl := gomock.NewController(t)
	direct := NewMockTransport(ctrl)
	stream := NewMockTransport(ctrl)
	direct.EXPECT().Name().Return("direct").AnyTimes()
	stream.EXPECT().Name().Return("stream").AnyTimes()
	return direct, stream
}

func TestNegotiatorFallsBackExactlyOnce(t *testing.T) {
	direct, stream := newMockTransports(t)
	req := Request{ID: 3, Tool: "embeddings_generate"}
	want := Outcome{Kind: OutcomeJob, Job: "t1"}

	direct.EXPECT().Call(gomock.Any(), req).Return(Outcome{Kind: OutcomeUnsupported}, nil).Times(1)
	stream.EXPECT().Call(gomock.Any(), req).Return(want, nil).Times(1)

	observer := &TestObserver{}
	out, served, err := NewNegotiator(direct, stream, nil).WithObserver(observer).Call(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, want, out)
	assert.Same(t, stream, served)

	fallbacks := observer.operations("fallback")
	require.Len(t, fallbacks, 1)
	assert.Equal(t, "embeddings_generate", fallbacks[0].Resource)
	assert.Equal(t, "stream", fallbacks[0].SubResource)
}

func TestNegotiatorNoFallbackOnFinalOutcomes(t *testing.T) {
	cases := map[string]struct {
		out Outcome
		err error
	}{
		"success": {out: statusOutcome(map[string]any{"embeddings": []any{}})},
		"failure": {out: Outcome{Result: Result{Failure: &ToolError{Message: "bad input"}}}},
		"job":     {out: Outcome{Kind: OutcomeJob, Job: "t9"}},
		"error":   {err: fmt.Errorf("%w: connection refused", ErrTransport)},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			direct, stream := newMockTransports(t)
			direct.EXPECT().Call(gomock.Any(), gomock.Any()).Return(tc.out, tc.err).Times(1)
			stream.EXPECT().Call(gomock.Any(), gomock.Any()).Times(0)

			out, served, err := NewNegotiator(direct, stream, nil).Call(context.Background(), Request{ID: 1, Tool: "x"})
			assert.Same(t, direct, served)
			if tc.err != nil {
				assert.ErrorIs(t, err, ErrTransport)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.out, out)
		})
	}
}

func TestNegotiatorStreamErrorIsFinal(t *testing.T) {
	direct, stream := newMockTransports(t)
	direct.EXPECT().Call(gomock.Any(), gomock.Any()).Return(Outcome{Kind: OutcomeUnsupported}, nil).Times(1)
	stream.EXPECT().Call(gomock.Any(), gomock.Any()).Return(Outcome{}, ErrStreamingUnsupported).Times(1)

	_, _, err := NewNegotiator(direct, stream, nil).Call(context.Background(), Request{ID: 1, Tool: "x"})
	assert.ErrorIs(t, err, ErrStreamingUnsupported)
}

func TestNegotiatorStreamUnsupportedOutcome(t *testing.T) {
	direct, stream := newMockTransports(t)
	direct.EXPECT().Call(gomock.Any(), gomock.Any()).Return(Outcome{Kind: OutcomeUnsupported}, nil)
	stream.EXPECT().Call(gomock.Any(), gomock.Any()).Return(Outcome{Kind: OutcomeUnsupported}, nil)

	_, _, err := NewNegotiator(direct, stream, nil).Call(context.Background(), Request{ID: 1, Tool: "x"})
	assert.ErrorIs(t, err, ErrStreamingUnsupported)
}

func TestNegotiatorWithoutStream(t *testing.T) {
	direct, _ := newMockTransports(t)
	direct.EXPECT().Call(gomock.Any(), gomock.Any()).Return(Outcome{Kind: OutcomeUnsupported}, nil)

	_, _, err := NewNegotiator(direct, nil, nil).Call(context.Background(), Request{ID: 1, Tool: "x"})
	assert.ErrorIs(t, err, ErrNoTransport)
}

func TestNegotiatorStreamOnly(t *testing.T) {
	_, stream := newMockTransports(t)
	want := statusOutcome(map[string]any{"ok": true})
	stream.EXPECT().Call(gomock.Any(), gomock.Any()).Return(want, nil).Times(1)

	out, served, err := NewNegotiator(nil, stream, nil).Call(context.Background(), Request{ID: 1, Tool: "x"})
	require.NoError(t, err)
	assert.Equal(t, want, out)
	assert.Same(t, stream, served)
}
