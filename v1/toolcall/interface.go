package toolcall

import (
	"context"
	"net/http"

	"github.com/Aleph-Alpha/embedtools/v1/logger"
)

// HTTPDoer sends HTTP requests. *http.Client and *Client implement it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Logger is the logging contract used by this package. It is satisfied by
// *logger.LoggerClient, which adds the trace and span id of ctx to every
// entry when tracing is enabled.
type Logger interface {
	DebugWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

func orNop(l Logger) Logger {
	if l == nil {
		return logger.NewNop()
	}
	return l
}
