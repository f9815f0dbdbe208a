package embedding

import (
	"time"

	"github.com/Aleph-Alpha/embedtools/v1/observability"
)

const component = "embedding"

// observeOperation notifies the observer about an operation if one is configured.
//
// Notes:
//   - resource: the embedding tool
//   - size: the number of vectors returned, 0 on failure
func (c *Client) observeOperation(operation, resource string, size int, duration time.Duration, err error) {
	if c == nil || c.observer == nil {
		return
	}

	c.observer.ObserveOperation(observability.OperationContext{
		Component: component,
		Operation: operation,
		Resource:  resource,
		Duration:  duration,
		Error:     err,
		Size:      int64(size),
	})
}
