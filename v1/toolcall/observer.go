package toolcall

import (
	"time"

	"github.com/Aleph-Alpha/embedtools/v1/observability"
)

const component = "toolcall"

// observeOperation notifies the observer about an operation if one is configured.
//
// Notes:
//   - resource: the tool name
//   - subResource: the transport that served the call
func (c *Client) observeOperation(operation, resource, subResource string, duration time.Duration, err error, metadata map[string]interface{}) {
	if c == nil || c.observer == nil {
		return
	}

	c.observer.ObserveOperation(observability.OperationContext{
		Component:   component,
		Operation:   operation,
		Resource:    resource,
		SubResource: subResource,
		Duration:    duration,
		Error:       err,
		Metadata:    metadata,
	})
}
