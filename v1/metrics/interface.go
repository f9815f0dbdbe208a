package metrics

import (
	"net/http"

	"github.com/Aleph-Alpha/embedtools/v1/observability"
)

// MetricsCollector records tool-call operations and exposes them for scraping.
//
// This interface is implemented by the concrete *Metrics type.
type MetricsCollector interface {
	observability.Observer

	// Handler serves the registry in the Prometheus text format.
	Handler() http.Handler
}
