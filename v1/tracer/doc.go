// Package tracer sets up OpenTelemetry tracing for embedtools.
//
// NewClient builds a TracerProvider, installs it as the global provider and
// registers a W3C trace-context plus baggage propagator. The toolcall client
// opens its spans through the global provider and injects the propagated
// headers into every outgoing HTTP request, so enabling tracing is a matter
// of constructing a Tracer (or including FXModule) before the first call.
//
// Export is opt-in. With EnableExport false spans are recorded in process
// only, which is still enough for trace ids to appear in logs.
//
//	t, err := tracer.NewClient(tracer.Config{
//		ServiceName:  "embedctl",
//		AppEnv:       "development",
//		EnableExport: true,
//		Endpoint:     "http://localhost:4318/v1/traces",
//	}, log)
//
//	ctx, span := t.StartSpan(ctx, "embed-documents")
//	defer span.End()
//	t.SetAttributes(span, map[string]interface{}{"documents": 3})
package tracer
