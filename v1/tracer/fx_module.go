package tracer

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/embedtools/v1/logger"
)

// FXModule provides *Tracer and flushes it on application stop.
//
//	app := fx.New(
//	    tracer.FXModule,
//	    fx.Supply(tracer.Config{ServiceName: "embedctl"}),
//	)
var FXModule = fx.Module("tracer",
	fx.Provide(
		NewClientWithDI,
	),
	fx.Invoke(RegisterTracerLifecycle),
)

// TracerParams groups the dependencies of NewClientWithDI.
type TracerParams struct {
	fx.In

	Config Config
	Logger logger.Logger `optional:"true"`
}

// NewClientWithDI is the fx constructor for NewClient.
func NewClientWithDI(params TracerParams) (*Tracer, error) {
	return NewClient(params.Config, params.Logger)
}

// RegisterTracerLifecycle shuts the provider down when the application stops.
func RegisterTracerLifecycle(lc fx.Lifecycle, tracer *Tracer) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			tracer.logger.Info("shutting down tracer...", nil, nil)
			if tracer.tracer == nil {
				tracer.logger.Warn("tracer was nil during shutdown", nil, nil)
				return nil
			}
			return tracer.Shutdown(ctx)
		},
	})
}
