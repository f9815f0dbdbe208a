package toolcall

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/embedtools/v1/logger"
	"github.com/Aleph-Alpha/embedtools/v1/observability"
	"github.com/Aleph-Alpha/embedtools/v1/tracer"
)

// FXModule is an fx.Module that provides the tool-call Client and closes it
// on shutdown.
//
// A toolcall.Config must be available in the container, e.g. from NewConfig
// or LoadConfig:
//
//	app := fx.New(
//	    logger.FXModule,
//	    toolcall.FXModule,
//	    fx.Provide(toolcall.NewConfig),
//	)
var FXModule = fx.Module("toolcall",
	fx.Provide(
		NewClientWithDI,
	),
	fx.Invoke(RegisterToolcallLifecycle),
)

// ClientParams groups the dependencies needed to create a Client.
type ClientParams struct {
	fx.In

	Config   Config
	Logger   logger.Logger          `optional:"true"`
	Observer observability.Observer `optional:"true"`
	Tracer   *tracer.Tracer         `optional:"true"`
}

// NewClientWithDI creates a Client from injected dependencies. The logger,
// observer and tracer are optional.
func NewClientWithDI(params ClientParams) (*Client, error) {
	client, err := NewClient(params.Config, params.Logger)
	if err != nil {
		return nil, err
	}
	if params.Observer != nil {
		client.WithObserver(params.Observer)
	}
	if params.Tracer != nil {
		client.WithTracer(params.Tracer)
	}
	return client, nil
}

// RegisterToolcallLifecycle closes the Client when the application stops.
func RegisterToolcallLifecycle(lc fx.Lifecycle, client *Client) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
}
