package embedding

import (
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/embedtools/v1/logger"
	"github.com/Aleph-Alpha/embedtools/v1/observability"
	"github.com/Aleph-Alpha/embedtools/v1/toolcall"
)

// FXModule wires the embedding client into Fx.
//
// It provides:
//   - Config                 (NewConfig)
//   - *Client                (NewClientWithDI)
//
// It expects a *toolcall.Client in the container (toolcall.FXModule), which
// also owns the connection pool and closes it on shutdown.
var FXModule = fx.Module(
	"embedding",

	fx.Provide(
		NewConfig,       // -> Config
		NewClientWithDI, // -> *Client
	),
)

// ClientParams groups the dependencies of NewClientWithDI.
type ClientParams struct {
	fx.In

	Config   Config
	Tools    *toolcall.Client
	Logger   logger.Logger          `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewClientWithDI creates a Client from injected dependencies.
func NewClientWithDI(params ClientParams) (*Client, error) {
	var log Logger
	if params.Logger != nil {
		log = params.Logger
	}
	client, err := NewClient(params.Config, params.Tools, log)
	if err != nil {
		return nil, err
	}
	if params.Observer != nil {
		client.WithObserver(params.Observer)
	}
	return client, nil
}
