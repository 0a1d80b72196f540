package arcadedb

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/arcadedb/v1/observability"
)

// FXModule is an fx.Module that provides and configures the ArcadeDB client.
// This module registers the client with the Fx dependency injection framework,
// making it available to other components in the application.
//
// The module:
// 1. Provides the client factory function
// 2. Invokes the lifecycle registration to manage the client's lifecycle
//
// Usage:
//
//	app := fx.New(
//	    arcadedb.FXModule,
//	    // other modules...
//	)
var FXModule = fx.Module("arcadedb",
	fx.Provide(
		NewClientWithDI,
	),
	fx.Invoke(RegisterClientLifecycle),
)

// Params groups the dependencies needed to create an ArcadeDB client
type Params struct {
	fx.In

	Config   Config
	Logger   Logger                 `optional:"true"` // Optional logger from v1/logger
	Observer observability.Observer `optional:"true"` // Optional metrics/tracing observer
}

// NewClientWithDI creates a new ArcadeDB client using dependency injection.
// This function is designed to be used with Uber's fx dependency injection
// framework where dependencies are automatically provided via the Params
// struct. An omitted logger falls back to a no-op implementation; an omitted
// observer leaves observation disabled.
func NewClientWithDI(params Params) (*Client, error) {
	log := params.Logger
	if log == nil {
		log = nopLogger{}
	}

	client, err := NewClient(params.Config, log)
	if err != nil {
		return nil, err
	}
	if params.Observer != nil {
		client = client.WithObserver(params.Observer)
	}
	return client, nil
}

// LifecycleParams groups the dependencies needed for client lifecycle management
type LifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Client    *Client
}

// RegisterClientLifecycle registers the ArcadeDB client with the fx lifecycle
// system. On application start the server is pinged to ensure the connection
// is healthy; on application stop the client is closed.
func RegisterClientLifecycle(params LifecycleParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return params.Client.Ping(ctx)
		},
		OnStop: func(ctx context.Context) error {
			params.Client.Close()
			return nil
		},
	})
}

// nopLogger discards everything. Used when no Logger is provided via DI.
type nopLogger struct{}

func (nopLogger) Info(string, error, ...map[string]interface{})  {}
func (nopLogger) Debug(string, error, ...map[string]interface{}) {}
func (nopLogger) Warn(string, error, ...map[string]interface{})  {}
func (nopLogger) Error(string, error, ...map[string]interface{}) {}
func (nopLogger) Fatal(string, error, ...map[string]interface{}) {}
