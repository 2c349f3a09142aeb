package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/flowstate/adapter/cli"
	"github.com/felixgeelhaar/flowstate/pkg/observability"
	"github.com/felixgeelhaar/mcp-go"
)

// ToolDependencies provides the services MCP tools call into.
type ToolDependencies struct {
	App *cli.App
}

// RegisterCLITools registers MCP tools that mirror CLI functionality.
func RegisterCLITools(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if deps.App == nil {
		return errors.New("app is required")
	}

	t := &toolset{app: deps.App}
	if err := registerCoreTools(srv, t); err != nil {
		return err
	}
	if err := registerInsightsTools(srv, t); err != nil {
		return err
	}
	if err := registerNotificationTools(srv, t); err != nil {
		return err
	}
	if err := registerActivityTools(srv, t); err != nil {
		return err
	}

	return nil
}

// toolset holds the handlers so they can be exercised without a transport.
type toolset struct {
	app *cli.App
}

// traced runs each tool call as its own MCP request, so the events it
// publishes share one correlation id.
func traced[In, Out any](fn func(context.Context, In) (Out, error)) func(context.Context, In) (Out, error) {
	return func(ctx context.Context, in In) (Out, error) {
		return fn(observability.NewRequestContext(ctx, observability.SurfaceMCP, ""), in)
	}
}
