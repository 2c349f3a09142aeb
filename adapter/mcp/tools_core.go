package mcp

import (
	"context"

	"github.com/felixgeelhaar/flowstate/pkg/observability"
	"github.com/felixgeelhaar/mcp-go"
)

func registerCoreTools(srv *mcp.Server, t *toolset) error {
	srv.Tool("cli.health").
		Description("Check store and broker health").
		Handler(traced(t.health))

	return nil
}

func (t *toolset) health(ctx context.Context, _ struct{}) (observability.OverallHealth, error) {
	if t.app.Health == nil {
		return observability.OverallHealth{
			Status: observability.HealthStatusHealthy,
			Checks: map[string]observability.HealthCheckResult{},
		}, nil
	}
	return t.app.Health.GetOverallHealth(ctx), nil
}
