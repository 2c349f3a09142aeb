package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterResources registers MCP resources that expose FlowState data.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}
	if deps.App == nil {
		return fmt.Errorf("app is required")
	}

	t := &toolset{app: deps.App}

	if err := registerActivityResources(srv, t); err != nil {
		return err
	}
	if err := registerCoachingResources(srv, t); err != nil {
		return err
	}

	return nil
}

func registerActivityResources(srv *mcp.Server, t *toolset) error {
	srv.Resource("flowstate://habits").
		Name("Habits").
		Description("Active habits with today's completion count").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			habits, err := t.listHabits(ctx, habitListInput{})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, habits)
		})

	srv.Resource("flowstate://checkins").
		Name("Check-ins").
		Description("Check-in history, oldest first").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			if err := t.activityReady(); err != nil {
				return nil, err
			}
			return jsonResource(uri, t.app.Reader.CheckIns(ctx))
		})

	srv.Resource("flowstate://todos").
		Name("Todos").
		Description("Open todos").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			todos, err := t.listTodos(ctx, todoListInput{})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, todos)
		})

	return nil
}

func registerCoachingResources(srv *mcp.Server, t *toolset) error {
	srv.Resource("flowstate://insights/latest").
		Name("Latest Insights").
		Description("The most recent insights report with chart data").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			report, err := t.latestInsights(ctx, insightsInput{IncludeCharts: true})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, report)
		})

	srv.Resource("flowstate://notifications/active").
		Name("Active Notifications").
		Description("Notifications currently on screen").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			active, err := t.listNotifications(ctx, struct{}{})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, active)
		})

	srv.Resource("flowstate://triggers").
		Name("Triggers").
		Description("Trigger policies and cooldown state").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			states, err := t.triggerStatus(ctx, struct{}{})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, states)
		})

	return nil
}

func jsonResource(uri string, v any) (*mcp.ResourceContent, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: "application/json",
		Text:     string(data),
	}, nil
}
