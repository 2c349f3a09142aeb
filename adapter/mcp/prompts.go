package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterPrompts registers MCP prompts for common FlowState workflows.
func RegisterPrompts(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	// Daily check-in prompt
	srv.Prompt("daily_checkin").
		Description("Walk through a short check-in: mood, energy, focus and last night's sleep.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return &mcp.PromptResult{
				Description: "Daily Check-in",
				Messages: []mcp.PromptMessage{
					{
						Role: string(mcp.RoleUser),
						Content: mcp.TextContent{
							Type: "text",
							Text: `Help me check in for today. Ask me, one at a time:

1. One word for my mood right now
2. My energy on a 1-5 scale
3. My focus on a 1-5 scale
4. How many hours I slept last night (optional)

Then log it with the checkin.log tool and tell me, in one or two sentences, what
the flowstate://insights/latest resource suggests for the rest of my day.`,
						},
					},
				},
			}, nil
		})

	// Weekly reflection prompt
	srv.Prompt("weekly_reflection").
		Description("Reflect on the past week using insights, charts and habit history.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return &mcp.PromptResult{
				Description: "Weekly Reflection",
				Messages: []mcp.PromptMessage{
					{
						Role: string(mcp.RoleUser),
						Content: mcp.TextContent{
							Type: "text",
							Text: `Let's reflect on my week. Please:

1. Run insights.analyze with include_charts set to true
2. Review my habits using the flowstate://habits resource
3. Review my check-in history using the flowstate://checkins resource

Help me see:

**Patterns:**
- Which time of day do I feel best?
- Which weekdays were strongest for habits?

**Sleep and energy:**
- Does the sleep correlation hold in the raw data?

**Next week:**
- One habit to protect
- One small change to try

Keep it warm and brief. No more than ten bullet points.`,
						},
					},
				},
			}, nil
		})

	// Notification triage prompt
	srv.Prompt("notification_triage").
		Description("Decide what to do with the notifications on screen.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return &mcp.PromptResult{
				Description: "Notification Triage",
				Messages: []mcp.PromptMessage{
					{
						Role: string(mcp.RoleUser),
						Content: mcp.TextContent{
							Type: "text",
							Text: `Look at my active notifications using the flowstate://notifications/active resource.

For each one, suggest whether I should act on it now, snooze it, or dismiss it.
When I agree, use notifications.invoke, notifications.snooze or notifications.dismiss.`,
						},
					},
				},
			}, nil
		})

	// Plan a block prompt
	srv.Prompt("plan_block").
		Description("Turn an intention into a planned time block.").
		Argument("intention", "What you want to make time for", true).
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			intention := args["intention"]
			if intention == "" {
				intention = "[Please describe what you want to make time for]"
			}

			return &mcp.PromptResult{
				Description: "Plan a Time Block",
				Messages: []mcp.PromptMessage{
					{
						Role: string(mcp.RoleUser),
						Content: mcp.TextContent{
							Type: "text",
							Text: fmt.Sprintf(`I want to make time for this:

**Intention:** %s

Check the flowstate://triggers resource to see whether a focus window is open.
Suggest one realistic block: a title, a day, a start time and a length.
Mornings are usually my peak. Once I confirm, create it with the block.add tool.`, intention),
						},
					},
				},
			}, nil
		})

	return nil
}
