package block

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/flowstate/adapter/cli"
	"github.com/spf13/cobra"
)

// Cmd is the time block command group
var Cmd = &cobra.Command{
	Use:   "block",
	Short: "Plan time blocks",
	Long:  `Plan blocks of time. Days with a plan stop the gentle planning nudge.`,
}

var addCmd = &cobra.Command{
	Use:   "add <description>",
	Short: "Plan a time block with natural language",
	Long: `Plan a time block using natural language.

The description may include:
- Day: today, tomorrow, monday-sunday, or YYYY-MM-DD
- Start: 14:30, at 9:00, 2pm
- Length: 30min, 1h, 1.5 hours, for 90 minutes (default 1h)

Examples:
  flowstate block add "Deep work tomorrow at 9:30 for 90min"
  flowstate block add "Gym friday 6pm 1h"
  flowstate block add Inbox zero 30min`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Recorder == nil {
			return fmt.Errorf("time blocks require an activity store")
		}

		parsed := cli.ParseTimeBlock(strings.Join(args, " "), app.Clock.Now())
		block, err := app.Recorder.AddTimeBlock(cmd.Context(), parsed.Title, parsed.Start, parsed.Duration)
		if err != nil {
			return fmt.Errorf("failed to add time block: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Planned: %s\n", block.Title)
		fmt.Fprintf(out, "  When: %s - %s\n", block.Start.Format("Mon, Jan 2 15:04"), block.End.Format("15:04"))
		fmt.Fprintf(out, "  ID: %s\n", block.ID)
		return nil
	},
}

func init() {
	Cmd.AddCommand(addCmd)
}
