package notify

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/flowstate/adapter/cli"
	notifications "github.com/felixgeelhaar/flowstate/internal/notifications/domain"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate every trigger once",
	Long: `Evaluate each enabled trigger once against your current activity and
print the notifications that would be shown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Detector == nil || app.Notifications == nil {
			return fmt.Errorf("notifications require the trigger detector")
		}

		out := cmd.OutOrStdout()
		outcomes := app.Detector.RunAll(cmd.Context())
		for _, kind := range notifications.Kinds() {
			outcome, ok := outcomes[kind]
			if !ok {
				fmt.Fprintf(out, "  %-13s disabled\n", kind)
				continue
			}
			fmt.Fprintf(out, "  %-13s %s\n", kind, outcome)
		}

		active := app.Notifications.Notifications()
		if len(active) == 0 {
			fmt.Fprintln(out, "No notifications right now.")
			return nil
		}
		fmt.Fprintln(out)
		for _, n := range active {
			fmt.Fprintf(out, "[%s] %s\n", n.Kind, n.Title)
			fmt.Fprintf(out, "    %s\n", n.Message)
			for _, a := range n.Actions {
				fmt.Fprintf(out, "    - %s (%s)\n", a.Label, a.ID)
			}
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show each trigger's policy and cooldown",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Detector == nil {
			return fmt.Errorf("notifications require the trigger detector")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-13s %-8s %-12s %-10s %-10s %s\n", "TRIGGER", "ENABLED", "STATE", "INTERVAL", "COOLDOWN", "REMAINING")
		for _, s := range app.Detector.States(app.Clock.Now()) {
			remaining := "-"
			if s.Remaining > 0 {
				remaining = s.Remaining.Round(time.Second).String()
			}
			fmt.Fprintf(out, "%-13s %-8t %-12s %-10s %-10s %s\n",
				s.Kind, s.Enabled, s.State, s.Interval, s.Cooldown, remaining)
		}
		return nil
	},
}
