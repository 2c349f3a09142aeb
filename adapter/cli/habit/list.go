package habit

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/flowstate/adapter/cli"
	"github.com/spf13/cobra"
)

var showInactive bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List habits",
	Long: `List habits with today's status and total completions.

Examples:
  flowstate habit list          # Active habits
  flowstate habit list --all    # Include paused habits`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Reader == nil {
			return fmt.Errorf("habits require an activity store")
		}

		out := cmd.OutOrStdout()
		today := app.Clock.Now()

		var shown int
		for _, h := range app.Reader.Habits(cmd.Context()) {
			if !h.IsActive && !showInactive {
				continue
			}
			if shown == 0 {
				fmt.Fprintln(out, "Habits:")
				fmt.Fprintln(out, strings.Repeat("-", 50))
			}
			shown++

			status := "[ ]"
			if h.CompletedOn(today) {
				status = "[x]"
			}
			inactive := ""
			if !h.IsActive {
				inactive = " [inactive]"
			}
			fmt.Fprintf(out, "%s %s%s\n", status, h.Name, inactive)
			fmt.Fprintf(out, "    ID: %s | Today: %d | Total: %d\n", h.ID, h.CompletionsOn(today), len(h.CompletedSlots))
		}

		if shown == 0 {
			fmt.Fprintln(out, "No habits yet. Add one with: flowstate habit add \"Habit name\"")
		}
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVarP(&showInactive, "all", "a", false, "include inactive habits")
}
