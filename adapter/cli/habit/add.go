package habit

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/flowstate/adapter/cli"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a habit",
	Long: `Add a new active habit to track.

Examples:
  flowstate habit add "Morning stretch"
  flowstate habit add Read 20 pages`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Recorder == nil {
			return fmt.Errorf("habits require an activity store")
		}

		habit, err := app.Recorder.AddHabit(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return fmt.Errorf("failed to add habit: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Added habit: %s\n", habit.Name)
		fmt.Fprintf(out, "  ID: %s\n", habit.ID)
		return nil
	},
}
