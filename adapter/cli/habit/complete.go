package habit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/flowstate/adapter/cli"
	activityApp "github.com/felixgeelhaar/flowstate/internal/activity/application"
	"github.com/spf13/cobra"
)

var slotID string

var completeCmd = &cobra.Command{
	Use:   "complete <habit-id|name>",
	Short: "Log a habit completion for today",
	Long: `Log that you completed a habit today. The habit can be named by its id
or, case-insensitively, by its name.

Examples:
  flowstate habit complete "Morning stretch"
  flowstate habit complete 4f1c2d9e-0b7a-4d52-9a43-3c1e8f6b2a10 --slot morning`,
	Aliases: []string{"done", "log"},
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Recorder == nil {
			return fmt.Errorf("habits require an activity store")
		}

		ref := strings.Join(args, " ")
		habit, err := app.Recorder.CompleteHabit(cmd.Context(), ref, slotID)
		if errors.Is(err, activityApp.ErrHabitNotFound) {
			return fmt.Errorf("no habit matches %q; list habits with: flowstate habit list", ref)
		}
		if err != nil {
			return fmt.Errorf("failed to complete habit: %w", err)
		}

		today := app.Clock.Now()
		fmt.Fprintf(cmd.OutOrStdout(), "Nice! %s done (%d today).\n", habit.Name, habit.CompletionsOn(today))
		return nil
	},
}

func init() {
	completeCmd.Flags().StringVar(&slotID, "slot", "", "optional slot id for habits done several times a day")
}
