package checkin

import (
	"fmt"

	"github.com/felixgeelhaar/flowstate/adapter/cli"
	activityApp "github.com/felixgeelhaar/flowstate/internal/activity/application"
	"github.com/spf13/cobra"
)

var (
	energy float64
	focus  float64
	sleep  float64
)

// Cmd logs a check-in.
var Cmd = &cobra.Command{
	Use:   "checkin <mood>",
	Short: "Log how you feel right now",
	Long: `Log a check-in with your mood, energy and focus. Energy and focus use a
1 to 5 scale; sleep is the number of hours slept last night.

Moods like tired, stressed, overwhelmed or anxious may prompt a gentle
breathing nudge; focused or energized may open a focus window.

Examples:
  flowstate checkin happy -e 4 -f 4
  flowstate checkin tired --energy 2 --focus 2 --sleep 5.5`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Recorder == nil {
			return fmt.Errorf("check-ins require an activity store")
		}

		input := activityApp.CheckInInput{
			Mood:   args[0],
			Energy: energy,
			Focus:  focus,
		}
		if cmd.Flags().Changed("sleep") {
			hours := sleep
			input.Sleep = &hours
		}

		checkIn, err := app.Recorder.LogCheckIn(cmd.Context(), input)
		if err != nil {
			return fmt.Errorf("failed to log check-in: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Checked in feeling %s.\n", checkIn.Mood)
		fmt.Fprintf(out, "  Energy: %.0f/5  Focus: %.0f/5\n", checkIn.Energy, checkIn.Focus)
		if checkIn.HasSleep() {
			fmt.Fprintf(out, "  Sleep: %.1fh\n", *checkIn.Sleep)
		}
		return nil
	},
}

func init() {
	Cmd.Flags().Float64VarP(&energy, "energy", "e", 3, "energy level (1-5)")
	Cmd.Flags().Float64VarP(&focus, "focus", "f", 3, "focus level (1-5)")
	Cmd.Flags().Float64VarP(&sleep, "sleep", "s", 0, "hours slept last night")
}
