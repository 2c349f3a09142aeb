package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/felixgeelhaar/flowstate/pkg/observability"
	"github.com/spf13/cobra"
)

var errAppNotInitialized = errors.New("app not initialized")

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check store and broker health",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return errAppNotInitialized
		}
		out := cmd.OutOrStdout()
		if app.Health == nil {
			fmt.Fprintln(out, "ok")
			return nil
		}

		overall := app.Health.GetOverallHealth(cmd.Context())
		names := make([]string, 0, len(overall.Checks))
		for name := range overall.Checks {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Fprintf(out, "status: %s\n", overall.Status)
		for _, name := range names {
			result := overall.Checks[name]
			fmt.Fprintf(out, "  %-10s %-9s %s\n", name, result.Status, result.Message)
		}
		if overall.Status == observability.HealthStatusUnhealthy {
			return fmt.Errorf("flowstate is unhealthy")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
