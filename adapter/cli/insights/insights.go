package insights

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/felixgeelhaar/flowstate/adapter/cli"
	insightsApp "github.com/felixgeelhaar/flowstate/internal/insights/application"
	"github.com/spf13/cobra"
)

var (
	asJSON     bool
	showCharts bool
)

// Cmd analyzes the stored history and prints the top insights.
var Cmd = &cobra.Command{
	Use:   "insights",
	Short: "Show insights from your check-ins and habits",
	Long: `Analyze your check-ins and habit completions and show up to four
insights: your best day, sleep and productivity, streaks, peak time of day
and suggestions based on your recent mood.

Examples:
  flowstate insights
  flowstate insights --charts
  flowstate insights --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Insights == nil {
			return fmt.Errorf("insights service not available")
		}

		report, err := app.Insights.Refresh(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to analyze history: %w", err)
		}

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		printReport(out, report)
		if showCharts {
			printCharts(out, report)
		}
		return nil
	},
}

func init() {
	Cmd.Flags().BoolVar(&asJSON, "json", false, "print the full report, including chart data, as JSON")
	Cmd.Flags().BoolVar(&showCharts, "charts", false, "also print the last seven days")
}

func printReport(out io.Writer, report insightsApp.Report) {
	if report.Placeholder {
		fmt.Fprintln(out, report.Message)
		fmt.Fprintf(out, "  (%d check-ins, %d habits so far)\n", report.CheckIns, report.Habits)
		return
	}

	fmt.Fprintf(out, "Insights (%d):\n", len(report.Insights))
	fmt.Fprintln(out, strings.Repeat("-", 60))
	for _, insight := range report.Insights {
		fmt.Fprintf(out, "[%s] %s (%d%%)\n", insight.Kind, insight.Title, insight.Confidence)
		fmt.Fprintf(out, "    %s\n", insight.Description)
	}
}

func printCharts(out io.Writer, report insightsApp.Report) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Last 7 days:")
	fmt.Fprintf(out, "  %-4s %6s %6s %6s\n", "Day", "Habits", "Mood", "Energy")
	for _, p := range report.Charts.WeeklyPattern {
		fmt.Fprintf(out, "  %-4s %6d %6.1f %6.1f\n", p.Day, p.Habits, p.Mood, p.Energy)
	}
}
