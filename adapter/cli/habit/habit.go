package habit

import (
	"github.com/spf13/cobra"
)

// Cmd is the habit command group
var Cmd = &cobra.Command{
	Use:   "habit",
	Short: "Manage habits",
	Long:  `Add habits, log completions and see what you have done today.`,
}

func init() {
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(completeCmd)
	Cmd.AddCommand(listCmd)
}
