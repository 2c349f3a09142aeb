package todo

import (
	"github.com/spf13/cobra"
)

// Cmd is the todo command group
var Cmd = &cobra.Command{
	Use:   "todo",
	Short: "Manage todos",
}

func init() {
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(completeCmd)
	Cmd.AddCommand(listCmd)
}
