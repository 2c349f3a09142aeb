package notify

import (
	"github.com/spf13/cobra"
)

// Cmd is the notification command group
var Cmd = &cobra.Command{
	Use:   "notify",
	Short: "Run the smart triggers and watch their notifications",
}

func init() {
	Cmd.AddCommand(watchCmd)
	Cmd.AddCommand(checkCmd)
	Cmd.AddCommand(statusCmd)
}
