package todo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/flowstate/adapter/cli"
	activityApp "github.com/felixgeelhaar/flowstate/internal/activity/application"
	"github.com/spf13/cobra"
)

var showDone bool

var addCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Add a todo",
	Long: `Add an open todo.

Examples:
  flowstate todo add Call the dentist`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Recorder == nil {
			return fmt.Errorf("todos require an activity store")
		}

		todo, err := app.Recorder.AddTodo(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return fmt.Errorf("failed to add todo: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Added todo: %s\n  ID: %s\n", todo.Text, todo.ID)
		return nil
	},
}

var completeCmd = &cobra.Command{
	Use:     "complete <todo-id>",
	Short:   "Mark a todo done",
	Aliases: []string{"done"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Recorder == nil {
			return fmt.Errorf("todos require an activity store")
		}

		todo, err := app.Recorder.CompleteTodo(cmd.Context(), args[0])
		if errors.Is(err, activityApp.ErrTodoNotFound) {
			return fmt.Errorf("no todo with id %s; list todos with: flowstate todo list", args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to complete todo: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Done: %s\n", todo.Text)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List open todos",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Reader == nil {
			return fmt.Errorf("todos require an activity store")
		}

		out := cmd.OutOrStdout()
		var shown int
		for _, todo := range app.Reader.Todos(cmd.Context()) {
			if todo.Completed && !showDone {
				continue
			}
			shown++
			status := "[ ]"
			if todo.Completed {
				status = "[x]"
			}
			fmt.Fprintf(out, "%s %s (%s)\n", status, todo.Text, todo.ID)
		}
		if shown == 0 {
			fmt.Fprintln(out, "Nothing to do.")
		}
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVarP(&showDone, "all", "a", false, "include completed todos")
}
