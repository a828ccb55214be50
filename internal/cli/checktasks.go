package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckTasksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-tasks",
		Short: "Run one scheduler pass and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			n := a.runner.CheckScheduledTasks(cmd.Context())
			status := a.runner.Status()
			fmt.Fprintf(cmd.OutOrStdout(), "checked %d task(s), queued=%d failed=%d\n",
				n, status.TasksQueued, status.TasksFailed)
			return nil
		},
	}
}
