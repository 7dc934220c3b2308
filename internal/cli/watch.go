package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/runoshun/git-relay/internal/app"
	"github.com/runoshun/git-relay/internal/usecase"
)

// newWatchCommand creates the watch command that processes tasks as they appear.
func newWatchCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Process change requests as they appear",
		Long: `Watch the tasks directory and process every pending change request.

Each request is handed to the editor, then waits for a decision. With
[watch] decision = "inbox" (default) the decision comes from 'relay decide';
with "prompt" it is asked interactively in this terminal.

Tasks already pending at startup are processed too. Stop with Ctrl+C; tasks
still waiting for a decision are recorded as failed and can be requeued.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c.TaskLogger.SetEcho(cmd.ErrOrStderr())

			uc, err := c.WatchTasksUseCase(c.DecisionSource(cmd.InOrStdin(), cmd.OutOrStdout()))
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (Ctrl+C to stop)\n", c.Config.TasksDir)
			out, err := uc.Execute(ctx)
			if out != nil {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Stopped: %d processed, %d refused\n", out.Processed, out.Refused)
			}
			return err
		},
	}

	return cmd
}

// newProcessCommand creates the process command that runs one task in the foreground.
func newProcessCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process <id>",
		Short: "Process a single pending task",
		Long: `Process one pending change request in the foreground.

The decision is read the same way 'relay watch' reads it.

Examples:
  relay process a1b2c3d4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c.TaskLogger.SetEcho(cmd.ErrOrStderr())

			uc, err := c.ProcessTaskUseCase(c.DecisionSource(cmd.InOrStdin(), cmd.OutOrStdout()), nil)
			if err != nil {
				return err
			}

			out, err := uc.Execute(ctx, usecase.ProcessTaskInput{TaskID: args[0]})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "Task %s: %s\n", out.Task.ID, out.Task.Status.Display())
			if out.Task.Result != nil {
				_, _ = fmt.Fprintf(w, "%s\n", out.Task.Result.Details)
			}
			if out.CommitID != "" {
				_, _ = fmt.Fprintf(w, "Commit: %s\n", out.CommitID)
			}
			return nil
		},
	}

	return cmd
}
