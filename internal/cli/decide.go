package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runoshun/git-relay/internal/app"
	"github.com/runoshun/git-relay/internal/domain"
	"github.com/runoshun/git-relay/internal/usecase"
)

// newDecideCommand creates the decide command that answers a waiting task.
func newDecideCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decide <id> accept|reject",
		Short: "Accept or reject a proposed edit",
		Long: `Deliver the human decision for a task that is being processed.

'relay watch' waits for this after handing the edit request to the editor.
Accepting lets the commit sequence run (for auto-commit tasks) or records
manual_review. Rejecting records 'rejected' and leaves the working tree alone;
use 'relay revert' to discard the edit.

Examples:
  relay decide a1b2c3d4 accept
  relay decide a1b2c3d4 reject`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := domain.ParseDecision(args[1])
			if err != nil {
				return err
			}

			err = c.DecideTaskUseCase().Execute(cmd.Context(), usecase.DecideTaskInput{
				TaskID:   args[0],
				Decision: d,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Task %s %s\n", args[0], d)
			return nil
		},
	}

	return cmd
}

// newRevertCommand creates the revert command.
func newRevertCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revert <id>",
		Short: "Discard uncommitted edits to a task's files",
		Long: `Restore the task's scope files to their committed state.

Reverting is never automatic. It is refused while a commit is in progress.

Examples:
  relay revert a1b2c3d4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.RevertTaskUseCase().Execute(cmd.Context(), usecase.RevertTaskInput{TaskID: args[0]})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, p := range out.Paths {
				_, _ = fmt.Fprintf(w, "Reverted %s\n", p)
			}
			return nil
		},
	}

	return cmd
}
