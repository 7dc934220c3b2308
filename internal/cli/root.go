// Package cli provides the command-line interface for git-relay.
package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/runoshun/git-relay/internal/app"
)

// Command group IDs.
const (
	groupSetup   = "setup"
	groupTask    = "task"
	groupProcess = "process"
)

// RepoFlag is the persistent flag naming the target repository.
// main reads it before the container is built.
const RepoFlag = "repo"

// NewRootCommand creates the root command for git-relay.
// It receives the container for dependency injection and version for display.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	var tasksDir string
	var repo string

	root := &cobra.Command{
		Use:   "relay",
		Short: "Change request relay for a git working tree",
		Long: `git-relay turns change requests into reviewed commits.

Each request is a CHANGE-<id>.json file in the tasks directory. 'relay watch'
hands pending requests to your editor, waits for you to accept or reject the
edit, and commits and pushes safe changes on its own. Everything else is left
for a manual commit.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip if container is nil (e.g. help without a repository)
			if c == nil {
				return nil
			}

			if tasksDir != "" {
				abs, err := filepath.Abs(tasksDir)
				if err != nil {
					return fmt.Errorf("resolve tasks dir: %w", err)
				}
				c.UseTasksDir(abs)
			}

			// config itself reports warnings in its output
			if cmd.Name() == "config" {
				return nil
			}
			cfg, err := c.ConfigLoader.Load()
			if err != nil {
				// Ignore error (e.g. unreadable file); config shows it
				return nil
			}
			for _, w := range cfg.Warnings {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&tasksDir, "tasks-dir", "", "Directory holding change requests (overrides config)")
	root.PersistentFlags().StringVar(&repo, RepoFlag, "", "Target repository (default: current directory)")

	// Define command groups
	root.AddGroup(
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
		&cobra.Group{ID: groupTask, Title: "Task Management:"},
		&cobra.Group{ID: groupProcess, Title: "Processing:"},
	)

	configCmd := newConfigCommand(c)
	configCmd.GroupID = groupSetup

	newCmd := newNewCommand(c)
	newCmd.GroupID = groupTask

	listCmd := newListCommand(c)
	listCmd.GroupID = groupTask

	showCmd := newShowCommand(c)
	showCmd.GroupID = groupTask

	rmCmd := newRmCommand(c)
	rmCmd.GroupID = groupTask

	archiveCmd := newArchiveCommand(c)
	archiveCmd.GroupID = groupTask

	requeueCmd := newRequeueCommand(c)
	requeueCmd.GroupID = groupTask

	watchCmd := newWatchCommand(c)
	watchCmd.GroupID = groupProcess

	processCmd := newProcessCommand(c)
	processCmd.GroupID = groupProcess

	decideCmd := newDecideCommand(c)
	decideCmd.GroupID = groupProcess

	revertCmd := newRevertCommand(c)
	revertCmd.GroupID = groupProcess

	root.AddCommand(
		configCmd,
		newCmd,
		listCmd,
		showCmd,
		rmCmd,
		archiveCmd,
		requeueCmd,
		watchCmd,
		processCmd,
		decideCmd,
		revertCmd,
	)

	return root
}
