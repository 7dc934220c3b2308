package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/runoshun/git-relay/internal/app"
	"github.com/runoshun/git-relay/internal/domain"
	"github.com/runoshun/git-relay/internal/usecase"
)

// newNewCommand creates the new command for creating tasks.
func newNewCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Type        string
		Description string
		Sender      string
		Message     string
		Scope       []string
		Rules       []string
		AutoCommit  bool
	}

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a pending change request",
		Long: `Create a pending change request in the tasks directory.

The request is written as CHANGE-<id>.json with status 'pending'. A running
'relay watch' picks it up as soon as the file appears.

Types that only touch copy, colors or SEO tags may auto-commit; every other
type always ends in manual_review after acceptance.

Examples:
  # Request a copy change on one file
  relay new --type copy_change --scope src/Hero.tsx \
    --description "Change the headline to 'Ship faster'"

  # Record who asked for the change
  relay new --type seo_update --scope index.html \
    --description "Update the meta description" --sender alice

  # Never commit unattended, even for a safe type
  relay new --type color_change --scope theme.css \
    --description "Use #0984E3 as primary" --auto-commit=false`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input := usecase.NewTaskInput{
				Type:        domain.TaskType(opts.Type),
				Description: opts.Description,
				Scope:       opts.Scope,
				Rules:       opts.Rules,
			}
			if cmd.Flags().Changed("auto-commit") {
				input.AutoCommit = &opts.AutoCommit
			}
			if opts.Sender != "" || opts.Message != "" {
				input.Source = &domain.Source{
					Message:   opts.Message,
					Sender:    opts.Sender,
					Timestamp: c.Clock.Now().UTC().Format(time.RFC3339),
				}
			}

			out, err := c.NewTaskUseCase().Execute(cmd.Context(), input)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created task %s (%s)\n", out.Task.ID, out.Path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Type, "type", "t", "", "Change type ("+typeList()+")")
	cmd.Flags().StringVarP(&opts.Description, "description", "d", "", "Requested change")
	cmd.Flags().StringSliceVarP(&opts.Scope, "scope", "s", nil, "Files the edit may touch (repeatable)")
	cmd.Flags().StringArrayVar(&opts.Rules, "rule", nil, "Extra rule for the edit proposer (repeatable)")
	cmd.Flags().StringVar(&opts.Sender, "sender", "", "Who asked for the change")
	cmd.Flags().StringVar(&opts.Message, "message", "", "Original request message")
	cmd.Flags().BoolVar(&opts.AutoCommit, "auto-commit", false, "Allow unattended commit (default: whether the type is safe)")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("scope")

	return cmd
}

func typeList() string {
	types := domain.AllTaskTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// newListCommand creates the list command for listing tasks.
func newListCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Statuses []string
		All      bool
	}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List change requests",
		Long: `List change requests in the tasks directory.

Files that cannot be read as tasks are reported on stderr and skipped.

Examples:
  # List everything that is still live
  relay list

  # Only tasks waiting for a human
  relay list --status manual_review

  # Include archived records
  relay list --all`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input := usecase.ListTasksInput{IncludeArchived: opts.All}
			for _, s := range opts.Statuses {
				input.Statuses = append(input.Statuses, domain.Status(s))
			}

			out, err := c.ListTasksUseCase().Execute(cmd.Context(), input)
			if err != nil {
				return err
			}

			for _, m := range out.Malformed {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", m)
			}
			if len(out.Tasks) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No tasks found.")
				return nil
			}
			printTaskList(cmd.OutOrStdout(), out.Tasks, c.Clock)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&opts.Statuses, "status", nil, "Filter by status (repeatable)")
	cmd.Flags().BoolVarP(&opts.All, "all", "a", false, "Include archived tasks")

	return cmd
}

// printTaskList prints tasks in TSV format.
func printTaskList(w io.Writer, tasks []*domain.Task, clock domain.Clock) {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	defer func() { _ = tw.Flush() }()

	_, _ = fmt.Fprintln(tw, "ID\tSTATUS\tTYPE\tAGE\tSCOPE\tDESCRIPTION")

	for _, task := range tasks {
		age := "-"
		if !task.CreatedAt.IsZero() {
			age = formatDuration(clock.Now().Sub(task.CreatedAt))
		}

		scope := "-"
		if len(task.Scope) > 0 {
			scope = task.Scope[0]
			if len(task.Scope) > 1 {
				scope = fmt.Sprintf("%s (+%d)", scope, len(task.Scope)-1)
			}
		}

		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			task.ID,
			task.Status.Display(),
			task.Type,
			age,
			scope,
			firstLine(task.Description),
		)
	}
}

func firstLine(s string) string {
	return strings.SplitN(s, "\n", 2)[0]
}

// formatDuration formats a duration in a compact form.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

// newShowCommand creates the show command for displaying task details.
func newShowCommand(c *app.Container) *cobra.Command {
	var opts struct {
		JSON   bool
		YAML   bool
		Prompt bool
	}

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Display task details",
		Long: `Display a change request and its recorded result.

Archived records are shown when no live file exists.

Examples:
  # Show task by ID
  relay show a1b2c3d4

  # Output the raw record
  relay show a1b2c3d4 --json
  relay show a1b2c3d4 --yaml

  # Preview the request handed to the edit proposer
  relay show a1b2c3d4 --prompt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if countTrue(opts.JSON, opts.YAML, opts.Prompt) > 1 {
				return fmt.Errorf("use only one of --json, --yaml, --prompt")
			}

			out, err := c.ShowTaskUseCase().Execute(cmd.Context(), usecase.ShowTaskInput{TaskID: args[0]})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			switch {
			case opts.JSON:
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(out.Task)
			case opts.YAML:
				return encodeTaskYAML(w, out.Task)
			case opts.Prompt:
				return renderPrompt(w, out.Task)
			}
			printTaskDetails(w, out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&opts.YAML, "yaml", false, "Output in YAML format")
	cmd.Flags().BoolVar(&opts.Prompt, "prompt", false, "Render the edit request prompt")

	return cmd
}

func countTrue(flags ...bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}

// renderPrompt writes the edit request prompt as rendered markdown.
func renderPrompt(w io.Writer, task *domain.Task) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(promptWrapWidth),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	out, err := r.Render(domain.BuildPrompt(domain.NewEditRequest(task)))
	if err != nil {
		return fmt.Errorf("render prompt: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

const promptWrapWidth = 80

// encodeTaskYAML writes task as YAML using the keys of its JSON form.
func encodeTaskYAML(w io.Writer, task *domain.Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	// JSON is valid YAML; decoding into a node keeps the key order.
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	blockStyle(&doc)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return err
	}
	return enc.Close()
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		blockStyle(child)
	}
}

// printTaskDetails prints task details.
func printTaskDetails(w io.Writer, out *usecase.ShowTaskOutput) {
	task := out.Task

	header := fmt.Sprintf("# Task %s: %s", task.ID, task.Type)
	if out.Archived {
		header += " (archived)"
	}
	_, _ = fmt.Fprintf(w, "%s\n\n", header)

	if task.Description != "" {
		_, _ = fmt.Fprintf(w, "%s\n\n", task.Description)
	}

	_, _ = fmt.Fprintf(w, "Status: %s\n", task.Status.Display())
	_, _ = fmt.Fprintf(w, "Scope: %s\n", strings.Join(task.Scope, ", "))
	_, _ = fmt.Fprintf(w, "Auto-commit: %t\n", task.AutoCommit)
	_, _ = fmt.Fprintf(w, "Created: %s\n", task.CreatedAt.Format(time.RFC3339))
	if task.UpdatedAt != nil {
		_, _ = fmt.Fprintf(w, "Updated: %s\n", task.UpdatedAt.Format(time.RFC3339))
	}
	if task.Source != nil && task.Source.Sender != "" {
		_, _ = fmt.Fprintf(w, "Requested by: %s\n", task.Source.Sender)
	}
	if !out.Archived {
		_, _ = fmt.Fprintf(w, "File: %s\n", out.Path)
	}

	if len(task.Rules) > 0 {
		_, _ = fmt.Fprintln(w, "\nRules:")
		for _, r := range task.Rules {
			_, _ = fmt.Fprintf(w, "  - %s\n", r)
		}
	}

	if task.Result != nil {
		_, _ = fmt.Fprintln(w, "\nResult:")
		_, _ = fmt.Fprintf(w, "  %s: %s\n", task.Result.Status, task.Result.Details)
		if len(task.Result.Data) > 0 {
			_, _ = fmt.Fprintf(w, "  data: %s\n", string(task.Result.Data))
		}
	}
}

// newRmCommand creates the rm command for deleting tasks.
func newRmCommand(c *app.Container) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Long: `Delete a change request file.

A task that is being processed is refused unless --force is given.

Examples:
  relay rm a1b2c3d4
  relay rm a1b2c3d4 --force`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.DeleteTaskUseCase().Execute(cmd.Context(), usecase.DeleteTaskInput{
				TaskID: args[0],
				Force:  force,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", out.Task.ID)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete even while processing")

	return cmd
}

// newArchiveCommand creates the archive command.
func newArchiveCommand(c *app.Container) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "archive [id]",
		Short: "Move finished tasks to the archive",
		Long: `Move terminal change requests into the archive directory.

Archived records are read-only: they are never processed again.

Examples:
  # Archive one finished task
  relay archive a1b2c3d4

  # Archive every finished task
  relay archive --all`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) == 1) {
				return fmt.Errorf("specify either a task ID or --all")
			}
			input := usecase.ArchiveTaskInput{All: all}
			if len(args) == 1 {
				input.TaskID = args[0]
			}

			out, err := c.ArchiveTaskUseCase().Execute(cmd.Context(), input)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(out.Archived) == 0 {
				_, _ = fmt.Fprintln(w, "Nothing to archive.")
				return nil
			}
			for _, id := range out.Archived {
				_, _ = fmt.Fprintf(w, "Archived task %s\n", id)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Archive every finished task")

	return cmd
}

// newRequeueCommand creates the requeue command.
func newRequeueCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "requeue <id>",
		Short: "Send a finished task back to pending",
		Long: `Reset a finished change request to 'pending' and clear its result.

A running 'relay watch' processes the task again once the file changes.

Examples:
  relay requeue a1b2c3d4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.RequeueTaskUseCase().Execute(cmd.Context(), usecase.RequeueTaskInput{TaskID: args[0]})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Requeued task %s (was %s)\n", out.Task.ID, out.PreviousStatus)
			return nil
		},
	}

	return cmd
}
