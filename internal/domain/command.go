package domain

import (
	"context"
	"strings"
)

// ExecCommand represents an external command to be executed.
// This type is used to pass command information between layers
// without exposing implementation details.
type ExecCommand struct {
	Program string
	Dir     string
	Stdin   string // Written to the process's standard input when non-empty
	Args    []string
}

// NewCommand creates a command that runs program directly.
func NewCommand(program string, args []string, dir string) *ExecCommand {
	return &ExecCommand{Program: program, Args: args, Dir: dir}
}

// NewShellCommand creates a command that runs script through sh -c.
func NewShellCommand(script, dir string) *ExecCommand {
	return &ExecCommand{Program: "sh", Args: []string{"-c", script}, Dir: dir}
}

// NewUserCommand builds a command from a configured command line such as
// "code --reuse-window", appending extra arguments.
// Returns nil when line is blank.
func NewUserCommand(line string, extra []string, dir string) *ExecCommand {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	args := append(fields[1:len(fields):len(fields)], extra...)
	return NewCommand(fields[0], args, dir)
}

// CommandExecutor runs external commands.
type CommandExecutor interface {
	// Execute runs the command and returns its combined output.
	Execute(ctx context.Context, cmd *ExecCommand) ([]byte, error)

	// Start launches the command without waiting for it to exit.
	Start(cmd *ExecCommand) error

	// LookPath reports whether program can be found.
	LookPath(program string) (string, error)
}
