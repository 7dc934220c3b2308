// Package executor provides command execution functionality.
package executor

import (
	"context"
	"os/exec"
	"strings"

	"github.com/runoshun/git-relay/internal/domain"
)

// Client implements domain.CommandExecutor interface.
type Client struct{}

// NewClient creates a new command executor client.
func NewClient() *Client {
	return &Client{}
}

// Ensure Client implements domain.CommandExecutor interface.
var _ domain.CommandExecutor = (*Client)(nil)

// Execute runs the command and returns its combined output.
func (c *Client) Execute(ctx context.Context, cmd *domain.ExecCommand) ([]byte, error) {
	// #nosec G204 - cmd.Program and cmd.Args come from configuration and UseCase code
	execCmd := exec.CommandContext(ctx, cmd.Program, cmd.Args...)
	if cmd.Dir != "" {
		execCmd.Dir = cmd.Dir
	}
	if cmd.Stdin != "" {
		execCmd.Stdin = strings.NewReader(cmd.Stdin)
	}
	return execCmd.CombinedOutput()
}

// Start launches the command detached from the caller.
// The process is reaped in the background.
func (c *Client) Start(cmd *domain.ExecCommand) error {
	// #nosec G204 - cmd.Program and cmd.Args come from configuration and UseCase code
	execCmd := exec.Command(cmd.Program, cmd.Args...)
	if cmd.Dir != "" {
		execCmd.Dir = cmd.Dir
	}
	if err := execCmd.Start(); err != nil {
		return err
	}
	go func() { _ = execCmd.Wait() }()
	return nil
}

// LookPath searches for program in PATH.
func (c *Client) LookPath(program string) (string, error) {
	return exec.LookPath(program)
}
