package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/runoshun/git-relay/internal/domain"
)

// Proposer channel names.
const (
	ChannelCommand   = "command"
	ChannelClipboard = "clipboard"
)

// CommandProposer pipes the prompt into a configured command, such as an
// editor agent's CLI.
type CommandProposer struct {
	exec    domain.CommandExecutor
	command string
	dir     string
}

// NewCommandProposer creates a proposer running command in dir.
// An empty command makes the proposer unavailable.
func NewCommandProposer(exec domain.CommandExecutor, command, dir string) *CommandProposer {
	return &CommandProposer{exec: exec, command: strings.TrimSpace(command), dir: dir}
}

// Name implements domain.EditProposer.
func (p *CommandProposer) Name() string { return ChannelCommand }

// Propose implements domain.EditProposer.
func (p *CommandProposer) Propose(ctx context.Context, prompt string) error {
	cmd := domain.NewUserCommand(p.command, nil, p.dir)
	if cmd == nil {
		return fmt.Errorf("%w: no propose_command configured", domain.ErrProposerUnavailable)
	}
	if _, err := p.exec.LookPath(cmd.Program); err != nil {
		return fmt.Errorf("%w: %s not found", domain.ErrProposerUnavailable, cmd.Program)
	}
	cmd.Stdin = prompt
	out, err := p.exec.Execute(ctx, cmd)
	if err != nil {
		return fmt.Errorf("run %s: %w: %s", cmd.Program, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// ClipboardProposer copies the prompt to the system clipboard for the human
// to paste into their editor agent.
type ClipboardProposer struct {
	write       func(string) error
	unsupported bool
}

// NewClipboardProposer creates a proposer backed by the system clipboard.
func NewClipboardProposer() *ClipboardProposer {
	return &ClipboardProposer{write: clipboard.WriteAll, unsupported: clipboard.Unsupported}
}

// Name implements domain.EditProposer.
func (p *ClipboardProposer) Name() string { return ChannelClipboard }

// Propose implements domain.EditProposer.
func (p *ClipboardProposer) Propose(_ context.Context, prompt string) error {
	if p.unsupported {
		return fmt.Errorf("%w: clipboard unsupported", domain.ErrProposerUnavailable)
	}
	if err := p.write(prompt); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProposerUnavailable, err)
	}
	return nil
}

// Chain tries proposers in order. An unavailable proposer selects the next one.
type Chain struct {
	logger    domain.Logger
	proposers []domain.EditProposer
}

// NewChain creates a chain of proposers tried in order.
func NewChain(logger domain.Logger, proposers ...domain.EditProposer) *Chain {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &Chain{logger: logger, proposers: proposers}
}

// Propose submits the prompt through the first proposer that accepts it.
func (c *Chain) Propose(ctx context.Context, taskID, prompt string) (domain.ProposalAck, error) {
	var errs []error
	for _, p := range c.proposers {
		err := p.Propose(ctx, prompt)
		if err == nil {
			return domain.ProposalAck{Channel: p.Name()}, nil
		}
		if ctx.Err() != nil {
			return domain.ProposalAck{}, ctx.Err()
		}
		if errors.Is(err, domain.ErrProposerUnavailable) {
			c.logger.Info(taskID, logCategory, fmt.Sprintf("proposer %s unavailable: %v", p.Name(), err))
		} else {
			c.logger.Warn(taskID, logCategory, fmt.Sprintf("proposer %s failed: %v", p.Name(), err))
		}
		errs = append(errs, err)
	}
	return domain.ProposalAck{}, fmt.Errorf("%w: %w", domain.ErrNoProposer, errors.Join(errs...))
}
