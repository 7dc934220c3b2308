// Package editor hands edit requests to the human's editor and agent.
package editor

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/runoshun/git-relay/internal/domain"
)

const logCategory = "editor"

// Gateway implements domain.Editor.
type Gateway struct {
	exec        domain.CommandExecutor
	chain       *Chain
	logger      domain.Logger
	openCommand string
	dir         string
}

// Ensure Gateway implements domain.Editor interface.
var _ domain.Editor = (*Gateway)(nil)

// Config configures a Gateway.
type Config struct {
	Exec        domain.CommandExecutor
	Logger      domain.Logger
	OpenCommand string // Command line used to open files, e.g. "code"
	Dir         string // Working directory for launched commands
	Proposers   []domain.EditProposer
}

// New creates an editor gateway.
func New(cfg Config) *Gateway {
	if cfg.Logger == nil {
		cfg.Logger = domain.NopLogger{}
	}
	return &Gateway{
		exec:        cfg.Exec,
		chain:       NewChain(cfg.Logger, cfg.Proposers...),
		logger:      cfg.Logger,
		openCommand: cfg.OpenCommand,
		dir:         cfg.Dir,
	}
}

// NewFromConfig wires the default proposer chain: the configured
// propose_command first, then the clipboard.
func NewFromConfig(exec domain.CommandExecutor, logger domain.Logger, cfg domain.EditorConfig, dir string) *Gateway {
	return New(Config{
		Exec:        exec,
		Logger:      logger,
		OpenCommand: cfg.OpenCommand,
		Dir:         dir,
		Proposers: []domain.EditProposer{
			NewCommandProposer(exec, cfg.ProposeCommand, dir),
			NewClipboardProposer(),
		},
	})
}

// OpenFiles launches the open command on the paths that exist.
// The returned slice lists the paths handed to the command.
func (g *Gateway) OpenFiles(_ context.Context, paths []string) ([]string, error) {
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil, nil
	}

	cmd := domain.NewUserCommand(g.openCommand, existing, g.dir)
	if cmd == nil {
		return nil, nil
	}
	if err := g.exec.Start(cmd); err != nil {
		return nil, fmt.Errorf("open files with %s: %w", cmd.Program, err)
	}
	return existing, nil
}

// ProposeEdit renders the structured prompt and submits it through the proposer chain.
func (g *Gateway) ProposeEdit(ctx context.Context, req domain.EditRequest) (domain.ProposalAck, error) {
	ack, err := g.chain.Propose(ctx, req.TaskID, domain.BuildPrompt(req))
	if err != nil {
		return ack, err
	}
	g.logger.Info(req.TaskID, logCategory, fmt.Sprintf("edit request sent via %s (%s)", ack.Channel, strings.Join(req.Scope, ", ")))
	return ack, nil
}
