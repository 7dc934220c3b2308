package shared

import (
	"context"
	"fmt"
	"strings"

	"github.com/runoshun/git-relay/internal/domain"
)

const commitLogCategory = "commit"

// RuntimePolicy checks an applied edit before anything is staged.
type RuntimePolicy interface {
	CheckDiff(diffLines int) error
	CheckScope(task *domain.Task, changedFiles []string) error
}

// CommitSequence stages, commits and pushes an accepted edit.
// Fields are ordered to minimize memory padding.
type CommitSequence struct {
	vcs    domain.VersionControl
	policy RuntimePolicy
	gate   domain.CommitGate
	logger domain.Logger
	remote string
	branch string
}

// NewCommitSequence creates a CommitSequence pushing to remote/branch.
// Empty values resolve to the default remote and the current branch.
func NewCommitSequence(
	vcs domain.VersionControl,
	policy RuntimePolicy,
	gate domain.CommitGate,
	logger domain.Logger,
	remote string,
	branch string,
) *CommitSequence {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &CommitSequence{
		vcs:    vcs,
		policy: policy,
		gate:   gate,
		logger: logger,
		remote: remote,
		branch: branch,
	}
}

// Run executes the sequence for task and returns the new commit id.
// ctx only bounds the wait for the gate: once the gate is held the sequence
// runs to completion or failure. No step is retried or rolled back.
func (s *CommitSequence) Run(ctx context.Context, task *domain.Task) (string, error) {
	release, err := s.gate.Acquire(ctx)
	if err != nil {
		return "", fmt.Errorf("wait for commit gate: %w", err)
	}
	defer release()

	ctx = context.WithoutCancel(ctx)

	lines, err := s.vcs.DiffLineCount(ctx)
	if err != nil {
		return "", err
	}
	if err := s.policy.CheckDiff(lines); err != nil {
		return "", err
	}

	changed, err := s.vcs.ChangedFiles(ctx)
	if err != nil {
		return "", err
	}
	if err := s.policy.CheckScope(task, changed); err != nil {
		return "", err
	}
	s.logger.Debug(task.ID, commitLogCategory, fmt.Sprintf("%d lines changed in %s", lines, strings.Join(changed, ", ")))

	scope := make([]string, 0, len(task.Scope))
	for _, p := range task.Scope {
		scope = append(scope, domain.NormalizePath(p))
	}
	if err := s.vcs.Stage(ctx, scope); err != nil {
		return "", err
	}

	commitID, err := s.vcs.Commit(ctx, domain.CommitMessage(task))
	if err != nil {
		return "", err
	}
	s.logger.Info(task.ID, commitLogCategory, "committed "+shortHash(commitID))

	if err := s.vcs.Push(ctx, s.remote, s.branch); err != nil {
		return commitID, err
	}
	s.logger.Info(task.ID, commitLogCategory, "pushed "+shortHash(commitID))
	return commitID, nil
}

func shortHash(id string) string {
	if len(id) > 7 {
		return id[:7]
	}
	return id
}
