package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors.
var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrTaskExists          = errors.New("task already exists")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrResultImmutable     = errors.New("task result is already recorded")
	ErrMalformedTask       = errors.New("malformed task")
	ErrArchivedReadOnly    = errors.New("archived task is read-only")
	ErrNoWorkspace         = errors.New("no workspace available")
	ErrNoTargetFiles       = errors.New("no target files found in scope")
	ErrUserRejected        = errors.New("User rejected changes")
	ErrPolicyViolation     = errors.New("auto-commit policy violation")
	ErrVersionControl      = errors.New("version control operation failed")
	ErrNotification        = errors.New("notification failed")
	ErrProposerUnavailable = errors.New("edit proposer unavailable")
	ErrNoProposer          = errors.New("no edit proposer available")
	ErrCommitInFlight      = errors.New("another commit sequence is in flight")
	ErrNotGitRepository    = errors.New("not a git repository (or any of the parent directories)")
	ErrConfigExists        = errors.New("config file already exists")
	ErrInvalidDecision     = errors.New("invalid decision")
	ErrInvalidTask         = errors.New("invalid task")
	ErrNotAwaitingDecision = errors.New("task is not awaiting a decision")
	ErrConfigNil           = errors.New("config is nil")
)

// MalformedTaskError reports a task file that is not a well-formed task record.
// The file is skipped, never modified or deleted.
type MalformedTaskError struct {
	Err    error
	Path   string
	Reason string
}

func (e *MalformedTaskError) Error() string {
	return fmt.Sprintf("malformed task %s: %s", e.Path, e.Reason)
}

// Unwrap returns the underlying cause.
func (e *MalformedTaskError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrMalformedTask
}

// Is reports whether target is ErrMalformedTask.
func (e *MalformedTaskError) Is(target error) bool {
	return target == ErrMalformedTask
}

// PolicyViolationKind identifies which runtime check failed.
type PolicyViolationKind string

const (
	ViolationDiffTooLarge PolicyViolationKind = "diff_too_large"
	ViolationOutOfScope   PolicyViolationKind = "out_of_scope"
)

// PolicyViolationError is raised when an applied edit fails runtime eligibility.
// Fields are ordered to minimize memory padding.
type PolicyViolationError struct {
	Kind  PolicyViolationKind
	Files []string // Unexpected files (out_of_scope only)
	Lines int      // Observed diff line count (diff_too_large only)
	Limit int      // Configured ceiling (diff_too_large only)
}

func (e *PolicyViolationError) Error() string {
	switch e.Kind {
	case ViolationDiffTooLarge:
		return fmt.Sprintf("diff too large: %d lines changed (max %d)", e.Lines, e.Limit)
	case ViolationOutOfScope:
		return fmt.Sprintf("changed files outside scope: %s", strings.Join(e.Files, ", "))
	default:
		return ErrPolicyViolation.Error()
	}
}

// Unwrap returns ErrPolicyViolation.
func (e *PolicyViolationError) Unwrap() error {
	return ErrPolicyViolation
}

// VersionControlError wraps a failed working-tree operation.
type VersionControlError struct {
	Err    error
	Op     string
	Output string
}

func (e *VersionControlError) Error() string {
	msg := fmt.Sprintf("git %s failed", e.Op)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *VersionControlError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrVersionControl.
func (e *VersionControlError) Is(target error) bool {
	return target == ErrVersionControl
}

// NotificationError wraps a failed outcome notification. It is logged, never propagated.
type NotificationError struct {
	Err    error
	TaskID string
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notify task %s: %v", e.TaskID, e.Err)
}

// Unwrap returns the underlying cause.
func (e *NotificationError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrNotification.
func (e *NotificationError) Is(target error) bool {
	return target == ErrNotification
}
