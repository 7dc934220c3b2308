package policy

import (
	"fmt"
	"sort"

	"github.com/runoshun/git-relay/internal/domain"
)

// Reason explains a static eligibility decision.
type Reason string

// Static eligibility reasons.
const (
	ReasonEligible        Reason = "eligible"
	ReasonAutoCommitOff   Reason = "auto_commit not requested"
	ReasonFeatureDisabled Reason = "auto-commit disabled in configuration"
	ReasonTypeNotSafe     Reason = "task type is not auto-commit safe"
	ReasonPathNotSafe     Reason = "scope path does not match a safe pattern"
)

// Decision is the outcome of a static eligibility check.
type Decision struct {
	Reason   Reason
	Path     string // Offending path for ReasonPathNotSafe
	Eligible bool
}

func (d Decision) String() string {
	if d.Path != "" {
		return fmt.Sprintf("%s: %s", d.Reason, d.Path)
	}
	return string(d.Reason)
}

// SafetyPolicy gates unattended commits in two phases: a static check on the
// task record before any edit exists, and a runtime check on the applied edit.
type SafetyPolicy struct {
	matcher      *PathMatcher
	maxDiffLines int
	enabled      bool
}

// Options configures a SafetyPolicy.
type Options struct {
	SafeFilePatterns []string
	MaxDiffLines     int
	Enabled          bool
}

// New builds a SafetyPolicy from options.
func New(opts Options) (*SafetyPolicy, error) {
	m, err := NewPathMatcher(opts.SafeFilePatterns)
	if err != nil {
		return nil, err
	}
	return &SafetyPolicy{
		matcher:      m,
		maxDiffLines: opts.MaxDiffLines,
		enabled:      opts.Enabled,
	}, nil
}

// FromConfig builds a SafetyPolicy from the [commit] configuration.
func FromConfig(cfg domain.CommitConfig) (*SafetyPolicy, error) {
	return New(Options{
		SafeFilePatterns: cfg.SafeFilePatterns,
		MaxDiffLines:     cfg.MaxDiffLines,
		Enabled:          cfg.AutoCommit,
	})
}

// StaticEligible decides auto-commit permission from the task record alone.
// The task must request auto_commit, the feature must be enabled, the type must be
// auto-commit safe and every scope path must match a safe pattern.
func (p *SafetyPolicy) StaticEligible(task *domain.Task) Decision {
	if !task.AutoCommit {
		return Decision{Reason: ReasonAutoCommitOff}
	}
	if !p.enabled {
		return Decision{Reason: ReasonFeatureDisabled}
	}
	if !task.Type.AutoCommitSafe() {
		return Decision{Reason: ReasonTypeNotSafe}
	}
	if bad, ok := p.matcher.MatchAll(task.Scope); !ok {
		return Decision{Reason: ReasonPathNotSafe, Path: bad}
	}
	return Decision{Reason: ReasonEligible, Eligible: true}
}

// CheckDiff fails when the observed diff exceeds the ceiling.
func (p *SafetyPolicy) CheckDiff(diffLines int) error {
	if diffLines > p.maxDiffLines {
		return &domain.PolicyViolationError{
			Kind:  domain.ViolationDiffTooLarge,
			Lines: diffLines,
			Limit: p.maxDiffLines,
		}
	}
	return nil
}

// CheckScope fails when any changed file lies outside the task's scope.
// Paths are compared after normalization, never fuzzily.
func (p *SafetyPolicy) CheckScope(task *domain.Task, changedFiles []string) error {
	allowed := task.NormalizedScope()
	var unexpected []string
	for _, f := range changedFiles {
		if _, ok := allowed[domain.NormalizePath(f)]; !ok {
			unexpected = append(unexpected, domain.NormalizePath(f))
		}
	}
	if len(unexpected) > 0 {
		sort.Strings(unexpected)
		return &domain.PolicyViolationError{
			Kind:  domain.ViolationOutOfScope,
			Files: unexpected,
		}
	}
	return nil
}
