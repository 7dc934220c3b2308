// Package domain contains core business entities and interfaces.
package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
)

// Task is a durable change request, stored as one CHANGE-<id>.json document.
// Fields are ordered to minimize memory padding.
type Task struct {
	CreatedAt   time.Time  `json:"created_at"`           // Creation time
	UpdatedAt   *time.Time `json:"updated_at,omitempty"` // Last status change
	Source      *Source    `json:"source,omitempty"`     // Origin metadata (optional)
	Result      *Result    `json:"result"`                // Final outcome (null until terminal)
	ID          string     `json:"id"`                   // Opaque unique id
	Type        TaskType   `json:"type"`                 // Kind of change
	Description string     `json:"description"`          // Free-text request
	Status      Status     `json:"status"`               // Current status
	Scope       []string   `json:"scope"`                // Only files the edit may touch
	Rules       []string   `json:"rules"`                // Constraints passed to the edit proposer
	AutoCommit  bool       `json:"auto_commit"`          // Requested permission to commit unattended
}

// Source describes where a request came from.
type Source struct {
	Message   string `json:"message"`
	Sender    string `json:"sender"`
	Timestamp string `json:"timestamp"`
}

// Result is the outcome recorded when a task reaches a terminal status.
// Data holds arbitrary side data and is preserved verbatim.
type Result struct {
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
	Status    Status          `json:"status"`
	Details   string          `json:"details"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// RequiredTaskFields lists the JSON keys every task document must carry.
var RequiredTaskFields = []string{"id", "type", "description", "scope", "status"}

// Validate checks the structural invariants of a task record.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("id is empty")
	}
	if !t.Type.IsValid() {
		return fmt.Errorf("unknown type %q", t.Type)
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("unknown status %q", t.Status)
	}
	if len(t.Scope) == 0 {
		return errors.New("scope is empty")
	}
	for _, p := range t.Scope {
		if err := validateScopePath(p); err != nil {
			return err
		}
	}
	return nil
}

func validateScopePath(p string) error {
	if strings.TrimSpace(p) == "" {
		return errors.New("scope contains an empty path")
	}
	if strings.HasPrefix(p, "/") || strings.HasPrefix(p, `\`) || (len(p) > 1 && p[1] == ':') {
		return fmt.Errorf("scope path %q must be relative to the workspace root", p)
	}
	cleaned := NormalizePath(p)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return fmt.Errorf("scope path %q escapes the workspace root", p)
	}
	return nil
}

// NormalizedScope returns the scope as a set of normalized relative paths.
func (t *Task) NormalizedScope() map[string]struct{} {
	set := make(map[string]struct{}, len(t.Scope))
	for _, p := range t.Scope {
		set[NormalizePath(p)] = struct{}{}
	}
	return set
}

// Start moves a pending task into processing.
// Any result left from a previous pass is dropped since a new pass begins.
func (t *Task) Start(now time.Time) error {
	if !t.Status.CanTransitionTo(StatusProcessing) {
		return fmt.Errorf("cannot start task in %s status: %w", t.Status, ErrInvalidTransition)
	}
	t.Status = StatusProcessing
	t.Result = nil
	t.touch(now)
	return nil
}

// Finish records the terminal outcome of the current pass.
// The result status and details cannot be changed once set.
func (t *Task) Finish(status Status, details string, data json.RawMessage, now time.Time) error {
	if !status.IsTerminal() {
		return fmt.Errorf("%s is not a terminal status: %w", status, ErrInvalidTransition)
	}
	if t.Result != nil {
		if t.Result.Status != status || t.Result.Details != details {
			return ErrResultImmutable
		}
		t.touch(now)
		t.Result.UpdatedAt = t.UpdatedAt
		return nil
	}
	if !t.Status.CanTransitionTo(status) {
		return fmt.Errorf("cannot move task from %s to %s: %w", t.Status, status, ErrInvalidTransition)
	}
	t.Status = status
	t.touch(now)
	t.Result = &Result{
		Status:    status,
		Details:   details,
		Data:      data,
		UpdatedAt: t.UpdatedAt,
	}
	return nil
}

// Requeue resets a terminal task to pending so it is dispatched again.
func (t *Task) Requeue(now time.Time) error {
	if !t.Status.CanTransitionTo(StatusPending) {
		return fmt.Errorf("cannot requeue task in %s status: %w", t.Status, ErrInvalidTransition)
	}
	t.Status = StatusPending
	t.Result = nil
	t.touch(now)
	return nil
}

func (t *Task) touch(now time.Time) {
	ts := now.UTC()
	t.UpdatedAt = &ts
}

// NormalizePath cleans a workspace-relative path for set comparison.
// Backslashes become slashes and a leading "./" is removed.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(strings.TrimSpace(p), `\`, "/")
	p = path.Clean(p)
	return strings.TrimPrefix(p, "./")
}
