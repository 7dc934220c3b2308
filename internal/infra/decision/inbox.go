// Package decision delivers human accept/reject decisions to a waiting processor.
package decision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/runoshun/git-relay/internal/domain"
)

const defaultPollInterval = 200 * time.Millisecond

// Message is one decision file in a task's inbox.
type Message struct {
	CreatedAt time.Time       `json:"created_at"`
	ID        string          `json:"id"`
	TaskID    string          `json:"task_id"`
	Decision  domain.Decision `json:"decision"`
}

// Validate checks that the message carries a usable decision.
func (m Message) Validate() error {
	if m.TaskID == "" {
		return errors.New("decision message without task id")
	}
	if !m.Decision.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidDecision, m.Decision)
	}
	return nil
}

// Inbox is a file-based decision channel under <stateDir>/decisions/<task-id>/.
// It lets `relay decide` reach a `relay watch` process in another terminal.
type Inbox struct {
	stateDir     string
	pollInterval time.Duration
}

// Ensure Inbox implements the decision ports.
var (
	_ domain.DecisionSource = (*Inbox)(nil)
	_ domain.DecisionSink   = (*Inbox)(nil)
)

// NewInbox creates an inbox rooted at stateDir.
func NewInbox(stateDir string) *Inbox {
	return &Inbox{stateDir: stateDir, pollInterval: defaultPollInterval}
}

// WithPollInterval returns a copy of the inbox polling at d.
func (i *Inbox) WithPollInterval(d time.Duration) *Inbox {
	return &Inbox{stateDir: i.stateDir, pollInterval: d}
}

// Send records a decision for taskID.
func (i *Inbox) Send(ctx context.Context, taskID string, d domain.Decision) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := Message{
		ID:        fmt.Sprintf("%020d-%s", time.Now().UTC().UnixNano(), uuid.NewString()[:8]),
		TaskID:    taskID,
		Decision:  d,
		CreatedAt: time.Now().UTC(),
	}
	if err := msg.Validate(); err != nil {
		return err
	}

	dir := domain.DecisionDir(i.stateDir, taskID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create decision dir: %w", err)
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal decision: %w", err)
	}

	tmpPath := filepath.Join(dir, ".tmp-"+msg.ID)
	finalPath := filepath.Join(dir, msg.ID+".json")
	if err := os.WriteFile(tmpPath, payload, 0o600); err != nil {
		return fmt.Errorf("write decision temp file: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("finalize decision file: %w", err)
	}
	return nil
}

// Await blocks until a decision for taskID arrives or ctx is canceled.
// The consumed decision file is removed. Decisions recorded before since
// belong to an earlier pass and are discarded; later ones are delivered even
// if they were sent before Await was called.
func (i *Inbox) Await(ctx context.Context, taskID string, since time.Time) (domain.Decision, error) {
	dir := domain.DecisionDir(i.stateDir, taskID)
	ticker := time.NewTicker(i.pollInterval)
	defer ticker.Stop()

	for {
		d, ok, err := i.poll(dir, taskID, since)
		if err != nil {
			return "", err
		}
		if ok {
			return d, nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}

func (i *Inbox) poll(dir, taskID string, since time.Time) (domain.Decision, bool, error) {
	files, err := decisionFiles(dir)
	if err != nil {
		return "", false, err
	}
	for _, name := range files {
		path := filepath.Join(dir, name)
		msg, ok := readMessage(path)
		if !ok || msg.TaskID != taskID {
			continue
		}
		// Removal claims the message; a failed remove means it is gone already.
		if err := os.Remove(path); err != nil {
			continue
		}
		if msg.CreatedAt.Before(since) {
			continue
		}
		return msg.Decision, true, nil
	}
	return "", false, nil
}

func decisionFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read decision dir: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ".json" {
			continue
		}
		files = append(files, name)
	}
	sort.Strings(files)
	return files, nil
}

func readMessage(path string) (Message, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		moveToFailed(path)
		return Message{}, false
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		moveToFailed(path)
		return Message{}, false
	}
	if err := msg.Validate(); err != nil {
		moveToFailed(path)
		return Message{}, false
	}
	return msg, true
}

func moveToFailed(path string) {
	failedDir := filepath.Join(filepath.Dir(path), "failed")
	if err := os.MkdirAll(failedDir, 0o750); err == nil {
		if err := os.Rename(path, filepath.Join(failedDir, filepath.Base(path))); err == nil {
			return
		}
	}
	_ = os.Rename(path, path+".bad")
}
