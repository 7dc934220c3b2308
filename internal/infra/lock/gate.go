// Package lock provides the commit gate that serializes working tree mutations
// across goroutines and across relay processes sharing one repository.
package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/runoshun/git-relay/internal/domain"
)

// Ensure Gate implements domain.CommitGate interface.
var _ domain.CommitGate = (*Gate)(nil)

// FileName is the lock file created under the relay state directory.
const FileName = "commit.lock"

// DefaultPollInterval is how often Acquire retries a lock held by another process.
const DefaultPollInterval = 100 * time.Millisecond

// Gate is a single-slot lock: a channel guards goroutines of this process and
// an flock on a file guards other processes.
type Gate struct {
	slot         chan struct{}
	path         string
	pollInterval time.Duration
}

// NewGate creates a gate backed by stateDir/commit.lock.
// An empty stateDir makes the gate process-local.
func NewGate(stateDir string) *Gate {
	g := &Gate{
		slot:         make(chan struct{}, 1),
		pollInterval: DefaultPollInterval,
	}
	if stateDir != "" {
		g.path = filepath.Join(stateDir, FileName)
	}
	return g
}

// Acquire waits until both the in-process slot and the file lock are held.
func (g *Gate) Acquire(ctx context.Context) (func(), error) {
	select {
	case g.slot <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	ticker := time.NewTicker(g.pollInterval)
	defer ticker.Stop()
	for {
		f, err := g.lockFile()
		if err == nil {
			return g.releaser(f), nil
		}
		if !errors.Is(err, domain.ErrCommitInFlight) {
			<-g.slot
			return nil, err
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			<-g.slot
			return nil, ctx.Err()
		}
	}
}

// TryAcquire takes the gate or fails with domain.ErrCommitInFlight.
func (g *Gate) TryAcquire() (func(), error) {
	select {
	case g.slot <- struct{}{}:
	default:
		return nil, domain.ErrCommitInFlight
	}
	f, err := g.lockFile()
	if err != nil {
		<-g.slot
		return nil, err
	}
	return g.releaser(f), nil
}

// lockFile takes a non-blocking exclusive flock. A nil file means no file lock is used.
func (g *Gate) lockFile() (*os.File, error) {
	if g.path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(g.path), 0o750); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	f, err := os.OpenFile(g.path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = f.Close()
		if errors.Is(err, syscall.EWOULDBLOCK) {
			return nil, domain.ErrCommitInFlight
		}
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	return f, nil
}

func (g *Gate) releaser(f *os.File) func() {
	var released bool
	return func() {
		if released {
			return
		}
		released = true
		if f != nil {
			_ = syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
			_ = f.Close()
		}
		<-g.slot
	}
}
