package watcher

import (
	"sync"

	"github.com/runoshun/git-relay/internal/domain"
)

// DispatchSet remembers which task files have been dispatched for processing.
// It lives as long as the watcher that owns it and is shared with the processor,
// which reports the statuses it writes so a later re-queue is recognized.
type DispatchSet struct {
	last map[string]domain.Status
	mu   sync.Mutex
}

// NewDispatchSet creates an empty dispatch set.
func NewDispatchSet() *DispatchSet {
	return &DispatchSet{last: make(map[string]domain.Status)}
}

// Observe records the status seen at path and reports whether the file should
// be dispatched. A file is dispatched once per transition into pending.
func (s *DispatchSet) Observe(path string, status domain.Status) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, seen := s.last[path]
	s.last[path] = status
	if status != domain.StatusPending {
		return false
	}
	return !seen || prev != domain.StatusPending
}

// Settle records a status written by the processor.
func (s *DispatchSet) Settle(path string, status domain.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[path] = status
}
