// Package taskstore provides a file-per-task implementation of TaskRepository.
// Each task is a CHANGE-<id>.json document; terminal copies may live under archive/.
package taskstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/runoshun/git-relay/internal/domain"
)

// Ensure Store implements domain.TaskRepository.
var _ domain.TaskRepository = (*Store)(nil)

const lockFileName = ".lock"

// Store implements domain.TaskRepository using JSON files in a tasks directory.
type Store struct {
	dir        string
	archiveDir string
	lockPath   string
}

// New creates a new Store rooted at dir.
func New(dir string) *Store {
	return &Store{
		dir:        dir,
		archiveDir: domain.ArchiveDir(dir),
		lockPath:   filepath.Join(dir, lockFileName),
	}
}

// Dir returns the tasks directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file path for a task ID.
func (s *Store) Path(id string) string {
	return filepath.Join(s.dir, domain.TaskFileName(id))
}

func (s *Store) archivePath(id string) string {
	return filepath.Join(s.archiveDir, domain.TaskFileName(id))
}

// IsArchived reports whether path points into the archive directory.
func (s *Store) IsArchived(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	archive, err := filepath.Abs(s.archiveDir)
	if err != nil {
		return false
	}
	return filepath.Dir(abs) == archive
}

// Load reads and validates the task document at path.
func (s *Store) Load(path string) (*domain.Task, error) {
	var task *domain.Task
	err := s.withLock(func() error {
		t, err := readTask(path)
		task = t
		return err
	})
	return task, err
}

// Get retrieves a task by ID, falling back to the archive.
func (s *Store) Get(id string) (*domain.Task, error) {
	var task *domain.Task
	err := s.withLock(func() error {
		t, err := s.readByID(id)
		task = t
		return err
	})
	return task, err
}

// List retrieves tasks matching the filter, newest first.
// Malformed files are collected in the result instead of failing the listing.
func (s *Store) List(filter domain.TaskFilter) (*domain.TaskList, error) {
	result := &domain.TaskList{}
	err := s.withLock(func() error {
		dirs := []string{s.dir}
		if filter.IncludeArchived {
			dirs = append(dirs, s.archiveDir)
		}
		for _, dir := range dirs {
			paths, err := listTaskFiles(dir)
			if err != nil {
				return err
			}
			for _, path := range paths {
				task, err := readTask(path)
				if err != nil {
					var mErr *domain.MalformedTaskError
					if errors.As(err, &mErr) {
						result.Malformed = append(result.Malformed, mErr)
						continue
					}
					if errors.Is(err, os.ErrNotExist) {
						continue // Removed between listing and reading
					}
					return err
				}
				if filter.Matches(task) {
					result.Tasks = append(result.Tasks, task)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(result.Tasks, func(a, b *domain.Task) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return result, nil
}

// Create writes a new task and refuses to overwrite an existing one.
func (s *Store) Create(task *domain.Task) error {
	if task == nil {
		return errors.New("task is nil")
	}
	if err := task.Validate(); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}
	return s.withLockWrite(func() error {
		for _, p := range []string{s.Path(task.ID), s.archivePath(task.ID)} {
			if _, err := os.Stat(p); err == nil {
				return fmt.Errorf("%s: %w", task.ID, domain.ErrTaskExists)
			}
		}
		return writeTask(s.Path(task.ID), task)
	})
}

// Save rewrites the full task document atomically.
// Archived records are read-only and never written.
func (s *Store) Save(task *domain.Task) error {
	if task == nil {
		return errors.New("task is nil")
	}
	if err := task.Validate(); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}
	return s.withLockWrite(func() error {
		path := s.Path(task.ID)
		if _, err := os.Stat(path); err != nil {
			if !os.IsNotExist(err) {
				return fmt.Errorf("stat task file: %w", err)
			}
			if _, aerr := os.Stat(s.archivePath(task.ID)); aerr == nil {
				return fmt.Errorf("%s: %w", task.ID, domain.ErrArchivedReadOnly)
			}
			return fmt.Errorf("%s: %w", task.ID, domain.ErrTaskNotFound)
		}
		return writeTask(path, task)
	})
}

// Delete removes a task by ID.
func (s *Store) Delete(id string) error {
	return s.withLockWrite(func() error {
		if err := os.Remove(s.Path(id)); err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("%s: %w", id, domain.ErrTaskNotFound)
			}
			return fmt.Errorf("remove task file: %w", err)
		}
		return nil
	})
}

// Archive moves a terminal task into the archive directory.
func (s *Store) Archive(id string) error {
	return s.withLockWrite(func() error {
		path := s.Path(id)
		task, err := readTask(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("%s: %w", id, domain.ErrTaskNotFound)
			}
			return err
		}
		if !task.Status.IsTerminal() {
			return fmt.Errorf("cannot archive task in %s status: %w", task.Status, domain.ErrInvalidTransition)
		}
		if err := os.MkdirAll(s.archiveDir, 0o750); err != nil {
			return fmt.Errorf("create archive directory: %w", err)
		}
		if err := os.Rename(path, s.archivePath(id)); err != nil {
			return fmt.Errorf("move task to archive: %w", err)
		}
		return nil
	})
}

func (s *Store) readByID(id string) (*domain.Task, error) {
	task, err := readTask(s.Path(id))
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		return task, err
	}
	task, err = readTask(s.archivePath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", id, domain.ErrTaskNotFound)
		}
		return nil, err
	}
	return task, nil
}

func (s *Store) withLock(fn func() error) error {
	lock, err := s.acquireLock(syscall.LOCK_SH)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)
	return fn()
}

func (s *Store) withLockWrite(fn func() error) error {
	lock, err := s.acquireLock(syscall.LOCK_EX)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)
	return fn()
}

func (s *Store) acquireLock(lockType int) (*os.File, error) {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return nil, fmt.Errorf("create tasks directory: %w", err)
	}

	lock, err := os.OpenFile(s.lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(lock.Fd()), lockType); err != nil {
		_ = lock.Close()
		return nil, fmt.Errorf("acquire lock: %w", err)
	}

	return lock, nil
}

func (s *Store) releaseLock(lock *os.File) {
	_ = syscall.Flock(int(lock.Fd()), syscall.LOCK_UN)
	_ = lock.Close()
}

// listTaskFiles returns task file paths in dir sorted by name.
// A missing directory yields no files.
func listTaskFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read tasks directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !domain.IsTaskFile(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}

func readTask(path string) (*domain.Task, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("read task file: %w", os.ErrNotExist)
		}
		return nil, fmt.Errorf("read task file: %w", err)
	}
	return parseTask(path, content)
}

// parseTask decodes a task document, rejecting unknown or missing fields.
func parseTask(path string, content []byte) (*domain.Task, error) {
	malformed := func(reason string, cause error) error {
		return &domain.MalformedTaskError{Path: path, Reason: reason, Err: cause}
	}

	var keys map[string]json.RawMessage
	if err := json.NewDecoder(bytes.NewReader(content)).Decode(&keys); err != nil {
		return nil, malformed(err.Error(), err)
	}
	for _, k := range domain.RequiredTaskFields {
		if _, ok := keys[k]; !ok {
			return nil, malformed("missing required field "+k, nil)
		}
	}

	var task domain.Task
	if err := decodeJSONStrict(content, &task); err != nil {
		return nil, malformed(err.Error(), err)
	}
	if err := task.Validate(); err != nil {
		return nil, malformed(err.Error(), err)
	}
	if id, ok := domain.ParseTaskFileName(path); ok && id != task.ID {
		return nil, malformed(fmt.Sprintf("id %q does not match file name", task.ID), nil)
	}
	return &task, nil
}

func writeTask(path string, task *domain.Task) error {
	content, err := json.MarshalIndent(task, "", "  ")
	if err != nil {
		return fmt.Errorf("encode task: %w", err)
	}
	content = append(content, '\n')
	return writeAtomic(path, content, 0o644)
}

func decodeJSONStrict(content []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("unexpected trailing content")
	}
	return nil
}

// writeAtomic replaces path via a temp file and rename so readers never see a partial document.
func writeAtomic(path string, content []byte, perm os.FileMode) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, content, perm); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
