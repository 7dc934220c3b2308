// Package git provides the working-tree operations behind unattended commits.
// Branch and commit go through go-git; status, diff statistics, staging,
// push and checkout shell out to the git CLI.
package git

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	gogit "github.com/go-git/go-git/v5"

	"github.com/runoshun/git-relay/internal/domain"
)

// Ensure Client implements domain.VersionControl interface.
var _ domain.VersionControl = (*Client)(nil)

// Client provides git operations on one working tree.
type Client struct {
	repo     *gogit.Repository
	repoRoot string   // Top level of the working tree
	gitDir   string   // Common .git directory
	ignored  []string // Slash-separated prefixes excluded from status and diff
}

// Option configures a Client.
type Option func(*Client)

// WithIgnoredPaths excludes relay's own bookkeeping directories from status and diff.
// Paths outside the working tree are ignored.
func WithIgnoredPaths(paths ...string) Option {
	return func(c *Client) {
		for _, p := range paths {
			if p == "" {
				continue
			}
			abs, err := filepath.Abs(p)
			if err != nil {
				continue
			}
			rel, err := filepath.Rel(c.repoRoot, abs)
			if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
				continue
			}
			c.ignored = append(c.ignored, filepath.ToSlash(rel))
		}
	}
}

// NewClient creates a new git client by detecting the repository root from the given directory.
func NewClient(dir string, opts ...Option) (*Client, error) {
	repoRoot, gitDir, err := findGitRoot(dir)
	if err != nil {
		return nil, err
	}
	repo, err := gogit.PlainOpenWithOptions(repoRoot, &gogit.PlainOpenOptions{EnableDotGitCommonDir: true})
	if err != nil {
		return nil, fmt.Errorf("open git repository: %w", err)
	}
	c := &Client{
		repo:     repo,
		repoRoot: repoRoot,
		gitDir:   gitDir,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Ignore excludes more paths once they are known, e.g. a tasks directory read from config.
func (c *Client) Ignore(paths ...string) {
	WithIgnoredPaths(paths...)(c)
}

// Root returns the working tree root directory.
func (c *Client) Root() string {
	return c.repoRoot
}

// GitDir returns the .git directory path.
func (c *Client) GitDir() string {
	return c.gitDir
}

// CurrentBranch returns the name of the current branch.
func (c *Client) CurrentBranch() (string, error) {
	head, err := c.repo.Head()
	if err != nil {
		return "", &domain.VersionControlError{Op: "rev-parse HEAD", Err: err}
	}
	if !head.Name().IsBranch() {
		return "", &domain.VersionControlError{Op: "rev-parse HEAD", Err: errors.New("HEAD is detached")}
	}
	return head.Name().Short(), nil
}

// changes returns changed paths and the subset that is untracked.
// It reads `git status` so that every ignore source git honors
// (.gitignore, info/exclude, core.excludesFile) applies.
func (c *Client) changes(ctx context.Context) (changed []string, untracked map[string]bool, err error) {
	out, err := c.run(ctx, "status", "status", "--porcelain=v1", "-z", "--untracked-files=all")
	if err != nil {
		return nil, nil, err
	}
	entries, err := parsePorcelain(out)
	if err != nil {
		return nil, nil, &domain.VersionControlError{Op: "status", Output: out, Err: err}
	}

	untracked = make(map[string]bool)
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if c.isIgnored(e.path) || seen[e.path] {
			continue
		}
		seen[e.path] = true
		changed = append(changed, e.path)
		if e.untracked {
			untracked[e.path] = true
		}
	}
	sort.Strings(changed)
	return changed, untracked, nil
}

type statusEntry struct {
	path      string
	untracked bool
}

// parsePorcelain parses `git status --porcelain=v1 -z`.
// A rename or copy reports both the new and the original path.
func parsePorcelain(out string) ([]statusEntry, error) {
	var entries []statusEntry
	fields := strings.Split(out, "\x00")
	for i := 0; i < len(fields); i++ {
		f := fields[i]
		if f == "" {
			continue
		}
		if len(f) < 4 || f[2] != ' ' {
			return nil, fmt.Errorf("unexpected status entry %q", f)
		}
		xy := f[:2]
		entries = append(entries, statusEntry{path: f[3:], untracked: xy == "??"})
		if xy[0] == 'R' || xy[0] == 'C' {
			i++
			if i >= len(fields) || fields[i] == "" {
				return nil, fmt.Errorf("missing original path for %q", f)
			}
			entries = append(entries, statusEntry{path: fields[i]})
		}
	}
	return entries, nil
}

// ChangedFiles returns the paths the working tree reports as changed,
// including staged, modified, deleted and untracked files.
func (c *Client) ChangedFiles(ctx context.Context) ([]string, error) {
	changed, _, err := c.changes(ctx)
	return changed, err
}

// IsClean reports whether the working tree has no changes.
func (c *Client) IsClean(ctx context.Context) (bool, error) {
	changed, err := c.ChangedFiles(ctx)
	if err != nil {
		return false, err
	}
	return len(changed) == 0, nil
}

// DiffLineCount returns inserted plus deleted lines against HEAD.
// Untracked files count every line as inserted. Binary files count as zero.
func (c *Client) DiffLineCount(ctx context.Context) (int, error) {
	args := append([]string{"diff", "--numstat", "HEAD", "--", "."}, c.excludePathspecs()...)
	out, err := c.run(ctx, "diff", args...)
	if err != nil {
		return 0, err
	}

	total, err := parseNumstat(out)
	if err != nil {
		return 0, &domain.VersionControlError{Op: "diff", Output: out, Err: err}
	}

	_, untracked, err := c.changes(ctx)
	if err != nil {
		return 0, err
	}
	for path := range untracked {
		n, err := countLines(filepath.Join(c.repoRoot, filepath.FromSlash(path)))
		if err != nil {
			return 0, &domain.VersionControlError{Op: "diff", Err: err}
		}
		total += n
	}
	return total, nil
}

// Stage adds exactly the given paths to the index.
// Paths that neither exist nor are tracked deletions are skipped.
func (c *Client) Stage(ctx context.Context, paths []string) error {
	changed, _, err := c.changes(ctx)
	if err != nil {
		return err
	}
	changedSet := make(map[string]bool, len(changed))
	for _, p := range changed {
		changedSet[p] = true
	}

	var toAdd []string
	for _, p := range paths {
		rel := domain.NormalizePath(p)
		if _, err := os.Stat(filepath.Join(c.repoRoot, filepath.FromSlash(rel))); err == nil || changedSet[rel] {
			toAdd = append(toAdd, rel)
		}
	}
	if len(toAdd) == 0 {
		return &domain.VersionControlError{Op: "add", Err: domain.ErrNoTargetFiles}
	}

	_, err = c.run(ctx, "add", append([]string{"add", "--"}, toAdd...)...)
	return err
}

// Commit records the index and returns the new commit hash.
func (c *Client) Commit(_ context.Context, message string) (string, error) {
	wt, err := c.repo.Worktree()
	if err != nil {
		return "", &domain.VersionControlError{Op: "commit", Err: err}
	}
	hash, err := wt.Commit(message, &gogit.CommitOptions{})
	if err != nil {
		return "", &domain.VersionControlError{Op: "commit", Err: err}
	}
	return hash.String(), nil
}

// Push pushes branch to remote.
// An empty remote means origin; an empty branch means the current branch.
func (c *Client) Push(ctx context.Context, remote, branch string) error {
	if remote == "" {
		remote = domain.DefaultRemote
	}
	if branch == "" {
		b, err := c.CurrentBranch()
		if err != nil {
			return err
		}
		branch = b
	}
	_, err := c.run(ctx, "push", "push", remote, branch)
	return err
}

// Revert discards working tree changes to the given paths.
// Tracked files are restored from HEAD and untracked files are removed.
func (c *Client) Revert(ctx context.Context, paths []string) error {
	_, untracked, err := c.changes(ctx)
	if err != nil {
		return err
	}

	var tracked []string
	for _, p := range paths {
		rel := domain.NormalizePath(p)
		if untracked[rel] {
			if err := os.Remove(filepath.Join(c.repoRoot, filepath.FromSlash(rel))); err != nil && !os.IsNotExist(err) {
				return &domain.VersionControlError{Op: "revert", Err: err}
			}
			continue
		}
		tracked = append(tracked, rel)
	}
	if len(tracked) == 0 {
		return nil
	}

	// Unstage first so a staged-only change is discarded as well.
	if _, err := c.run(ctx, "reset", append([]string{"reset", "-q", "HEAD", "--"}, tracked...)...); err != nil {
		return err
	}
	_, err = c.run(ctx, "checkout", append([]string{"checkout", "HEAD", "--"}, tracked...)...)
	return err
}

func (c *Client) isIgnored(path string) bool {
	for _, prefix := range c.ignored {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

func (c *Client) excludePathspecs() []string {
	specs := make([]string, 0, len(c.ignored))
	for _, p := range c.ignored {
		specs = append(specs, ":(exclude)"+p)
	}
	return specs
}

// run executes a git command in the working tree and wraps failures.
func (c *Client) run(ctx context.Context, op string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...) //nolint:gosec // args are built from trusted paths
	cmd.Dir = c.repoRoot
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", &domain.VersionControlError{Op: op, Output: stderr.String(), Err: err}
	}
	return string(out), nil
}

// parseNumstat sums added and deleted columns of `git diff --numstat`.
func parseNumstat(out string) (int, error) {
	total := 0
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		for _, f := range fields[:2] {
			if f == "-" {
				continue // Binary
			}
			n, err := strconv.Atoi(f)
			if err != nil {
				return 0, fmt.Errorf("parse numstat %q: %w", scanner.Text(), err)
			}
			total += n
		}
	}
	return total, scanner.Err()
}

func countLines(path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	if len(content) == 0 || bytes.IndexByte(content, 0) >= 0 {
		return 0, nil
	}
	n := bytes.Count(content, []byte{'\n'})
	if content[len(content)-1] != '\n' {
		n++
	}
	return n, nil
}

// findGitRoot finds the working tree root and common .git directory from the given directory.
func findGitRoot(dir string) (repoRoot, gitDir string, err error) {
	cmd := exec.Command("git", "rev-parse", "--git-common-dir")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", "", domain.ErrNotGitRepository
	}
	gitDir = strings.TrimSpace(string(out))

	cmd = exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = dir
	toplevel, err := cmd.Output()
	if err != nil {
		return "", "", fmt.Errorf("failed to find toplevel: %w", err)
	}
	repoRoot = strings.TrimSpace(string(toplevel))

	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(dir, gitDir)
	}
	return repoRoot, filepath.Clean(gitDir), nil
}
