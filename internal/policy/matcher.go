// Package policy decides whether a task's change may be committed unattended.
package policy

import (
	"fmt"
	"path"
	"strings"

	"github.com/gobwas/glob"
	"github.com/runoshun/git-relay/internal/domain"
)

// PathMatcher matches relative file paths against a set of glob patterns.
// A pattern without "/" also matches against the path's base name,
// so "*.tsx" accepts "src/components/Hero.tsx".
type PathMatcher struct {
	patterns []compiledPattern
}

type compiledPattern struct {
	g        glob.Glob
	raw      string
	baseOnly bool
}

// NewPathMatcher compiles patterns once. Empty patterns are skipped.
func NewPathMatcher(patterns []string) (*PathMatcher, error) {
	m := &PathMatcher{patterns: make([]compiledPattern, 0, len(patterns))}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", p, err)
		}
		m.patterns = append(m.patterns, compiledPattern{
			g:        g,
			raw:      p,
			baseOnly: !strings.Contains(p, "/"),
		})
	}
	return m, nil
}

// Match reports whether p matches at least one pattern.
func (m *PathMatcher) Match(p string) bool {
	p = domain.NormalizePath(p)
	base := path.Base(p)
	for _, cp := range m.patterns {
		if cp.g.Match(p) {
			return true
		}
		if cp.baseOnly && cp.g.Match(base) {
			return true
		}
	}
	return false
}

// MatchAll reports whether every path matches, returning the first that does not.
func (m *PathMatcher) MatchAll(paths []string) (string, bool) {
	for _, p := range paths {
		if !m.Match(p) {
			return p, false
		}
	}
	return "", true
}

// Patterns returns the source patterns in order.
func (m *PathMatcher) Patterns() []string {
	out := make([]string, len(m.patterns))
	for i, cp := range m.patterns {
		out[i] = cp.raw
	}
	return out
}
