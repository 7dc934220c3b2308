package confirm

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/runoshun/git-relay/internal/domain"
)

// Colors used by the decision prompt.
var (
	ColorPrimary = lipgloss.Color("#6C5CE7") // Purple
	ColorMuted   = lipgloss.Color("#636E72") // Gray
	ColorSuccess = lipgloss.Color("#00B894") // Green
	ColorError   = lipgloss.Color("#D63031") // Red
	ColorWarning = lipgloss.Color("#FDCB6E") // Yellow
)

// Styles holds the styles for the decision prompt.
type Styles struct {
	Dialog   lipgloss.Style
	Title    lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Safe     lipgloss.Style
	Unsafe   lipgloss.Style
	HelpKey  lipgloss.Style
	HelpText lipgloss.Style
	Accepted lipgloss.Style
	Rejected lipgloss.Style
}

// DefaultStyles returns the default styles.
func DefaultStyles() Styles {
	return Styles{
		Dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary),
		Label: lipgloss.NewStyle().
			Foreground(ColorMuted).
			Width(8),
		Value:    lipgloss.NewStyle(),
		Safe:     lipgloss.NewStyle().Foreground(ColorSuccess),
		Unsafe:   lipgloss.NewStyle().Foreground(ColorWarning),
		HelpKey:  lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary),
		HelpText: lipgloss.NewStyle().Foreground(ColorMuted),
		Accepted: lipgloss.NewStyle().Bold(true).Foreground(ColorSuccess),
		Rejected: lipgloss.NewStyle().Bold(true).Foreground(ColorError),
	}
}

// TypeStyle returns the style that marks whether a task type may auto-commit.
func (s Styles) TypeStyle(t domain.TaskType) lipgloss.Style {
	if t.AutoCommitSafe() {
		return s.Safe
	}
	return s.Unsafe
}
