// Package confirm renders the interactive accept/reject prompt shown after an
// edit request has been handed to the editor.
package confirm

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"

	"github.com/runoshun/git-relay/internal/domain"
)

const defaultWidth = 80

// Model is the bubbletea model of the decision prompt.
type Model struct {
	task     *domain.Task
	keys     KeyMap
	styles   Styles
	decision domain.Decision
	width    int
}

// NewModel creates a prompt for task.
func NewModel(task *domain.Task) Model {
	return Model{
		task:   task,
		keys:   DefaultKeyMap(),
		styles: DefaultStyles(),
		width:  defaultWidth,
	}
}

// Decision returns the chosen decision, or "" while undecided.
func (m Model) Decision() domain.Decision {
	return m.decision
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Accept):
			m.decision = domain.DecisionAccepted
			return m, tea.Quit
		case key.Matches(msg, m.keys.Reject):
			m.decision = domain.DecisionRejected
			return m, tea.Quit
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.decision != "" {
		return m.viewResult() + "\n"
	}

	inner := m.width - 4 // border + padding
	if inner < 20 {
		inner = 20
	}
	valueWidth := inner - 8

	desc := strings.SplitN(m.task.Description, "\n", 2)[0]
	if runewidth.StringWidth(desc) > valueWidth {
		desc = runewidth.Truncate(desc, valueWidth, "...")
	}

	typeLine := m.styles.TypeStyle(m.task.Type).Render(string(m.task.Type))
	if m.task.AutoCommit && m.task.Type.AutoCommitSafe() {
		typeLine += m.styles.HelpText.Render("  (auto-commit requested)")
	}
	scopeLine := truncate.StringWithTail(strings.Join(m.task.Scope, ", "), uint(valueWidth), "...")

	row := func(label, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, m.styles.Label.Render(label), m.styles.Value.Render(value))
	}

	help := m.styles.HelpKey.Render("y") + m.styles.HelpText.Render(" accept  ") +
		m.styles.HelpKey.Render("n") + m.styles.HelpText.Render(" reject")

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Title.Render(fmt.Sprintf("Review change %s", m.task.ID)),
		"",
		row("Task", desc),
		row("Type", typeLine),
		row("Files", scopeLine),
		"",
		m.styles.HelpText.Render("Apply the proposed edit in your editor, then decide."),
		help,
	)
	return m.styles.Dialog.Render(content) + "\n"
}

func (m Model) viewResult() string {
	if m.decision == domain.DecisionAccepted {
		return m.styles.Accepted.Render(fmt.Sprintf("✓ %s accepted", m.task.ID))
	}
	return m.styles.Rejected.Render(fmt.Sprintf("✗ %s rejected", m.task.ID))
}
