package domain

import (
	"fmt"
	"strings"
)

// CommitSummaryPrefix tags the first line of every unattended commit.
const CommitSummaryPrefix = "🤖 Auto: "

// CommitMessage builds the commit message for a task.
// History tooling parses this layout to trace commits back to tasks.
//
//	🤖 Auto: <description>
//
//	Task ID: <id>
//	Type: <type>
func CommitMessage(t *Task) string {
	summary := strings.TrimSpace(strings.SplitN(t.Description, "\n", 2)[0])
	return fmt.Sprintf("%s%s\n\nTask ID: %s\nType: %s", CommitSummaryPrefix, summary, t.ID, t.Type)
}
