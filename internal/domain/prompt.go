package domain

import "strings"

// guardLines close every prompt regardless of task rules.
var guardLines = []string{
	"Make ONLY the requested change",
	"Do NOT modify any other code",
	"Do NOT change layout or structure unless explicitly requested",
	"Preserve all existing functionality",
	"Keep the same code style and formatting",
}

// BuildPrompt renders the structured change request handed to the edit proposer.
func BuildPrompt(req EditRequest) string {
	var b strings.Builder
	b.WriteString("Apply the following change strictly:\n\n")

	b.WriteString("## Task Type\n")
	b.WriteString(string(req.Type))
	b.WriteString("\n\n## Description\n")
	b.WriteString(req.Description)

	b.WriteString("\n\n## Target Files (ONLY modify these)\n")
	writeBullets(&b, req.Scope)

	b.WriteString("\n\n## Rules (MUST follow)\n")
	writeBullets(&b, req.Rules)

	b.WriteString("\n\n## Important\n")
	writeBullets(&b, guardLines)

	b.WriteString("\n\nPlease apply this change now.")
	return b.String()
}

func writeBullets(b *strings.Builder, items []string) {
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(item)
	}
}
