package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt(t *testing.T) {
	req := EditRequest{
		TaskID:      "t1",
		Type:        TypeCopyChange,
		Description: "Change the headline to 'Hello'",
		Scope:       []string{"src/Hero.tsx", "src/Footer.tsx"},
		Rules:       []string{"Only modify text content"},
	}

	want := `Apply the following change strictly:

## Task Type
copy_change

## Description
Change the headline to 'Hello'

## Target Files (ONLY modify these)
- src/Hero.tsx
- src/Footer.tsx

## Rules (MUST follow)
- Only modify text content

## Important
- Make ONLY the requested change
- Do NOT modify any other code
- Do NOT change layout or structure unless explicitly requested
- Preserve all existing functionality
- Keep the same code style and formatting

Please apply this change now.`

	assert.Equal(t, want, BuildPrompt(req))
}

func TestBuildPrompt_NoRules(t *testing.T) {
	got := BuildPrompt(EditRequest{Type: TypeSEOUpdate, Description: "d", Scope: []string{"a.md"}})
	assert.Contains(t, got, "## Rules (MUST follow)\n\n\n## Important")
}

func TestNewEditRequest(t *testing.T) {
	task := &Task{ID: "x", Type: TypeStyleChange, Description: "d", Scope: []string{"a.css"}, Rules: []string{"r"}}
	req := NewEditRequest(task)
	assert.Equal(t, "x", req.TaskID)
	assert.Equal(t, TypeStyleChange, req.Type)
	assert.Equal(t, []string{"a.css"}, req.Scope)
	assert.Equal(t, []string{"r"}, req.Rules)
}
