package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/runoshun/git-relay/internal/domain"
	"github.com/runoshun/git-relay/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNewTask(repo *testutil.MockTaskRepository) *NewTask {
	uc := NewNewTask(repo, &testutil.MockClock{NowTime: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}, nil)
	uc.newID = func() string { return "1f0e2d3c-4b5a-6978-8796-a5b4c3d2e1f0" }
	return uc
}

func TestNewTask_Execute_Success(t *testing.T) {
	repo := testutil.NewMockTaskRepository()
	uc := newTestNewTask(repo)

	out, err := uc.Execute(context.Background(), NewTaskInput{
		Type:        domain.TypeCopyChange,
		Description: "Change the hero headline",
		Scope:       []string{"./src/Hero.tsx"},
		Rules:       []string{"Keep it under 40 characters"},
		Source:      &domain.Source{Sender: "alice", Message: "hero copy please"},
	})

	require.NoError(t, err)
	task := out.Task
	assert.Equal(t, "1f0e2d3c", task.ID)
	assert.Equal(t, domain.StatusPending, task.Status)
	assert.Equal(t, []string{"src/Hero.tsx"}, task.Scope)
	assert.True(t, task.AutoCommit, "copy_change defaults to auto-commit")
	assert.Equal(t, "Keep it under 40 characters", task.Rules[len(task.Rules)-1])
	assert.Len(t, task.Rules, len(domain.TypeCopyChange.DefaultRules())+1)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), task.CreatedAt)
	assert.Equal(t, repo.Path("1f0e2d3c"), out.Path)
	assert.NotNil(t, repo.Snapshot("1f0e2d3c"))
}

func TestNewTask_Execute_AutoCommitDefaults(t *testing.T) {
	off := false
	tests := []struct {
		name       string
		typ        domain.TaskType
		autoCommit *bool
		want       bool
	}{
		{"safe type", domain.TypeSEOUpdate, nil, true},
		{"unsafe type", domain.TypeComponentEdit, nil, false},
		{"explicit off", domain.TypeColorChange, &off, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := newTestNewTask(testutil.NewMockTaskRepository()).Execute(context.Background(), NewTaskInput{
				Type:        tt.typ,
				Description: "x",
				Scope:       []string{"a.md"},
				AutoCommit:  tt.autoCommit,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Task.AutoCommit)
		})
	}
}

func TestNewTask_Execute_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   NewTaskInput
	}{
		{"unknown type", NewTaskInput{Type: "rewrite_everything", Description: "x", Scope: []string{"a.md"}}},
		{"empty description", NewTaskInput{Type: domain.TypeCopyChange, Scope: []string{"a.md"}}},
		{"empty scope", NewTaskInput{Type: domain.TypeCopyChange, Description: "x"}},
		{"escaping scope", NewTaskInput{Type: domain.TypeCopyChange, Description: "x", Scope: []string{"../secret.md"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := testutil.NewMockTaskRepository()
			_, err := newTestNewTask(repo).Execute(context.Background(), tt.in)
			assert.ErrorIs(t, err, domain.ErrInvalidTask)
			assert.Empty(t, repo.Tasks)
		})
	}
}

func TestNewTask_Execute_CreateError(t *testing.T) {
	repo := testutil.NewMockTaskRepository()
	repo.CreateErr = assert.AnError

	_, err := newTestNewTask(repo).Execute(context.Background(), NewTaskInput{
		Type:        domain.TypeCopyChange,
		Description: "x",
		Scope:       []string{"a.md"},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "create task")
}
