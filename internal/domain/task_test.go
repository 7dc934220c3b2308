package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPendingTask() *Task {
	return &Task{
		ID:          "abc12345",
		Type:        TypeCopyChange,
		Description: "Change hero headline",
		Scope:       []string{"src/Hero.tsx"},
		Rules:       TypeCopyChange.DefaultRules(),
		AutoCommit:  true,
		Status:      StatusPending,
		CreatedAt:   time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestTask_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Task)
		wantErr string
	}{
		{"valid", func(*Task) {}, ""},
		{"empty id", func(t *Task) { t.ID = " " }, "id is empty"},
		{"unknown type", func(t *Task) { t.Type = "rewrite_everything" }, "unknown type"},
		{"unknown status", func(t *Task) { t.Status = "done" }, "unknown status"},
		{"empty scope", func(t *Task) { t.Scope = nil }, "scope is empty"},
		{"blank scope path", func(t *Task) { t.Scope = []string{""} }, "empty path"},
		{"absolute path", func(t *Task) { t.Scope = []string{"/etc/passwd"} }, "relative"},
		{"windows absolute path", func(t *Task) { t.Scope = []string{`C:\src\a.ts`} }, "relative"},
		{"escaping path", func(t *Task) { t.Scope = []string{"src/../../secret.ts"} }, "escapes"},
		{"dot slash path is fine", func(t *Task) { t.Scope = []string{"./src/Hero.tsx"} }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := newPendingTask()
			tt.mutate(task)
			err := task.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTask_Lifecycle(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	task := newPendingTask()
	require.NoError(t, task.Start(now))
	assert.Equal(t, StatusProcessing, task.Status)
	assert.Nil(t, task.Result)
	require.NotNil(t, task.UpdatedAt)
	assert.Equal(t, now, *task.UpdatedAt)

	require.NoError(t, task.Finish(StatusSuccess, "Changes committed and pushed", nil, now.Add(time.Minute)))
	assert.Equal(t, StatusSuccess, task.Status)
	require.NotNil(t, task.Result)
	assert.Equal(t, StatusSuccess, task.Result.Status)
	assert.Equal(t, "Changes committed and pushed", task.Result.Details)
	assert.Equal(t, now.Add(time.Minute), *task.Result.UpdatedAt)

	require.NoError(t, task.Requeue(now.Add(2*time.Minute)))
	assert.Equal(t, StatusPending, task.Status)
	assert.Nil(t, task.Result)
}

func TestTask_Start_RequiresPending(t *testing.T) {
	task := newPendingTask()
	task.Status = StatusFailed

	err := task.Start(time.Now())
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusFailed, task.Status)
}

func TestTask_Finish_RejectsNonTerminal(t *testing.T) {
	task := newPendingTask()
	require.NoError(t, task.Start(time.Now()))

	err := task.Finish(StatusPending, "", nil, time.Now())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTask_Finish_FromPendingIsInvalid(t *testing.T) {
	task := newPendingTask()

	err := task.Finish(StatusSuccess, "done", nil, time.Now())
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Nil(t, task.Result)
}

func TestTask_Finish_ResultIsImmutable(t *testing.T) {
	task := newPendingTask()
	require.NoError(t, task.Start(time.Now()))
	require.NoError(t, task.Finish(StatusRejected, "User rejected changes", nil, time.Now()))

	t.Run("different outcome is rejected", func(t *testing.T) {
		err := task.Finish(StatusFailed, "boom", nil, time.Now())
		assert.True(t, errors.Is(err, ErrResultImmutable))
		assert.Equal(t, StatusRejected, task.Result.Status)
		assert.Equal(t, "User rejected changes", task.Result.Details)
	})

	t.Run("same outcome refreshes timestamp", func(t *testing.T) {
		later := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, task.Finish(StatusRejected, "User rejected changes", nil, later))
		assert.Equal(t, later, *task.Result.UpdatedAt)
	})
}

func TestTask_Requeue_RequiresTerminal(t *testing.T) {
	task := newPendingTask()
	require.NoError(t, task.Start(time.Now()))

	err := task.Requeue(time.Now())
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusProcessing, task.Status)
}

func TestTask_JSONRoundTrip(t *testing.T) {
	doc := `{
  "id": "a1b2c3d4",
  "type": "color_change",
  "description": "Make the button blue",
  "scope": ["src/styles/globals.css"],
  "rules": ["Only modify color values"],
  "auto_commit": true,
  "status": "failed",
  "created_at": "2025-01-01T12:00:00.123456Z",
  "updated_at": "2025-01-01T12:05:00Z",
  "source": {"message": "make it blue", "sender": "+15550100", "timestamp": "2025-01-01T11:59:00Z"},
  "result": {"status": "failed", "details": "diff too large", "data": {"lines": [1, 2, {"k": null}]}, "updated_at": "2025-01-01T12:05:00Z"}
}`
	var task Task
	require.NoError(t, json.Unmarshal([]byte(doc), &task))
	require.NoError(t, task.Validate())

	out, err := json.Marshal(&task)
	require.NoError(t, err)

	assert.JSONEq(t, doc, string(out))

	var again Task
	require.NoError(t, json.Unmarshal(out, &again))
	assert.Equal(t, task.CreatedAt, again.CreatedAt)
	assert.JSONEq(t, `{"lines": [1, 2, {"k": null}]}`, string(again.Result.Data))
	assert.Equal(t, "+15550100", again.Source.Sender)
}

func TestTask_JSONKeepsNullResult(t *testing.T) {
	doc := `{
  "id": "a1b2c3d4",
  "type": "copy_change",
  "description": "Change hero headline",
  "scope": ["src/Hero.tsx"],
  "rules": [],
  "auto_commit": false,
  "status": "pending",
  "created_at": "2025-01-01T12:00:00Z",
  "result": null
}`
	var task Task
	require.NoError(t, json.Unmarshal([]byte(doc), &task))
	assert.Nil(t, task.Result)

	out, err := json.Marshal(&task)
	require.NoError(t, err)
	assert.JSONEq(t, doc, string(out))

	// A requeued task writes the key back as null.
	done := newPendingTask()
	require.NoError(t, done.Start(time.Now()))
	require.NoError(t, done.Finish(StatusFailed, "boom", nil, time.Now()))
	require.NoError(t, done.Requeue(time.Now()))
	out, err = json.Marshal(done)
	require.NoError(t, err)
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &raw))
	require.Contains(t, raw, "result")
	assert.Equal(t, "null", string(raw["result"]))
}

func TestTask_NormalizedScope(t *testing.T) {
	task := newPendingTask()
	task.Scope = []string{"./src/Hero.tsx", `src\styles\a.css`, "src//b.ts"}

	got := task.NormalizedScope()
	assert.Len(t, got, 3)
	assert.Contains(t, got, "src/Hero.tsx")
	assert.Contains(t, got, "src/styles/a.css")
	assert.Contains(t, got, "src/b.ts")
}

func TestNormalizePath(t *testing.T) {
	tests := map[string]string{
		"Hero.tsx":          "Hero.tsx",
		"./Hero.tsx":        "Hero.tsx",
		"src/./Hero.tsx":    "src/Hero.tsx",
		"src/a/../Hero.tsx": "src/Hero.tsx",
		` src\Hero.tsx `:    "src/Hero.tsx",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizePath(in), in)
	}
}
