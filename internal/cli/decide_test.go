package cli

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/git-relay/internal/domain"
	"github.com/runoshun/git-relay/internal/testutil"
)

func TestNewDecideCommand_WritesInbox(t *testing.T) {
	repo := testutil.NewMockTaskRepository()
	repo.Add(newTask("aaaa1111", domain.StatusProcessing))
	container := newTestContainer(t, repo, &testutil.MockVersionControl{})

	cmd := newDecideCommand(container)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"aaaa1111", "accept"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "Task aaaa1111 accepted")

	entries, err := os.ReadDir(domain.DecisionDir(container.Config.RelayDir, "aaaa1111"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestNewDecideCommand_InvalidDecision(t *testing.T) {
	repo := testutil.NewMockTaskRepository()
	repo.Add(newTask("aaaa1111", domain.StatusProcessing))
	container := newTestContainer(t, repo, &testutil.MockVersionControl{})

	cmd := newDecideCommand(container)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"aaaa1111", "maybe"})

	assert.ErrorIs(t, cmd.Execute(), domain.ErrInvalidDecision)
}

func TestNewDecideCommand_NotWaiting(t *testing.T) {
	repo := testutil.NewMockTaskRepository()
	repo.Add(newTask("aaaa1111", domain.StatusPending))
	container := newTestContainer(t, repo, &testutil.MockVersionControl{})

	cmd := newDecideCommand(container)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"aaaa1111", "reject"})

	assert.ErrorIs(t, cmd.Execute(), domain.ErrNotAwaitingDecision)
}

func TestNewRevertCommand(t *testing.T) {
	repo := testutil.NewMockTaskRepository()
	repo.Add(newTask("aaaa1111", domain.StatusManualReview))
	vcs := &testutil.MockVersionControl{}
	container := newTestContainer(t, repo, vcs)

	cmd := newRevertCommand(container)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"aaaa1111"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, []string{"src/Hero.tsx", "src/Footer.tsx"}, vcs.Reverted)
	assert.Contains(t, buf.String(), "Reverted src/Hero.tsx")
}

func TestNewRevertCommand_CommitInFlight(t *testing.T) {
	repo := testutil.NewMockTaskRepository()
	repo.Add(newTask("aaaa1111", domain.StatusProcessing))
	vcs := &testutil.MockVersionControl{}
	container := newTestContainer(t, repo, vcs)
	container.Gate = &testutil.MockCommitGate{Held: true}

	cmd := newRevertCommand(container)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"aaaa1111"})

	assert.ErrorIs(t, cmd.Execute(), domain.ErrCommitInFlight)
	assert.Empty(t, vcs.Reverted)
}
