package editor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/runoshun/git-relay/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	executed   []*domain.ExecCommand
	started    []*domain.ExecCommand
	executeErr error
	startErr   error
	missing    map[string]bool
}

func (f *fakeExec) Execute(_ context.Context, cmd *domain.ExecCommand) ([]byte, error) {
	f.executed = append(f.executed, cmd)
	return []byte("boom"), f.executeErr
}

func (f *fakeExec) Start(cmd *domain.ExecCommand) error {
	f.started = append(f.started, cmd)
	return f.startErr
}

func (f *fakeExec) LookPath(program string) (string, error) {
	if f.missing[program] {
		return "", errors.New("not found")
	}
	return "/usr/bin/" + program, nil
}

type stubProposer struct {
	err     error
	name    string
	prompts []string
}

func (s *stubProposer) Name() string { return s.name }

func (s *stubProposer) Propose(_ context.Context, prompt string) error {
	s.prompts = append(s.prompts, prompt)
	return s.err
}

func TestCommandProposer(t *testing.T) {
	ctx := context.Background()

	t.Run("pipes prompt to configured command", func(t *testing.T) {
		ex := &fakeExec{}
		p := NewCommandProposer(ex, "agent --apply", "/repo")
		require.NoError(t, p.Propose(ctx, "do it"))

		require.Len(t, ex.executed, 1)
		assert.Equal(t, "agent", ex.executed[0].Program)
		assert.Equal(t, []string{"--apply"}, ex.executed[0].Args)
		assert.Equal(t, "do it", ex.executed[0].Stdin)
		assert.Equal(t, "/repo", ex.executed[0].Dir)
	})

	t.Run("unset command is unavailable", func(t *testing.T) {
		err := NewCommandProposer(&fakeExec{}, "", "").Propose(ctx, "x")
		assert.ErrorIs(t, err, domain.ErrProposerUnavailable)
	})

	t.Run("missing binary is unavailable", func(t *testing.T) {
		ex := &fakeExec{missing: map[string]bool{"agent": true}}
		err := NewCommandProposer(ex, "agent", "").Propose(ctx, "x")
		assert.ErrorIs(t, err, domain.ErrProposerUnavailable)
		assert.Empty(t, ex.executed)
	})

	t.Run("command failure is an error", func(t *testing.T) {
		ex := &fakeExec{executeErr: errors.New("exit status 1")}
		err := NewCommandProposer(ex, "agent", "").Propose(ctx, "x")
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrProposerUnavailable)
		assert.Contains(t, err.Error(), "boom")
	})
}

func TestClipboardProposer(t *testing.T) {
	var copied string
	p := &ClipboardProposer{write: func(s string) error { copied = s; return nil }}
	require.NoError(t, p.Propose(context.Background(), "prompt"))
	assert.Equal(t, "prompt", copied)

	p = &ClipboardProposer{unsupported: true}
	assert.ErrorIs(t, p.Propose(context.Background(), "prompt"), domain.ErrProposerUnavailable)

	p = &ClipboardProposer{write: func(string) error { return errors.New("no display") }}
	assert.ErrorIs(t, p.Propose(context.Background(), "prompt"), domain.ErrProposerUnavailable)
}

func TestChain_FallsBackWhenUnavailable(t *testing.T) {
	primary := &stubProposer{name: "command", err: domain.ErrProposerUnavailable}
	secondary := &stubProposer{name: "clipboard"}

	ack, err := NewChain(nil, primary, secondary).Propose(context.Background(), "t1", "prompt")
	require.NoError(t, err)
	assert.Equal(t, "clipboard", ack.Channel)
	assert.Equal(t, []string{"prompt"}, primary.prompts)
	assert.Equal(t, []string{"prompt"}, secondary.prompts)
}

func TestChain_FirstAvailableWins(t *testing.T) {
	primary := &stubProposer{name: "command"}
	secondary := &stubProposer{name: "clipboard"}

	ack, err := NewChain(nil, primary, secondary).Propose(context.Background(), "t1", "prompt")
	require.NoError(t, err)
	assert.Equal(t, "command", ack.Channel)
	assert.Empty(t, secondary.prompts)
}

func TestChain_AllUnavailable(t *testing.T) {
	chain := NewChain(nil,
		&stubProposer{name: "a", err: domain.ErrProposerUnavailable},
		&stubProposer{name: "b", err: errors.New("broken")},
	)
	_, err := chain.Propose(context.Background(), "t1", "prompt")
	assert.ErrorIs(t, err, domain.ErrNoProposer)
	assert.Contains(t, err.Error(), "broken")
}

func TestGateway_OpenFiles(t *testing.T) {
	dir := t.TempDir()
	hero := filepath.Join(dir, "Hero.tsx")
	require.NoError(t, os.WriteFile(hero, []byte("x"), 0o644))
	missing := filepath.Join(dir, "Missing.tsx")

	ex := &fakeExec{}
	g := New(Config{Exec: ex, OpenCommand: "code", Dir: dir})

	opened, err := g.OpenFiles(context.Background(), []string{hero, missing})
	require.NoError(t, err)
	assert.Equal(t, []string{hero}, opened)
	require.Len(t, ex.started, 1)
	assert.Equal(t, "code", ex.started[0].Program)
	assert.Equal(t, []string{hero}, ex.started[0].Args)

	t.Run("nothing to open", func(t *testing.T) {
		opened, err := g.OpenFiles(context.Background(), []string{missing})
		require.NoError(t, err)
		assert.Empty(t, opened)
		assert.Len(t, ex.started, 1)
	})

	t.Run("start failure", func(t *testing.T) {
		g := New(Config{Exec: &fakeExec{startErr: errors.New("no code")}, OpenCommand: "code"})
		_, err := g.OpenFiles(context.Background(), []string{hero})
		assert.Error(t, err)
	})
}

func TestGateway_ProposeEdit(t *testing.T) {
	proposer := &stubProposer{name: "command"}
	g := New(Config{Exec: &fakeExec{}, Proposers: []domain.EditProposer{proposer}})

	req := domain.EditRequest{
		TaskID:      "t1",
		Type:        domain.TypeCopyChange,
		Description: "Change heading",
		Scope:       []string{"Hero.tsx"},
		Rules:       []string{"Only modify text content"},
	}
	ack, err := g.ProposeEdit(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "command", ack.Channel)
	require.Len(t, proposer.prompts, 1)
	assert.Equal(t, domain.BuildPrompt(req), proposer.prompts[0])
}
