package app

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/chmouel/lazycraft/internal/config"
	"github.com/chmouel/lazycraft/internal/craft"
	"github.com/chmouel/lazycraft/internal/git"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", append([]string{"-C", dir}, args...)...) // #nosec G204
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
	}
	run("init", "-q", "-b", "main")
	run("config", "user.name", "Test Author")
	run("config", "user.email", "test@example.com")
	run("config", "commit.gpgsign", "false")
	for _, name := range []string{"one", "two", "three"} {
		file := filepath.Join(dir, name+".txt")
		require.NoError(t, os.WriteFile(file, []byte(name+"\n"), 0o600))
		run("add", "-A")
		run("commit", "-q", "-m", "add "+name)
	}
	return dir
}

// TestSessionLoadsAndQuits drives the program end to end against a real
// repository: load, navigate, assign a drop, quit.
func TestSessionLoadsAndQuits(t *testing.T) {
	dir := initTestRepo(t)
	model := NewModel(config.DefaultConfig(), git.NewService(dir, nil), 3, 0)
	tm := teatest.NewTestModel(
		t,
		model,
		teatest.WithInitialTermSize(120, 40),
	)

	// Wait for initial load
	time.Sleep(200 * time.Millisecond)

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	time.Sleep(50 * time.Millisecond)
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	time.Sleep(50 * time.Millisecond)
	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	time.Sleep(50 * time.Millisecond)
	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	tm.WaitFinished(t, teatest.WithFinalTimeout(3*time.Second))

	fm := tm.FinalModel(t)
	m, ok := fm.(*Model)
	require.True(t, ok, "final model is not *Model")
	defer m.Close()

	assert.Equal(t, ExitOK, m.ExitCode())
	require.NotNil(t, m.plan)
	assert.Equal(t, craft.ActionDrop, m.plan.EntryAt(1).Action.Kind)
	assert.Equal(t, "add three", m.plan.Commit(0).Subject)
}

// TestSessionRefusesDirtyTree verifies the startup guard against rewriting
// with uncommitted changes.
func TestSessionRefusesDirtyTree(t *testing.T) {
	dir := initTestRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "one.txt"), []byte("dirty\n"), 0o600))

	model := NewModel(config.DefaultConfig(), git.NewService(dir, nil), 3, 0)
	tm := teatest.NewTestModel(
		t,
		model,
		teatest.WithInitialTermSize(120, 40),
	)

	time.Sleep(200 * time.Millisecond)
	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	tm.WaitFinished(t, teatest.WithFinalTimeout(3*time.Second))

	m, ok := tm.FinalModel(t).(*Model)
	require.True(t, ok)
	defer m.Close()

	assert.Equal(t, ExitFailure, m.ExitCode())
	require.Error(t, m.Err())
	assert.True(t, strings.Contains(m.Err().Error(), "dirty"))
}
