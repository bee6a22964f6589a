package app

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/chmouel/lazycraft/internal/craft"
	"github.com/chmouel/lazycraft/internal/models"
)

func (m *Model) loadCommitsCmd() tea.Cmd {
	return func() tea.Msg {
		state, err := m.git.State(m.ctx)
		if err != nil {
			return commitsLoadedMsg{err: err}
		}
		commits, err := m.git.LoadCommits(m.ctx, m.count)
		return commitsLoadedMsg{state: state, commits: commits, err: err}
	}
}

func (m *Model) loadDiffCmd(sha string) tea.Cmd {
	return func() tea.Msg {
		patch, err := m.git.CommitPatch(m.ctx, sha)
		if err != nil {
			return diffLoadedMsg{sha: sha, err: err}
		}
		return diffLoadedMsg{sha: sha, text: m.git.FormatDiff(m.ctx, patch)}
	}
}

func (m *Model) loadHunksCmd(commit models.CommitNode) tea.Cmd {
	return func() tea.Msg {
		hunks, err := m.git.CommitHunks(m.ctx, commit)
		return hunksLoadedMsg{originalIdx: commit.Ordinal, hunks: hunks, err: err}
	}
}

// preparePatchesCmd fetches the full patch of every commit the compiler
// needs and counts modified commits already reachable from the upstream, so
// the preview can warn about an upcoming force push.
func (m *Model) preparePatchesCmd(vp *craft.ValidatedPlan) tea.Cmd {
	return func() tea.Msg {
		patches := make(map[int]string)
		for _, idx := range vp.NeededPatches() {
			patch, err := m.git.CommitPatch(m.ctx, vp.Commit(idx).SHA)
			if err != nil {
				return patchesLoadedMsg{err: err}
			}
			patches[idx] = patch
		}
		pushed := 0
		for _, e := range m.plan.Entries() {
			if e.Action.Kind == craft.ActionPick {
				continue
			}
			if m.git.UpstreamContains(m.ctx, m.plan.Commit(e.OriginalIdx).SHA) {
				pushed++
			}
		}
		return patchesLoadedMsg{patches: patches, pushed: pushed}
	}
}

func (m *Model) startExecCmd() tea.Cmd {
	exec := m.exec
	return func() tea.Msg {
		status, err := exec.Run(m.ctx)
		return execStoppedMsg{status: status, unmerged: exec.Unmerged(), newTip: exec.NewTip(), err: err}
	}
}

func (m *Model) continueExecCmd() tea.Cmd {
	exec := m.exec
	return func() tea.Msg {
		status, err := exec.Continue(m.ctx)
		return execStoppedMsg{status: status, unmerged: exec.Unmerged(), newTip: exec.NewTip(), err: err}
	}
}

func (m *Model) abortExecCmd() tea.Cmd {
	exec := m.exec
	return func() tea.Msg {
		err := exec.Abort(m.ctx)
		return execStoppedMsg{status: craft.StateAborted, err: err}
	}
}
