package app

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/chmouel/lazycraft/internal/craft"
)

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeLoading:
		return m, nil
	case modeCommitList:
		return m.handleCommitList(msg)
	case modeActionMenu:
		return m.handleActionMenu(msg)
	case modeReword:
		return m.handleReword(msg)
	case modeSplit:
		return m.handleSplit(msg)
	case modeSquashTarget:
		return m.handleSquashTarget(msg)
	case modeReorder:
		return m.handleReorder(msg)
	case modePreview:
		return m.handlePreview(msg)
	case modeExecuting:
		// Execution cannot be silently cancelled; the only ways out are the
		// executor's own stop states.
		return m, nil
	case modeConflict, modePaused:
		return m.handleConflict(msg)
	case modeDone, modeFatal:
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// --- commit list ---

func (m *Model) handleCommitList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < m.plan.Len()-1 {
			m.cursor++
			m.diffText = ""
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
			m.diffText = ""
		}
	case "ctrl+d":
		m.diffScroll += 10
	case "ctrl+u":
		if m.diffScroll > 10 {
			m.diffScroll -= 10
		} else {
			m.diffScroll = 0
		}
	case " ":
		idx := m.plan.EntryAt(m.cursor).OriginalIdx
		m.selected[idx] = !m.selected[idx]
	case "enter":
		m.diffText = ""
		m.mode = modeActionMenu
		m.status = "r:reword s:split q:squash f:fixup d:drop m:reorder e:edit x:reset"
	case "D":
		sha := m.plan.Commit(m.plan.EntryAt(m.cursor).OriginalIdx).SHA
		if m.diffSHA == sha && m.diffText != "" {
			m.diffText = ""
			return m, nil
		}
		return m, m.loadDiffCmd(sha)
	case "p":
		return m.startPreview()
	case "esc":
		if m.diffText != "" {
			m.diffText = ""
			return m, nil
		}
		fallthrough
	case "q", "ctrl+c":
		// No repository mutation happened yet: plain quit.
		m.exitCode = ExitOK
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) startPreview() (tea.Model, tea.Cmd) {
	if !m.plan.HasActions() {
		m.status = "no actions assigned yet"
		return m, nil
	}
	vp, violations := craft.Validate(m.plan)
	if violations != nil {
		m.violations = violations
		m.status = fmt.Sprintf("%d validation error(s), fix the plan", len(violations))
		return m, nil
	}
	m.violations = nil
	m.validated = vp
	m.status = "compiling plan..."
	return m, m.preparePatchesCmd(vp)
}

// --- action menu ---

func (m *Model) handleActionMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entry := m.plan.EntryAt(m.cursor)
	commit := m.plan.Commit(entry.OriginalIdx)

	switch msg.String() {
	case "r":
		m.rewordInput.SetValue(commit.Subject)
		m.rewordInput.CursorEnd()
		m.rewordInput.Focus()
		m.mode = modeReword
		m.status = "editing message  Enter:save Esc:cancel"
	case "s":
		if commit.IsRoot() {
			m.status = "cannot split the root commit"
			m.mode = modeCommitList
			return m, nil
		}
		m.mode = modeCommitList // fall back here if extraction fails
		m.status = "extracting hunks..."
		return m, m.loadHunksCmd(commit)
	case "q":
		m.squashSource = m.cursor
		m.pickFixup = false
		m.mode = modeSquashTarget
		m.status = "select the commit to squash into (j/k, Enter)"
	case "f":
		m.squashSource = m.cursor
		m.pickFixup = true
		m.mode = modeSquashTarget
		m.status = "select the commit to fix up (j/k, Enter)"
	case "d":
		if err := m.plan.SetAction(entry.OriginalIdx, craft.Action{Kind: craft.ActionDrop}); err != nil {
			m.status = err.Error()
		} else {
			m.status = fmt.Sprintf("drop %s", commit.ShortSHA)
		}
		m.mode = modeCommitList
	case "m":
		m.mode = modeReorder
		m.status = "J/K:move commit  j/k:nav  Enter/Esc:done"
	case "e":
		if err := m.plan.SetAction(entry.OriginalIdx, craft.Action{Kind: craft.ActionEdit}); err != nil {
			m.status = err.Error()
		} else {
			m.status = fmt.Sprintf("edit stop at %s", commit.ShortSHA)
		}
		m.mode = modeCommitList
	case "x":
		_ = m.plan.SetAction(entry.OriginalIdx, craft.Pick)
		m.status = fmt.Sprintf("reset %s to pick", commit.ShortSHA)
		m.mode = modeCommitList
	case "esc":
		m.mode = modeCommitList
		m.status = ""
	}
	return m, nil
}

// --- reword ---

func (m *Model) handleReword(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entry := m.plan.EntryAt(m.cursor)
	commit := m.plan.Commit(entry.OriginalIdx)

	switch msg.String() {
	case "enter":
		text := strings.TrimSpace(m.rewordInput.Value())
		if text != "" && text != commit.Subject {
			if err := m.plan.SetAction(entry.OriginalIdx, craft.Action{Kind: craft.ActionReword, Message: text}); err != nil {
				m.status = err.Error()
			} else {
				m.status = fmt.Sprintf("reword %s", commit.ShortSHA)
			}
		}
		m.rewordInput.Blur()
		m.mode = modeCommitList
		return m, nil
	case "esc":
		m.rewordInput.Blur()
		m.mode = modeCommitList
		m.status = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.rewordInput, cmd = m.rewordInput.Update(msg)
	return m, cmd
}

// --- split ---

func (m *Model) handleSplit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editingMsg {
		switch msg.String() {
		case "enter", "esc":
			m.groupMsgs[m.editingGrp] = strings.TrimSpace(m.groupInput.Value())
			m.groupInput.Blur()
			m.editingMsg = false
			m.status = "space:toggle  1-9:assign  g:new group  n:name group  Enter:done"
			return m, nil
		}
		var cmd tea.Cmd
		m.groupInput, cmd = m.groupInput.Update(msg)
		return m, cmd
	}

	switch key := msg.String(); key {
	case "j", "down":
		if m.hunkCursor < len(m.hunks)-1 {
			m.hunkCursor++
		}
	case "k", "up":
		if m.hunkCursor > 0 {
			m.hunkCursor--
		}
	case " ":
		if m.hunkGroups[m.hunkCursor] == 0 {
			m.hunkGroups[m.hunkCursor] = m.nextGroup
		} else {
			m.hunkGroups[m.hunkCursor] = 0
		}
	case "g":
		m.hunkGroups[m.hunkCursor] = m.nextGroup
		m.nextGroup++
	case "n":
		grp := m.hunkGroups[m.hunkCursor]
		if grp > 0 {
			m.editingGrp = grp
			m.editingMsg = true
			m.groupInput.SetValue(m.groupMsgs[grp])
			m.groupInput.CursorEnd()
			m.groupInput.Focus()
			m.status = fmt.Sprintf("message for group %d  Enter:done", grp)
		}
	case "enter":
		m.finalizeSplit()
		m.mode = modeCommitList
	case "esc":
		m.mode = modeCommitList
		m.status = ""
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			grp := int(key[0] - '0')
			m.hunkGroups[m.hunkCursor] = grp
			if grp >= m.nextGroup {
				m.nextGroup = grp + 1
			}
		}
	}
	return m, nil
}

func (m *Model) finalizeSplit() {
	maxGroup := 0
	for _, g := range m.hunkGroups {
		if g > maxGroup {
			maxGroup = g
		}
	}
	if maxGroup == 0 {
		m.status = "no hunks assigned to groups"
		return
	}

	var groups []craft.HunkGroup
	for g := 1; g <= maxGroup; g++ {
		var indices []int
		for hi, grp := range m.hunkGroups {
			if grp == g {
				indices = append(indices, hi)
			}
		}
		if len(indices) == 0 {
			continue
		}
		groups = append(groups, craft.HunkGroup{HunkIndices: indices, Message: m.groupMsgs[g]})
	}

	commit := m.plan.Commit(m.splitIdx)
	if err := m.plan.AssignHunkGroups(m.splitIdx, groups); err != nil {
		m.status = err.Error()
		return
	}
	m.status = fmt.Sprintf("split %s into %d part(s)", commit.ShortSHA, len(groups))
}

// --- squash/fixup target picking ---

func (m *Model) handleSquashTarget(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < m.plan.Len()-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter":
		source := m.plan.EntryAt(m.squashSource)
		target := m.plan.EntryAt(m.cursor)
		kind := craft.ActionSquash
		if m.pickFixup {
			kind = craft.ActionFixup
		}
		if m.cursor == m.squashSource {
			m.status = fmt.Sprintf("cannot %s a commit into itself", kind)
		} else if err := m.plan.SetAction(source.OriginalIdx, craft.Action{Kind: kind, TargetIdx: target.OriginalIdx}); err != nil {
			m.status = err.Error()
		} else {
			m.status = fmt.Sprintf("%s %s into %s", kind,
				m.plan.Commit(source.OriginalIdx).ShortSHA,
				m.plan.Commit(target.OriginalIdx).ShortSHA)
		}
		m.cursor = m.squashSource
		m.mode = modeCommitList
	case "esc":
		m.cursor = m.squashSource
		m.mode = modeCommitList
		m.status = ""
	}
	return m, nil
}

// --- reorder ---

func (m *Model) handleReorder(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "J", "shift+down":
		if m.cursor < m.plan.Len()-1 {
			if err := m.plan.Reorder(m.cursor, m.cursor+1); err == nil {
				m.cursor++
			}
		}
	case "K", "shift+up":
		if m.cursor > 0 {
			if err := m.plan.Reorder(m.cursor, m.cursor-1); err == nil {
				m.cursor--
			}
		}
	case "j", "down":
		if m.cursor < m.plan.Len()-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter", "esc":
		m.mode = modeCommitList
		m.status = "reorder applied"
	}
	return m, nil
}

// --- preview ---

func (m *Model) handlePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		m.exec = craft.NewExecutor(m.git, m.steps, m.state, m.validated.BaseSHA())
		m.mode = modeExecuting
		m.status = "executing plan..."
		return m, m.startExecCmd()
	case "j", "down":
		m.diffScroll++
	case "k", "up":
		if m.diffScroll > 0 {
			m.diffScroll--
		}
	case "q", "esc":
		m.mode = modeCommitList
		m.status = ""
	}
	return m, nil
}

// --- conflict / paused-for-edit ---

func (m *Model) handleConflict(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "c", "enter":
		m.mode = modeExecuting
		m.status = "continuing..."
		return m, m.continueExecCmd()
	case "a":
		m.mode = modeExecuting
		m.status = "aborting and rolling back..."
		return m, m.abortExecCmd()
	}
	return m, nil
}
