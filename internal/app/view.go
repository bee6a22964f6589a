package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/chmouel/lazycraft/internal/craft"
	"github.com/chmouel/lazycraft/internal/models"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
)

// View renders the whole screen for the current mode.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.mode == modeLoading {
		return "loading commits...\n"
	}
	if m.mode == modeFatal {
		return lipgloss.NewStyle().Foreground(m.theme.ErrorFg).Render(fmt.Sprintf("error: %v", m.fatalErr)) + "\n"
	}

	width := m.width
	if width <= 0 {
		width = 100
	}

	var main string
	switch m.mode {
	case modeReword:
		main = m.viewReword(width)
	case modeSplit:
		main = m.viewSplit(width)
	case modePreview:
		main = m.viewPreview(width)
	case modeExecuting, modeConflict, modePaused, modeDone:
		main = m.viewExecution(width)
	default:
		main = m.viewCommitList(width)
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.viewHeader(width), main, m.viewFooter(width))
}

func (m *Model) viewHeader(width int) string {
	actions := 0
	for _, e := range m.plan.Entries() {
		if e.Action.Kind != craft.ActionPick {
			actions++
		}
	}
	title := fmt.Sprintf(" CRAFT  %s  %d commits  %d action(s) ", m.state.Branch, m.plan.Len(), actions)
	return lipgloss.NewStyle().
		Foreground(m.theme.Cyan).
		Bold(true).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Border).
		Width(width - 2).
		Render(title)
}

func (m *Model) viewFooter(width int) string {
	help := map[mode]string{
		modeCommitList:   "j/k:nav  Enter:actions  D:diff  p:preview  q:quit",
		modeActionMenu:   "r:reword s:split q:squash f:fixup d:drop m:reorder e:edit x:reset  Esc:back",
		modeReword:       "type to edit  Enter:save  Esc:cancel",
		modeSplit:        "j/k:nav  space:toggle  1-9:assign  g:new group  n:name  Enter:done",
		modeSquashTarget: "j/k:select target  Enter:confirm  Esc:cancel",
		modeReorder:      "J/K:move commit  j/k:nav  Enter/Esc:done",
		modePreview:      "y/Enter:execute  j/k:scroll  Esc:back",
		modeExecuting:    "executing...",
		modeConflict:     "resolve conflicts in the worktree, stage them, then c:continue  a:abort",
		modePaused:       "amend the commit as needed, then c:continue  a:abort",
		modeDone:         "any key to quit",
	}[m.mode]

	text := help
	if m.status != "" {
		text = m.status + " | " + help
	}
	return lipgloss.NewStyle().
		Foreground(m.theme.MutedFg).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.BorderDim).
		Width(width - 2).
		Render(" " + truncate.StringWithTail(text, uint(width-4), "…")) //nolint:gosec
}

func (m *Model) viewCommitList(width int) string {
	leftWidth := width * 55 / 100
	rightWidth := width - leftWidth - 4

	var rows []string
	for pos := 0; pos < m.plan.Len(); pos++ {
		entry := m.plan.EntryAt(pos)
		c := m.plan.Commit(entry.OriginalIdx)
		label := ""
		if entry.Action.Kind != craft.ActionPick {
			label = fmt.Sprintf(" [%s]", entry.Action.Kind)
		}
		mark := " "
		if m.selected[entry.OriginalIdx] {
			mark = "*"
		}
		line := fmt.Sprintf("%s%3d %s %s %s%s",
			mark, pos+1, c.ShortSHA,
			truncate.StringWithTail(c.Subject, 38, "…"),
			models.FormatRelativeTime(c.Date), label)
		rows = append(rows, m.commitLineStyle(pos, entry).Render(truncate.StringWithTail(line, uint(leftWidth-2), "…"))) //nolint:gosec
	}

	listTitle := " Commits "
	borderColor := m.theme.Border
	switch m.mode {
	case modeSquashTarget:
		listTitle = " Commits (pick target) "
		borderColor = m.theme.Pink
	case modeReorder:
		listTitle = " Commits (reorder) "
		borderColor = m.theme.Accent
	}

	list := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Width(leftWidth).
		Render(listTitle + "\n" + strings.Join(rows, "\n"))

	return lipgloss.JoinHorizontal(lipgloss.Top, list, m.viewContextPane(rightWidth))
}

func (m *Model) commitLineStyle(pos int, entry craft.Entry) lipgloss.Style {
	if pos == m.cursor {
		return lipgloss.NewStyle().Background(m.theme.AccentDim).Foreground(m.theme.TextFg)
	}
	switch entry.Action.Kind {
	case craft.ActionDrop:
		return lipgloss.NewStyle().Foreground(m.theme.ErrorFg).Strikethrough(true)
	case craft.ActionReword:
		return lipgloss.NewStyle().Foreground(m.theme.Yellow)
	case craft.ActionSquash, craft.ActionFixup:
		return lipgloss.NewStyle().Foreground(m.theme.Pink)
	case craft.ActionSplit:
		return lipgloss.NewStyle().Foreground(m.theme.Cyan)
	case craft.ActionEdit:
		return lipgloss.NewStyle().Foreground(m.theme.SuccessFg)
	default:
		return lipgloss.NewStyle().Foreground(m.theme.TextFg)
	}
}

func (m *Model) viewContextPane(width int) string {
	pane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.BorderDim).
		Width(width)

	if len(m.violations) > 0 {
		var lines []string
		lines = append(lines, lipgloss.NewStyle().Foreground(m.theme.ErrorFg).Bold(true).Render(" Plan errors "))
		for _, v := range m.violations {
			lines = append(lines, lipgloss.NewStyle().Foreground(m.theme.ErrorFg).Render("  "+v.String()))
		}
		return pane.Render(strings.Join(lines, "\n"))
	}

	if m.diffText != "" {
		return pane.Render(" Diff "+m.diffSHA[:7]+" \n"+m.renderDiff(m.diffText, width-2)) //nolint:gosec
	}

	if m.mode == modeActionMenu {
		menu := []string{
			"",
			"  r  reword message",
			"  s  split into hunks",
			"  q  squash into another",
			"  f  fixup (squash, keep target msg)",
			"  d  drop commit",
			"  m  reorder commits",
			"  e  edit (pause for manual amend)",
			"  x  reset to pick",
			"",
			"  Esc  back",
		}
		return pane.BorderForeground(m.theme.Yellow).Render(" Actions \n" + strings.Join(menu, "\n"))
	}

	entry := m.plan.EntryAt(m.cursor)
	c := m.plan.Commit(entry.OriginalIdx)
	details := []string{
		"",
		"  SHA:    " + c.SHA,
		"  Author: " + c.Author + " <" + c.AuthorEmail + ">",
		"  Date:   " + models.FormatRelativeTime(c.Date),
		"",
		wordwrap.String("  "+c.Subject, width-4),
		"",
	}
	return pane.Render(" Details \n" + strings.Join(details, "\n"))
}

func (m *Model) viewReword(width int) string {
	entry := m.plan.EntryAt(m.cursor)
	c := m.plan.Commit(entry.OriginalIdx)

	original := lipgloss.NewStyle().
		Foreground(m.theme.MutedFg).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.BorderDim).
		Width(width - 2).
		Render(" Original \n  " + c.Subject)

	editor := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.SuccessFg).
		Width(width - 2).
		Render(" New message \n  " + m.rewordInput.View())

	return lipgloss.JoinVertical(lipgloss.Left, original, editor)
}

func (m *Model) viewPreview(width int) string {
	var lines []string
	lines = append(lines, "")
	lines = append(lines, lipgloss.NewStyle().Bold(true).Render("  Compiled plan: "+fmt.Sprintf("%d step(s)", len(m.steps))))
	if m.pushed > 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(m.theme.WarnFg).
			Render(fmt.Sprintf("  ! %d modified commit(s) already pushed, a force push will be needed", m.pushed)))
	}
	lines = append(lines, "")

	for i, step := range m.steps {
		style := lipgloss.NewStyle().Foreground(m.theme.TextFg)
		detail := ""
		switch step.Kind {
		case craft.StepPause:
			style = style.Foreground(m.theme.SuccessFg)
			detail = "(pause for manual edit)"
		case craft.StepMerge:
			style = style.Foreground(m.theme.Pink)
			detail = firstLine(step.Message)
		default:
			detail = firstLine(step.Message)
		}
		sha := step.SHA
		if len(sha) > 7 {
			sha = sha[:7]
		}
		lines = append(lines, style.Render(truncate.StringWithTail(
			fmt.Sprintf("  %2d %-5s %s %s", i+1, step.Kind, sha, detail), uint(width-6), "…"))) //nolint:gosec
	}

	lines = append(lines, "")
	lines = append(lines, lipgloss.NewStyle().Foreground(m.theme.MutedFg).Render("  y/Enter:execute  Esc:back"))

	body := scrollLines(lines, m.diffScroll, m.height-8)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.SuccessFg).
		Width(width - 2).
		Render(" Preview \n" + strings.Join(body, "\n"))
}

func (m *Model) viewExecution(width int) string {
	var lines []string
	lines = append(lines, "")

	switch m.mode {
	case modeExecuting:
		lines = append(lines, fmt.Sprintf("  applying step %d of %d...", m.execStep(), len(m.steps)))
	case modeConflict:
		lines = append(lines, lipgloss.NewStyle().Foreground(m.theme.ErrorFg).Bold(true).
			Render(fmt.Sprintf("  Conflict at step %d of %d", m.execStep(), len(m.steps))))
		lines = append(lines, "")
		lines = append(lines, "  Unmerged files:")
		for _, f := range m.unmerged {
			lines = append(lines, lipgloss.NewStyle().Foreground(m.theme.ErrorFg).Render("    "+f))
		}
	case modePaused:
		lines = append(lines, lipgloss.NewStyle().Foreground(m.theme.SuccessFg).Bold(true).
			Render(fmt.Sprintf("  Paused for edit after step %d of %d", m.execStep(), len(m.steps))))
		lines = append(lines, "")
		lines = append(lines, "  Amend the commit in another terminal, then continue.")
	case modeDone:
		lines = append(lines, lipgloss.NewStyle().Foreground(m.theme.SuccessFg).Bold(true).Render("  Done"))
		lines = append(lines, "")
		lines = append(lines, fmt.Sprintf("  %s now points at %s", m.state.Branch, shortSHA(m.newTip)))
	}

	lines = append(lines, "")
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Border).
		Width(width - 2).
		Render(" Execution \n" + strings.Join(lines, "\n"))
}

func (m *Model) execStep() int {
	if m.exec == nil {
		return 0
	}
	return m.exec.StepIndex() + 1
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

func scrollLines(lines []string, offset, height int) []string {
	if height <= 0 {
		height = len(lines)
	}
	if offset >= len(lines) {
		offset = len(lines) - 1
	}
	if offset < 0 {
		offset = 0
	}
	end := offset + height
	if end > len(lines) {
		end = len(lines)
	}
	return lines[offset:end]
}
