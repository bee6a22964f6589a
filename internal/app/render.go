package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/chmouel/lazycraft/internal/models"
	devicons "github.com/epilande/go-devicons"
	"github.com/muesli/reflow/truncate"
	"github.com/sergi/go-diff/diffmatchpatch"
)

type iconFileInfo struct {
	name string
}

func (f iconFileInfo) Name() string       { return f.name }
func (f iconFileInfo) Size() int64        { return 0 }
func (f iconFileInfo) Mode() os.FileMode  { return 0 }
func (f iconFileInfo) ModTime() time.Time { return time.Time{} }
func (f iconFileInfo) IsDir() bool        { return false }
func (f iconFileInfo) Sys() any           { return nil }

// fileIcon returns the devicon for a file name, or empty when icons are
// disabled in the config.
func (m *Model) fileIcon(name string) string {
	if !m.cfg.ShowIcons || name == "" {
		return ""
	}
	style := devicons.IconForInfo(iconFileInfo{name: name})
	return style.Icon + " "
}

func (m *Model) viewSplit(width int) string {
	leftWidth := width * 45 / 100
	rightWidth := width - leftWidth - 4

	commit := m.plan.Commit(m.splitIdx)

	var rows []string
	for i, h := range m.hunks {
		badge := "   "
		if g := m.hunkGroups[i]; g > 0 {
			badge = fmt.Sprintf("[%d]", g)
		}
		line := fmt.Sprintf(" %s %s%s", badge, m.fileIcon(h.File), h.Summary())
		style := lipgloss.NewStyle().Foreground(m.theme.TextFg)
		if i == m.hunkCursor {
			style = style.Background(m.theme.AccentDim)
		} else if m.hunkGroups[i] == 0 {
			style = style.Foreground(m.theme.MutedFg)
		}
		rows = append(rows, style.Render(truncate.StringWithTail(line, uint(leftWidth-2), "…"))) //nolint:gosec
	}

	list := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Cyan).
		Width(leftWidth).
		Render(fmt.Sprintf(" Split %s  %d hunks \n", commit.ShortSHA, len(m.hunks)) + strings.Join(rows, "\n"))

	var detail string
	if m.editingMsg {
		detail = fmt.Sprintf(" Message for group %d \n  %s", m.editingGrp, m.groupInput.View())
	} else if m.hunkCursor < len(m.hunks) {
		detail = " Hunk \n" + m.renderHunk(m.hunks[m.hunkCursor], rightWidth-2)
	}
	pane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.BorderDim).
		Width(rightWidth).
		Render(detail)

	return lipgloss.JoinHorizontal(lipgloss.Top, list, pane)
}

// renderHunk colorizes one hunk, highlighting the changed spans inside
// paired removed/added runs.
func (m *Model) renderHunk(h models.Hunk, width int) string {
	header := lipgloss.NewStyle().Foreground(m.theme.HunkHeaderFg).Render(h.Header)
	lines := []string{header}

	i := 0
	for i < len(h.Lines) {
		if h.Lines[i].Kind != models.LineRemoved {
			lines = append(lines, m.renderDiffLine(h.Lines[i], width))
			i++
			continue
		}
		// Collect the removed run and the added run that follows it, if any,
		// so the pair can get intraline highlighting.
		removed := []models.DiffLine{}
		for i < len(h.Lines) && h.Lines[i].Kind == models.LineRemoved {
			removed = append(removed, h.Lines[i])
			i++
		}
		added := []models.DiffLine{}
		for i < len(h.Lines) && h.Lines[i].Kind == models.LineAdded {
			added = append(added, h.Lines[i])
			i++
		}
		lines = append(lines, m.renderChangedPair(removed, added, width)...)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderDiffLine(l models.DiffLine, width int) string {
	style := lipgloss.NewStyle().Foreground(m.theme.TextFg)
	prefix := " "
	switch l.Kind {
	case models.LineAdded:
		style = style.Foreground(m.theme.AddedFg)
		prefix = "+"
	case models.LineRemoved:
		style = style.Foreground(m.theme.RemovedFg)
		prefix = "-"
	case models.LineNoNewline:
		style = style.Foreground(m.theme.MutedFg)
		prefix = "\\"
	}
	return style.Render(truncate.StringWithTail(prefix+l.Text, uint(width), "…")) //nolint:gosec
}

// renderChangedPair renders a removed run followed by an added run. When both
// sides are present, the character-level differences between them are bolded
// so the actual edit stands out.
func (m *Model) renderChangedPair(removed, added []models.DiffLine, width int) []string {
	var out []string
	if len(removed) == 0 || len(added) == 0 {
		for _, l := range removed {
			out = append(out, m.renderDiffLine(l, width))
		}
		for _, l := range added {
			out = append(out, m.renderDiffLine(l, width))
		}
		return out
	}

	oldText := joinLineText(removed)
	newText := joinLineText(added)
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(oldText, newText, false))

	removedStyle := lipgloss.NewStyle().Foreground(m.theme.RemovedFg)
	addedStyle := lipgloss.NewStyle().Foreground(m.theme.AddedFg)
	out = append(out, styledRun("-", diffs, diffmatchpatch.DiffDelete, removedStyle, width)...)
	out = append(out, styledRun("+", diffs, diffmatchpatch.DiffInsert, addedStyle, width)...)
	return out
}

func joinLineText(lines []models.DiffLine) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = l.Text
	}
	return strings.Join(parts, "\n")
}

// styledRun reassembles one side of an intraline diff, bolding the segments
// whose operation matches emphasize.
func styledRun(prefix string, diffs []diffmatchpatch.Diff, emphasize diffmatchpatch.Operation, base lipgloss.Style, width int) []string {
	skip := diffmatchpatch.DiffInsert
	if emphasize == diffmatchpatch.DiffInsert {
		skip = diffmatchpatch.DiffDelete
	}

	var lines []string
	var current strings.Builder
	current.WriteString(base.Render(prefix))
	flush := func() {
		lines = append(lines, truncate.StringWithTail(current.String(), uint(width), "…")) //nolint:gosec
		current.Reset()
		current.WriteString(base.Render(prefix))
	}

	for _, d := range diffs {
		if d.Type == skip {
			continue
		}
		style := base
		if d.Type == emphasize {
			style = base.Bold(true).Reverse(true)
		}
		segments := strings.Split(d.Text, "\n")
		for si, seg := range segments {
			if si > 0 {
				flush()
			}
			if seg != "" {
				current.WriteString(style.Render(seg))
			}
		}
	}
	flush()
	return lines
}

// renderDiff colorizes raw unified diff text for the context pane.
func (m *Model) renderDiff(text string, width int) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		style := lipgloss.NewStyle().Foreground(m.theme.TextFg)
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			style = style.Foreground(m.theme.MutedFg)
		case strings.HasPrefix(line, "diff --git"), strings.HasPrefix(line, "index "):
			style = style.Foreground(m.theme.MutedFg)
		case strings.HasPrefix(line, "@@"):
			style = style.Foreground(m.theme.HunkHeaderFg)
		case strings.HasPrefix(line, "+"):
			style = style.Foreground(m.theme.AddedFg)
		case strings.HasPrefix(line, "-"):
			style = style.Foreground(m.theme.RemovedFg)
		}
		out = append(out, style.Render(truncate.StringWithTail(line, uint(width), "…"))) //nolint:gosec
	}

	visible := m.height - 10
	if visible < 5 {
		visible = 5
	}
	return strings.Join(scrollLines(out, m.diffScroll, visible), "\n")
}
