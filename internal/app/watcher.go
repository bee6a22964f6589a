package app

import (
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/chmouel/lazycraft/internal/log"
	"github.com/fsnotify/fsnotify"
)

// startRefWatcher watches the loose ref file of the session branch so the UI
// can warn when another process moves the branch mid-session. The session
// itself only touches the ref in the final atomic update, so any event
// before Executing is external. Packed refs are not watchable; the watcher
// is best effort and its absence is not an error.
func (m *Model) startRefWatcher() tea.Cmd {
	gitDir, err := m.git.GitDir(m.ctx)
	if err != nil {
		return nil
	}
	refPath := filepath.Join(gitDir, "refs", "heads", filepath.FromSlash(m.state.Branch))
	if _, err := os.Stat(refPath); err != nil {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("ref watcher: %v", err)
		return nil
	}
	if err := w.Add(refPath); err != nil {
		log.Printf("ref watcher add: %v", err)
		_ = w.Close()
		return nil
	}
	m.watcher = w
	return m.waitForRefChange()
}

func (m *Model) waitForRefChange() tea.Cmd {
	w := m.watcher
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return nil
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
					return branchMovedMsg{}
				}
			case _, ok := <-w.Errors:
				if !ok {
					return nil
				}
			case <-m.ctx.Done():
				return nil
			}
		}
	}
}

func (m *Model) closeWatcher() {
	if m.watcher != nil {
		_ = m.watcher.Close()
		m.watcher = nil
	}
}
