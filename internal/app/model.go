// Package app implements the craft TUI: a finite-state machine over
// interaction modes driving the plan model, validator, compiler and
// executor.
package app

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/chmouel/lazycraft/internal/config"
	"github.com/chmouel/lazycraft/internal/craft"
	"github.com/chmouel/lazycraft/internal/git"
	"github.com/chmouel/lazycraft/internal/models"
	"github.com/chmouel/lazycraft/internal/theme"
	"github.com/fsnotify/fsnotify"
)

// mode is the interaction mode of the session. Every mode except the
// terminal ones returns to modeCommitList on completion or cancel.
type mode int

const (
	modeLoading mode = iota
	modeCommitList
	modeActionMenu
	modeReword
	modeSplit
	modeSquashTarget
	modeReorder
	modePreview
	modeExecuting
	modeConflict
	modePaused
	modeDone
	modeFatal
)

// Exit codes reported to the CLI once the program finishes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitAborted = 2
)

// Model is the Bubble Tea model for a craft session. It owns the Plan
// exclusively; the executor borrows a compiled snapshot and reports state
// transitions back as messages.
type Model struct {
	cfg   *config.AppConfig
	theme *theme.Theme
	git   *git.Service

	ctx    context.Context
	cancel context.CancelFunc

	count int // history window size
	last  int // pre-select the final K commits, 0 = none

	mode     mode
	state    models.RepoState
	plan     *craft.Plan
	cursor   int
	selected []bool
	status   string
	fatalErr error

	// reword
	rewordInput textinput.Model

	// split
	splitIdx    int
	hunks       []models.Hunk
	hunkCursor  int
	hunkGroups  []int // group number per hunk, 0 = unassigned
	groupMsgs   map[int]string
	nextGroup   int
	groupInput  textinput.Model
	editingMsg  bool
	editingGrp  int

	// squash / fixup target picking
	squashSource int
	pickFixup    bool

	// diff pane
	diffText   string
	diffSHA    string
	diffScroll int

	// preview / execution
	validated  *craft.ValidatedPlan
	violations []craft.Violation
	patches    map[int]string
	steps      []craft.Step
	pushed     int
	exec       *craft.Executor
	unmerged   []string
	newTip     string

	watcher *fsnotify.Watcher

	width    int
	height   int
	exitCode int
	quitting bool
}

// NewModel constructs a craft session model. count is the history window
// size; last pre-selects the final K commits when positive.
func NewModel(cfg *config.AppConfig, svc *git.Service, count, last int) *Model {
	ctx, cancel := context.WithCancel(context.Background())

	th := theme.ByName(cfg.Theme)
	if th == nil {
		th = theme.Dracula()
	}

	reword := textinput.New()
	reword.Prompt = "> "
	reword.CharLimit = 0
	reword.Width = 60

	group := textinput.New()
	group.Prompt = "> "
	group.CharLimit = 0
	group.Width = 60

	if count <= 0 {
		count = cfg.CommitCount
	}

	return &Model{
		cfg:         cfg,
		theme:       th,
		git:         svc,
		ctx:         ctx,
		cancel:      cancel,
		count:       count,
		last:        last,
		mode:        modeLoading,
		rewordInput: reword,
		groupInput:  group,
		groupMsgs:   make(map[int]string),
		exitCode:    ExitOK,
	}
}

// Init loads the commit window.
func (m *Model) Init() tea.Cmd {
	return m.loadCommitsCmd()
}

// Update dispatches messages to the mode handlers.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case commitsLoadedMsg:
		return m.handleCommitsLoaded(msg)
	case diffLoadedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("diff error: %v", msg.err)
			return m, nil
		}
		m.diffText = msg.text
		m.diffSHA = msg.sha
		m.diffScroll = 0
		return m, nil
	case hunksLoadedMsg:
		return m.handleHunksLoaded(msg)
	case patchesLoadedMsg:
		return m.handlePatchesLoaded(msg)
	case execStoppedMsg:
		return m.handleExecStopped(msg)
	case branchMovedMsg:
		if m.mode < modeExecuting {
			m.status = "warning: branch moved by another process; plan is based on a stale tip"
		}
		return m, m.waitForRefChange()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleCommitsLoaded(msg commitsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m.fatal(msg.err)
	}
	if msg.state.Detached {
		return m.fatal(fmt.Errorf("detached HEAD, cannot craft"))
	}
	if msg.state.Dirty {
		return m.fatal(fmt.Errorf("dirty working tree, commit or stash changes first"))
	}
	m.state = msg.state
	m.plan = craft.NewPlan(msg.commits)
	m.selected = make([]bool, len(msg.commits))
	if m.last > 0 {
		for i := 0; i < m.last && i < len(m.selected); i++ {
			m.selected[i] = true
		}
	}
	m.mode = modeCommitList
	return m, m.startRefWatcher()
}

func (m *Model) handleHunksLoaded(msg hunksLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.status = fmt.Sprintf("split unavailable: %v", msg.err)
		m.mode = modeCommitList
		return m, nil
	}
	if len(msg.hunks) == 0 {
		m.status = "no hunks to split"
		m.mode = modeCommitList
		return m, nil
	}
	// Join the extraction result before any group assignment can reference
	// it; a stale hunk set must never reach the plan.
	m.plan.SetHunks(msg.originalIdx, msg.hunks)
	m.splitIdx = msg.originalIdx
	m.hunks = msg.hunks
	m.hunkCursor = 0
	m.hunkGroups = make([]int, len(msg.hunks))
	m.groupMsgs = make(map[int]string)
	m.nextGroup = 1
	m.editingMsg = false
	m.mode = modeSplit
	m.status = "space:toggle  1-9:assign  g:new group  n:name group  Enter:done"
	return m, nil
}

func (m *Model) handlePatchesLoaded(msg patchesLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.status = fmt.Sprintf("preview failed: %v", msg.err)
		m.mode = modeCommitList
		return m, nil
	}
	steps, err := craft.Compile(m.validated, msg.patches)
	if err != nil {
		m.status = fmt.Sprintf("compile failed: %v", err)
		m.mode = modeCommitList
		return m, nil
	}
	m.patches = msg.patches
	m.steps = steps
	m.pushed = msg.pushed
	m.diffScroll = 0
	m.mode = modePreview
	return m, nil
}

func (m *Model) handleExecStopped(msg execStoppedMsg) (tea.Model, tea.Cmd) {
	switch msg.status {
	case craft.StateConflict:
		m.mode = modeConflict
		m.unmerged = msg.unmerged
		m.status = fmt.Sprintf("conflict at step %d/%d", m.exec.StepIndex()+1, m.exec.TotalSteps())
	case craft.StatePausedForEdit:
		m.mode = modePaused
		m.status = "paused for manual edit: amend the commit, then continue"
	case craft.StateDone:
		m.mode = modeDone
		m.newTip = msg.newTip
		m.exitCode = ExitOK
	case craft.StateAborted:
		if msg.err != nil {
			return m.fatalAborted(msg.err)
		}
		m.exitCode = ExitAborted
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) fatal(err error) (tea.Model, tea.Cmd) {
	m.fatalErr = err
	m.exitCode = ExitFailure
	m.mode = modeFatal
	return m, nil
}

// fatalAborted reports a fatal execution error after rollback: the session
// failed but the original history was restored.
func (m *Model) fatalAborted(err error) (tea.Model, tea.Cmd) {
	m.fatalErr = err
	m.exitCode = ExitFailure
	m.mode = modeFatal
	return m, nil
}

// ExitCode returns the process exit code once the program has finished.
func (m *Model) ExitCode() int {
	return m.exitCode
}

// Err returns the fatal error, if any, for the CLI to print.
func (m *Model) Err() error {
	return m.fatalErr
}

// Close releases the session's resources.
func (m *Model) Close() {
	m.closeWatcher()
	m.cancel()
}
