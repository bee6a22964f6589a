package craft

import (
	"context"
	"errors"
	"fmt"

	"github.com/chmouel/lazycraft/internal/git"
	log "github.com/chmouel/lazycraft/internal/log"
	"github.com/chmouel/lazycraft/internal/models"
)

// State is the executor's lifecycle state.
type State int

// Executor states. Conflict and PausedForEdit are resumable; Done and
// Aborted are terminal.
const (
	StatePending State = iota
	StateRunning
	StateConflict
	StatePausedForEdit
	StateDone
	StateAborted
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateConflict:
		return "conflict"
	case StatePausedForEdit:
		return "paused for edit"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// ExecutionError wraps a fatal repository fault. By the time it surfaces the
// executor has already attempted rollback to the original tip.
type ExecutionError struct {
	Step int
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("step %d: %v", e.Step+1, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Executor applies a compiled step sequence to the repository. Steps run
// strictly sequentially: each step's base is the previous step's result. The
// branch ref is only moved once, atomically, on full success; aborting at
// any point restores the exact original reference.
type Executor struct {
	git   *git.Service
	steps []Step
	state models.RepoState
	base  string // parent of the oldest window commit, empty for a root window

	idx      int
	status   State
	unmerged []string
	newTip   string
}

// NewExecutor prepares an executor over the compiled steps. base is the SHA
// the rewritten history grows from; empty means the window reaches the root
// commit and the first step amends it in place.
func NewExecutor(svc *git.Service, steps []Step, st models.RepoState, base string) *Executor {
	return &Executor{git: svc, steps: steps, state: st, base: base, status: StatePending}
}

// Status returns the current lifecycle state.
func (e *Executor) Status() State { return e.status }

// StepIndex returns the index of the next (or currently failing) step.
func (e *Executor) StepIndex() int { return e.idx }

// TotalSteps returns the number of compiled steps.
func (e *Executor) TotalSteps() int { return len(e.steps) }

// Unmerged returns the conflicting paths when Status is StateConflict.
func (e *Executor) Unmerged() []string { return e.unmerged }

// NewTip returns the rewritten branch tip once Status is StateDone.
func (e *Executor) NewTip() string { return e.newTip }

// Run starts execution. It returns when the sequence completes (StateDone),
// stops on a conflict or edit pause, or fails fatally. Fatal errors roll the
// repository back before returning.
func (e *Executor) Run(ctx context.Context) (State, error) {
	if e.status != StatePending {
		return e.status, errors.New("executor already started")
	}
	e.status = StateRunning

	if e.base != "" {
		if err := e.git.CheckoutDetached(ctx, e.base); err != nil {
			return e.fail(ctx, err)
		}
	} else {
		// Root window: detach on the root commit itself; the first step
		// rewrites it with --amend instead of applying onto a parent.
		if len(e.steps) == 0 || e.steps[0].Kind != StepApply {
			return e.fail(ctx, errors.New("root window must start with an apply step"))
		}
		if err := e.git.CheckoutDetached(ctx, e.steps[0].SHA); err != nil {
			return e.fail(ctx, err)
		}
	}

	return e.resume(ctx)
}

// Continue resumes after the caller resolved a conflict (staged resolution in
// the index) or finished a manual edit.
func (e *Executor) Continue(ctx context.Context) (State, error) {
	switch e.status {
	case StateConflict:
		step := e.steps[e.idx]
		unmerged, err := e.git.UnmergedFiles(ctx)
		if err != nil {
			return e.fail(ctx, err)
		}
		if len(unmerged) > 0 {
			e.unmerged = unmerged
			return StateConflict, nil
		}
		if err := e.commitStep(ctx, step); err != nil {
			return e.fail(ctx, err)
		}
		e.unmerged = nil
		e.idx++
	case StatePausedForEdit:
		e.idx++
	default:
		return e.status, fmt.Errorf("cannot continue from state %s", e.status)
	}
	e.status = StateRunning
	return e.resume(ctx)
}

// Abort restores the branch reference to the tip captured at session start
// and discards all intermediate state. This is the executor's sole strong
// guarantee: the original history is never left partially rewritten.
func (e *Executor) Abort(ctx context.Context) error {
	err := e.rollback(ctx)
	e.status = StateAborted
	return err
}

func (e *Executor) resume(ctx context.Context) (State, error) {
	for e.idx < len(e.steps) {
		step := e.steps[e.idx]
		log.Printf("craft step %d/%d: %s %s", e.idx+1, len(e.steps), step.Kind, shortID(step.SHA))

		if step.Kind == StepPause {
			e.status = StatePausedForEdit
			return e.status, nil
		}

		if e.base == "" && e.idx == 0 {
			// Amend the checked-out root commit rather than applying its
			// patch onto a parent that does not exist.
			if err := e.git.AmendWithAuthor(ctx, step.Message, step.Author, step.AuthorEmail, step.AuthorDate); err != nil {
				return e.fail(ctx, err)
			}
			e.idx++
			continue
		}

		if err := e.git.ApplyPatch(ctx, step.Patch); err != nil {
			unmerged, uerr := e.git.UnmergedFiles(ctx)
			if uerr == nil && len(unmerged) > 0 {
				e.status = StateConflict
				e.unmerged = unmerged
				return e.status, nil
			}
			return e.fail(ctx, err)
		}
		if err := e.commitStep(ctx, step); err != nil {
			return e.fail(ctx, err)
		}
		e.idx++
	}

	return e.finish(ctx)
}

func (e *Executor) commitStep(ctx context.Context, step Step) error {
	switch step.Kind {
	case StepMerge:
		return e.git.AmendWithMessage(ctx, step.Message)
	default:
		return e.git.CommitIndex(ctx, step.Message, step.Author, step.AuthorEmail, step.AuthorDate)
	}
}

func (e *Executor) finish(ctx context.Context) (State, error) {
	newTip, err := e.git.Head(ctx)
	if err != nil {
		return e.fail(ctx, err)
	}
	// The single commit point: refuse when someone moved the branch since
	// the session captured it.
	if err := e.git.UpdateRefCAS(ctx, e.state.Branch, newTip, e.state.Tip); err != nil {
		return e.fail(ctx, err)
	}
	if err := e.git.CheckoutBranch(ctx, e.state.Branch); err != nil {
		return StateDone, &ExecutionError{Step: e.idx, Err: err}
	}
	e.newTip = newTip
	e.status = StateDone
	return e.status, nil
}

func (e *Executor) fail(ctx context.Context, err error) (State, error) {
	rollbackErr := e.rollback(ctx)
	e.status = StateAborted
	if rollbackErr != nil {
		err = fmt.Errorf("%w (rollback: %v)", err, rollbackErr)
	}
	return e.status, &ExecutionError{Step: e.idx, Err: err}
}

func (e *Executor) rollback(ctx context.Context) error {
	// The session never moves the branch ref before the commit point, so a
	// forced re-checkout of the branch discards every intermediate commit and
	// any half-applied index or worktree state. A branch moved by another
	// process meanwhile is left where that process put it.
	return e.git.CheckoutBranch(ctx, e.state.Branch)
}
