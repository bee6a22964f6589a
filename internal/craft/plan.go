package craft

import (
	"errors"
	"fmt"

	"github.com/chmouel/lazycraft/internal/models"
)

// ErrInvalidGroupAssignment reports a locally detectable split error: an
// empty group, an out-of-range hunk index, or a hunk allocated twice.
var ErrInvalidGroupAssignment = errors.New("invalid hunk group assignment")

// Plan is the mutable in-memory representation of a craft session: one
// action per original commit plus the display-order permutation. The window
// is held newest first (entry position 0 = branch tip); final application
// order is the reverse. A Plan is owned by a single UI session and is never
// mutated concurrently.
type Plan struct {
	commits []models.CommitNode
	entries []Entry
	hunks   map[int][]models.Hunk // keyed by original window index
}

// NewPlan builds a plan over the loaded window with every commit picked.
func NewPlan(commits []models.CommitNode) *Plan {
	entries := make([]Entry, len(commits))
	for i := range commits {
		entries[i] = Entry{OriginalIdx: i, Action: Pick}
	}
	return &Plan{
		commits: commits,
		entries: entries,
		hunks:   make(map[int][]models.Hunk),
	}
}

// Len returns the number of commits in the window.
func (p *Plan) Len() int {
	return len(p.entries)
}

// Commit returns the commit at the given original window index.
func (p *Plan) Commit(originalIdx int) models.CommitNode {
	return p.commits[originalIdx]
}

// EntryAt returns the entry at a display position.
func (p *Plan) EntryAt(pos int) Entry {
	return p.entries[pos]
}

// Entries returns a copy of the current display-order sequence.
func (p *Plan) Entries() []Entry {
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}

// PositionOf returns the display position of a commit, -1 if absent.
func (p *Plan) PositionOf(originalIdx int) int {
	for pos, e := range p.entries {
		if e.OriginalIdx == originalIdx {
			return pos
		}
	}
	return -1
}

// SetAction assigns an action to a commit. Cross-commit consistency is the
// validator's job; only locally detectable errors are rejected here.
func (p *Plan) SetAction(originalIdx int, a Action) error {
	if originalIdx < 0 || originalIdx >= len(p.commits) {
		return fmt.Errorf("commit index %d out of range", originalIdx)
	}
	switch a.Kind {
	case ActionSquash, ActionFixup:
		if a.TargetIdx == originalIdx {
			return fmt.Errorf("%s %s into itself", a.Kind, p.commits[originalIdx].ShortSHA)
		}
		if a.TargetIdx < 0 || a.TargetIdx >= len(p.commits) {
			return fmt.Errorf("%s target index %d out of range", a.Kind, a.TargetIdx)
		}
	case ActionSplit:
		if err := p.checkGroups(originalIdx, a.Groups); err != nil {
			return err
		}
	}
	for pos := range p.entries {
		if p.entries[pos].OriginalIdx == originalIdx {
			p.entries[pos].Action = a
			return nil
		}
	}
	return fmt.Errorf("commit index %d not in plan", originalIdx)
}

// Reorder moves the entry at display position from to position to.
func (p *Plan) Reorder(from, to int) error {
	n := len(p.entries)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("reorder positions %d->%d out of range", from, to)
	}
	if from == to {
		return nil
	}
	e := p.entries[from]
	p.entries = append(p.entries[:from], p.entries[from+1:]...)
	rest := append([]Entry{e}, p.entries[to:]...)
	p.entries = append(p.entries[:to:to], rest...)
	return nil
}

// SetHunks records the extracted hunk set of a commit. Group assignments for
// the commit always refer to this snapshot; extraction is deterministic so a
// re-extraction within the session yields the same sequence.
func (p *Plan) SetHunks(originalIdx int, hunks []models.Hunk) {
	p.hunks[originalIdx] = hunks
}

// Hunks returns the cached hunk set of a commit, nil when not extracted.
func (p *Plan) Hunks(originalIdx int) []models.Hunk {
	return p.hunks[originalIdx]
}

// AssignHunkGroups assigns split groups to a commit, replacing any previous
// split assignment. The hunk set must have been extracted first.
func (p *Plan) AssignHunkGroups(originalIdx int, groups []HunkGroup) error {
	if err := p.checkGroups(originalIdx, groups); err != nil {
		return err
	}
	return p.SetAction(originalIdx, Action{Kind: ActionSplit, Groups: groups})
}

// checkGroups rejects locally detectable group errors. Total coverage over
// the hunk set is deferred to the validator.
func (p *Plan) checkGroups(originalIdx int, groups []HunkGroup) error {
	hunks, ok := p.hunks[originalIdx]
	if !ok {
		return fmt.Errorf("%w: hunks of %s not extracted", ErrInvalidGroupAssignment, p.commits[originalIdx].ShortSHA)
	}
	if len(groups) == 0 {
		return fmt.Errorf("%w: no groups", ErrInvalidGroupAssignment)
	}
	seen := make(map[int]bool, len(hunks))
	for gi, g := range groups {
		if len(g.HunkIndices) == 0 {
			return fmt.Errorf("%w: group %d is empty", ErrInvalidGroupAssignment, gi+1)
		}
		for _, hi := range g.HunkIndices {
			if hi < 0 || hi >= len(hunks) {
				return fmt.Errorf("%w: hunk index %d out of range", ErrInvalidGroupAssignment, hi)
			}
			if seen[hi] {
				return fmt.Errorf("%w: hunk %d allocated twice", ErrInvalidGroupAssignment, hi)
			}
			seen[hi] = true
		}
	}
	return nil
}

// HasActions reports whether any commit has a non-pick action assigned.
func (p *Plan) HasActions() bool {
	for _, e := range p.entries {
		if e.Action.Kind != ActionPick {
			return true
		}
	}
	return false
}
