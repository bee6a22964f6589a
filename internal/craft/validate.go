package craft

import (
	"fmt"

	"github.com/chmouel/lazycraft/internal/models"
)

// Violation describes one structural problem in a plan, tied to a commit.
type Violation struct {
	SHA    string
	Reason string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", shortID(v.SHA), v.Reason)
}

func shortID(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

// ValidatedPlan is an immutable snapshot of a plan that passed validation.
// It is the only input the compiler accepts.
type ValidatedPlan struct {
	commits []models.CommitNode
	entries []Entry               // display order, newest first
	hunks   map[int][]models.Hunk // split commits only
}

// FinalOrder returns the entries in application order, oldest first.
func (vp *ValidatedPlan) FinalOrder() []Entry {
	out := make([]Entry, len(vp.entries))
	for i, e := range vp.entries {
		out[len(vp.entries)-1-i] = e
	}
	return out
}

// Commit returns the commit at the given original window index.
func (vp *ValidatedPlan) Commit(originalIdx int) models.CommitNode {
	return vp.commits[originalIdx]
}

// Hunks returns the hunk snapshot of a split commit.
func (vp *ValidatedPlan) Hunks(originalIdx int) []models.Hunk {
	return vp.hunks[originalIdx]
}

// Validate checks the plan's cross-commit invariants and returns either an
// immutable snapshot or the full list of violations. Validation is
// all-or-nothing: a plan with any violation produces no snapshot.
//
// Checked invariants:
//   - a squash/fixup target precedes its source in final order and is not
//     itself dropped (chains are fine as long as every edge respects this);
//   - split groups partition the commit's extracted hunk set exactly;
//   - a root commit stays first in final order and cannot be dropped (there
//     is no parent to re-base the remaining window onto);
//   - at least one commit survives with an action other than drop.
func Validate(p *Plan) (*ValidatedPlan, []Violation) {
	var violations []Violation
	entries := p.Entries()
	n := len(entries)

	pos := make(map[int]int, n) // original index -> display position
	for i, e := range entries {
		pos[e.OriginalIdx] = i
	}

	survivors := 0
	for i, e := range entries {
		c := p.Commit(e.OriginalIdx)
		if e.Action.Kind != ActionDrop {
			survivors++
		}

		switch e.Action.Kind {
		case ActionSquash, ActionFixup:
			tpos, ok := pos[e.Action.TargetIdx]
			if !ok {
				violations = append(violations, Violation{c.SHA, fmt.Sprintf("%s target is not in the window", e.Action.Kind)})
				continue
			}
			target := entries[tpos]
			tc := p.Commit(target.OriginalIdx)
			// Final order is the reverse of display order: preceding in final
			// order means a larger display position.
			if tpos <= i {
				violations = append(violations, Violation{c.SHA, fmt.Sprintf("%s target %s must precede it in final order", e.Action.Kind, tc.ShortSHA)})
			}
			if target.Action.Kind == ActionDrop {
				violations = append(violations, Violation{c.SHA, fmt.Sprintf("%s target %s is dropped", e.Action.Kind, tc.ShortSHA)})
			}
		case ActionSplit:
			violations = append(violations, validateSplit(p, c, e.Action.Groups)...)
		case ActionDrop:
			if c.IsRoot() {
				violations = append(violations, Violation{c.SHA, "cannot drop the root commit"})
			}
		}

		if c.IsRoot() && i != n-1 {
			violations = append(violations, Violation{c.SHA, "the root commit must stay first in final order"})
		}
	}

	if survivors == 0 && n > 0 {
		violations = append(violations, Violation{p.Commit(entries[0].OriginalIdx).SHA, "plan drops every commit in the window"})
	}

	if len(violations) > 0 {
		return nil, violations
	}

	hunks := make(map[int][]models.Hunk)
	for _, e := range entries {
		if e.Action.Kind == ActionSplit {
			hs := p.Hunks(e.OriginalIdx)
			snapshot := make([]models.Hunk, len(hs))
			copy(snapshot, hs)
			hunks[e.OriginalIdx] = snapshot
		}
	}
	commits := make([]models.CommitNode, p.Len())
	for i := range commits {
		commits[i] = p.Commit(i)
	}
	return &ValidatedPlan{commits: commits, entries: entries, hunks: hunks}, nil
}

// validateSplit checks total coverage and no overlap of the commit's hunk
// set. Empty groups and double allocation are also rejected at assignment
// time; they are re-checked here because validation must hold on its own.
func validateSplit(p *Plan, c models.CommitNode, groups []HunkGroup) []Violation {
	var violations []Violation
	hunks := p.Hunks(c.Ordinal)
	if hunks == nil {
		return []Violation{{c.SHA, "split assigned but hunks were never extracted"}}
	}
	if len(groups) == 0 {
		return []Violation{{c.SHA, "split has no hunk groups"}}
	}

	covered := make(map[int]int) // hunk index -> allocation count
	for gi, g := range groups {
		if len(g.HunkIndices) == 0 {
			violations = append(violations, Violation{c.SHA, fmt.Sprintf("split group %d is empty", gi+1)})
		}
		for _, hi := range g.HunkIndices {
			if hi < 0 || hi >= len(hunks) {
				violations = append(violations, Violation{c.SHA, fmt.Sprintf("split group %d references unknown hunk %d", gi+1, hi)})
				continue
			}
			covered[hi]++
		}
	}
	for hi, count := range covered {
		if count > 1 {
			violations = append(violations, Violation{c.SHA, fmt.Sprintf("hunk %d allocated to multiple groups", hi)})
		}
	}
	for hi := range hunks {
		if covered[hi] == 0 {
			violations = append(violations, Violation{c.SHA, fmt.Sprintf("hunk %d is not assigned to any group", hi)})
		}
	}
	return violations
}
