// Package craft implements the interactive rebase-plan engine: a mutable
// plan of per-commit actions, its validator, a compiler lowering validated
// plans into atomic rewrite steps, and the executor applying those steps.
package craft

// ActionKind enumerates what happens to one commit of the window.
type ActionKind int

// Action kinds. Reorder is not an action: it is a permutation of the plan
// sequence, tracked by the Plan itself.
const (
	ActionPick ActionKind = iota
	ActionReword
	ActionSquash
	ActionFixup
	ActionDrop
	ActionSplit
	ActionEdit
)

// String returns the rebase-todo style label for the action kind.
func (k ActionKind) String() string {
	switch k {
	case ActionPick:
		return "pick"
	case ActionReword:
		return "reword"
	case ActionSquash:
		return "squash"
	case ActionFixup:
		return "fixup"
	case ActionDrop:
		return "drop"
	case ActionSplit:
		return "split"
	case ActionEdit:
		return "edit"
	default:
		return "unknown"
	}
}

// HunkGroup is a non-empty set of hunk indices destined to become one
// synthetic commit during a split, with an optional user-supplied message.
type HunkGroup struct {
	HunkIndices []int
	Message     string
}

// Action is the tagged variant assigned to a commit. Which fields are
// meaningful depends on Kind: Message for reword (and the optional combined
// message of a squash), TargetIdx for squash/fixup (the target commit's
// original window index), Groups for split.
type Action struct {
	Kind      ActionKind
	Message   string
	TargetIdx int
	Groups    []HunkGroup
}

// Pick is the default action.
var Pick = Action{Kind: ActionPick}

// Entry pairs a commit (by original window index) with its assigned action.
// The Plan holds entries in display order, newest first; the permutation of
// entries is the reorder state.
type Entry struct {
	OriginalIdx int
	Action      Action
}
