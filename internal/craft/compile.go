package craft

import (
	"fmt"
	"strings"
	"time"

	"github.com/chmouel/lazycraft/internal/git"
)

// StepKind enumerates the atomic rewrite instructions.
type StepKind int

// Step kinds. Apply creates a new commit from a patch; Merge folds a patch
// into the running tip and rewrites its message; Pause suspends execution
// for manual amendment before the next step.
const (
	StepApply StepKind = iota
	StepMerge
	StepPause
)

func (k StepKind) String() string {
	switch k {
	case StepApply:
		return "apply"
	case StepMerge:
		return "merge"
	case StepPause:
		return "pause"
	default:
		return "unknown"
	}
}

// Step is one atomic, immutable rewrite instruction.
type Step struct {
	Kind        StepKind
	SHA         string // source commit, empty for pause markers
	Patch       string
	Message     string
	Author      string
	AuthorEmail string
	AuthorDate  time.Time
}

// Compile lowers a validated plan into the ordered step sequence, oldest
// first. patches maps each original window index to the commit's full patch
// text; the compiler never talks to the repository, so the same inputs
// always produce the same steps.
//
// Merge sources are normalized to sit immediately after their target (or
// after earlier sources merging into the same target), so every merge step
// folds into the running tip it is meant for. Within one target the sources
// keep their final-order relative sequence, which makes squash-chain
// messages accumulate in commit order.
func Compile(vp *ValidatedPlan, patches map[int]string) ([]Step, error) {
	final := vp.FinalOrder()

	// Forest: merge sources grouped under their target, roots in final order.
	children := make(map[int][]Entry)
	var roots []Entry
	for _, e := range final {
		switch e.Action.Kind {
		case ActionSquash, ActionFixup:
			children[e.Action.TargetIdx] = append(children[e.Action.TargetIdx], e)
		case ActionDrop:
			// No step: the commit's changes vanish and the synthetic parent
			// linkage simply skips it.
		default:
			roots = append(roots, e)
		}
	}

	var steps []Step
	var emit func(e Entry, message string) error
	emit = func(e Entry, message string) error {
		c := vp.Commit(e.OriginalIdx)
		combined := message

		switch e.Action.Kind {
		case ActionSplit:
			hunks := vp.Hunks(e.OriginalIdx)
			total := len(e.Action.Groups)
			for gi, g := range e.Action.Groups {
				msg := strings.TrimSpace(g.Message)
				if msg == "" {
					msg = fmt.Sprintf("%s (part %d/%d)", c.Subject, gi+1, total)
				}
				steps = append(steps, Step{
					Kind:        StepApply,
					SHA:         c.SHA,
					Patch:       git.PatchForHunks(hunks, g.HunkIndices),
					Message:     msg,
					Author:      c.Author,
					AuthorEmail: c.AuthorEmail,
					AuthorDate:  c.Date,
				})
			}
		case ActionSquash, ActionFixup:
			patch, ok := patches[e.OriginalIdx]
			if !ok {
				return fmt.Errorf("missing patch for commit %s", c.ShortSHA)
			}
			steps = append(steps, Step{
				Kind:        StepMerge,
				SHA:         c.SHA,
				Patch:       patch,
				Message:     combined,
				Author:      c.Author,
				AuthorEmail: c.AuthorEmail,
				AuthorDate:  c.Date,
			})
		default: // pick, reword, edit
			patch, ok := patches[e.OriginalIdx]
			if !ok {
				return fmt.Errorf("missing patch for commit %s", c.ShortSHA)
			}
			steps = append(steps, Step{
				Kind:        StepApply,
				SHA:         c.SHA,
				Patch:       patch,
				Message:     combined,
				Author:      c.Author,
				AuthorEmail: c.AuthorEmail,
				AuthorDate:  c.Date,
			})
			if e.Action.Kind == ActionEdit {
				steps = append(steps, Step{Kind: StepPause, Message: c.Subject})
			}
		}

		// Fold this entry's merge sources into the commit just emitted.
		for _, src := range children[e.OriginalIdx] {
			srcMsg := effectiveMessage(vp, src)
			switch src.Action.Kind {
			case ActionFixup:
				// The target's message survives untouched.
			case ActionSquash:
				if override := strings.TrimSpace(src.Action.Message); override != "" {
					combined = override
				} else {
					combined = combined + "\n\n" + srcMsg
				}
			}
			if err := emit(src, combined); err != nil {
				return err
			}
		}
		return nil
	}

	for _, root := range roots {
		if err := emit(root, effectiveMessage(vp, root)); err != nil {
			return nil, err
		}
	}

	return steps, nil
}

// BaseSHA returns the SHA the rewritten history grows from: the parent of
// the oldest commit in the original window. Empty when the window reaches a
// root commit.
func (vp *ValidatedPlan) BaseSHA() string {
	if len(vp.commits) == 0 {
		return ""
	}
	return vp.commits[len(vp.commits)-1].ParentSHA
}

// NeededPatches lists the original window indices whose full commit patch
// Compile requires. Split commits build their patches from the hunk
// snapshot; dropped commits need none.
func (vp *ValidatedPlan) NeededPatches() []int {
	var out []int
	for _, e := range vp.entries {
		switch e.Action.Kind {
		case ActionDrop, ActionSplit:
		default:
			out = append(out, e.OriginalIdx)
		}
	}
	return out
}

// effectiveMessage is the commit's message after its own action is applied:
// the replacement for a reword, the original subject otherwise.
func effectiveMessage(vp *ValidatedPlan, e Entry) string {
	if e.Action.Kind == ActionReword && strings.TrimSpace(e.Action.Message) != "" {
		return e.Action.Message
	}
	return vp.Commit(e.OriginalIdx).Subject
}
