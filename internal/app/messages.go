package app

import (
	"github.com/chmouel/lazycraft/internal/craft"
	"github.com/chmouel/lazycraft/internal/models"
)

// Message types for the Bubble Tea app.
type (
	commitsLoadedMsg struct {
		state   models.RepoState
		commits []models.CommitNode
		err     error
	}
	diffLoadedMsg struct {
		sha  string
		text string
		err  error
	}
	hunksLoadedMsg struct {
		originalIdx int
		hunks       []models.Hunk
		err         error
	}
	patchesLoadedMsg struct {
		patches map[int]string
		pushed  int // modified commits already on the upstream
		err     error
	}
	execStoppedMsg struct {
		status   craft.State
		unmerged []string
		newTip   string
		err      error
	}
	branchMovedMsg struct{}
)
