package craft

import (
	"fmt"
	"testing"
	"time"

	"github.com/chmouel/lazycraft/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// window builds a synthetic commit window, newest first. When rooted is true
// the oldest commit has no parent.
func window(n int, rooted bool) []models.CommitNode {
	commits := make([]models.CommitNode, n)
	sha := func(i int) string { return fmt.Sprintf("%07d-commit", n-i) }
	for i := 0; i < n; i++ {
		parent := ""
		if i < n-1 {
			parent = sha(i + 1)
		} else if !rooted {
			parent = "0000000-base"
		}
		commits[i] = models.CommitNode{
			SHA:         sha(i),
			ShortSHA:    sha(i)[:7],
			ParentSHA:   parent,
			Author:      "Test Author",
			AuthorEmail: "test@example.com",
			Date:        time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC).Add(-time.Duration(i) * time.Hour),
			Subject:     fmt.Sprintf("commit %d", n-i),
			Ordinal:     i,
		}
	}
	return commits
}

func sampleHunks(n int) []models.Hunk {
	hunks := make([]models.Hunk, n)
	for i := range hunks {
		hunks[i] = models.Hunk{
			File:       "main.go",
			FileHeader: "diff --git a/main.go b/main.go\n--- a/main.go\n+++ b/main.go\n",
			Header:     fmt.Sprintf("@@ -%d,1 +%d,2 @@", i*10+1, i*10+1),
			OldStart:   i*10 + 1,
			OldLines:   1,
			NewStart:   i*10 + 1,
			NewLines:   2,
			Lines: []models.DiffLine{
				{Kind: models.LineContext, Text: "ctx"},
				{Kind: models.LineAdded, Text: fmt.Sprintf("line %d", i)},
			},
		}
	}
	return hunks
}

func TestNewPlanDefaultsToPick(t *testing.T) {
	p := NewPlan(window(3, false))

	assert.Equal(t, 3, p.Len())
	assert.False(t, p.HasActions())
	for pos := 0; pos < p.Len(); pos++ {
		e := p.EntryAt(pos)
		assert.Equal(t, pos, e.OriginalIdx)
		assert.Equal(t, ActionPick, e.Action.Kind)
	}
}

func TestSetAction(t *testing.T) {
	tests := []struct {
		name    string
		idx     int
		action  Action
		wantErr string
	}{
		{
			name:   "reword",
			idx:    1,
			action: Action{Kind: ActionReword, Message: "better subject"},
		},
		{
			name:   "drop",
			idx:    0,
			action: Action{Kind: ActionDrop},
		},
		{
			name:    "squash into itself",
			idx:     1,
			action:  Action{Kind: ActionSquash, TargetIdx: 1},
			wantErr: "into itself",
		},
		{
			name:    "fixup target out of range",
			idx:     0,
			action:  Action{Kind: ActionFixup, TargetIdx: 9},
			wantErr: "out of range",
		},
		{
			name:    "commit index out of range",
			idx:     7,
			action:  Action{Kind: ActionDrop},
			wantErr: "out of range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlan(window(3, false))
			err := p.SetAction(tt.idx, tt.action)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.action, p.EntryAt(p.PositionOf(tt.idx)).Action)
			assert.True(t, p.HasActions())
		})
	}
}

func TestSetActionSurvivesReorder(t *testing.T) {
	p := NewPlan(window(3, false))
	require.NoError(t, p.Reorder(0, 2))
	require.NoError(t, p.SetAction(0, Action{Kind: ActionDrop}))

	// The action follows the commit, not the display slot.
	assert.Equal(t, ActionDrop, p.EntryAt(2).Action.Kind)
	assert.Equal(t, 0, p.EntryAt(2).OriginalIdx)
}

func TestReorder(t *testing.T) {
	p := NewPlan(window(4, false))

	require.NoError(t, p.Reorder(0, 2))
	order := make([]int, 0, 4)
	for _, e := range p.Entries() {
		order = append(order, e.OriginalIdx)
	}
	assert.Equal(t, []int{1, 2, 0, 3}, order)

	require.NoError(t, p.Reorder(3, 0))
	order = order[:0]
	for _, e := range p.Entries() {
		order = append(order, e.OriginalIdx)
	}
	assert.Equal(t, []int{3, 1, 2, 0}, order)

	require.NoError(t, p.Reorder(1, 1))
	assert.Error(t, p.Reorder(-1, 0))
	assert.Error(t, p.Reorder(0, 4))
}

func TestReorderKeepsPermutation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 12).Draw(t, "n")
		p := NewPlan(window(n, false))

		moves := rapid.IntRange(0, 20).Draw(t, "moves")
		for i := 0; i < moves; i++ {
			from := rapid.IntRange(0, n-1).Draw(t, fmt.Sprintf("from-%d", i))
			to := rapid.IntRange(0, n-1).Draw(t, fmt.Sprintf("to-%d", i))
			require.NoError(t, p.Reorder(from, to))
		}

		seen := make(map[int]bool, n)
		for _, e := range p.Entries() {
			assert.False(t, seen[e.OriginalIdx], "index %d appears twice", e.OriginalIdx)
			seen[e.OriginalIdx] = true
		}
		assert.Len(t, seen, n)
	})
}

func TestAssignHunkGroups(t *testing.T) {
	tests := []struct {
		name    string
		extract bool
		groups  []HunkGroup
		wantErr string
	}{
		{
			name:    "valid partition",
			extract: true,
			groups: []HunkGroup{
				{HunkIndices: []int{0, 2}},
				{HunkIndices: []int{1}, Message: "extracted helper"},
			},
		},
		{
			name:    "hunks never extracted",
			extract: false,
			groups:  []HunkGroup{{HunkIndices: []int{0}}},
			wantErr: "not extracted",
		},
		{
			name:    "no groups",
			extract: true,
			groups:  nil,
			wantErr: "no groups",
		},
		{
			name:    "empty group",
			extract: true,
			groups:  []HunkGroup{{HunkIndices: []int{0}}, {}},
			wantErr: "empty",
		},
		{
			name:    "hunk index out of range",
			extract: true,
			groups:  []HunkGroup{{HunkIndices: []int{0, 5}}},
			wantErr: "out of range",
		},
		{
			name:    "double allocation",
			extract: true,
			groups:  []HunkGroup{{HunkIndices: []int{0, 1}}, {HunkIndices: []int{1, 2}}},
			wantErr: "allocated twice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlan(window(3, false))
			if tt.extract {
				p.SetHunks(1, sampleHunks(3))
			}
			err := p.AssignHunkGroups(1, tt.groups)
			if tt.wantErr != "" {
				require.ErrorIs(t, err, ErrInvalidGroupAssignment)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			e := p.EntryAt(p.PositionOf(1))
			assert.Equal(t, ActionSplit, e.Action.Kind)
			assert.Equal(t, tt.groups, e.Action.Groups)
		})
	}
}

func TestAssignHunkGroupsReplacesPrevious(t *testing.T) {
	p := NewPlan(window(2, false))
	p.SetHunks(0, sampleHunks(2))

	require.NoError(t, p.AssignHunkGroups(0, []HunkGroup{{HunkIndices: []int{0, 1}}}))
	require.NoError(t, p.AssignHunkGroups(0, []HunkGroup{
		{HunkIndices: []int{0}},
		{HunkIndices: []int{1}},
	}))

	e := p.EntryAt(p.PositionOf(0))
	require.Len(t, e.Action.Groups, 2)
}
