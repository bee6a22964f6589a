// Package models defines the data objects shared across lazycraft packages.
package models

import (
	"fmt"
	"time"
)

// CommitNode is one commit inside the loaded history window. The window is a
// closed snapshot: parent linkage is by SHA, and Ordinal records the commit's
// position at load time (0 = branch tip). Nodes are never mutated after load.
type CommitNode struct {
	SHA         string
	ShortSHA    string
	ParentSHA   string // empty for a root commit
	Author      string
	AuthorEmail string
	Date        time.Time
	Subject     string
	Ordinal     int
}

// IsRoot reports whether the commit has no parent.
func (c CommitNode) IsRoot() bool {
	return c.ParentSHA == ""
}

// RepoState captures the branch reference and working tree state at session
// start. Tip is the SHA the session must restore on abort.
type RepoState struct {
	Branch   string
	Tip      string
	Detached bool
	Dirty    bool
}

// FormatRelativeTime renders a compact relative timestamp for commit lists.
func FormatRelativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	case d < 28*24*time.Hour:
		return fmt.Sprintf("%dw", int(d.Hours()/(24*7)))
	default:
		return fmt.Sprintf("%dmo", int(d.Hours()/24/30))
	}
}
