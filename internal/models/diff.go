package models

import "fmt"

// LineKind classifies a single diff line.
type LineKind int

// Diff line kinds. LineNoNewline carries the literal
// "\ No newline at end of file" marker so reassembled patches stay exact.
const (
	LineContext LineKind = iota
	LineAdded
	LineRemoved
	LineNoNewline
)

// DiffLine is one line of a hunk body, without its +/-/space prefix.
type DiffLine struct {
	Kind LineKind
	Text string
}

// Hunk is a contiguous diff region within one file, extracted from a commit's
// diff against its parent. Hunks are immutable once extracted and their order
// within a commit is stable across repeated extractions.
type Hunk struct {
	File       string
	FileHeader string // verbatim "diff --git" through "+++" block, for patch reassembly
	Header     string // the raw "@@ -l,n +l,n @@ ..." line
	OldStart   int
	OldLines   int
	NewStart   int
	NewLines   int
	Lines      []DiffLine
}

// Summary renders a one-line description of the hunk for list views.
func (h Hunk) Summary() string {
	var added, removed int
	for _, l := range h.Lines {
		switch l.Kind {
		case LineAdded:
			added++
		case LineRemoved:
			removed++
		}
	}
	return fmt.Sprintf("%s +%d -%d", h.File, added, removed)
}
