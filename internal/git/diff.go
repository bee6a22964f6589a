package git

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/chmouel/lazycraft/internal/models"
)

var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

const noNewlineMarker = `\ No newline at end of file`

// ParseHunks partitions raw patch text into an ordered hunk sequence. The
// order follows the patch itself, so repeated parses of the same commit give
// identical results. Binary file entries carry no hunks and are skipped.
func ParseHunks(patch string) ([]models.Hunk, error) {
	lines := strings.Split(patch, "\n")

	var hunks []models.Hunk
	var fileHeader []string
	var file string

	flushHeaderLine := func(line string) {
		fileHeader = append(fileHeader, line)
	}

	i := 0
	for i < len(lines) {
		line := lines[i]
		switch {
		case strings.HasPrefix(line, "diff --git "):
			fileHeader = []string{line}
			file = ""
			i++
		case strings.HasPrefix(line, "--- "):
			flushHeaderLine(line)
			if file == "" && line != "--- /dev/null" {
				file = strings.TrimPrefix(strings.TrimPrefix(line, "--- "), "a/")
			}
			i++
		case strings.HasPrefix(line, "+++ "):
			flushHeaderLine(line)
			if line != "+++ /dev/null" {
				file = strings.TrimPrefix(strings.TrimPrefix(line, "+++ "), "b/")
			}
			i++
		case strings.HasPrefix(line, "@@ "):
			m := hunkHeaderRe.FindStringSubmatch(line)
			if m == nil {
				return nil, fmt.Errorf("malformed hunk header %q", line)
			}
			h := models.Hunk{
				File:       file,
				FileHeader: strings.Join(fileHeader, "\n") + "\n",
				Header:     line,
				OldStart:   atoiDefault(m[1], 0),
				OldLines:   atoiDefault(m[2], 1),
				NewStart:   atoiDefault(m[3], 0),
				NewLines:   atoiDefault(m[4], 1),
			}
			i++
			for i < len(lines) {
				body := lines[i]
				var kind models.LineKind
				var text string
				switch {
				case strings.HasPrefix(body, "+"):
					kind, text = models.LineAdded, body[1:]
				case strings.HasPrefix(body, "-"):
					kind, text = models.LineRemoved, body[1:]
				case strings.HasPrefix(body, " "):
					kind, text = models.LineContext, body[1:]
				case body == noNewlineMarker:
					kind, text = models.LineNoNewline, ""
				default:
					goto hunkDone
				}
				h.Lines = append(h.Lines, models.DiffLine{Kind: kind, Text: text})
				i++
			}
		hunkDone:
			hunks = append(hunks, h)
		default:
			// Extended headers (index, mode, rename, similarity) belong to the
			// current file block; anything before the first diff line is noise.
			if len(fileHeader) > 0 {
				flushHeaderLine(line)
			}
			i++
		}
	}

	return hunks, nil
}

// PatchForHunks reassembles a patch from the selected hunk indices, in the
// order given. File headers are emitted once per contiguous run of hunks
// belonging to the same file.
func PatchForHunks(hunks []models.Hunk, selected []int) string {
	var b strings.Builder
	lastHeader := ""

	for _, idx := range selected {
		if idx < 0 || idx >= len(hunks) {
			continue
		}
		h := hunks[idx]
		if h.FileHeader != lastHeader {
			b.WriteString(h.FileHeader)
			lastHeader = h.FileHeader
		}
		b.WriteString(h.Header)
		b.WriteByte('\n')
		for _, l := range h.Lines {
			switch l.Kind {
			case models.LineAdded:
				b.WriteByte('+')
			case models.LineRemoved:
				b.WriteByte('-')
			case models.LineContext:
				b.WriteByte(' ')
			case models.LineNoNewline:
				b.WriteString(noNewlineMarker)
				b.WriteByte('\n')
				continue
			}
			b.WriteString(l.Text)
			b.WriteByte('\n')
		}
	}

	return b.String()
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
