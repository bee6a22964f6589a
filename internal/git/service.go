// Package git wraps the git commands lazycraft drives.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	log "github.com/chmouel/lazycraft/internal/log"
	"github.com/chmouel/lazycraft/internal/models"
)

// Sentinel errors surfaced to the UI.
var (
	ErrRepositoryUnavailable = errors.New("not a git repository")
	ErrEmptyHistory          = errors.New("no commits found")
	ErrDiffUnavailable       = errors.New("commit has no parent to diff against")
)

// LookupPath is used to find executables in PATH. It's exposed as a package
// variable so tests can mock it and avoid depending on system binaries.
var LookupPath = exec.LookPath

// NotifyFn receives ongoing notifications for the UI status line.
type NotifyFn func(message string, severity string)

// Service runs git commands against one repository.
type Service struct {
	repoPath  string
	notify    NotifyFn
	gitPager  string
	pagerArgs []string
	usePager  bool
}

// NewService constructs a Service rooted at repoPath.
func NewService(repoPath string, notify NotifyFn) *Service {
	if notify == nil {
		notify = func(string, string) {}
	}
	return &Service{repoPath: repoPath, notify: notify}
}

// RepoPath returns the repository root the service operates on.
func (s *Service) RepoPath() string {
	return s.repoPath
}

// SetGitPager configures the diff formatter command; empty disables it.
func (s *Service) SetGitPager(pager string, args []string) {
	s.gitPager = strings.TrimSpace(pager)
	s.pagerArgs = append([]string{}, args...)
	s.usePager = false
	if s.gitPager != "" {
		if _, err := LookupPath(s.gitPager); err == nil {
			s.usePager = true
		}
	}
}

// run executes a git command in the repository and returns trimmed stdout.
func (s *Service) run(ctx context.Context, args ...string) (string, error) {
	return s.runInput(ctx, "", args...)
}

func (s *Service) runInput(ctx context.Context, stdin string, args ...string) (string, error) {
	full := append([]string{"-C", s.repoPath}, args...)
	log.Printf("git %s", strings.Join(args, " "))

	// #nosec G204 -- arguments come from internal logic and are not shell interpolated
	cmd := exec.CommandContext(ctx, "git", full...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		log.Printf("git %s: %s", args[0], detail)
		return strings.TrimRight(stdout.String(), "\n"), fmt.Errorf("git %s: %s", args[0], detail)
	}
	return strings.TrimRight(stdout.String(), "\n"), nil
}

// State captures the branch reference and working tree state. It reports
// ErrRepositoryUnavailable when repoPath is not a repository and
// ErrEmptyHistory when the repository has no commits yet.
func (s *Service) State(ctx context.Context) (models.RepoState, error) {
	var st models.RepoState

	if _, err := s.run(ctx, "rev-parse", "--git-dir"); err != nil {
		return st, fmt.Errorf("%w: %s", ErrRepositoryUnavailable, s.repoPath)
	}

	tip, err := s.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return st, ErrEmptyHistory
	}
	st.Tip = tip

	branch, err := s.run(ctx, "symbolic-ref", "--short", "HEAD")
	if err != nil {
		st.Detached = true
	} else {
		st.Branch = branch
	}

	status, err := s.run(ctx, "status", "--porcelain")
	if err != nil {
		return st, err
	}
	st.Dirty = strings.TrimSpace(status) != ""

	return st, nil
}

const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"
)

// LoadCommits returns the last limit commits from HEAD, newest first, as an
// immutable window snapshot.
func (s *Service) LoadCommits(ctx context.Context, limit int) ([]models.CommitNode, error) {
	format := strings.Join([]string{"%H", "%h", "%P", "%an", "%ae", "%at", "%s"}, fieldSep) + recordSep
	out, err := s.run(ctx, "log", "-n", strconv.Itoa(limit), "--first-parent", "--format="+format)
	if err != nil {
		if _, rerr := s.run(ctx, "rev-parse", "--git-dir"); rerr != nil {
			return nil, fmt.Errorf("%w: %s", ErrRepositoryUnavailable, s.repoPath)
		}
		return nil, ErrEmptyHistory
	}

	var commits []models.CommitNode
	for _, record := range strings.Split(out, recordSep) {
		record = strings.TrimSpace(record)
		if record == "" {
			continue
		}
		fields := strings.Split(record, fieldSep)
		if len(fields) != 7 {
			return nil, fmt.Errorf("unexpected log record %q", record)
		}
		ts, err := strconv.ParseInt(fields[5], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse commit date %q: %w", fields[5], err)
		}
		parent := ""
		if parents := strings.Fields(fields[2]); len(parents) > 0 {
			parent = parents[0]
		}
		commits = append(commits, models.CommitNode{
			SHA:         fields[0],
			ShortSHA:    fields[1],
			ParentSHA:   parent,
			Author:      fields[3],
			AuthorEmail: fields[4],
			Date:        time.Unix(ts, 0),
			Subject:     fields[6],
			Ordinal:     len(commits),
		})
	}
	if len(commits) == 0 {
		return nil, ErrEmptyHistory
	}
	return commits, nil
}

// CommitPatch returns the commit's diff against its first parent (or the
// empty tree for a root commit) as raw patch text.
func (s *Service) CommitPatch(ctx context.Context, sha string) (string, error) {
	out, err := s.run(ctx, "show", "--no-color", "--format=", "--patch", "--first-parent", sha)
	if err != nil {
		return "", err
	}
	if out != "" && !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out, nil
}

// CommitHunks extracts the ordered hunk sequence of a commit's diff against
// its parent. Extraction is deterministic: the same commit always yields the
// same hunks in the same order. Root commits report ErrDiffUnavailable.
func (s *Service) CommitHunks(ctx context.Context, commit models.CommitNode) ([]models.Hunk, error) {
	if commit.IsRoot() {
		return nil, fmt.Errorf("%w: %s", ErrDiffUnavailable, commit.ShortSHA)
	}
	patch, err := s.CommitPatch(ctx, commit.SHA)
	if err != nil {
		return nil, err
	}
	return ParseHunks(patch)
}

// FormatDiff pipes diff text through the configured pager when available.
func (s *Service) FormatDiff(ctx context.Context, diff string) string {
	if !s.usePager || diff == "" {
		return diff
	}
	args := append([]string{}, s.pagerArgs...)
	if s.gitPager == "delta" {
		args = append(args, "--no-gitconfig", "--paging=never")
	}
	// #nosec G204 -- git_pager comes from local config and is controlled by the user
	cmd := exec.CommandContext(ctx, s.gitPager, args...)
	cmd.Stdin = strings.NewReader(diff)
	out, err := cmd.Output()
	if err != nil {
		return diff
	}
	return string(out)
}

// GitDir returns the absolute path of the repository's git directory.
func (s *Service) GitDir(ctx context.Context) (string, error) {
	return s.run(ctx, "rev-parse", "--absolute-git-dir")
}

// UpstreamContains reports whether sha is already reachable from the current
// branch's upstream ref. Used to warn before rewriting pushed history.
func (s *Service) UpstreamContains(ctx context.Context, sha string) bool {
	upstream, err := s.run(ctx, "rev-parse", "--abbrev-ref", "@{upstream}")
	if err != nil || upstream == "" {
		return false
	}
	_, err = s.run(ctx, "merge-base", "--is-ancestor", sha, upstream)
	return err == nil
}
