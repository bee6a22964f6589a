package git

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// The rewrite primitives below are the only code paths that touch the
// repository's worktree or references. The executor drives them strictly
// sequentially: every step's base is the previous step's result.

// CheckoutDetached detaches HEAD at sha without moving any branch ref.
func (s *Service) CheckoutDetached(ctx context.Context, sha string) error {
	_, err := s.run(ctx, "checkout", "--quiet", "--detach", sha)
	return err
}

// CheckoutBranch checks the branch out again, discarding any leftover
// intermediate state from an interrupted rewrite.
func (s *Service) CheckoutBranch(ctx context.Context, branch string) error {
	_, err := s.run(ctx, "checkout", "--quiet", "--force", branch)
	return err
}

// Head returns the SHA HEAD currently points at.
func (s *Service) Head(ctx context.Context) (string, error) {
	return s.run(ctx, "rev-parse", "HEAD")
}

// ApplyPatch applies patch text to the worktree and index. A three-way merge
// is attempted so conflicts surface as unmerged index entries instead of a
// flat rejection.
func (s *Service) ApplyPatch(ctx context.Context, patch string) error {
	if strings.TrimSpace(patch) == "" {
		return nil
	}
	_, err := s.runInput(ctx, patch, "apply", "--3way", "--index")
	return err
}

// UnmergedFiles lists paths with unresolved conflict entries in the index.
func (s *Service) UnmergedFiles(ctx context.Context) ([]string, error) {
	out, err := s.run(ctx, "diff", "--name-only", "--diff-filter=U")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(out) == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// CommitIndex records the staged tree as a new commit, preserving the given
// author identity and date.
func (s *Service) CommitIndex(ctx context.Context, message, author, email string, date time.Time) error {
	cmd := s.commitCmd(ctx, author, email, date, "commit", "--quiet", "--allow-empty", "-m", message)
	return runCommit(cmd)
}

// AmendWithMessage folds the staged tree into the current tip and replaces
// its message, keeping the tip's author identity.
func (s *Service) AmendWithMessage(ctx context.Context, message string) error {
	_, err := s.run(ctx, "commit", "--quiet", "--allow-empty", "--amend", "-m", message)
	return err
}

// AmendWithAuthor rewrites the current tip's message and author identity,
// keeping its tree. Used to rewrite a root commit in place.
func (s *Service) AmendWithAuthor(ctx context.Context, message, author, email string, date time.Time) error {
	cmd := s.commitCmd(ctx, author, email, date, "commit", "--quiet", "--allow-empty", "--amend", "-m", message)
	return runCommit(cmd)
}

// UpdateRefCAS atomically points refs/heads/branch at newTip, failing when
// the ref no longer equals oldTip. This is the single commit point of a
// rewrite session.
func (s *Service) UpdateRefCAS(ctx context.Context, branch, newTip, oldTip string) error {
	_, err := s.run(ctx, "update-ref", "refs/heads/"+branch, newTip, oldTip)
	return err
}

func (s *Service) commitCmd(ctx context.Context, author, email string, date time.Time, args ...string) *exec.Cmd {
	full := append([]string{"-C", s.repoPath}, args...)
	// #nosec G204 -- arguments come from internal logic and are not shell interpolated
	cmd := exec.CommandContext(ctx, "git", full...)
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME="+author,
		"GIT_AUTHOR_EMAIL="+email,
		"GIT_AUTHOR_DATE="+date.Format(time.RFC3339),
	)
	return cmd
}

func runCommit(cmd *exec.Cmd) error {
	out, err := cmd.CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(out))
		if detail == "" {
			detail = err.Error()
		}
		return fmt.Errorf("git commit: %s", detail)
	}
	return nil
}
