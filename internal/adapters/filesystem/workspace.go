// Package filesystem contains the git workspace adapter.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/example/af/internal/fault"
	"github.com/example/af/internal/ports/secondary"
)

// WorkspaceAdapter implements secondary.WorkspaceAdapter by shelling out to
// git. Worktree branches survive removal; only the working copy is reclaimed.
type WorkspaceAdapter struct{}

// NewWorkspaceAdapter creates a new git workspace adapter.
func NewWorkspaceAdapter() *WorkspaceAdapter {
	return &WorkspaceAdapter{}
}

// CreateWorktree creates a worktree of repoPath at targetPath on a new branch.
func (a *WorkspaceAdapter) CreateWorktree(ctx context.Context, repoPath, branch, targetPath string) error {
	if _, err := os.Stat(repoPath); os.IsNotExist(err) {
		return fmt.Errorf("%w: repo not found at %s", fault.ErrNotFound, repoPath)
	}

	cmd := exec.CommandContext(ctx, "git", "worktree", "add", targetPath, "-b", branch)
	cmd.Dir = repoPath
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: git worktree add: %v: %s", fault.ErrExternal, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// RemoveWorktree removes the worktree at path. Falls back to removing the
// directory when git refuses, e.g. when the checkout was already deleted by
// hand.
func (a *WorkspaceAdapter) RemoveWorktree(ctx context.Context, repoPath, path string) error {
	cmd := exec.CommandContext(ctx, "git", "worktree", "remove", path, "--force")
	cmd.Dir = repoPath
	if err := cmd.Run(); err != nil {
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("%w: remove worktree directory: %v", fault.ErrExternal, err)
		}
		// Drop the now-stale worktree registration; best effort.
		prune := exec.CommandContext(ctx, "git", "worktree", "prune")
		prune.Dir = repoPath
		_ = prune.Run()
	}
	return nil
}

// IsDirty reports whether the worktree at path has uncommitted changes,
// including untracked files.
func (a *WorkspaceAdapter) IsDirty(ctx context.Context, path string) (bool, error) {
	cmd := exec.CommandContext(ctx, "git", "status", "--porcelain")
	cmd.Dir = path
	output, err := cmd.Output()
	if err != nil {
		return false, fmt.Errorf("%w: git status in %s: %v", fault.ErrExternal, path, err)
	}
	return len(strings.TrimSpace(string(output))) > 0, nil
}

// WorktreeExists reports whether a directory exists at path.
func (a *WorkspaceAdapter) WorktreeExists(ctx context.Context, path string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check worktree: %w", err)
	}
	return info.IsDir(), nil
}

var _ secondary.WorkspaceAdapter = (*WorkspaceAdapter)(nil)
