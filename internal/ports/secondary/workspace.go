package secondary

import "context"

// WorkspaceAdapter is the secondary port for the version-control tool. The
// core never parses history: only pass/fail operations and a boolean dirty
// check.
type WorkspaceAdapter interface {
	// CreateWorktree creates an isolated working copy of repoPath bound to
	// a new branch at targetPath.
	CreateWorktree(ctx context.Context, repoPath, branch, targetPath string) error

	// RemoveWorktree removes the worktree at path. The branch and its
	// history are preserved; only the working copy is reclaimed.
	RemoveWorktree(ctx context.Context, repoPath, path string) error

	// IsDirty reports whether the worktree at path has uncommitted changes.
	IsDirty(ctx context.Context, path string) (bool, error)

	// WorktreeExists reports whether a directory exists at path.
	WorktreeExists(ctx context.Context, path string) (bool, error)
}
