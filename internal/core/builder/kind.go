package builder

// Kind describes what spawned a builder.
type Kind string

const (
	// KindSpec ties the builder to a numbered specification.
	KindSpec Kind = "spec"
	// KindTask is an ad-hoc task described in free text.
	KindTask Kind = "task"
	// KindProtocol runs a named protocol.
	KindProtocol Kind = "protocol"
	// KindShell is a bare agent shell with no isolated workspace.
	KindShell Kind = "shell"
	// KindWorktree is a bare isolated workspace with no agent running.
	KindWorktree Kind = "worktree"
)

// Kinds lists every declared kind.
var Kinds = []Kind{KindSpec, KindTask, KindProtocol, KindShell, KindWorktree}

// ValidKind reports whether k is one of the declared kinds.
func ValidKind(k Kind) bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// NeedsWorkspace reports whether builders of this kind get an isolated
// worktree and branch. Bare shells work directly in the project checkout.
func (k Kind) NeedsWorkspace() bool {
	return k != KindShell
}

// RunsAgent reports whether builders of this kind launch the agent command in
// their session. Bare worktrees get a plain shell.
func (k Kind) RunsAgent() bool {
	return k != KindWorktree && k != KindShell
}
