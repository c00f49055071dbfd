package secondary

import "context"

// SessionAdapter is the secondary port for the terminal multiplexer. Session
// names are never assumed globally unique; only project-and-kind-scoped
// uniqueness is relied upon.
type SessionAdapter interface {
	// ListSessions returns the names of every live session on the machine.
	ListSessions(ctx context.Context) ([]string, error)

	// NewSession creates a detached session running command in dir and
	// returns the pid of its root process. An empty command starts a plain
	// shell.
	NewSession(ctx context.Context, name, dir, command string) (int, error)

	// KillSession terminates a session by name. Killing an absent session
	// is a not-found error; callers treating cleanup as idempotent ignore
	// it.
	KillSession(ctx context.Context, name string) error

	// HasSession reports whether a session with this name exists.
	HasSession(ctx context.Context, name string) bool
}
