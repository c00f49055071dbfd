// Package tmux implements the session adapter on top of tmux.
package tmux

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/GianlucaP106/gotmux/gotmux"

	"github.com/example/af/internal/fault"
	"github.com/example/af/internal/ports/secondary"
)

// Adapter implements secondary.SessionAdapter. Session inventory goes through
// gotmux; session creation shells out so the pane pid can be read back in the
// same call.
type Adapter struct {
	tmux *gotmux.Tmux
}

// NewAdapter creates a tmux adapter bound to the default server socket.
func NewAdapter() (*Adapter, error) {
	t, err := gotmux.DefaultTmux()
	if err != nil {
		return nil, fmt.Errorf("failed to create tmux client: %w", err)
	}
	return &Adapter{tmux: t}, nil
}

// ListSessions returns the names of every live session on the server. A
// stopped server means no sessions, not an error.
func (a *Adapter) ListSessions(ctx context.Context) ([]string, error) {
	sessions, err := a.tmux.ListSessions()
	if err != nil {
		if strings.Contains(err.Error(), "no server running") {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: list sessions: %v", fault.ErrExternal, err)
	}
	names := make([]string, 0, len(sessions))
	for _, s := range sessions {
		names = append(names, s.Name)
	}
	return names, nil
}

// NewSession creates a detached session named name rooted at dir and returns
// the pid of the session's root process. When command is non-empty it becomes
// the pane's root process, so the returned pid dies with the agent.
func (a *Adapter) NewSession(ctx context.Context, name, dir, command string) (int, error) {
	args := []string{"new-session", "-d", "-s", name, "-c", dir}
	if command != "" {
		args = append(args, command)
	}
	if out, err := exec.CommandContext(ctx, "tmux", args...).CombinedOutput(); err != nil {
		if strings.Contains(string(out), "duplicate session") {
			return 0, fmt.Errorf("%w: session %s already exists", fault.ErrConflict, name)
		}
		return 0, fmt.Errorf("%w: create session %s: %v: %s", fault.ErrExternal, name, err, strings.TrimSpace(string(out)))
	}

	out, err := exec.CommandContext(ctx, "tmux", "display-message", "-p", "-t", name, "#{pane_pid}").Output()
	if err != nil {
		return 0, fmt.Errorf("%w: read pane pid for %s: %v", fault.ErrExternal, name, err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		return 0, fmt.Errorf("%w: parse pane pid for %s: %v", fault.ErrExternal, name, err)
	}
	return pid, nil
}

// KillSession terminates a session by name.
func (a *Adapter) KillSession(ctx context.Context, name string) error {
	sessions, err := a.tmux.ListSessions()
	if err != nil {
		if strings.Contains(err.Error(), "no server running") {
			return fmt.Errorf("%w: session %s", fault.ErrNotFound, name)
		}
		return fmt.Errorf("%w: list sessions: %v", fault.ErrExternal, err)
	}
	for _, s := range sessions {
		if s.Name == name {
			if err := s.Kill(); err != nil {
				return fmt.Errorf("%w: kill session %s: %v", fault.ErrExternal, name, err)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: session %s", fault.ErrNotFound, name)
}

// HasSession reports whether a session with this name exists.
func (a *Adapter) HasSession(ctx context.Context, name string) bool {
	sessions, err := a.tmux.ListSessions()
	if err != nil {
		return false
	}
	for _, s := range sessions {
		if s.Name == name {
			return true
		}
	}
	return false
}

var _ secondary.SessionAdapter = (*Adapter)(nil)
