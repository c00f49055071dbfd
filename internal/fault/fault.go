// Package fault defines the error taxonomy shared by all layers.
// Callers classify failures with errors.Is against these sentinels; the
// human-readable cause is carried by the wrapping message.
package fault

import "errors"

var (
	// ErrCapacity means no more port blocks or ports are available.
	// Non-retryable.
	ErrCapacity = errors.New("capacity exhausted")

	// ErrConflict means a uniqueness constraint would be violated
	// (duplicate port, duplicate allocation). Someone else already
	// holds the resource.
	ErrConflict = errors.New("already allocated")

	// ErrNotFound means the operation referenced an id or path with no
	// matching row. Distinguished from a successful no-op.
	ErrNotFound = errors.New("not found")

	// ErrBusy means a store write could not acquire its lock within the
	// busy timeout, even after the bounded internal retry.
	ErrBusy = errors.New("store busy")

	// ErrExternal means an external tool (tmux, git, bridge) returned
	// non-zero. Its diagnostic output is attached by the wrapper.
	ErrExternal = errors.New("external tool failed")
)
