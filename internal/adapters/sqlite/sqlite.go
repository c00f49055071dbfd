// Package sqlite contains SQLite implementations of the repository ports.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/example/af/internal/fault"
)

// busyRetryDelay is the pause before the single application-level retry on
// lock contention. The driver's own busy timeout already absorbs brief
// contention; this catches the tail without retrying indefinitely.
const busyRetryDelay = 100 * time.Millisecond

func isBusy(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
	}
	return false
}

func isConstraint(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrConstraint
	}
	return false
}

// mapErr classifies driver errors into the fault taxonomy. Unclassified
// errors pass through unchanged.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case isConstraint(err):
		return fmt.Errorf("%w: %v", fault.ErrConflict, err)
	case isBusy(err):
		return fmt.Errorf("%w: %v", fault.ErrBusy, err)
	}
	return err
}

// withBusyRetry runs fn, retrying exactly once when the store reports lock
// contention beyond its busy timeout.
func withBusyRetry(ctx context.Context, fn func() error) error {
	err := fn()
	if !isBusy(err) {
		return err
	}
	select {
	case <-time.After(busyRetryDelay):
	case <-ctx.Done():
		return ctx.Err()
	}
	if err = fn(); isBusy(err) {
		return fmt.Errorf("%w: %v", fault.ErrBusy, err)
	}
	return err
}
