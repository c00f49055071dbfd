package primary

import "context"

// ReconcileService is the primary port for orphan/crash recovery. It runs
// before the store or lifecycle manager are trusted on a fresh process start.
type ReconcileService interface {
	// Reconcile enumerates live multiplexer sessions, scopes them to this
	// project's port block, and reports or kills the matches. Sessions in
	// other projects' blocks are never touched, even on a name match.
	Reconcile(ctx context.Context, opts ReconcileOptions) (*ReconcileReport, error)

	// LegacyMarkers returns any marker files left by the retired
	// process-supervision approach. They are reported, never deleted.
	LegacyMarkers() []string
}

// ReconcileOptions controls a reconciliation pass.
type ReconcileOptions struct {
	// Kill terminates matched sessions instead of only reporting them.
	Kill bool

	// Silent suppresses informational logging.
	Silent bool
}

// ReconcileReport summarizes one reconciliation pass.
type ReconcileReport struct {
	// Matched lists sessions belonging to this project's block.
	Matched []string

	// Killed lists the sessions terminated (subset of Matched).
	Killed []string

	// Failed lists sessions that could not be killed.
	Failed []string
}
