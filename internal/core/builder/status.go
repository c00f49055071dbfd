// Package builder contains the pure business rules for builder lifecycle:
// the status machine, builder kinds, and deterministic naming. No I/O.
package builder

// Status is a builder lifecycle status.
type Status string

const (
	StatusSpawning     Status = "spawning"
	StatusImplementing Status = "implementing"
	StatusBlocked      Status = "blocked"
	StatusPRReady      Status = "pr-ready"
	StatusComplete     Status = "complete"
)

// Statuses lists every declared status in lifecycle order.
var Statuses = []Status{
	StatusSpawning,
	StatusImplementing,
	StatusBlocked,
	StatusPRReady,
	StatusComplete,
}

// ValidStatus reports whether s is one of the declared statuses.
func ValidStatus(s Status) bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// transitions is the declared transition set. blocked and implementing are
// mutually reachable any number of times before pr-ready.
var transitions = map[Status][]Status{
	StatusSpawning:     {StatusImplementing},
	StatusImplementing: {StatusBlocked, StatusPRReady},
	StatusBlocked:      {StatusImplementing},
	StatusPRReady:      {StatusComplete},
	StatusComplete:     {},
}

// CanTransition reports whether a builder may move from one status to
// another. Cleanup does not go through here: it deletes the row outright and
// is allowed from any status.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
