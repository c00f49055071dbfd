package app

import (
	"context"
	"fmt"

	"github.com/example/af/internal/fault"
	"github.com/example/af/internal/ports/secondary"
)

// reservePort picks the first candidate port that is both absent from the
// store and actually bindable on localhost. The bind check catches ports held
// by processes the store never heard of; the store's uniqueness constraint
// remains the correctness backstop against concurrent reservations.
func reservePort(ctx context.Context, snapshots secondary.SnapshotRepository, probe secondary.LivenessProbe, candidates []int) (int, error) {
	used, err := snapshots.UsedPorts(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read used ports: %w", err)
	}
	taken := make(map[int]bool, len(used))
	for _, p := range used {
		taken[p] = true
	}

	for _, p := range candidates {
		if taken[p] {
			continue
		}
		if !probe.PortFree(p) {
			continue
		}
		return p, nil
	}
	return 0, fmt.Errorf("%w: no free port in range %d-%d", fault.ErrCapacity, candidates[0], candidates[len(candidates)-1])
}
