package scheduler

import (
	"context"
	"fmt"

	"github.com/oshokin/clearmob/internal/logger"
)

// sweep removes every entity the current snapshot marks for removal and
// returns how many were removed. Failing removals are logged and skipped.
func (s *Scheduler) sweep(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.sweepTimeout)
	defer cancel()

	entities, err := s.source.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list entities: %w", err)
	}

	var (
		removed       int
		removedByKind = make(map[string]int)
	)

	for _, e := range entities {
		if !s.snapshot.ShouldRemove(e) {
			continue
		}

		if err := s.source.Remove(ctx, e.ID); err != nil {
			logger.WarnKV(ctx, "Failed to remove entity", "id", e.ID, "kind", e.Kind, "error", err)
			s.metrics.RecordSweepError()

			if ctx.Err() != nil {
				break
			}

			continue
		}

		removed++
		removedByKind[e.Kind.String()]++
	}

	s.metrics.RecordSweep(removedByKind)

	logger.InfoKV(ctx, "Sweep finished", "scanned", len(entities), "removed", removed)

	return removed, nil
}
