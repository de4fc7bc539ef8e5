package scheduler

import (
	"context"
	"time"

	"github.com/oshokin/clearmob/internal/logger"
)

// ticker is the cancel handle of one periodic task.
type ticker struct {
	cancel context.CancelFunc
}

// stop cancels future firings. Safe on a nil ticker.
func (t *ticker) stop() {
	if t != nil {
		t.cancel()
	}
}

// spawn starts a goroutine calling body every period, first after one period.
// body receives the instant the tick was due, not the time it got the lock.
// Must be called with s.mu held.
func (s *Scheduler) spawn(name string, period time.Duration, body func(context.Context, time.Time)) *ticker {
	ctx, cancel := context.WithCancel(logger.WithKV(s.ctx, "ticker", name))

	s.wg.Go(func() {
		tk := time.NewTicker(period)
		defer tk.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case due := <-tk.C:
				if !s.fire(ctx, due, body) {
					return
				}
			}
		}
	})

	return &ticker{cancel: cancel}
}

// fire runs one firing under the scheduler lock. It returns false when the
// ticker was canceled or clearing disabled, in which case the ticker exits for good.
func (s *Scheduler) fire(ctx context.Context, due time.Time, body func(context.Context, time.Time)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ctx.Err() != nil || !s.enabled {
		return false
	}

	body(ctx, due)

	return true
}
