package clearing

import "time"

// neverFired is the last-fired sentinel meaning a warning has not been sent this run.
const neverFired int64 = 0

// Clock tracks the start of the current cycle and when each staged warning last fired.
type Clock struct {
	snapshot   *Snapshot
	cycleStart time.Time

	// lastWarning1 and lastWarning2 are unix seconds of the last broadcast.
	lastWarning1 int64
	lastWarning2 int64
}

// NewClock starts a cycle at now with both warnings marked as never fired.
func NewClock(snapshot *Snapshot, now time.Time) *Clock {
	return &Clock{
		snapshot:     snapshot,
		cycleStart:   now,
		lastWarning1: neverFired,
		lastWarning2: neverFired,
	}
}

// SetSnapshot swaps the rules the clock measures against.
func (c *Clock) SetSnapshot(snapshot *Snapshot) {
	c.snapshot = snapshot
}

// CycleStart returns the start of the current cycle.
func (c *Clock) CycleStart() time.Time {
	return c.cycleStart
}

// ElapsedSeconds returns whole seconds elapsed since the cycle started,
// computed on truncated second boundaries.
func (c *Clock) ElapsedSeconds(now time.Time) int64 {
	return now.Unix() - c.cycleStart.Unix()
}

// RemainingSeconds returns the seconds left until the next clear, in [1, interval].
func (c *Clock) RemainingSeconds(now time.Time) int64 {
	interval := int64(c.snapshot.ClearInterval)

	elapsed := c.ElapsedSeconds(now) % interval
	if elapsed < 0 {
		elapsed += interval
	}

	return interval - elapsed
}

// ShouldFireWarning2 reports whether the earlier staged warning is due at now.
// A true result records now as its last firing.
func (c *Clock) ShouldFireWarning2(now time.Time) bool {
	var (
		remaining = c.RemainingSeconds(now)
		w1        = int64(c.snapshot.WarningInterval1)
		w2        = int64(c.snapshot.WarningInterval2)
		nowSec    = now.Unix()
	)

	if remaining <= w1 || remaining > w2 {
		return false
	}

	if nowSec-c.lastWarning2 < w2 {
		return false
	}

	c.lastWarning2 = nowSec

	return true
}

// ShouldFireWarning1 reports whether the final staged warning is due at now.
// A true result records now as its last firing.
func (c *Clock) ShouldFireWarning1(now time.Time) bool {
	var (
		remaining = c.RemainingSeconds(now)
		w1        = int64(c.snapshot.WarningInterval1)
		nowSec    = now.Unix()
	)

	if remaining > w1 {
		return false
	}

	if nowSec-c.lastWarning1 < w1 {
		return false
	}

	c.lastWarning1 = nowSec

	return true
}

// ResetCycle starts a new cycle at now. Warning timestamps are kept.
func (c *Clock) ResetCycle(now time.Time) {
	c.cycleStart = now
}
