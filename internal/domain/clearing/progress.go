package clearing

import "time"

// Progress is a point-in-time view of the clearing cycle.
type Progress struct {
	// Running reports whether both tickers are live.
	Running bool
	// ClearInterval is the active cycle length in seconds.
	ClearInterval int
	// RemainingSeconds is the time left until the next clear.
	RemainingSeconds int64
	// LastSweepAt is when the last sweep finished; zero if none ran yet.
	LastSweepAt time.Time
	// LastSweepCount is the number of entities the last sweep removed.
	LastSweepCount int
}
