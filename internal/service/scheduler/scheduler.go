package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/oshokin/clearmob/internal/domain/clearing"
	"github.com/oshokin/clearmob/internal/logger"
	"github.com/oshokin/clearmob/internal/message"
	"github.com/oshokin/clearmob/internal/metrics"
	"github.com/oshokin/clearmob/internal/repository/world"
)

const (
	// WarningPeriod is how often the staged warnings are evaluated.
	WarningPeriod = time.Second

	// DefaultSweepTimeout bounds a single sweep against the entity source.
	DefaultSweepTimeout = 10 * time.Second
)

// Broadcaster delivers a formatted message to every participant.
type Broadcaster interface {
	Broadcast(ctx context.Context, msg string) error
}

// Scheduler runs the warning and clear tickers of the clearing cycle.
type Scheduler struct {
	// ctx scopes the lifetime and the logger of every ticker.
	ctx    context.Context
	cancel context.CancelFunc

	source       world.Source
	broadcaster  Broadcaster
	metrics      *metrics.Metrics
	sweepTimeout time.Duration

	// mu serializes commands and ticker bodies; every field below is guarded by it.
	mu            sync.Mutex
	snapshot      *clearing.Snapshot
	clock         *clearing.Clock
	enabled       bool
	warningTicker *ticker
	clearTicker   *ticker

	lastSweepAt    time.Time
	lastSweepCount int

	// wg tracks every ticker goroutine ever spawned, canceled or not.
	wg sync.WaitGroup
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithMetrics records sweeps and warnings on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scheduler) {
		s.metrics = m
	}
}

// WithSweepTimeout bounds each sweep.
func WithSweepTimeout(timeout time.Duration) Option {
	return func(s *Scheduler) {
		if timeout > 0 {
			s.sweepTimeout = timeout
		}
	}
}

// New creates a stopped scheduler. The cycle starts counting now.
// Canceling ctx stops every ticker, as does Close.
func New(
	ctx context.Context,
	source world.Source,
	broadcaster Broadcaster,
	snapshot *clearing.Snapshot,
	opts ...Option,
) *Scheduler {
	ctx, cancel := context.WithCancel(logger.WithName(ctx, "scheduler"))

	s := &Scheduler{
		ctx:          ctx,
		cancel:       cancel,
		source:       source,
		broadcaster:  broadcaster,
		sweepTimeout: DefaultSweepTimeout,
		snapshot:     snapshot,
		clock:        clearing.NewClock(snapshot, time.Now()),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start enables clearing and replaces both tickers with fresh ones.
// The cycle clock is recreated, so the first clear happens one full interval from now.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.startLocked()
}

// Stop disables clearing. Both tickers are canceled before Stop returns,
// so no ticker body runs after it.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.enabled = false
	s.cancelTickersLocked()
	s.metrics.SetEnabled(false)

	logger.Info(s.ctx, "Clearing disabled")
}

// Reload swaps the clear rules and restarts the cycle at now.
// When enabled, both tickers are restarted so a new interval applies to the next clear.
func (s *Scheduler) Reload(snapshot *clearing.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = snapshot
	s.clock.SetSnapshot(snapshot)
	s.clock.ResetCycle(time.Now())

	logger.InfoKV(s.ctx, "Clear rules reloaded", "clear_interval", snapshot.ClearInterval, "enabled", s.enabled)

	if s.enabled {
		s.startLocked()
	}
}

// Enabled reports whether clearing is on.
func (s *Scheduler) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.enabled
}

// Progress returns a view of the current cycle.
func (s *Scheduler) Progress() clearing.Progress {
	s.mu.Lock()
	defer s.mu.Unlock()

	return clearing.Progress{
		Running:          s.enabled && s.warningTicker != nil && s.clearTicker != nil,
		ClearInterval:    s.snapshot.ClearInterval,
		RemainingSeconds: s.clock.RemainingSeconds(time.Now()),
		LastSweepAt:      s.lastSweepAt,
		LastSweepCount:   s.lastSweepCount,
	}
}

// Close cancels everything and waits for the ticker goroutines to exit.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.enabled = false
	s.cancelTickersLocked()
	s.mu.Unlock()

	s.cancel()

	// Waiting happens outside the lock: a ticker may be blocked on it.
	s.wg.Wait()
}

func (s *Scheduler) startLocked() {
	s.cancelTickersLocked()

	now := time.Now()
	interval := time.Duration(s.snapshot.ClearInterval) * time.Second

	s.enabled = true
	s.clock = clearing.NewClock(s.snapshot, now)
	s.warningTicker = s.spawn("warning", WarningPeriod, s.warnTick)
	s.clearTicker = s.spawn("clear", interval, s.clearTick)
	s.metrics.SetEnabled(true)

	logger.InfoKV(s.ctx, "Clearing started",
		"clear_interval", s.snapshot.ClearInterval,
		"next_clear", now.Add(interval).Format(time.RFC3339))
}

func (s *Scheduler) cancelTickersLocked() {
	s.warningTicker.stop()
	s.clearTicker.stop()
	s.warningTicker, s.clearTicker = nil, nil
}

// warnTick evaluates the staged warnings at now, the earlier one first.
func (s *Scheduler) warnTick(ctx context.Context, now time.Time) {
	switch {
	case s.clock.ShouldFireWarning2(now):
		s.broadcast(ctx, message.WithSeconds(s.snapshot.WarningTemplate2, s.snapshot.WarningInterval2))
		s.metrics.RecordWarning(metrics.StageBeforeClear2)
	case s.clock.ShouldFireWarning1(now):
		s.broadcast(ctx, message.WithSeconds(s.snapshot.WarningTemplate1, s.snapshot.WarningInterval1))
		s.metrics.RecordWarning(metrics.StageBeforeClear1)
	}
}

// clearTick sweeps the world, announces the result and starts a new cycle
// at due, so a slow sweep does not push the following clears back.
func (s *Scheduler) clearTick(ctx context.Context, due time.Time) {
	count, err := s.sweep(ctx)
	if err != nil {
		logger.ErrorKV(ctx, "Sweep failed", "error", err)
		s.metrics.RecordSweepError()
	} else {
		s.broadcast(ctx, message.WithCount(s.snapshot.AfterClearTemplate, count))
	}

	s.lastSweepAt = time.Now()
	s.lastSweepCount = count
	s.clock.ResetCycle(due)
}

func (s *Scheduler) broadcast(ctx context.Context, msg string) {
	if err := s.broadcaster.Broadcast(ctx, msg); err != nil {
		logger.ErrorKV(ctx, "Broadcast failed", "error", err)
	}
}
