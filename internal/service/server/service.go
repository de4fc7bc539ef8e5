package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oshokin/clearmob/internal/broadcast"
	"github.com/oshokin/clearmob/internal/config"
	"github.com/oshokin/clearmob/internal/domain/clearing"
	"github.com/oshokin/clearmob/internal/domain/control"
	"github.com/oshokin/clearmob/internal/logger"
	repo "github.com/oshokin/clearmob/internal/repository/state"
	"github.com/oshokin/clearmob/internal/service/scheduler"
)

// Replies sent back to the actor of a successful command.
const (
	ReplyEnabled  = "ClearMob has been enabled."
	ReplyDisabled = "ClearMob has been disabled."
	ReplyReloaded = "Configuration has been reloaded."
)

// Scheduler is the part of the clearing scheduler the command surface drives.
type Scheduler interface {
	Start()
	Stop()
	Reload(snapshot *clearing.Snapshot)
	Progress() clearing.Progress
}

// compile-time interface check.
var _ Scheduler = (*scheduler.Scheduler)(nil)

// service implements the command surface on top of the scheduler.
// It is unexported to keep the transport decoupled from the implementation.
type service struct {
	// configPath is re-read on every reload.
	configPath string
	// repo persists the enabled flag across restarts.
	repo repo.Repository
	// scheduler runs the clearing cycle.
	scheduler Scheduler
	// hub delivers broadcast messages to subscribers.
	hub *broadcast.Hub

	// mu serializes commands; settings and state are guarded by it.
	mu       sync.Mutex
	settings *config.Config
	state    *control.State
}

// newService restores the persisted state and starts the scheduler when clearing is enabled.
// Without a persisted state the enabled flag comes from the configuration.
func newService(
	ctx context.Context,
	configPath string,
	settings *config.Config,
	repository repo.Repository,
	sched Scheduler,
	hub *broadcast.Hub,
) (*service, error) {
	s := &service{
		configPath: configPath,
		repo:       repository,
		scheduler:  sched,
		hub:        hub,
		settings:   settings,
		state: &control.State{
			Timestamp: time.Now(),
			LastActor: control.SystemActor.Clone(),
			IsEnabled: settings.IsEnabled(),
		},
	}

	if repository != nil {
		state, err := repository.Load(ctx)
		switch {
		case err == nil:
			if state != nil {
				s.state = state
			}
		case errors.Is(err, repo.ErrNotFound):
			// Keep the configured default.
		default:
			return nil, fmt.Errorf("load state: %w", err)
		}
	}

	if s.state.IsEnabled {
		sched.Start()
	}

	logger.InfoKV(ctx, "Clearing state restored", "is_enabled", s.state.IsEnabled, "actor", s.state.LastActor)

	return s, nil
}

// Execute runs one command on behalf of actor and returns the reply for the actor.
func (s *service) Execute(ctx context.Context, actor *control.Actor, command string) (string, error) {
	cmd := ParseCommand(command)
	if cmd == CommandUnknown {
		return "", control.ErrUsage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.settings.IsAdmin(actor.Username) {
		logger.WarnKV(ctx, "Command denied", "command", cmd, "actor", actor)

		return "", control.ErrPermissionDenied
	}

	logger.InfoKV(ctx, "Command received", "command", cmd, "actor", actor)

	switch cmd {
	case CommandEnable:
		s.scheduler.Start()
		s.setEnabledLocked(ctx, actor, true)

		return ReplyEnabled, nil
	case CommandDisable:
		s.scheduler.Stop()
		s.setEnabledLocked(ctx, actor, false)

		return ReplyDisabled, nil
	case CommandReload:
		if err := s.reloadLocked(ctx); err != nil {
			return "", err
		}

		return ReplyReloaded, nil
	case CommandUnknown:
		return "", control.ErrUsage
	default:
		return "", control.ErrUsage
	}
}

// Reload re-reads the configuration on behalf of the daemon itself.
func (s *service) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.reloadLocked(ctx)
}

// Status returns the persisted state together with the cycle progress.
func (s *service) Status(ctx context.Context) *control.Status {
	s.mu.Lock()
	state := s.state.Clone()
	s.mu.Unlock()

	progress := s.scheduler.Progress()

	logger.DebugKV(ctx, "Status requested", "is_enabled", state.IsEnabled, "remaining_seconds", progress.RemainingSeconds)

	return &control.Status{
		State:    state,
		Progress: progress,
	}
}

// Subscribe registers a listener for broadcast messages.
func (s *service) Subscribe() (<-chan string, func()) {
	return s.hub.Subscribe()
}

// reloadLocked loads the configuration file and hands the new clear rules to the scheduler.
// A broken file leaves the running rules untouched.
func (s *service) reloadLocked(ctx context.Context) error {
	settings, err := config.Load(s.configPath)
	if err != nil {
		logger.ErrorKV(ctx, "Reload failed", "config", s.configPath, "error", err)

		return fmt.Errorf("reload settings: %w", err)
	}

	snapshot, err := clearing.NewSnapshot(ctx, settings.Rules())
	if err != nil {
		logger.ErrorKV(ctx, "Reload failed", "config", s.configPath, "error", err)

		return fmt.Errorf("reload clear rules: %w", err)
	}

	if lvl, ok := logger.ParseLogLevel(settings.LogLevel); ok {
		logger.SetLevel(lvl)
	}

	s.settings = settings
	s.scheduler.Reload(snapshot)

	logger.InfoKV(ctx, "Configuration reloaded",
		"clear_interval", snapshot.ClearInterval,
		"entities_to_clear", len(snapshot.EntitiesToClear()),
		"entities_to_keep_named", len(snapshot.EntitiesToKeepNamed()),
	)

	return nil
}

// setEnabledLocked records the new flag and persists it; a write failure is only logged.
func (s *service) setEnabledLocked(ctx context.Context, actor *control.Actor, isEnabled bool) {
	s.state = &control.State{
		Timestamp: time.Now(),
		LastActor: actor.Clone(),
		IsEnabled: isEnabled,
	}

	if s.repo != nil {
		if err := s.repo.Save(ctx, s.state); err != nil {
			logger.ErrorKV(ctx, "Failed to persist clearing state", "error", err)
		}
	}

	logger.InfoKV(ctx, "Clearing state updated", "is_enabled", s.state.IsEnabled, "actor", s.state.LastActor)
}
