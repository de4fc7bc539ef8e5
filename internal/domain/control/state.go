package control

import (
	"errors"
	"time"

	"github.com/oshokin/clearmob/internal/domain/clearing"
)

var (
	// ErrPermissionDenied is returned when the actor lacks the admin capability.
	ErrPermissionDenied = errors.New("You do not have permission to use this command.") //nolint:stylecheck,revive // User-visible text.
	// ErrUsage is returned for a missing or unknown subcommand.
	ErrUsage = errors.New("usage: clearmob <enable|disable|reload>")
)

// Actor identifies who issued a command.
type Actor struct {
	// Hostname is the machine the command came from.
	Hostname string
	// Username is the system user who issued the command.
	Username string
}

// SystemActor is used for changes the daemon makes on its own, such as a
// reload triggered by a config file change.
//
//nolint:gochecknoglobals // Immutable by convention; always cloned before use.
var SystemActor = &Actor{
	Hostname: "localhost",
	Username: "clearmob",
}

// Clone returns a copy of the actor.
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}

// String renders the actor as user@host.
func (a *Actor) String() string {
	if a == nil {
		return "<unknown>"
	}

	return a.Username + "@" + a.Hostname
}

// State records whether clearing is enabled and who changed it last.
type State struct {
	// Timestamp is when the state last changed.
	Timestamp time.Time
	// LastActor is who made the last change.
	LastActor *Actor
	// IsEnabled reports whether periodic clearing is on.
	IsEnabled bool
}

// Clone returns a copy of the state.
func (s *State) Clone() *State {
	return &State{
		Timestamp: s.Timestamp,
		LastActor: s.LastActor.Clone(),
		IsEnabled: s.IsEnabled,
	}
}

// Status combines the persisted state with live cycle progress.
type Status struct {
	State    *State
	Progress clearing.Progress
}
