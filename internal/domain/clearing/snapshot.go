package clearing

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/oshokin/clearmob/internal/domain/entity"
	"github.com/oshokin/clearmob/internal/logger"
)

const (
	// AllEntitiesMarker expands to every alive kind that is not kept when named.
	AllEntitiesMarker = "ALL_ENTITIES"
	// KeepNamedPrefix marks a kind whose named entities survive a sweep.
	KeepNamedPrefix = "!hasname "
	// MaxClearInterval is the longest accepted cycle, one day in seconds.
	MaxClearInterval = 24 * 60 * 60
)

var (
	// ErrInvalidClearInterval is returned when the cycle length is not positive or too long.
	ErrInvalidClearInterval = errors.New("clear interval must be between 1 and 86400 seconds")
	// ErrInvalidWarningInterval is returned when a warning threshold is negative.
	ErrInvalidWarningInterval = errors.New("warning interval must not be negative")
)

// Rules is the raw clear configuration as read from the settings file.
type Rules struct {
	// ClearInterval is the cycle length in seconds.
	ClearInterval int
	// Entities lists kind names, "!hasname KIND" directives and the all-entities marker.
	Entities []string
	// WarningInterval1 is the final warning threshold in seconds before a clear.
	WarningInterval1 int
	// WarningInterval2 is the earlier warning threshold in seconds before a clear.
	WarningInterval2 int
	// BeforeClear1 is the template of the final warning.
	BeforeClear1 string
	// BeforeClear2 is the template of the earlier warning.
	BeforeClear2 string
	// AfterClear is the template broadcast after a sweep.
	AfterClear string
}

// Snapshot is the immutable set of clear rules for one configuration load.
type Snapshot struct {
	// ClearInterval is the cycle length in seconds.
	ClearInterval int
	// WarningInterval1 is the final warning threshold in seconds.
	WarningInterval1 int
	// WarningInterval2 is the earlier warning threshold in seconds.
	WarningInterval2 int
	// WarningTemplate1 is broadcast when the final warning fires.
	WarningTemplate1 string
	// WarningTemplate2 is broadcast when the earlier warning fires.
	WarningTemplate2 string
	// AfterClearTemplate is broadcast after every sweep.
	AfterClearTemplate string

	toClear   map[entity.Kind]struct{}
	keepNamed map[entity.Kind]struct{}
}

// NewSnapshot builds a Snapshot from raw rules.
// Unknown kind names are logged and dropped; only invalid numbers fail the load.
func NewSnapshot(ctx context.Context, rules Rules) (*Snapshot, error) {
	if rules.ClearInterval <= 0 || rules.ClearInterval > MaxClearInterval {
		return nil, fmt.Errorf("%w: %d", ErrInvalidClearInterval, rules.ClearInterval)
	}

	if rules.WarningInterval1 < 0 || rules.WarningInterval2 < 0 {
		return nil, fmt.Errorf("%w: %d, %d", ErrInvalidWarningInterval, rules.WarningInterval1, rules.WarningInterval2)
	}

	if rules.WarningInterval2 <= rules.WarningInterval1 {
		logger.WarnKV(ctx, "Earlier warning threshold is not above the final one, it will never fire",
			"warning_interval_1", rules.WarningInterval1,
			"warning_interval_2", rules.WarningInterval2)
	}

	s := &Snapshot{
		ClearInterval:      rules.ClearInterval,
		WarningInterval1:   rules.WarningInterval1,
		WarningInterval2:   rules.WarningInterval2,
		WarningTemplate1:   rules.BeforeClear1,
		WarningTemplate2:   rules.BeforeClear2,
		AfterClearTemplate: rules.AfterClear,
		toClear:            make(map[entity.Kind]struct{}),
		keepNamed:          make(map[entity.Kind]struct{}),
	}

	allEntities := false

	for _, entry := range rules.Entities {
		switch {
		case entry == AllEntitiesMarker:
			// Expanded below, once every exemption is known.
			allEntities = true
		case strings.HasPrefix(entry, KeepNamedPrefix):
			name := strings.TrimSpace(strings.TrimPrefix(entry, KeepNamedPrefix))

			kind, err := entity.ParseKind(name)
			if err != nil {
				logger.WarnKV(ctx, "Unknown entity type for keeping named", "entity", name)
				continue
			}

			s.keepNamed[kind] = struct{}{}
		default:
			kind, err := entity.ParseKind(strings.TrimSpace(entry))
			if err != nil {
				logger.WarnKV(ctx, "Unknown entity type", "entity", entry)
				continue
			}

			s.toClear[kind] = struct{}{}
		}
	}

	if allEntities {
		for _, kind := range entity.Kinds() {
			if kind.IsAlive() && !kind.IsProtected() && !s.KeepsNamed(kind) {
				s.toClear[kind] = struct{}{}
			}
		}
	}

	logger.InfoKV(ctx, "Clear rules loaded",
		"clear_interval", s.ClearInterval,
		"warning_interval_1", s.WarningInterval1,
		"warning_interval_2", s.WarningInterval2,
		"entities_to_clear", len(s.toClear),
		"entities_to_keep_named", len(s.keepNamed))

	return s, nil
}

// Clears reports whether entities of the kind are clear targets.
func (s *Snapshot) Clears(kind entity.Kind) bool {
	_, ok := s.toClear[kind]

	return ok
}

// KeepsNamed reports whether named entities of the kind are exempt from a sweep.
func (s *Snapshot) KeepsNamed(kind entity.Kind) bool {
	_, ok := s.keepNamed[kind]

	return ok
}

// EntitiesToClear returns the clear targets in lexical order.
func (s *Snapshot) EntitiesToClear() []entity.Kind {
	return sortedKinds(s.toClear)
}

// EntitiesToKeepNamed returns the keep-named exemptions in lexical order.
func (s *Snapshot) EntitiesToKeepNamed() []entity.Kind {
	return sortedKinds(s.keepNamed)
}

// ShouldRemove applies the sweep rule to one entity: its kind must be a clear
// target, it must not be protected, and a named entity of a keep-named kind survives.
func (s *Snapshot) ShouldRemove(e entity.Entity) bool {
	if !s.Clears(e.Kind) || e.Kind.IsProtected() {
		return false
	}

	return !(e.HasCustomName() && s.KeepsNamed(e.Kind))
}

func sortedKinds(set map[entity.Kind]struct{}) []entity.Kind {
	kinds := make([]entity.Kind, 0, len(set))
	for kind := range set {
		kinds = append(kinds, kind)
	}

	slices.Sort(kinds)

	return kinds
}
