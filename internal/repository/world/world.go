package world

import (
	"context"
	"errors"

	"github.com/oshokin/clearmob/internal/domain/entity"
)

// ErrNotFound is returned when removing an entity that no longer exists.
var ErrNotFound = errors.New("entity not found")

// Source is an enumerable view of the entities currently in the world.
type Source interface {
	// List returns every entity currently in the world.
	List(ctx context.Context) ([]entity.Entity, error)
	// Remove deletes one entity by ID.
	Remove(ctx context.Context, id string) error
}
