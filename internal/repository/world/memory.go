package world

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/oshokin/clearmob/internal/domain/entity"
)

// Memory is an in-process world, safe for concurrent use.
type Memory struct {
	// entities keeps spawn order so listings are stable.
	entities []entity.Entity
	// mu protects entities.
	mu sync.RWMutex
}

// NewMemory creates a world holding the provided entities.
func NewMemory(entities ...entity.Entity) *Memory {
	m := new(Memory)
	for _, e := range entities {
		m.Spawn(e)
	}

	return m
}

// Spawn adds an entity, assigning a random ID when it has none.
func (m *Memory) Spawn(e entity.Entity) entity.Entity {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entities = append(m.entities, e)

	return e
}

// List returns a copy of every entity.
func (m *Memory) List(context.Context) ([]entity.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Clone(m.entities), nil
}

// Remove deletes the entity with the given ID.
func (m *Memory) Remove(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := slices.IndexFunc(m.entities, func(e entity.Entity) bool { return e.ID == id })
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	m.entities = slices.Delete(m.entities, idx, idx+1)

	return nil
}

// Len returns the number of entities.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entities)
}
