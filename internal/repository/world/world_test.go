package world

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/clearmob/internal/domain/entity"
)

// TestMemory_SpawnListRemove exercises the in-process world.
func TestMemory_SpawnListRemove(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory(
		entity.Entity{ID: "a", Kind: entity.Zombie},
		entity.Entity{Kind: entity.Cow, CustomName: "Daisy"},
	)

	entities, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, entities, 2)
	require.Equal(t, "a", entities[0].ID)
	require.NotEmpty(t, entities[1].ID)

	require.NoError(t, m.Remove(ctx, "a"))
	require.ErrorIs(t, m.Remove(ctx, "a"), ErrNotFound)
	require.Equal(t, 1, m.Len())
}

// TestSQLite_SpawnListRemove persists entities, skips unknown kinds and deletes by ID.
func TestSQLite_SpawnListRemove(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	db, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "world.db"))
	require.NoError(t, err)

	defer func() {
		require.NoError(t, db.Close())
	}()

	zombie, err := db.Spawn(ctx, entity.Entity{Kind: entity.Zombie})
	require.NoError(t, err)
	require.NotEmpty(t, zombie.ID)

	_, err = db.Spawn(ctx, entity.Entity{ID: "cow-1", Kind: entity.Cow, CustomName: "Daisy"})
	require.NoError(t, err)

	// A row written by a newer host with a kind this build does not know.
	_, err = db.db.ExecContext(ctx, `INSERT INTO entities (id, kind) VALUES ('x', 'WARDEN')`)
	require.NoError(t, err)

	entities, err := db.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []entity.Entity{
		zombie,
		{ID: "cow-1", Kind: entity.Cow, CustomName: "Daisy"},
	}, entities)

	require.NoError(t, db.Remove(ctx, zombie.ID))
	require.ErrorIs(t, db.Remove(ctx, zombie.ID), ErrNotFound)

	entities, err = db.List(ctx)
	require.NoError(t, err)
	require.Len(t, entities, 1)
}
