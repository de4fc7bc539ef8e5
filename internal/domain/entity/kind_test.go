package entity

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestParseKind resolves known literals and rejects unknown or differently cased ones.
func TestParseKind(t *testing.T) {
	t.Parallel()

	kind, err := ParseKind("ZOMBIE")
	require.NoError(t, err)
	require.Equal(t, Zombie, kind)

	_, err = ParseKind("zombie")
	require.ErrorIs(t, err, ErrUnknownKind)

	_, err = ParseKind("DRAGON_EGG_GOLEM")
	require.ErrorIs(t, err, ErrUnknownKind)
}

// TestKinds_Classification checks the catalog ordering and the alive/protected flags.
func TestKinds_Classification(t *testing.T) {
	t.Parallel()

	kinds := Kinds()
	require.True(t, slices.IsSorted(kinds))
	require.Contains(t, kinds, Zombie)
	require.Contains(t, kinds, DroppedItem)

	require.True(t, Zombie.IsAlive())
	require.False(t, DroppedItem.IsAlive())
	require.True(t, Player.IsAlive())
	require.True(t, Player.IsProtected())
	require.False(t, Cow.IsProtected())
}

// TestEntity_HasCustomName treats only a non-empty name as a custom name.
func TestEntity_HasCustomName(t *testing.T) {
	t.Parallel()

	require.False(t, Entity{Kind: Zombie}.HasCustomName())
	require.True(t, Entity{Kind: Zombie, CustomName: "Bob"}.HasCustomName())
}
