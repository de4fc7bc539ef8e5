package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/clearmob/internal/domain/control"
)

// TestFileRepository_NotFound verifies Load returns ErrNotFound for missing file.
func TestFileRepository_NotFound(t *testing.T) {
	t.Parallel()
	repo := NewFileRepository(filepath.Join(t.TempDir(), "missing.json"))
	s, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, s)
}

// TestFileRepository_Corrupted verifies a broken file is reported, not ignored.
func TestFileRepository_Corrupted(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(file, []byte("{not json"), 0o600))

	_, err := NewFileRepository(file).Load(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}

// TestFileRepository_SaveLoad_Roundtrip ensures Save followed by Load returns equal state.
func TestFileRepository_SaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()
	file := filepath.Join(t.TempDir(), "state.json")
	repo := NewFileRepository(file)

	want := &control.State{
		Timestamp: time.Now().UTC().Truncate(time.Second),
		LastActor: &control.Actor{
			Hostname: "mc-01",
			Username: "steve",
		},
		IsEnabled: false,
	}

	require.NoError(t, repo.Save(context.Background(), want))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, want.IsEnabled, got.IsEnabled)
	require.True(t, want.Timestamp.Equal(got.Timestamp))
	require.Equal(t, want.LastActor, got.LastActor)

	// A state without actor or timestamp survives as well.
	require.NoError(t, repo.Save(context.Background(), &control.State{IsEnabled: true}))

	got, err = repo.Load(context.Background())
	require.NoError(t, err)
	require.True(t, got.IsEnabled)
	require.Nil(t, got.LastActor)
	require.True(t, got.Timestamp.IsZero())
}
