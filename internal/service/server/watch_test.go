package server

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// countingReloader counts reload requests.
type countingReloader struct {
	calls atomic.Int32
}

func (c *countingReloader) Reload(context.Context) error {
	c.calls.Add(1)

	return nil
}

// TestWatchConfig_ReloadsOnWrite verifies a burst of writes results in a debounced reload.
func TestWatchConfig_ReloadsOnWrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: 1\n"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	target := new(countingReloader)
	require.NoError(t, watchConfig(ctx, path, target, 50*time.Millisecond))

	for i := range 3 {
		require.NoError(t, os.WriteFile(path, []byte{'a', ':', ' ', byte('2' + i), '\n'}, 0o600))
	}

	require.Eventually(t, func() bool { return target.calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)

	// Unrelated files in the same directory are ignored.
	before := target.calls.Load()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o600))
	time.Sleep(200 * time.Millisecond)
	require.Equal(t, before, target.calls.Load())
}

// TestWatchConfig_MissingDirectory reports an error instead of watching nothing.
func TestWatchConfig_MissingDirectory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing", "settings.yaml")

	err := watchConfig(context.Background(), path, new(countingReloader), time.Millisecond)
	require.Error(t, err)
}
