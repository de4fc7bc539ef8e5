package client

import (
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

// TestFormatStatus renders a running daemon with a completed sweep.
func TestFormatStatus(t *testing.T) {
	t.Parallel()

	response, err := structpb.NewStruct(map[string]any{
		"enabled":           true,
		"running":           true,
		"clear_interval":    300,
		"remaining_seconds": 42,
		"last_sweep_at":     "2026-03-01T12:00:00Z",
		"last_sweep_count":  7,
		"last_actor":        "alice@box",
		"changed_at":        "2026-03-01T11:00:00Z",
	})
	require.NoError(t, err)

	require.Equal(t,
		"Clearing: enabled\n"+
			"Changed by: alice@box at 2026-03-01T11:00:00Z\n"+
			"Clear interval: 300s\n"+
			"Next clear in: 42s\n"+
			"Last clear: 2026-03-01T12:00:00Z, 7 entities removed\n",
		FormatStatus(response))
}

// TestFormatStatus_Disabled omits progress lines for a stopped daemon.
func TestFormatStatus_Disabled(t *testing.T) {
	t.Parallel()

	response, err := structpb.NewStruct(map[string]any{
		"enabled":        false,
		"running":        false,
		"clear_interval": 60,
	})
	require.NoError(t, err)

	require.Equal(t, "Clearing: disabled\nClear interval: 60s\n", FormatStatus(response))
}
