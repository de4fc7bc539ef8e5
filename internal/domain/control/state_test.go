package control

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestActorClone verifies that Clone returns a copy and handles nil safely.
func TestActorClone(t *testing.T) {
	t.Parallel()
	require.Nil(t, (*Actor)(nil).Clone())

	a := &Actor{
		Hostname: "mc-01",
		Username: "steve",
	}

	b := a.Clone()

	require.Equal(t, a, b)
	require.NotSame(t, a, b)
	require.Equal(t, "steve@mc-01", b.String())
	require.Equal(t, "<unknown>", (*Actor)(nil).String())
}

// TestStateClone verifies that State.Clone copies fields and the actor pointer.
func TestStateClone(t *testing.T) {
	t.Parallel()

	s := State{
		Timestamp: time.Now().UTC().Truncate(time.Second),
		LastActor: &Actor{
			Hostname: "mc-01",
			Username: "steve",
		},
		IsEnabled: true,
	}

	c := s.Clone()
	require.Equal(t, s.Timestamp, c.Timestamp)
	require.Equal(t, s.IsEnabled, c.IsEnabled)
	require.Equal(t, s.LastActor, c.LastActor)
	require.NotSame(t, s.LastActor, c.LastActor)
}
