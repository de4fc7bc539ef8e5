package broadcast

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// receive waits for the next message on ch.
func receive(t *testing.T, ch <-chan string) string {
	t.Helper()

	select {
	case msg := <-ch:
		return msg
	case <-time.After(2 * time.Second):
		require.FailNow(t, "no message delivered")

		return ""
	}
}

// TestHub_FanOut delivers a message to every subscriber.
func TestHub_FanOut(t *testing.T) {
	t.Parallel()

	h := NewHub(4)

	first, unsubscribeFirst := h.Subscribe()
	second, unsubscribeSecond := h.Subscribe()

	defer unsubscribeSecond()

	require.NoError(t, h.Broadcast(context.Background(), "§aCleared 3 entities."))
	require.Equal(t, "§aCleared 3 entities.", receive(t, first))
	require.Equal(t, "§aCleared 3 entities.", receive(t, second))

	unsubscribeFirst()
	unsubscribeFirst()

	_, open := <-first
	require.False(t, open)
	require.Equal(t, 1, h.Subscribers())
}

// TestHub_PreservesOrder delivers messages to one subscriber in publish order.
func TestHub_PreservesOrder(t *testing.T) {
	t.Parallel()

	h := NewHub(8)

	ch, unsubscribe := h.Subscribe()
	defer unsubscribe()

	for _, msg := range []string{"60", "10", "cleared"} {
		require.NoError(t, h.Broadcast(context.Background(), msg))
	}

	require.Equal(t, "60", receive(t, ch))
	require.Equal(t, "10", receive(t, ch))
	require.Equal(t, "cleared", receive(t, ch))
}

// TestHub_SlowSubscriberDoesNotBlock drops messages for a full queue.
func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	t.Parallel()

	h := NewHub(1)

	ch, unsubscribe := h.Subscribe()
	defer unsubscribe()

	require.NoError(t, h.Broadcast(context.Background(), "one"))
	require.NoError(t, h.Broadcast(context.Background(), "two"))
	require.NoError(t, h.Broadcast(context.Background(), "three"))

	require.Eventually(t, func() bool { return h.Dropped() == 2 }, 2*time.Second, 5*time.Millisecond)

	require.Equal(t, "one", receive(t, ch))
	require.Empty(t, ch)
}

// TestHub_Close ends live subscriptions and refuses new ones.
func TestHub_Close(t *testing.T) {
	t.Parallel()

	h := NewHub(1)

	ch, unsubscribe := h.Subscribe()

	h.Close()

	_, open := <-ch
	require.False(t, open)
	require.Zero(t, h.Subscribers())

	// Unsubscribing after Close must not close the channel twice.
	unsubscribe()

	late, unsubscribeLate := h.Subscribe()
	defer unsubscribeLate()

	_, open = <-late
	require.False(t, open)
	require.NoError(t, h.Broadcast(context.Background(), "nobody listens"))
}
