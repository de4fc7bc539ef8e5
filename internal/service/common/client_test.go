//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestDial_ValidatesAddress verifies that Dial rejects empty addresses.
func TestDial_ValidatesAddress(t *testing.T) {
	t.Parallel()

	c, err := Dial(context.Background(), "")
	require.Error(t, err)
	require.Nil(t, c)
}

// TestDial_AppliesOptions checks the default and overridden call timeouts.
func TestDial_AppliesOptions(t *testing.T) {
	t.Parallel()

	c, err := Dial(context.Background(), "127.0.0.1:1")
	require.NoError(t, err)
	require.Equal(t, 5*time.Second, c.callTimeout)
	require.NoError(t, c.Close())

	c, err = Dial(context.Background(), "127.0.0.1:1", WithCallTimeout(time.Second), WithCallTimeout(0))
	require.NoError(t, err)
	require.Equal(t, time.Second, c.callTimeout)
	require.NoError(t, c.Close())
}

// TestClient_callContext checks timeout vs cancel-only behavior of callContext.
func TestClient_callContext(t *testing.T) {
	t.Parallel()

	c := &Client{
		callTimeout: 0,
	}

	ctx, cancel := c.callContext(context.Background())
	cancel()

	require.NotNil(t, ctx)

	c.callTimeout = 10 * time.Millisecond

	ctx, cancel = c.callContext(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	require.WithinDuration(t, time.Now().Add(10*time.Millisecond), deadline, 30*time.Millisecond)
}

// TestExecute_NilActor asserts that a nil actor is rejected by the client.
func TestExecute_NilActor(t *testing.T) {
	t.Parallel()

	c := new(Client)

	_, err := c.Execute(context.Background(), nil, "enable")
	require.Error(t, err)
}

// TestClose_Nil is safe on a zero client.
func TestClose_Nil(t *testing.T) {
	t.Parallel()

	var c *Client
	require.NoError(t, c.Close())
}
