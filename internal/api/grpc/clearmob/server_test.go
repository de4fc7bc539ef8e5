package clearmob

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/clearmob/internal/broadcast"
	"github.com/oshokin/clearmob/internal/domain/clearing"
	"github.com/oshokin/clearmob/internal/domain/control"
)

// fakeService implements the Service interface for unit testing the transport.
type fakeService struct {
	// executeFn overrides Execute when set.
	executeFn func(ctx context.Context, actor *control.Actor, command string) (string, error)
	// status is returned by Status.
	status *control.Status
	// hub backs Subscribe.
	hub *broadcast.Hub
}

func (f *fakeService) Execute(ctx context.Context, actor *control.Actor, command string) (string, error) {
	if f.executeFn != nil {
		return f.executeFn(ctx, actor, command)
	}

	return "ok: " + command + " by " + actor.Username, nil
}

func (f *fakeService) Status(context.Context) *control.Status {
	if f.status == nil {
		return &control.Status{State: nil, Progress: clearing.Progress{}}
	}

	return f.status
}

func (f *fakeService) Subscribe() (<-chan string, func()) {
	return f.hub.Subscribe()
}

func executeRequest(t *testing.T, command, username string) *structpb.Struct {
	t.Helper()

	req, err := structpb.NewStruct(map[string]any{
		FieldCommand:  command,
		FieldUsername: username,
		FieldHostname: "test-hostname",
	})
	require.NoError(t, err)

	return req
}

// TestServer_Execute_Validation ensures requests without an actor are rejected.
func TestServer_Execute_Validation(t *testing.T) {
	t.Parallel()

	s := NewServer(new(fakeService))

	_, err := s.Execute(context.Background(), nil)
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.Execute(context.Background(), executeRequest(t, "enable", ""))
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

// TestServer_Execute_Reply checks that the service reply is returned as the message field.
func TestServer_Execute_Reply(t *testing.T) {
	t.Parallel()

	s := NewServer(new(fakeService))

	resp, err := s.Execute(context.Background(), executeRequest(t, "enable", "alice"))
	require.NoError(t, err)
	require.Equal(t, "ok: enable by alice", resp.GetFields()[FieldMessage].GetStringValue())
}

// TestServer_Execute_ErrorCodes verifies domain errors map to gRPC status codes.
func TestServer_Execute_ErrorCodes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		code codes.Code
		msg  string
	}{
		{
			name: "permission denied",
			err:  control.ErrPermissionDenied,
			code: codes.PermissionDenied,
			msg:  "You do not have permission to use this command.",
		},
		{
			name: "usage",
			err:  control.ErrUsage,
			code: codes.InvalidArgument,
			msg:  control.ErrUsage.Error(),
		},
		{
			name: "internal",
			err:  errors.New("disk on fire"),
			code: codes.Internal,
			msg:  "disk on fire",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s := NewServer(&fakeService{
				executeFn: func(context.Context, *control.Actor, string) (string, error) {
					return "", tc.err
				},
			})

			_, err := s.Execute(context.Background(), executeRequest(t, "enable", "bob"))
			require.Equal(t, tc.code, status.Code(err))
			require.Equal(t, tc.msg, status.Convert(err).Message())
		})
	}
}

// TestServer_Status encodes enabled flag, progress and last actor.
func TestServer_Status(t *testing.T) {
	t.Parallel()

	changedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewServer(&fakeService{
		status: &control.Status{
			State: &control.State{
				Timestamp: changedAt,
				LastActor: &control.Actor{Hostname: "box", Username: "alice"},
				IsEnabled: true,
			},
			Progress: clearing.Progress{
				Running:          true,
				ClearInterval:    300,
				RemainingSeconds: 42,
				LastSweepAt:      changedAt.Add(time.Minute),
				LastSweepCount:   7,
			},
		},
	})

	resp, err := s.Status(context.Background(), new(emptypb.Empty))
	require.NoError(t, err)

	fields := resp.GetFields()
	require.True(t, fields[FieldEnabled].GetBoolValue())
	require.True(t, fields[FieldRunning].GetBoolValue())
	require.InDelta(t, 300, fields[FieldClearInterval].GetNumberValue(), 0)
	require.InDelta(t, 42, fields[FieldRemainingSeconds].GetNumberValue(), 0)
	require.InDelta(t, 7, fields[FieldLastSweepCount].GetNumberValue(), 0)
	require.Equal(t, "2026-03-01T12:01:00Z", fields[FieldLastSweepAt].GetStringValue())
	require.Equal(t, "2026-03-01T12:00:00Z", fields[FieldChangedAt].GetStringValue())
	require.Equal(t, "alice@box", fields[FieldLastActor].GetStringValue())
}

// TestServer_Status_NoState reports a disabled daemon when no state exists yet.
func TestServer_Status_NoState(t *testing.T) {
	t.Parallel()

	s := NewServer(new(fakeService))

	resp, err := s.Status(context.Background(), new(emptypb.Empty))
	require.NoError(t, err)
	require.False(t, resp.GetFields()[FieldEnabled].GetBoolValue())
	require.NotContains(t, resp.GetFields(), FieldLastSweepAt)
}

// TestServiceDesc_Roundtrip drives the hand-written descriptor over an in-memory listener.
func TestServiceDesc_Roundtrip(t *testing.T) {
	t.Parallel()

	hub := broadcast.NewHub(broadcast.DefaultBuffer)
	listener := bufconn.Listen(1 << 20)

	grpcServer := grpc.NewServer()
	RegisterClearMobServiceServer(grpcServer, NewServer(&fakeService{hub: hub}))

	go func() {
		_ = grpcServer.Serve(listener) //nolint:errcheck // Serve returns once the test stops the server.
	}()

	t.Cleanup(grpcServer.Stop)

	conn, err := grpc.NewClient(
		"passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() { _ = conn.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client := NewClearMobServiceClient(conn)

	resp, err := client.Execute(ctx, executeRequest(t, "reload", "carol"))
	require.NoError(t, err)
	require.Equal(t, "ok: reload by carol", resp.GetFields()[FieldMessage].GetStringValue())

	_, err = client.Status(ctx, new(emptypb.Empty))
	require.NoError(t, err)

	stream, err := client.Subscribe(ctx, new(emptypb.Empty))
	require.NoError(t, err)

	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, hub.Broadcast(ctx, "§cClearing in 10 seconds"))

	msg, err := stream.Recv()
	require.NoError(t, err)
	require.Equal(t, "§cClearing in 10 seconds", msg.GetValue())
}
