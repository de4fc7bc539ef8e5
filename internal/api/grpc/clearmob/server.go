package clearmob

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/oshokin/clearmob/internal/domain/control"
)

// Service abstracts the business operations the transport layer depends on.
type Service interface {
	Execute(ctx context.Context, actor *control.Actor, command string) (string, error)
	Status(ctx context.Context) *control.Status
	Subscribe() (<-chan string, func())
}

// Server implements the ClearMobService gRPC API.
// The actor of a command is whatever the client sends; the service authorizes
// on that username without authenticating it.
type Server struct {
	// service provides the business logic for clearmob commands.
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// Execute runs a command on behalf of the actor named in the request.
func (s *Server) Execute(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	fields := req.GetFields()

	actor := &control.Actor{
		Hostname: fields[FieldHostname].GetStringValue(),
		Username: fields[FieldUsername].GetStringValue(),
	}
	if actor.Username == "" {
		return nil, status.Error(codes.InvalidArgument, "actor is required")
	}

	reply, err := s.service.Execute(ctx, actor, fields[FieldCommand].GetStringValue())

	switch {
	case err == nil:
	case errors.Is(err, control.ErrPermissionDenied):
		return nil, status.Error(codes.PermissionDenied, control.ErrPermissionDenied.Error())
	case errors.Is(err, control.ErrUsage):
		return nil, status.Error(codes.InvalidArgument, control.ErrUsage.Error())
	default:
		return nil, status.Error(codes.Internal, err.Error())
	}

	return structpb.NewStruct(map[string]any{FieldMessage: reply})
}

// Status returns the enabled flag and the cycle progress.
func (s *Server) Status(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	reply, err := toStatusStruct(s.service.Status(ctx))
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to encode status")
	}

	return reply, nil
}

// Subscribe streams broadcast messages until the client disconnects.
func (s *Server) Subscribe(_ *emptypb.Empty, stream grpc.ServerStreamingServer[wrapperspb.StringValue]) error {
	messages, unsubscribe := s.service.Subscribe()
	defer unsubscribe()

	ctx := stream.Context()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}

			if err := stream.Send(wrapperspb.String(msg)); err != nil {
				return err
			}
		}
	}
}

// toStatusStruct converts a domain Status into the wire document.
func toStatusStruct(st *control.Status) (*structpb.Struct, error) {
	fields := map[string]any{
		FieldEnabled:          false,
		FieldRunning:          st.Progress.Running,
		FieldClearInterval:    st.Progress.ClearInterval,
		FieldRemainingSeconds: st.Progress.RemainingSeconds,
		FieldLastSweepCount:   st.Progress.LastSweepCount,
	}

	if !st.Progress.LastSweepAt.IsZero() {
		fields[FieldLastSweepAt] = st.Progress.LastSweepAt.UTC().Format(time.RFC3339)
	}

	if st.State != nil {
		fields[FieldEnabled] = st.State.IsEnabled

		if !st.State.Timestamp.IsZero() {
			fields[FieldChangedAt] = st.State.Timestamp.UTC().Format(time.RFC3339)
		}

		if st.State.LastActor != nil {
			fields[FieldLastActor] = st.State.LastActor.String()
		}
	}

	return structpb.NewStruct(fields)
}

// compile-time interface check.
var _ ClearMobServiceServer = (*Server)(nil)
