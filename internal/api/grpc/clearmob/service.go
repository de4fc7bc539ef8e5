package clearmob

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "clearmob.v1.ClearMobService"

// Full method names.
const (
	ExecuteFullMethodName   = "/" + ServiceName + "/Execute"
	StatusFullMethodName    = "/" + ServiceName + "/Status"
	SubscribeFullMethodName = "/" + ServiceName + "/Subscribe"
)

// Request and response field names.
const (
	FieldCommand  = "command"
	FieldUsername = "username"
	FieldHostname = "hostname"
	FieldMessage  = "message"

	FieldEnabled          = "enabled"
	FieldRunning          = "running"
	FieldClearInterval    = "clear_interval"
	FieldRemainingSeconds = "remaining_seconds"
	FieldLastSweepAt      = "last_sweep_at"
	FieldLastSweepCount   = "last_sweep_count"
	FieldChangedAt        = "changed_at"
	FieldLastActor        = "last_actor"
)

// ClearMobServiceServer is the server API for ClearMobService.
type ClearMobServiceServer interface {
	// Execute runs one command (enable, disable, reload) on behalf of an actor.
	Execute(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	// Status returns the enabled flag and the progress of the clearing cycle.
	Status(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	// Subscribe streams every broadcast message until the client goes away.
	Subscribe(req *emptypb.Empty, stream grpc.ServerStreamingServer[wrapperspb.StringValue]) error
}

// RegisterClearMobServiceServer registers srv on s.
func RegisterClearMobServiceServer(s grpc.ServiceRegistrar, srv ClearMobServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// ServiceDesc is the grpc.ServiceDesc for ClearMobService.
//
//nolint:gochecknoglobals // Mirrors the shape of generated descriptors.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ClearMobServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Execute",
			Handler:    executeHandler,
		},
		{
			MethodName: "Status",
			Handler:    statusHandler,
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Subscribe",
			Handler:       subscribeHandler,
			ServerStreams: true,
		},
	},
	Metadata: "clearmob/v1/clearmob.proto",
}

func executeHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(ClearMobServiceServer).Execute(ctx, in) //nolint:forcetypeassert // Guaranteed by HandlerType.
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ExecuteFullMethodName,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ClearMobServiceServer).Execute(ctx, req.(*structpb.Struct)) //nolint:forcetypeassert // Same as above.
	}

	return interceptor(ctx, in, info, handler)
}

func statusHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(ClearMobServiceServer).Status(ctx, in) //nolint:forcetypeassert // Guaranteed by HandlerType.
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: StatusFullMethodName,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ClearMobServiceServer).Status(ctx, req.(*emptypb.Empty)) //nolint:forcetypeassert // Same as above.
	}

	return interceptor(ctx, in, info, handler)
}

func subscribeHandler(srv any, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}

	//nolint:forcetypeassert // Guaranteed by HandlerType.
	return srv.(ClearMobServiceServer).Subscribe(
		in,
		&grpc.GenericServerStream[emptypb.Empty, wrapperspb.StringValue]{ServerStream: stream},
	)
}

// ClearMobServiceClient is the client API for ClearMobService.
type ClearMobServiceClient interface {
	Execute(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Status(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	Subscribe(
		ctx context.Context,
		in *emptypb.Empty,
		opts ...grpc.CallOption,
	) (grpc.ServerStreamingClient[wrapperspb.StringValue], error)
}

type clearMobServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewClearMobServiceClient creates a client stub on cc.
//
//nolint:ireturn // Mirrors the shape of generated clients.
func NewClearMobServiceClient(cc grpc.ClientConnInterface) ClearMobServiceClient {
	return &clearMobServiceClient{cc: cc}
}

func (c *clearMobServiceClient) Execute(
	ctx context.Context,
	in *structpb.Struct,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ExecuteFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *clearMobServiceClient) Status(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, StatusFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

//nolint:ireturn // Streaming clients are returned as interfaces.
func (c *clearMobServiceClient) Subscribe(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (grpc.ServerStreamingClient[wrapperspb.StringValue], error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], SubscribeFullMethodName, opts...)
	if err != nil {
		return nil, err
	}

	x := &grpc.GenericClientStream[emptypb.Empty, wrapperspb.StringValue]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}

	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}

	return x, nil
}
