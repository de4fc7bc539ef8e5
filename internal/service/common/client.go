//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	api "github.com/oshokin/clearmob/internal/api/grpc/clearmob"
	"github.com/oshokin/clearmob/internal/config"
	"github.com/oshokin/clearmob/internal/domain/control"
)

// Client wraps the gRPC ClearMobService client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the daemon.
	conn *grpc.ClientConn
	// api is the ClearMobService client stub.
	api api.ClearMobServiceClient

	// callTimeout is the default timeout for unary calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for unary calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errActorRequired is returned when an actor is not provided but is required for the operation.
	errActorRequired = errors.New("actor must be provided")
)

// Dial establishes a gRPC connection to the clearmob daemon.
// Note: this uses insecure transport credentials and the server trusts the
// reported username; deploy on a trusted network or terminate TLS in a proxy.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial clearmob server: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         api.NewClearMobServiceClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// Execute runs a command on the daemon and returns its reply.
func (c *Client) Execute(ctx context.Context, actor *control.Actor, command string) (string, error) {
	if actor == nil {
		return "", errActorRequired
	}

	request, err := structpb.NewStruct(map[string]any{
		api.FieldCommand:  command,
		api.FieldUsername: actor.Username,
		api.FieldHostname: actor.Hostname,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.api.Execute(callCtx, request)
	if err != nil {
		return "", fmt.Errorf("execute %s: %w", command, err)
	}

	return response.GetFields()[api.FieldMessage].GetStringValue(), nil
}

// Status retrieves the enabled flag and the cycle progress.
func (c *Client) Status(ctx context.Context) (*structpb.Struct, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.api.Status(callCtx, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}

	return response, nil
}

// Subscribe opens the broadcast stream. It runs until ctx is canceled,
// so the call timeout does not apply.
//
//nolint:ireturn // Streaming clients are returned as interfaces.
func (c *Client) Subscribe(ctx context.Context) (grpc.ServerStreamingClient[wrapperspb.StringValue], error) {
	stream, err := c.api.Subscribe(ctx, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	return stream, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
