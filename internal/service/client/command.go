package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	api "github.com/oshokin/clearmob/internal/api/grpc/clearmob"
	"github.com/oshokin/clearmob/internal/config"
	"github.com/oshokin/clearmob/internal/logger"
	"github.com/oshokin/clearmob/internal/message"
	"github.com/oshokin/clearmob/internal/service/common"
)

// Mode selects what the CLI does against the daemon.
type Mode int

// Supported modes.
const (
	// ModeExecute sends a command (enable, disable, reload).
	ModeExecute Mode = iota
	// ModeStatus prints the enabled flag and the cycle progress.
	ModeStatus
	// ModeWatch prints broadcast messages until interrupted.
	ModeWatch
)

// Options configures a single CLI invocation.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ServerAddress overrides server address from config when specified.
	ServerAddress string
	// Mode selects the operation.
	Mode Mode
	// Command is the subcommand sent in ModeExecute.
	Command string
	// Out receives the user-visible output; stdout when nil.
	Out io.Writer
}

// Run connects to the daemon and performs the operation selected by opts.Mode.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "clearmob")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	client, err := common.Dial(ctx, serverAddress, common.WithCallTimeout(cfg.Timeout))
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	logger.DebugKV(ctx, "Connected", "server_address", serverAddress, "mode", opts.Mode)

	switch opts.Mode {
	case ModeStatus:
		return printStatus(ctx, client, out)
	case ModeWatch:
		return watch(ctx, client, out)
	case ModeExecute:
		return execute(ctx, client, opts.Command, out)
	default:
		return execute(ctx, client, opts.Command, out)
	}
}

func execute(ctx context.Context, client *common.Client, command string, out io.Writer) error {
	actor, err := common.DetectActor()
	if err != nil {
		return err
	}

	reply, err := client.Execute(ctx, actor, command)
	if err != nil {
		// Denials and usage errors carry text meant for the user.
		if st, ok := status.FromError(errors.Unwrap(err)); ok &&
			(st.Code() == codes.PermissionDenied || st.Code() == codes.InvalidArgument) {
			return errors.New(st.Message()) //nolint:err113 // Text comes from the daemon.
		}

		return err
	}

	logger.InfoKV(ctx, "Command executed", "command", command, "actor", actor)

	_, err = fmt.Fprintln(out, reply)

	return err
}

func printStatus(ctx context.Context, client *common.Client, out io.Writer) error {
	response, err := client.Status(ctx)
	if err != nil {
		return err
	}

	_, err = io.WriteString(out, FormatStatus(response))

	return err
}

func watch(ctx context.Context, client *common.Client, out io.Writer) error {
	stream, err := client.Subscribe(ctx)
	if err != nil {
		return err
	}

	logger.Info(ctx, "Waiting for broadcasts, press Ctrl+C to stop")

	for {
		msg, err := stream.Recv()
		switch {
		case err == nil:
		case errors.Is(err, io.EOF), ctx.Err() != nil:
			return nil
		default:
			return fmt.Errorf("receive broadcast: %w", err)
		}

		if _, err := fmt.Fprintln(out, message.Strip(msg.GetValue())); err != nil {
			return err
		}
	}
}

// FormatStatus renders a status document as human-readable lines.
func FormatStatus(response *structpb.Struct) string {
	fields := response.GetFields()

	state := "disabled"
	if fields[api.FieldEnabled].GetBoolValue() {
		state = "enabled"
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Clearing: %s\n", state)

	if actor := fields[api.FieldLastActor].GetStringValue(); actor != "" {
		fmt.Fprintf(&b, "Changed by: %s at %s\n", actor, fields[api.FieldChangedAt].GetStringValue())
	}

	fmt.Fprintf(&b, "Clear interval: %ds\n", int(fields[api.FieldClearInterval].GetNumberValue()))

	if fields[api.FieldRunning].GetBoolValue() {
		fmt.Fprintf(&b, "Next clear in: %ds\n", int(fields[api.FieldRemainingSeconds].GetNumberValue()))
	}

	if at := fields[api.FieldLastSweepAt].GetStringValue(); at != "" {
		fmt.Fprintf(&b, "Last clear: %s, %d entities removed\n", at, int(fields[api.FieldLastSweepCount].GetNumberValue()))
	}

	return b.String()
}
