package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"google.golang.org/grpc"

	api "github.com/oshokin/clearmob/internal/api/grpc/clearmob"
	"github.com/oshokin/clearmob/internal/broadcast"
	"github.com/oshokin/clearmob/internal/config"
	"github.com/oshokin/clearmob/internal/domain/clearing"
	"github.com/oshokin/clearmob/internal/logger"
	"github.com/oshokin/clearmob/internal/metrics"
	repository "github.com/oshokin/clearmob/internal/repository/state"
	"github.com/oshokin/clearmob/internal/repository/world"
	"github.com/oshokin/clearmob/internal/service/scheduler"
	"github.com/oshokin/clearmob/internal/version"
)

// Options controls the clearmob-server process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// StateFile specifies the path to persist the enabled flag.
	StateFile string
	// Watch reloads the configuration whenever the file changes.
	Watch bool
	// World replaces the configured entity source when set.
	World world.Source
}

// ErrNoServerAddress indicates missing server configuration.
var ErrNoServerAddress = errors.New("no server address configured")

// metricsShutdownTimeout bounds the graceful shutdown of the metrics endpoint.
const metricsShutdownTimeout = 5 * time.Second

// Run starts the gRPC server and blocks until context is canceled or server stops.
// Loads configuration first, then determines listen address from config or override.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "clearmob-server")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if lvl, ok := logger.ParseLogLevel(settings.LogLevel); ok {
		logger.SetLevel(lvl)
	}

	snapshot, err := clearing.NewSnapshot(ctx, settings.Rules())
	if err != nil {
		return fmt.Errorf("build clear rules: %w", err)
	}

	stateFile := settings.StateFile
	if opts.StateFile != "" {
		stateFile = opts.StateFile
	}

	listenAddress, err := resolveListenAddress(settings.ServerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	source, closeSource, err := openWorld(ctx, settings, opts.World)
	if err != nil {
		return err
	}

	defer closeSource()

	hub := broadcast.NewHub(broadcast.DefaultBuffer)
	registry := metrics.New()

	sched := scheduler.New(ctx, source, hub, snapshot,
		scheduler.WithMetrics(registry),
		scheduler.WithSweepTimeout(settings.SweepTimeout),
	)
	defer sched.Close()

	svc, err := newService(ctx, opts.ConfigPath, settings, repository.NewFileRepository(stateFile), sched, hub)
	if err != nil {
		return fmt.Errorf("initialise service: %w", err)
	}

	if opts.Watch {
		if err := watchConfig(ctx, configPathOrDefault(opts.ConfigPath), svc, DefaultWatchDebounce); err != nil {
			return err
		}
	}

	if settings.MetricsAddress != "" {
		stopMetrics, err := serveMetrics(ctx, settings.MetricsAddress, registry)
		if err != nil {
			return err
		}

		defer stopMetrics()
	}

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	grpcServer := grpc.NewServer()
	api.RegisterClearMobServiceServer(grpcServer, api.NewServer(svc))

	logger.InfoKV(ctx, "ClearMob server listening",
		"listen_address", listenAddress,
		"state_file", stateFile,
		"world", settings.World,
		"clear_interval", snapshot.ClearInterval,
		"version", version.Short(),
	)

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		// Broadcast streams never end on their own.
		hub.Close()
		grpcServer.GracefulStop()
		close(done)
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	logger.Info(ctx, "GRPC server stopped")

	return nil
}

// openWorld returns the entity source selected by the configuration.
func openWorld(ctx context.Context, settings *config.Config, override world.Source) (world.Source, func(), error) {
	noop := func() {}

	if override != nil {
		return override, noop, nil
	}

	switch settings.World {
	case config.WorldSQLite:
		db, err := world.OpenSQLite(ctx, settings.WorldDB)
		if err != nil {
			return nil, noop, fmt.Errorf("open world: %w", err)
		}

		logger.InfoKV(ctx, "World database opened", "path", db.Path())

		return db, func() {
			if err := db.Close(); err != nil {
				logger.WarnKV(ctx, "Failed to close world database", "error", err)
			}
		}, nil
	default:
		logger.Warn(ctx, "World is kept in memory and starts empty, use it for tests and demos only")

		return world.NewMemory(), noop, nil
	}
}

// serveMetrics exposes the Prometheus registry on address until the returned stop function runs.
func serveMetrics(ctx context.Context, address string, registry *metrics.Metrics) (func(), error) {
	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("listen metrics on %s: %w", address, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", registry.Handler())

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: metricsShutdownTimeout,
	}

	go func() {
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorKV(ctx, "Metrics server failed", "error", err)
		}
	}()

	logger.InfoKV(ctx, "Metrics endpoint listening", "address", lis.Addr().String())

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), metricsShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WarnKV(ctx, "Metrics server shutdown failed", "error", err)
		}
	}, nil
}

func configPathOrDefault(path string) string {
	if path == "" {
		return config.DefaultConfigFilename
	}

	return path
}

// resolveListenAddress determines the listen address for the gRPC server.
// An override is used as is. Otherwise configAddr is bound with its host, so a
// loopback address stays local and an empty host means every interface.
// Admin checks trust the client-supplied username, so anything wider than
// loopback should sit behind a trusted network.
func resolveListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	host, port, err := net.SplitHostPort(configAddr)
	if err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	return net.JoinHostPort(host, port), nil
}
