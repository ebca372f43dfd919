package api

import (
	"context"
	"log/slog"
	"os"

	"golang.org/x/time/rate"

	"github.com/NVIDIA/hwmatch/pkg/collector"
	"github.com/NVIDIA/hwmatch/pkg/collector/sysfs"
	"github.com/NVIDIA/hwmatch/pkg/config"
	"github.com/NVIDIA/hwmatch/pkg/device"
	"github.com/NVIDIA/hwmatch/pkg/errors"
	"github.com/NVIDIA/hwmatch/pkg/logging"
	"github.com/NVIDIA/hwmatch/pkg/manager"
	"github.com/NVIDIA/hwmatch/pkg/server"
	"github.com/NVIDIA/hwmatch/pkg/snapshotter"
)

const (
	name           = "hwmatchd"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags to reflect actual version info
	// e.g., -X "github.com/NVIDIA/hwmatch/pkg/api.version=1.0.0"
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Serve starts the API server and blocks until shutdown.
// It configures logging, takes the initial hardware snapshot, starts the
// hotplug monitor and handles graceful shutdown.
func Serve() error {
	ctx := context.Background()

	logging.SetDefaultStructuredLogger(name, version)
	slog.Info("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
	)

	cfg, err := config.Resolve("")
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		return err
	}

	s, err := newServer(ctx, cfg, nil)
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		return err
	}

	if err := s.Run(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}

	return nil
}

// newServer snapshots the node and wires the handlers and monitor task.
// A nil factory is built from cfg.
func newServer(ctx context.Context, cfg *config.Config, factory collector.Factory) (*server.Server, error) {
	snapper := &snapshotter.Snapshotter{
		Version: version,
		Config:  cfg,
		Factory: factory,
	}
	snap, err := snapper.Take(ctx)
	if err != nil {
		return nil, err
	}

	mgr := snap.Manager
	mgr.Subscribe(func(dev *device.Device) {
		slog.Debug("hotplug device modalias", "path", dev.Path(), "modalias", dev.Modalias())
	})

	h := NewHandler(mgr,
		WithGPUPolicy(cfg.GPUPolicy()),
		WithHost(snap.Host),
		WithReportVersion(version),
	)

	return server.New(
		server.WithConfig(serverConfig(cfg)),
		server.WithName(name),
		server.WithVersion(version),
		server.WithHandler(h.Routes()),
		server.WithReadyCheck(readyCheck(mgr)),
		server.WithTask(monitorTask(snapper.Factory.CreateMonitor(), mgr)),
	), nil
}

// serverConfig layers the config file under the PORT environment variable.
func serverConfig(cfg *config.Config) *server.Config {
	sc := server.NewConfig()
	if cfg.Server.Address != "" {
		sc.Address = cfg.Server.Address
	}
	if os.Getenv("PORT") == "" && cfg.Server.Port != 0 {
		sc.Port = cfg.Server.Port
	}
	if cfg.Server.RateLimit > 0 {
		sc.RateLimit = rate.Limit(cfg.Server.RateLimit)
	}
	if cfg.Server.RateLimitBurst > 0 {
		sc.RateLimitBurst = cfg.Server.RateLimitBurst
	}
	return sc
}

func readyCheck(mgr *manager.Manager) func() error {
	return func() error {
		if len(mgr.Devices(device.TypeAny)) == 0 {
			return errors.New(errors.ErrCodeUnavailable, "no devices registered")
		}
		return nil
	}
}

// monitorTask keeps the registry current. Without uevent support the
// daemon keeps serving the startup snapshot.
func monitorTask(mon *sysfs.Monitor, sink sysfs.Sink) server.Task {
	return func(ctx context.Context) error {
		err := mon.Run(ctx, sink)
		if errors.IsCode(err, errors.ErrCodeUnavailable) {
			slog.Warn("hotplug monitoring disabled", "error", err)
			return nil
		}
		return err
	}
}
