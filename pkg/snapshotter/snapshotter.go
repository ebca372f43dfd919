package snapshotter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/hwmatch/pkg/catalog"
	"github.com/NVIDIA/hwmatch/pkg/collector"
	"github.com/NVIDIA/hwmatch/pkg/collector/host"
	"github.com/NVIDIA/hwmatch/pkg/config"
	"github.com/NVIDIA/hwmatch/pkg/device"
	"github.com/NVIDIA/hwmatch/pkg/errors"
	"github.com/NVIDIA/hwmatch/pkg/manager"
	"github.com/NVIDIA/hwmatch/pkg/modalias"
	"github.com/NVIDIA/hwmatch/pkg/plugin"
	"github.com/NVIDIA/hwmatch/pkg/version"
)

// Snapshot is a populated registry and the facts it was built from.
type Snapshot struct {
	// Host describes the running system. Never nil.
	Host *host.Info

	// Kernel is the release used to filter catalog packages, nil when unknown.
	Kernel *version.Version

	// Catalog is the builtin catalog merged with the configured files.
	Catalog *catalog.Catalog

	// Manager holds the collected devices and registered plugins.
	Manager *manager.Manager
}

// Snapshotter builds a Snapshot from the current node.
type Snapshotter struct {
	// Version is the tool version, used in log output.
	Version string

	// Config supplies roots, catalogs and the match policy. Defaults when nil.
	Config *config.Config

	// Factory creates the collectors. Built from Config when nil.
	Factory collector.Factory

	// Plugins are registered after the catalog and modalias plugins.
	Plugins []plugin.Plugin
}

// Take collects host facts and devices in parallel, then loads plugins
// and returns the assembled registry.
func (s *Snapshotter) Take(ctx context.Context) (*Snapshot, error) {
	if s.Config == nil {
		s.Config = config.Default()
	}
	if s.Factory == nil {
		s.Factory = collector.NewDefaultFactory(
			collector.WithSysfsRoot(s.Config.SysfsRoot),
			collector.WithProcRoot(s.Config.ProcRoot),
		)
	}

	slog.Debug("starting hardware snapshot", "version", s.Version)

	start := time.Now()
	defer func() {
		snapshotDuration.Observe(time.Since(start).Seconds())
	}()

	snap, err := s.take(ctx)
	if err != nil {
		snapshotTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	snapshotTotal.WithLabelValues("success").Inc()
	return snap, nil
}

func (s *Snapshotter) take(ctx context.Context) (*Snapshot, error) {
	var (
		mu   sync.Mutex
		info *host.Info
		devs []*device.Device
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer observe("host", time.Now())
		hi, err := s.Factory.CreateHostCollector().Collect(gctx)
		if err != nil {
			slog.Warn("failed to collect host info", "error", err)
			hi = &host.Info{}
		}
		mu.Lock()
		info = hi
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		defer observe("devices", time.Now())
		found, err := s.Factory.CreateDeviceCollector().Collect(gctx)
		if err != nil {
			slog.Error("failed to collect devices", "error", err)
			return fmt.Errorf("failed to collect devices: %w", err)
		}
		mu.Lock()
		devs = found
		mu.Unlock()
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	kernel, err := s.kernel(info)
	if err != nil {
		return nil, err
	}
	if info.Kernel == "" && kernel != nil {
		info.Kernel = s.Config.Kernel
	}

	catalogStart := time.Now()
	cat, err := catalog.Layered(s.Config.Catalogs...)
	if err != nil {
		return nil, err
	}
	plugins, err := s.loadPlugins(cat, kernel)
	observe("catalog", catalogStart)
	if err != nil {
		return nil, err
	}

	mgr, err := manager.New(
		manager.WithPlugins(plugins...),
		manager.WithDevices(devs...),
	)
	if err != nil {
		return nil, err
	}
	snapshotPlugins.Set(float64(len(plugins)))

	slog.Debug("hardware snapshot complete",
		"devices", len(devs), "plugins", len(plugins), "kernel", info.Kernel)

	return &Snapshot{
		Host:    info,
		Kernel:  kernel,
		Catalog: cat,
		Manager: mgr,
	}, nil
}

// kernel picks the pinned release over the detected one.
func (s *Snapshotter) kernel(info *host.Info) (*version.Version, error) {
	if s.Config.Kernel == "" {
		return info.KernelVersion(), nil
	}
	v, err := version.ParseVersion(s.Config.Kernel)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid kernel release %q", s.Config.Kernel), err)
	}
	return &v, nil
}

func (s *Snapshotter) loadPlugins(cat *catalog.Catalog, kernel *version.Version) ([]plugin.Plugin, error) {
	policy := s.Config.ModaliasPolicy()

	var plugins []plugin.Plugin
	seen := make(map[string]bool)
	add := func(p plugin.Plugin) {
		if p == nil {
			slog.Warn("skipping nil plugin")
			return
		}
		name := strings.TrimSpace(p.Name())
		if name == "" {
			slog.Warn("skipping plugin without a name")
			return
		}
		if seen[name] {
			slog.Warn("duplicate plugin name, keeping the first", "plugin", name)
			return
		}
		seen[name] = true
		plugins = append(plugins, p)
	}

	for _, p := range cat.Plugins(policy, kernel) {
		add(p)
	}
	for _, dir := range s.Config.ModaliasDirs {
		tables, err := modalias.LoadDir(dir, modalias.WithPolicy(policy))
		if err != nil {
			return nil, err
		}
		for _, p := range tables {
			add(p)
		}
	}
	for _, p := range s.Plugins {
		add(p)
	}
	return plugins, nil
}

func observe(collector string, start time.Time) {
	snapshotCollectorDuration.WithLabelValues(collector).Observe(time.Since(start).Seconds())
}
