// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package manager

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/NVIDIA/hwmatch/pkg/device"
	"github.com/NVIDIA/hwmatch/pkg/errors"
	"github.com/NVIDIA/hwmatch/pkg/plugin"
)

// Listener is invoked synchronously for every device added after
// subscription.
type Listener func(dev *device.Device)

type subscription struct {
	fn Listener
}

// Manager owns the device registry and the ordered plugin list and
// resolves devices to providers on demand.
//
// Both registries are append-only. Registration order of plugins is match
// priority, insertion order of devices is enumeration order.
type Manager struct {
	mu      sync.RWMutex
	devices []*device.Device
	paths   map[string]*device.Device
	plugins []plugin.Plugin
	names   map[string]struct{}

	lmu       sync.Mutex
	listeners []*subscription
}

// Option configures a Manager.
type Option func(*Manager) error

// WithDevices seeds the registry. Devices with a path already present are
// dropped.
func WithDevices(devs ...*device.Device) Option {
	return func(m *Manager) error {
		for _, d := range devs {
			if m.insert(d) {
				deviceRegistrations.WithLabelValues(sourceInitial).Inc()
			}
		}
		return nil
	}
}

// WithPlugins registers plugins in the given order.
func WithPlugins(plugins ...plugin.Plugin) Option {
	return func(m *Manager) error {
		for _, p := range plugins {
			if err := m.AddPlugin(p); err != nil {
				return err
			}
		}
		return nil
	}
}

// New creates a Manager.
func New(opts ...Option) (*Manager, error) {
	m := &Manager{
		paths: make(map[string]*device.Device),
		names: make(map[string]struct{}),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// AddPlugin appends p to the plugin list. A nil plugin, an empty name or a
// name already registered is rejected with ErrCodeInvalidRequest.
func (m *Manager) AddPlugin(p plugin.Plugin) error {
	if p == nil {
		return errors.New(errors.ErrCodeInvalidRequest, "plugin cannot be nil")
	}
	name := strings.TrimSpace(p.Name())
	if name == "" {
		return errors.New(errors.ErrCodeInvalidRequest, "plugin name cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.names[name]; exists {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("plugin %q already registered", name),
			map[string]any{"plugin": name})
	}
	m.names[name] = struct{}{}
	m.plugins = append(m.plugins, p)
	pluginRegistrations.Inc()

	slog.Debug("plugin registered", "plugin", name, "priority", len(m.plugins)-1)
	return nil
}

// Plugins returns the registered plugins in priority order.
func (m *Manager) Plugins() []plugin.Plugin {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]plugin.Plugin, len(m.plugins))
	copy(out, m.plugins)
	return out
}

// Devices returns, in insertion order, every device whose type-set
// intersects filter. device.TypeAny returns all devices.
func (m *Manager) Devices(filter device.Type) []*device.Device {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*device.Device, 0, len(m.devices))
	for _, d := range m.devices {
		if d.HasType(filter) {
			out = append(out, d)
		}
	}
	return out
}

// Device looks a device up by path.
func (m *Manager) Device(path string) (*device.Device, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.paths[path]
	return d, ok
}

// Providers asks every plugin, in registration order, to match dev and
// returns the non-nil results. The result is never nil.
func (m *Manager) Providers(dev *device.Device) []*plugin.Provider {
	start := time.Now()
	plugins := m.Plugins()

	out := make([]*plugin.Provider, 0, len(plugins))
	if dev == nil {
		return out
	}
	for _, p := range plugins {
		if prov := p.Match(dev); prov != nil {
			out = append(out, prov)
		}
	}

	providerResolutionDuration.Observe(time.Since(start).Seconds())
	providersResolved.Add(float64(len(out)))
	slog.Debug("providers resolved", "device", dev.Path(), "plugins", len(plugins), "providers", len(out))
	return out
}

// AddDevice registers a device discovered after startup. It returns false
// and notifies nobody when a device with the same path is already known.
// Otherwise every listener runs, in subscription order, before AddDevice
// returns.
func (m *Manager) AddDevice(dev *device.Device) bool {
	if dev == nil {
		return false
	}

	m.mu.Lock()
	added := m.insert(dev)
	m.mu.Unlock()

	if !added {
		duplicateHotplugEvents.Inc()
		slog.Debug("ignoring known device", "path", dev.Path())
		return false
	}

	deviceRegistrations.WithLabelValues(sourceHotplug).Inc()
	slog.Info("device added", "path", dev.Path(), "types", dev.Types().String())

	for _, fn := range m.snapshotListeners() {
		fn(dev)
	}
	return true
}

// Subscribe registers fn for device-added notifications. The returned
// function removes the subscription and may be called more than once.
func (m *Manager) Subscribe(fn Listener) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	sub := &subscription{fn: fn}

	m.lmu.Lock()
	m.listeners = append(m.listeners, sub)
	m.lmu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.lmu.Lock()
			defer m.lmu.Unlock()
			for i, s := range m.listeners {
				if s == sub {
					m.listeners = append(m.listeners[:i:i], m.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

func (m *Manager) snapshotListeners() []Listener {
	m.lmu.Lock()
	defer m.lmu.Unlock()
	out := make([]Listener, len(m.listeners))
	for i, s := range m.listeners {
		out[i] = s.fn
	}
	return out
}

// insert appends dev unless its path is known. Caller holds mu, or owns m
// exclusively during construction.
func (m *Manager) insert(dev *device.Device) bool {
	if dev == nil {
		return false
	}
	if _, exists := m.paths[dev.Path()]; exists {
		return false
	}
	m.paths[dev.Path()] = dev
	m.devices = append(m.devices, dev)
	return true
}
