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
package collector

import (
	"context"

	"github.com/NVIDIA/hwmatch/pkg/collector/host"
	"github.com/NVIDIA/hwmatch/pkg/collector/sysfs"
	"github.com/NVIDIA/hwmatch/pkg/device"
)

// DeviceCollector enumerates the hardware present on the system.
type DeviceCollector interface {
	Collect(ctx context.Context) ([]*device.Device, error)
}

// HostCollector reads facts about the running host.
type HostCollector interface {
	Collect(ctx context.Context) (*host.Info, error)
}

// Factory creates collectors with their dependencies.
// This interface enables dependency injection for testing.
type Factory interface {
	CreateDeviceCollector() DeviceCollector
	CreateHostCollector() HostCollector
	CreateMonitor(opts ...sysfs.MonitorOption) *sysfs.Monitor
}

// DefaultFactory creates collectors with production dependencies.
type DefaultFactory struct {
	SysfsRoot string
	ProcRoot  string
}

// Option configures a DefaultFactory.
type Option func(*DefaultFactory)

// WithSysfsRoot points device enumeration and hotplug at an alternate
// sysfs tree. Empty keeps the default.
func WithSysfsRoot(root string) Option {
	return func(f *DefaultFactory) {
		if root != "" {
			f.SysfsRoot = root
		}
	}
}

// WithProcRoot points host collection at an alternate procfs mount.
// Empty keeps the default.
func WithProcRoot(root string) Option {
	return func(f *DefaultFactory) {
		if root != "" {
			f.ProcRoot = root
		}
	}
}

// NewDefaultFactory creates a factory with default settings.
func NewDefaultFactory(opts ...Option) *DefaultFactory {
	f := &DefaultFactory{
		SysfsRoot: "/sys",
		ProcRoot:  "/proc",
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateDeviceCollector creates a sysfs device scanner.
func (f *DefaultFactory) CreateDeviceCollector() DeviceCollector {
	return f.scanner()
}

// CreateHostCollector creates a procfs and os-release collector.
func (f *DefaultFactory) CreateHostCollector() HostCollector {
	return &host.Collector{ProcRoot: f.ProcRoot}
}

// CreateMonitor creates a uevent monitor that builds devices from the same
// sysfs tree as CreateDeviceCollector.
func (f *DefaultFactory) CreateMonitor(opts ...sysfs.MonitorOption) *sysfs.Monitor {
	return sysfs.NewMonitor(f.scanner(), opts...)
}

func (f *DefaultFactory) scanner() *sysfs.Scanner {
	return sysfs.New(sysfs.WithRoot(f.SysfsRoot))
}
