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
// Package collector creates the data sources the rest of the system reads
// hardware from.
//
// # Collectors
//
// Device collectors return the devices present on the system:
//
//	type DeviceCollector interface {
//	    Collect(ctx context.Context) ([]*device.Device, error)
//	}
//
// Host collectors return the kernel release and distribution, used to
// filter catalog packages by kernel constraint:
//
//	type HostCollector interface {
//	    Collect(ctx context.Context) (*host.Info, error)
//	}
//
// # Factory Pattern
//
// The Factory interface abstracts collector creation so commands and the
// server can be tested against fake sysfs and procfs trees:
//
//	factory := collector.NewDefaultFactory(
//	    collector.WithSysfsRoot("/host/sys"),
//	    collector.WithProcRoot("/host/proc"),
//	)
//	devs, err := factory.CreateDeviceCollector().Collect(ctx)
//
// CreateMonitor returns a hotplug monitor bound to the same sysfs tree, so
// devices added later resolve their parents against the initial scan.
//
// # Subpackages
//
//   - collector/sysfs - PCI, USB, HID, Bluetooth and DMI enumeration plus
//     the kernel uevent monitor
//   - collector/host - kernel release and os-release
//   - collector/file - line and key/value parsing for sysfs and procfs files
package collector
