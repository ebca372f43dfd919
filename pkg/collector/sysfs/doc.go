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

// Package sysfs enumerates devices from a sysfs tree and follows kernel
// uevents to report hotplugged devices.
//
// The scanner reads the PCI, USB, HID, Bluetooth and DMI subsystems. Device
// paths are canonical sysfs paths, which is also how uevent DEVPATH values
// resolve, so a device seen at startup and again as a hotplug event is
// deduplicated by the manager.
//
// USB devices carry the union of their own class and the classes of their
// interfaces; interfaces are reported separately with AttrInterface and the
// USB device as parent. GPUs outside the root PCI bus are marked
// AttrDiscrete, and 3D controllers (PCI subclass 0x02, no display outputs)
// or a vga_switcheroo handler mark AttrPowerMux.
//
//	s := sysfs.New(sysfs.WithRoot("/sys"))
//	devs, err := s.Collect(ctx)
//
// The root is injectable so tests run against a fake tree.
package sysfs
