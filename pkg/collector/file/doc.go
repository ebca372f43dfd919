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

// Package file parses the small delimited text formats the collectors
// consume.
//
// # Usage
//
// Read a sysfs uevent file as a map:
//
//	p := file.NewParser()
//	kv, err := p.GetMap("/sys/bus/pci/devices/0000:01:00.0/uevent")
//	// kv["PCI_ID"] == "10DE:1C8D"
//
// Parse a NUL separated netlink payload held in memory:
//
//	p := file.NewParser(file.WithDelimiter("\x00"))
//	kv, err := p.ParseMap(buf)
//
// Read a table such as a .modaliases file, skipping '#' comments:
//
//	lines, err := file.NewParser().GetLines("/usr/share/hwmatch/nvidia.modaliases")
//
// Read a single-value attribute, treating a missing file as empty:
//
//	vendor, err := file.ReadString("/sys/bus/pci/devices/0000:01:00.0/vendor")
//
// # Error Handling
//
// Errors are wrapped with the offending path:
//
//	// failed to read file "/nonexistent": open /nonexistent: no such file or directory
//
// Content that is not valid UTF-8 or exceeds the configured maximum size
// is rejected.
package file
