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

// Package device defines the immutable Device value shared by the
// enumeration backends, the plugin matchers and the manager.
//
// A Device carries a type-set (Type, a bitmask over classes such as GPU,
// USB or Audio), an attribute-set (Attribute, e.g. AttrHost, AttrDiscrete),
// identity and naming strings, an optional parent and an optional bus
// modalias:
//
//	gpu, err := device.New("/sys/devices/pci0000:00/0000:01:00.0",
//	    device.TypeGPU|device.TypePCI,
//	    device.WithVendor("NVIDIA Corporation"),
//	    device.WithIDs(0x10de, 0x1c8d),
//	    device.WithAttributes(device.AttrDiscrete),
//	    device.WithModalias("pci:v000010DEd00001C8Dsv00001028sd000007BEbc03sc02i00"),
//	)
//
// Type queries use intersection semantics and TypeAny is a wildcard:
//
//	gpu.HasType(device.TypeGPU|device.TypeAudio) // true
//	gpu.HasType(device.TypeAny)                  // true
package device
