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
// Package report assembles the documents the CLI prints and the daemon
// serves: devices with their resolved packages, a flat provider list, and
// the GPU configuration.
//
// Every report embeds a header.Header so documents are self-describing:
//
//	kind: DeviceReport
//	apiVersion: hwmatch.nvidia.com/v1alpha1
//	metadata:
//	  timestamp: "2025-01-02T03:04:05Z"
//	  version: v0.3.0
//	  kernel: 6.8.0-45-generic
//	  os: ubuntu 24.04
//	devices:
//	  - path: /sys/devices/pci0000:00/0000:01:00.0
//	    types: [gpu, pci]
//	    packages: [nvidia-driver]
//
// Reports implement serializer.Tabular, so table output renders one row
// per device, provider or GPU instead of a flattened field dump.
package report
