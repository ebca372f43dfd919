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
// Package snapshotter assembles a populated device registry from the
// running system.
//
// # Overview
//
// A snapshot is taken in two phases. Host facts (kernel release,
// os-release) and the device tree are collected in parallel; then the
// package catalogs and modalias tables are loaded, filtered by the kernel
// release, and registered as plugins on a fresh manager seeded with the
// collected devices.
//
// # Usage
//
//	s := &snapshotter.Snapshotter{
//	    Version: "v0.3.0",
//	    Config:  cfg,
//	}
//	snap, err := s.Take(ctx)
//	if err != nil {
//	    return err
//	}
//	for _, dev := range snap.Manager.Devices(device.TypeGPU) {
//	    fmt.Println(dev, snap.Manager.Providers(dev))
//	}
//
// # Catalog Layering
//
// The embedded catalog is always loaded first. Files listed in the
// configuration are merged over it in order, so a local catalog can
// replace a builtin package by name. Configured files or directories that
// do not exist are skipped with a warning; a file that exists but does not
// parse fails the snapshot.
//
// # Failure Handling
//
// A failing device scan fails the snapshot. A failing host collector does
// not: the snapshot continues with an empty host and no kernel filtering
// unless the configuration pins a kernel release, which then also stands in
// for the host kernel.
//
// # Metrics
//
//   - hwmatch_snapshot_duration_seconds: time to take a full snapshot
//   - hwmatch_snapshot_total{status}: snapshot attempts by outcome
//   - hwmatch_snapshot_collector_duration_seconds{collector}: per collector time
//   - hwmatch_snapshot_plugins: plugins registered by the last snapshot
package snapshotter
