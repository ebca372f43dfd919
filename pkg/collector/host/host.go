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

// Package host collects the host facts that device matching depends on:
// the running kernel release, used to evaluate catalog kernel constraints,
// and the os-release identity recorded in report headers.
package host

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/NVIDIA/hwmatch/pkg/collector/file"
	"github.com/NVIDIA/hwmatch/pkg/version"
)

var (
	fileKernelRelease       = "sys/kernel/osrelease"
	filePathReleasePrimary  = "etc/os-release"
	filePathReleaseFallback = "usr/lib/os-release"
	fileKVDelRelease        = "="
)

// Info describes the running host.
type Info struct {
	Kernel     string `json:"kernel" yaml:"kernel"`
	OSID       string `json:"osId,omitempty" yaml:"osId,omitempty"`
	OSVersion  string `json:"osVersion,omitempty" yaml:"osVersion,omitempty"`
	PrettyName string `json:"prettyName,omitempty" yaml:"prettyName,omitempty"`
}

// KernelVersion parses Kernel. It returns nil when the release is unknown
// or unparsable so callers skip constraint checks.
func (i *Info) KernelVersion() *version.Version {
	if i == nil || i.Kernel == "" {
		return nil
	}
	v, err := version.ParseVersion(i.Kernel)
	if err != nil {
		slog.Warn("unparsable kernel release", "kernel", i.Kernel, "error", err)
		return nil
	}
	return &v
}

// Collector reads host facts from procfs and the root filesystem.
type Collector struct {
	// ProcRoot is the procfs mount point, "/proc" when empty.
	ProcRoot string
	// FSRoot prefixes /etc and /usr/lib lookups, "/" when empty.
	FSRoot string
}

// Collect reads the kernel release and os-release. A missing os-release is
// not an error; a missing kernel release is.
func (c *Collector) Collect(ctx context.Context) (*Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	procRoot := c.ProcRoot
	if procRoot == "" {
		procRoot = "/proc"
	}
	fsRoot := c.FSRoot
	if fsRoot == "" {
		fsRoot = "/"
	}

	kernel, err := file.ReadString(filepath.Join(procRoot, fileKernelRelease))
	if err != nil {
		return nil, fmt.Errorf("failed to read kernel release: %w", err)
	}
	if kernel == "" {
		return nil, fmt.Errorf("kernel release not found under %s: %w", procRoot, os.ErrNotExist)
	}

	info := &Info{Kernel: kernel}

	release, err := c.collectRelease(ctx, fsRoot)
	if err != nil {
		slog.Debug("os-release not available", "error", err)
		return info, nil
	}
	info.OSID = release["ID"]
	info.OSVersion = release["VERSION_ID"]
	info.PrettyName = release["PRETTY_NAME"]
	return info, nil
}

func (c *Collector) collectRelease(ctx context.Context, fsRoot string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Try primary location first, fall back to alternative per freedesktop.org spec
	path := filepath.Join(fsRoot, filePathReleasePrimary)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		path = filepath.Join(fsRoot, filePathReleaseFallback)
	}

	parser := file.NewParser(
		file.WithKVDelimiter(fileKVDelRelease),
		file.WithVTrimChars(`"'`),
		file.WithSkipComments(true),
		file.WithSkipEmptyValues(true),
	)

	params, err := parser.GetMap(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read os release from %s: %w", path, err)
	}
	return params, nil
}
