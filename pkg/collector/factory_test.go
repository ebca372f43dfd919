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
	"os"
	"path/filepath"
	"testing"

	"github.com/NVIDIA/hwmatch/pkg/collector/host"
	"github.com/NVIDIA/hwmatch/pkg/collector/sysfs"
)

func TestNewDefaultFactory(t *testing.T) {
	f := NewDefaultFactory()
	if f.SysfsRoot != "/sys" || f.ProcRoot != "/proc" {
		t.Errorf("unexpected defaults: %+v", f)
	}

	f = NewDefaultFactory(WithSysfsRoot(""), WithProcRoot("/host/proc"))
	if f.SysfsRoot != "/sys" {
		t.Errorf("empty root must keep default, got %q", f.SysfsRoot)
	}
	if f.ProcRoot != "/host/proc" {
		t.Errorf("ProcRoot = %q", f.ProcRoot)
	}
}

func TestDefaultFactory_CreateDeviceCollector(t *testing.T) {
	root := t.TempDir()
	factory := NewDefaultFactory(WithSysfsRoot(root))

	col := factory.CreateDeviceCollector()
	if col == nil {
		t.Fatal("Expected non-nil collector")
	}
	if _, ok := col.(*sysfs.Scanner); !ok {
		t.Fatalf("Expected *sysfs.Scanner, got %T", col)
	}

	devs, err := col.Collect(context.TODO())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(devs) != 0 {
		t.Errorf("empty tree yielded %d devices", len(devs))
	}
}

func TestDefaultFactory_CreateHostCollector(t *testing.T) {
	proc := t.TempDir()
	if err := os.MkdirAll(filepath.Join(proc, "sys", "kernel"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(proc, "sys", "kernel", "osrelease"), []byte("6.8.0-45-generic\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	col := NewDefaultFactory(WithProcRoot(proc)).CreateHostCollector()
	if _, ok := col.(*host.Collector); !ok {
		t.Fatalf("Expected *host.Collector, got %T", col)
	}

	info, err := col.Collect(context.TODO())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if info.Kernel != "6.8.0-45-generic" {
		t.Errorf("Kernel = %q", info.Kernel)
	}
}

func TestDefaultFactory_CreateMonitor(t *testing.T) {
	if m := NewDefaultFactory(WithSysfsRoot(t.TempDir())).CreateMonitor(); m == nil {
		t.Fatal("Expected non-nil monitor")
	}
}
