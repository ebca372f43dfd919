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
package report

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/NVIDIA/hwmatch/pkg/collector/host"
	"github.com/NVIDIA/hwmatch/pkg/device"
	"github.com/NVIDIA/hwmatch/pkg/gpu"
	"github.com/NVIDIA/hwmatch/pkg/header"
	"github.com/NVIDIA/hwmatch/pkg/plugin"
)

// Metadata keys describing the host a report was taken on.
const (
	MetadataKernel = "kernel"
	MetadataOS     = "os"
)

// Source is the registry a report reads from. *manager.Manager satisfies it.
type Source interface {
	Devices(filter device.Type) []*device.Device
	Providers(dev *device.Device) []*plugin.Provider
}

// Entry is one device and the packages resolved for it.
type Entry struct {
	device.Info `json:",inline" yaml:",inline"`
	Packages    []string `json:"packages,omitempty" yaml:"packages,omitempty"`
}

// Report is a serializable snapshot of the registry.
type Report struct {
	header.Header `json:",inline" yaml:",inline"`

	Devices   []Entry       `json:"devices,omitempty" yaml:"devices,omitempty"`
	Providers []plugin.Info `json:"providers,omitempty" yaml:"providers,omitempty"`
	GPU       *gpu.Info     `json:"gpu,omitempty" yaml:"gpu,omitempty"`
}

// Option configures a Report.
type Option func(*Report)

// WithVersion stamps the producing tool version.
func WithVersion(version string) Option {
	return func(r *Report) {
		if version != "" {
			r.Metadata[header.MetadataVersion] = version
		}
	}
}

// WithHost records the kernel release and distribution.
func WithHost(info *host.Info) Option {
	return func(r *Report) {
		if info == nil {
			return
		}
		if info.Kernel != "" {
			r.Metadata[MetadataKernel] = info.Kernel
		}
		if dist := strings.TrimSpace(info.OSID + " " + info.OSVersion); dist != "" {
			r.Metadata[MetadataOS] = dist
		}
	}
}

func newReport(kind header.Kind, opts []Option) *Report {
	r := &Report{}
	r.Init(kind, header.APIVersion, "")
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Devices reports every device matching filter with the packages its
// providers name.
func Devices(src Source, filter device.Type, opts ...Option) *Report {
	r := newReport(header.KindDeviceReport, opts)
	devs := src.Devices(filter)
	r.Devices = make([]Entry, 0, len(devs))
	for _, d := range devs {
		r.Devices = append(r.Devices, NewEntry(src, d))
	}
	return r
}

// NewEntry describes dev and the packages src resolves for it.
func NewEntry(src Source, dev *device.Device) Entry {
	e := Entry{Info: dev.Info()}
	for _, p := range src.Providers(dev) {
		e.Packages = append(e.Packages, p.Package())
	}
	return e
}

// Providers reports the providers of devs, in device order.
func Providers(src Source, devs []*device.Device, opts ...Option) *Report {
	r := newReport(header.KindProviderReport, opts)
	r.Providers = []plugin.Info{}
	for _, d := range devs {
		r.Providers = append(r.Providers, plugin.Infos(src.Providers(d))...)
	}
	return r
}

// GPU reports the GPU configuration and the providers of its detection
// device.
func GPU(cfg *gpu.Config, resolver gpu.Resolver, opts ...Option) *Report {
	r := newReport(header.KindGPUReport, opts)
	info := cfg.Info()
	r.GPU = &info
	r.Providers = plugin.Infos(cfg.Providers(resolver))
	return r
}

var titleCase = cases.Title(language.English)

// Columns implements serializer.Tabular.
func (r *Report) Columns() []string {
	switch r.Kind {
	case header.KindProviderReport:
		return []string{"DEVICE", "PLUGIN", "PACKAGE"}
	case header.KindGPUReport:
		return []string{"CONFIG", "ROLE", "PATH", "VENDOR", "ID"}
	default:
		return []string{"PATH", "TYPES", "VENDOR", "NAME", "DRIVER", "PACKAGES"}
	}
}

// Rows implements serializer.Tabular.
func (r *Report) Rows() [][]string {
	switch r.Kind {
	case header.KindProviderReport:
		rows := make([][]string, 0, len(r.Providers))
		for _, p := range r.Providers {
			rows = append(rows, []string{p.Device, p.Plugin, p.Package})
		}
		return rows
	case header.KindGPUReport:
		return r.gpuRows()
	default:
		rows := make([][]string, 0, len(r.Devices))
		for _, e := range r.Devices {
			rows = append(rows, []string{
				e.Path,
				strings.Join(e.Types, ","),
				dash(e.Vendor),
				dash(e.Name),
				dash(e.Driver),
				dash(strings.Join(e.Packages, ",")),
			})
		}
		return rows
	}
}

func (r *Report) gpuRows() [][]string {
	if r.GPU == nil {
		return nil
	}
	config := titleCase.String(r.GPU.Type)
	rows := make([][]string, 0, len(r.GPU.Devices))
	for _, d := range r.GPU.Devices {
		var roles []string
		switch d.Path {
		case r.GPU.Primary:
			roles = append(roles, "primary")
		case r.GPU.Secondary:
			roles = append(roles, "secondary")
		}
		if d.Path == r.GPU.DetectionDevice {
			roles = append(roles, "detection")
		}
		rows = append(rows, []string{
			config,
			dash(strings.Join(roles, ",")),
			d.Path,
			dash(d.Vendor),
			dash(strings.TrimSuffix(d.VendorID+":"+d.ProductID, ":")),
		})
	}
	return rows
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
