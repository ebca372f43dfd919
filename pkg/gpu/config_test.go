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

package gpu

import (
	"testing"

	"github.com/NVIDIA/hwmatch/pkg/device"
	"github.com/NVIDIA/hwmatch/pkg/plugin"
)

const (
	vendorIntel  = 0x8086
	vendorNVIDIA = 0x10de
	vendorAMD    = 0x1002
)

func newGPU(path string, vendor uint16, attrs device.Attribute) *device.Device {
	return device.MustNew(path, device.TypeGPU|device.TypePCI,
		device.WithIDs(vendor, 0x1234), device.WithAttributes(attrs))
}

func testVendorPolicy() VendorPolicy {
	return VendorPolicy{
		IntegratedVendors: []uint16{vendorIntel, vendorAMD},
		DiscreteVendors:   []uint16{vendorNVIDIA, vendorAMD},
		MuxVendors:        []uint16{vendorNVIDIA},
		CompositeTags: map[uint16]Type{
			vendorNVIDIA: TypeSLI,
			vendorAMD:    TypeCrossfire,
		},
	}
}

func TestClassifyAttributePolicy(t *testing.T) {
	audio := device.MustNew("/snd", device.TypeAudio)

	tests := []struct {
		name      string
		devs      []*device.Device
		want      Type
		primary   string
		secondary string
	}{
		{
			name: "no gpu",
			devs: []*device.Device{audio},
			want: TypeSimple,
		},
		{
			name:    "single gpu",
			devs:    []*device.Device{newGPU("/gpu0", vendorNVIDIA, device.AttrDiscrete), audio},
			want:    TypeSimple,
			primary: "/gpu0",
		},
		{
			name: "optimus",
			devs: []*device.Device{
				newGPU("/igpu", vendorIntel, device.AttrBootVGA),
				newGPU("/dgpu", vendorNVIDIA, device.AttrDiscrete|device.AttrPowerMux),
			},
			want:      TypeHybrid | TypeOptimus,
			primary:   "/igpu",
			secondary: "/dgpu",
		},
		{
			name: "optimus discrete enumerated first",
			devs: []*device.Device{
				newGPU("/dgpu", vendorNVIDIA, device.AttrDiscrete|device.AttrPowerMux),
				newGPU("/igpu", vendorIntel, device.AttrBootVGA),
			},
			want:      TypeHybrid | TypeOptimus,
			primary:   "/igpu",
			secondary: "/dgpu",
		},
		{
			name: "hybrid without marker",
			devs: []*device.Device{
				newGPU("/igpu", vendorIntel, device.AttrBootVGA),
				newGPU("/dgpu", vendorAMD, device.AttrDiscrete),
			},
			want:      TypeHybrid,
			primary:   "/igpu",
			secondary: "/dgpu",
		},
		{
			name: "two discrete",
			devs: []*device.Device{
				newGPU("/dgpu0", vendorNVIDIA, device.AttrDiscrete),
				newGPU("/dgpu1", vendorAMD, device.AttrDiscrete|device.AttrBootVGA),
			},
			want:      TypeComposite,
			primary:   "/dgpu1",
			secondary: "/dgpu0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.devs)
			if c.Type() != tt.want {
				t.Errorf("Type() = %v, want %v", c.Type(), tt.want)
			}
			if got := pathOf(c.Primary()); got != tt.primary {
				t.Errorf("Primary() = %q, want %q", got, tt.primary)
			}
			if got := pathOf(c.Secondary()); got != tt.secondary {
				t.Errorf("Secondary() = %q, want %q", got, tt.secondary)
			}
		})
	}
}

func TestClassifyVendorPolicy(t *testing.T) {
	tests := []struct {
		name string
		devs []*device.Device
		want Type
	}{
		{
			name: "intel plus nvidia is optimus",
			devs: []*device.Device{
				newGPU("/igpu", vendorIntel, device.AttrBootVGA),
				newGPU("/dgpu", vendorNVIDIA, 0),
			},
			want: TypeHybrid | TypeOptimus,
		},
		{
			name: "intel plus amd is hybrid",
			devs: []*device.Device{
				newGPU("/igpu", vendorIntel, device.AttrBootVGA),
				newGPU("/dgpu", vendorAMD, 0),
			},
			want: TypeHybrid,
		},
		{
			name: "amd apu plus amd is hybrid",
			devs: []*device.Device{
				newGPU("/apu", vendorAMD, device.AttrBootVGA),
				newGPU("/dgpu", vendorAMD, 0),
			},
			want: TypeHybrid,
		},
		{
			name: "two nvidia is sli",
			devs: []*device.Device{
				newGPU("/dgpu0", vendorNVIDIA, device.AttrBootVGA),
				newGPU("/dgpu1", vendorNVIDIA, 0),
			},
			want: TypeComposite | TypeSLI,
		},
		{
			name: "nvidia boot plus amd is composite",
			devs: []*device.Device{
				newGPU("/dgpu0", vendorNVIDIA, device.AttrBootVGA),
				newGPU("/dgpu1", vendorAMD, 0),
			},
			want: TypeComposite,
		},
		{
			name: "unknown vendors",
			devs: []*device.Device{
				newGPU("/a", 0x1af4, device.AttrBootVGA),
				newGPU("/b", 0x1234, 0),
			},
			want: TypeComposite,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.devs, WithPolicy(testVendorPolicy()))
			if c.Type() != tt.want {
				t.Errorf("Type() = %v (%v), want %v", c.Type(), c.Type().Names(), tt.want)
			}
		})
	}
}

func TestVendorPolicyUsesBootVGA(t *testing.T) {
	p := testVendorPolicy()

	// discrete listed first and flagged DISCRETE on the boot adapter: BOOT_VGA decides
	c := New([]*device.Device{
		newGPU("/dgpu", vendorNVIDIA, 0),
		newGPU("/igpu", vendorIntel, device.AttrBootVGA|device.AttrDiscrete),
	}, WithPolicy(p))
	if !c.HasType(TypeHybrid | TypeOptimus) {
		t.Fatalf("Type() = %v, want hybrid+optimus", c.Type().Names())
	}
	if c.Primary().Path() != "/igpu" || c.Secondary().Path() != "/dgpu" {
		t.Errorf("pair = %s,%s, want /igpu,/dgpu", c.Primary().Path(), c.Secondary().Path())
	}

	// no integrated vendor at boot: composite with the boot adapter primary
	c = New([]*device.Device{
		newGPU("/b", vendorAMD, 0),
		newGPU("/a", vendorNVIDIA, device.AttrBootVGA|device.AttrDiscrete),
	}, WithPolicy(p))
	if c.Type() != TypeComposite {
		t.Fatalf("Type() = %v, want composite", c.Type().Names())
	}
	if c.Primary().Path() != "/a" {
		t.Errorf("Primary() = %s, want /a", c.Primary().Path())
	}

	// POWER_MUX marks the pair even when the discrete vendor is not a mux vendor
	c = New([]*device.Device{
		newGPU("/igpu", vendorIntel, device.AttrBootVGA),
		newGPU("/dgpu", vendorAMD, device.AttrPowerMux),
	}, WithPolicy(p))
	if !c.HasType(TypeHybrid | TypeOptimus) {
		t.Errorf("Type() = %v, want hybrid+optimus", c.Type().Names())
	}
}

func TestAMDCrossfire(t *testing.T) {
	// both adapters discrete AMD, neither integrated: no hybrid pair
	p := testVendorPolicy()
	p.IntegratedVendors = []uint16{vendorIntel}
	c := New([]*device.Device{
		newGPU("/a", vendorAMD, device.AttrBootVGA),
		newGPU("/b", vendorAMD, 0),
	}, WithPolicy(p))
	if !c.HasType(TypeComposite | TypeCrossfire) {
		t.Errorf("Type() = %v, want composite+crossfire", c.Type().Names())
	}
}

func TestHasType(t *testing.T) {
	c := New([]*device.Device{
		newGPU("/igpu", vendorIntel, device.AttrBootVGA),
		newGPU("/dgpu", vendorNVIDIA, device.AttrDiscrete|device.AttrPowerMux),
	})

	if !c.HasType(TypeOptimus) || !c.HasType(TypeHybrid) || !c.HasType(TypeHybrid|TypeOptimus) {
		t.Error("optimus config must report hybrid and optimus")
	}
	if c.HasType(TypeComposite) || c.HasType(TypeSimple) {
		t.Error("optimus config must not report composite or simple")
	}

	simple := New(nil)
	if !simple.HasType(TypeSimple) || simple.HasType(TypeHybrid) {
		t.Error("empty config must be simple only")
	}
}

func TestTypeString(t *testing.T) {
	tests := []struct {
		t    Type
		want string
	}{
		{TypeSimple, "simple"},
		{TypeHybrid, "hybrid"},
		{TypeHybrid | TypeOptimus, "optimus"},
		{TypeComposite, "composite"},
		{TypeComposite | TypeSLI, "sli"},
		{TypeComposite | TypeCrossfire, "crossfire"},
	}
	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("%v.String() = %q, want %q", tt.t.Names(), got, tt.want)
		}
	}
}

func TestDetectionDevice(t *testing.T) {
	igpu := newGPU("/igpu", vendorIntel, device.AttrBootVGA)
	dgpu := newGPU("/dgpu", vendorNVIDIA, device.AttrDiscrete|device.AttrHost)

	if got := New([]*device.Device{igpu, dgpu}).DetectionDevice(); got != dgpu {
		t.Errorf("DetectionDevice() = %v, want host-attributed %v", got, dgpu)
	}

	plain := newGPU("/other", vendorAMD, 0)
	if got := New([]*device.Device{igpu, plain}).DetectionDevice(); got != igpu {
		t.Errorf("DetectionDevice() = %v, want first gpu", got)
	}

	if New(nil).DetectionDevice() != nil {
		t.Error("DetectionDevice() must be nil without GPUs")
	}
}

type fakeSource struct {
	devs []*device.Device
}

func (f fakeSource) Devices(filter device.Type) []*device.Device {
	var out []*device.Device
	for _, d := range f.devs {
		if d.HasType(filter) {
			out = append(out, d)
		}
	}
	return out
}

func (f fakeSource) Providers(dev *device.Device) []*plugin.Provider {
	p := plugin.NewTypePlugin("gpu", device.TypeGPU, "gpu-driver")
	return []*plugin.Provider{p.Match(dev)}
}

func TestFromSourceAndProviders(t *testing.T) {
	src := fakeSource{devs: []*device.Device{
		device.MustNew("/snd", device.TypeAudio),
		newGPU("/gpu0", vendorNVIDIA, device.AttrDiscrete),
	}}

	c := FromSource(src)
	if c.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", c.Count())
	}
	provs := c.Providers(src)
	if len(provs) != 1 || provs[0].Device().Path() != "/gpu0" {
		t.Errorf("Providers() = %v", plugin.Infos(provs))
	}

	empty := New(nil)
	if got := empty.Providers(src); got == nil || len(got) != 0 {
		t.Errorf("Providers() without GPUs = %v, want empty", got)
	}
}

func TestInfo(t *testing.T) {
	c := New([]*device.Device{
		newGPU("/igpu", vendorIntel, device.AttrBootVGA),
		newGPU("/dgpu", vendorNVIDIA, device.AttrDiscrete|device.AttrPowerMux),
	})
	i := c.Info()
	if i.Type != "optimus" || i.Count != 2 || i.Primary != "/igpu" || i.Secondary != "/dgpu" || i.DetectionDevice != "/igpu" {
		t.Errorf("Info() = %+v", i)
	}
	if len(i.Tags) != 2 || len(i.Devices) != 2 {
		t.Errorf("Info() tags/devices = %v / %d", i.Tags, len(i.Devices))
	}
}

func pathOf(d *device.Device) string {
	if d == nil {
		return ""
	}
	return d.Path()
}
