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

package sysfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/hwmatch/pkg/device"
	"github.com/NVIDIA/hwmatch/pkg/gpu"
)

func collectFake(t *testing.T, withBluetooth bool) (*fakeSysfs, map[string]*device.Device, []*device.Device) {
	t.Helper()
	fs := newFakeSysfs(t)
	fs.laptop(withBluetooth)

	devs, err := New(WithRoot(fs.root)).Collect(context.Background())
	require.NoError(t, err)

	byPath := make(map[string]*device.Device, len(devs))
	for _, d := range devs {
		byPath[d.Path()] = d
	}
	return fs, byPath, devs
}

func TestCollectLaptop(t *testing.T) {
	fs, byPath, devs := collectFake(t, true)
	require.Len(t, devs, 12)

	t.Run("pci before usb before hid", func(t *testing.T) {
		assert.Equal(t, fs.abs(pathIGPU), devs[0].Path())
		assert.Equal(t, fs.abs(pathDMI), devs[4].Path())
		assert.Equal(t, fs.abs(pathRecv), devs[5].Path())
		assert.Equal(t, fs.abs(pathHIDDev), devs[10].Path())
		assert.Equal(t, fs.abs(pathHCI), devs[11].Path())
	})

	t.Run("integrated gpu", func(t *testing.T) {
		d := byPath[fs.abs(pathIGPU)]
		require.NotNil(t, d)
		assert.Equal(t, device.TypeGPU|device.TypePCI, d.Types())
		assert.True(t, d.HasAttribute(device.AttrBootVGA))
		assert.False(t, d.HasAttribute(device.AttrDiscrete))
		assert.False(t, d.HasAttribute(device.AttrPowerMux))
		assert.Equal(t, uint16(0x8086), d.VendorID())
		assert.Equal(t, uint16(0x3e92), d.ProductID())
		assert.Equal(t, "Intel", d.Vendor())
		assert.Equal(t, "i915", d.Driver())
	})

	t.Run("discrete gpu", func(t *testing.T) {
		d := byPath[fs.abs(pathDGPU)]
		require.NotNil(t, d)
		assert.True(t, d.HasAttribute(device.AttrDiscrete|device.AttrPowerMux))
		assert.False(t, d.HasAttribute(device.AttrBootVGA))
		assert.Equal(t, "NVIDIA", d.Vendor())
		assert.Empty(t, d.Driver())
		assert.Nil(t, d.Parent())
	})

	t.Run("optimus classification", func(t *testing.T) {
		cfg := gpu.New(devs)
		assert.True(t, cfg.HasType(gpu.TypeOptimus|gpu.TypeHybrid))
		assert.Equal(t, fs.abs(pathIGPU), cfg.Primary().Path())
		assert.Equal(t, fs.abs(pathDGPU), cfg.Secondary().Path())
	})

	t.Run("pci audio", func(t *testing.T) {
		assert.Equal(t, device.TypeAudio|device.TypePCI, byPath[fs.abs(pathHDA)].Types())
	})

	t.Run("usb host controller", func(t *testing.T) {
		d := byPath[fs.abs(pathXHCI)]
		require.NotNil(t, d)
		assert.Equal(t, device.TypePCI, d.Types())
		assert.True(t, d.HasAttribute(device.AttrHost))
		assert.False(t, byPath[fs.abs(pathHDA)].HasAttribute(device.AttrHost))
		assert.False(t, byPath[fs.abs(pathIGPU)].HasAttribute(device.AttrHost))
	})

	t.Run("usb device unions interface classes", func(t *testing.T) {
		d := byPath[fs.abs(pathRecv)]
		require.NotNil(t, d)
		assert.Equal(t, device.TypeUSB|device.TypeHID|device.TypeAudio, d.Types())
		assert.True(t, d.HasAttribute(device.AttrRemovable))
		assert.Equal(t, "Logitech", d.Vendor())
		assert.Equal(t, "USB Receiver", d.Name())
		assert.Equal(t, uint16(0x046d), d.VendorID())
		assert.Equal(t, uint16(0xc52b), d.ProductID())
		assert.Empty(t, d.Modalias())
		require.NotNil(t, d.Parent())
		assert.Equal(t, fs.abs(pathXHCI), d.Parent().Path())
	})

	t.Run("usb interface", func(t *testing.T) {
		d := byPath[fs.abs(pathRecvAu)]
		require.NotNil(t, d)
		assert.Equal(t, device.TypeUSB|device.TypeAudio, d.Types())
		assert.True(t, d.HasAttribute(device.AttrInterface|device.AttrRemovable))
		assert.Equal(t, "usb:v046DpC52Bd1201dc00dsc00dp00ic01isc01ip00in01", d.Modalias())
		assert.Equal(t, fs.abs(pathRecv), d.Parent().Path())
	})

	t.Run("hid", func(t *testing.T) {
		d := byPath[fs.abs(pathHIDDev)]
		require.NotNil(t, d)
		assert.Equal(t, device.TypeHID, d.Types())
		assert.Equal(t, "Logitech USB Receiver", d.Name())
		assert.Equal(t, uint16(0x046d), d.VendorID())
		assert.Equal(t, "hid-generic", d.Driver())
		assert.Equal(t, fs.abs(pathRecvIf), d.Parent().Path())
	})

	t.Run("bluetooth host", func(t *testing.T) {
		d := byPath[fs.abs(pathHCI)]
		require.NotNil(t, d)
		assert.Equal(t, device.TypeBluetooth, d.Types())
		assert.True(t, d.HasAttribute(device.AttrHost))
		assert.Equal(t, uint16(0x0a5c), d.VendorID())
		assert.Equal(t, "Broadcom", d.Vendor())
		assert.Equal(t, fs.abs(pathBTIf), d.Parent().Path())
	})

	t.Run("dmi platform", func(t *testing.T) {
		d := byPath[fs.abs(pathDMI)]
		require.NotNil(t, d)
		assert.Equal(t, device.TypePlatform, d.Types())
		assert.Equal(t, "LENOVO", d.Vendor())
		assert.Equal(t, "20XW", d.Name())
		assert.Equal(t, "dmi:bvnLENOVO:bvrN2HET77W:svnLENOVO:pn20XW:", d.Modalias())
	})
}

func TestCollectEmptyRoot(t *testing.T) {
	devs, err := New(WithRoot(t.TempDir())).Collect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, devs)
}

func TestCollectCanceled(t *testing.T) {
	fs := newFakeSysfs(t)
	fs.laptop(false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(WithRoot(fs.root)).Collect(ctx)
	assert.Error(t, err)
}

func TestCollectMalformedModalias(t *testing.T) {
	fs := newFakeSysfs(t)
	fs.dev(pathIGPU, "pci", map[string]string{
		"uevent": uevent("PCI_CLASS=30000", "PCI_ID=8086:3E92", "MODALIAS=no-colon-here"),
	})
	fs.link("bus/pci/devices/0000:00:02.0", pathIGPU)

	devs, err := New(WithRoot(fs.root)).Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, devs, 1)
	assert.Empty(t, devs[0].Modalias())
}

func TestSwitcherooMarksPowerMux(t *testing.T) {
	fs := newFakeSysfs(t)
	fs.dev(pathIGPU, "pci", map[string]string{
		"uevent": uevent("PCI_CLASS=30000", "PCI_ID=8086:3E92"),
	})
	fs.link("bus/pci/devices/0000:00:02.0", pathIGPU)
	fs.dev("kernel/debug/vgaswitcheroo", "", map[string]string{"switch": "0:IGD:+:Pwr:0000:00:02.0"})

	devs, err := New(WithRoot(fs.root)).Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, devs, 1)
	assert.True(t, devs[0].HasAttribute(device.AttrPowerMux))
}

func TestPCIClassFallsBackToClassFile(t *testing.T) {
	fs := newFakeSysfs(t)
	fs.dev(pathHDA, "pci", map[string]string{
		"class":  "0x040300",
		"vendor": "0x8086",
		"device": "0xa348",
	})
	fs.link("bus/pci/devices/0000:00:1f.3", pathHDA)

	devs, err := New(WithRoot(fs.root)).Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, devs, 1)
	assert.Equal(t, device.TypeAudio|device.TypePCI, devs[0].Types())
	assert.Equal(t, uint16(0xa348), devs[0].ProductID())
}

func TestDeviceAt(t *testing.T) {
	fs := newFakeSysfs(t)
	fs.laptop(true)
	s := New(WithRoot(fs.root))

	controller, err := s.DeviceAt(fs.abs(pathXHCI), nil)
	require.NoError(t, err)
	require.Len(t, controller, 1)

	known := map[string]*device.Device{controller[0].Path(): controller[0]}
	lookup := func(p string) (*device.Device, bool) {
		d, ok := known[p]
		return d, ok
	}

	t.Run("usb device with interfaces", func(t *testing.T) {
		devs, err := s.DeviceAt(fs.abs(pathBT), lookup)
		require.NoError(t, err)
		require.Len(t, devs, 2)
		assert.Equal(t, fs.abs(pathBT), devs[0].Path())
		assert.Equal(t, fs.abs(pathXHCI), devs[0].Parent().Path())
		assert.Equal(t, device.TypeUSB|device.TypeWireless, devs[1].Types())
		for _, d := range devs {
			known[d.Path()] = d
		}
	})

	t.Run("bluetooth through known parent", func(t *testing.T) {
		devs, err := s.DeviceAt(fs.abs(pathHCI), lookup)
		require.NoError(t, err)
		require.Len(t, devs, 1)
		assert.Equal(t, fs.abs(pathBTIf), devs[0].Parent().Path())
	})

	t.Run("orphan usb interface", func(t *testing.T) {
		devs, err := s.DeviceAt(fs.abs(pathRecvIf), lookup)
		require.NoError(t, err)
		assert.Empty(t, devs)
	})

	t.Run("no subsystem", func(t *testing.T) {
		devs, err := s.DeviceAt(fs.abs(pathDMI), lookup)
		require.NoError(t, err)
		assert.Empty(t, devs)
	})
}

func TestNewResolvesSymlinkedRoot(t *testing.T) {
	fs := newFakeSysfs(t)
	fs.laptop(false)
	link := filepath.Join(t.TempDir(), "sys")
	require.NoError(t, os.Symlink(fs.root, link))

	s := New(WithRoot(link))
	assert.Equal(t, fs.root, s.Root())

	devs, err := s.Collect(context.Background())
	require.NoError(t, err)
	for _, d := range devs {
		if d.Path() == fs.abs(pathRecv) {
			require.NotNil(t, d.Parent())
			return
		}
	}
	t.Fatal("usb receiver not found")
}

func TestParseHelpers(t *testing.T) {
	v, p := parseIDPair("10DE:1F91", ":")
	assert.Equal(t, uint16(0x10de), v)
	assert.Equal(t, uint16(0x1f91), p)

	v, p = parseIDPair("garbage", ":")
	assert.Zero(t, v)
	assert.Zero(t, p)

	assert.Equal(t, 224, firstField("224/1/1"))
	assert.Equal(t, -1, firstField(""))
	assert.Equal(t, "046D", trimTo4("0000046D"))
	assert.True(t, onRootBus("0000:00:02.0"))
	assert.False(t, onRootBus("0000:01:00.0"))
}
