package sysfs

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/NVIDIA/hwmatch/pkg/device"
)

// PCI base classes and subclasses used for type assignment.
const (
	pciClassStorage    = 0x01
	pciClassNetwork    = 0x02
	pciClassDisplay    = 0x03
	pciClassMultimedia = 0x04
	pciClassInput      = 0x09
	pciClassSerial     = 0x0c
	pciClassWireless   = 0x0d

	pciSubNetworkOther   = 0x80
	pciSubDisplay3D      = 0x02
	pciSubMultimediaVid  = 0x00
	pciSubWirelessBT     = 0x11
	pciSubWirelessBTLE   = 0x12
	pciSubMultimediaHDA  = 0x03
	pciSubMultimediaAud  = 0x01
	pciSubMultimediaTele = 0x80
	pciSubSerialUSB      = 0x03
)

func (s *Scanner) scanPCI(ctx context.Context, lookup Lookup) ([]*device.Device, error) {
	dirs, err := s.listDir("bus/pci/devices")
	if err != nil {
		return nil, err
	}

	var devs []*device.Device
	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d, err := s.pciDevice(dir, lookup)
		if err != nil {
			return nil, err
		}
		if d != nil {
			devs = append(devs, d)
		}
	}
	return devs, nil
}

func (s *Scanner) pciDevice(dir string, lookup Lookup) (*device.Device, error) {
	ue := s.readUEvent(dir)

	class, ok := parsePCIClass(ue["PCI_CLASS"])
	if !ok {
		class, ok = parsePCIClass(readAttr(dir, "class"))
	}
	if !ok {
		return nil, nil
	}
	base, sub := (class>>16)&0xff, (class>>8)&0xff

	types := device.TypePCI | pciClassType(base, sub)

	var attrs device.Attribute
	if readAttr(dir, "boot_vga") == "1" {
		attrs |= device.AttrBootVGA
	}
	// USB host controllers stay TypePCI only; the USB type belongs to the
	// devices on their bus.
	if base == pciClassSerial && sub == pciSubSerialUSB {
		attrs |= device.AttrHost
	}
	if base == pciClassDisplay {
		if !onRootBus(filepath.Base(dir)) {
			attrs |= device.AttrDiscrete
		}
		if sub == pciSubDisplay3D || s.hasSwitcheroo() {
			attrs |= device.AttrPowerMux
		}
	}

	vendorID, productID := parseIDPair(ue["PCI_ID"], ":")
	if vendorID == 0 {
		vendorID = parseHex16(readAttr(dir, "vendor"))
		productID = parseHex16(readAttr(dir, "device"))
	}

	modalias := ue["MODALIAS"]
	if modalias == "" {
		modalias = readAttr(dir, "modalias")
	}

	return device.New(dir, types,
		device.WithAttributes(attrs),
		device.WithIDs(vendorID, productID),
		device.WithVendor(vendorName(vendorID)),
		device.WithName(readAttr(dir, "label")),
		withModalias(dir, modalias),
		device.WithDriver(driverOf(dir, ue)),
		device.WithParent(parentOf(dir, s.root, lookup)),
	)
}

func pciClassType(base, sub uint64) device.Type {
	switch base {
	case pciClassDisplay:
		return device.TypeGPU
	case pciClassMultimedia:
		switch sub {
		case pciSubMultimediaVid:
			return device.TypeVideo
		case pciSubMultimediaAud, pciSubMultimediaHDA, pciSubMultimediaTele:
			return device.TypeAudio
		}
		return device.TypeAudio | device.TypeVideo
	case pciClassNetwork:
		if sub == pciSubNetworkOther {
			return device.TypeWireless
		}
	case pciClassWireless:
		if sub == pciSubWirelessBT || sub == pciSubWirelessBTLE {
			return device.TypeBluetooth
		}
		return device.TypeWireless
	case pciClassStorage:
		return device.TypeStorage
	case pciClassInput:
		return device.TypeHID
	}
	return device.TypeAny
}

// parsePCIClass accepts "0x030000" (class attribute) or "30000" (uevent).
func parsePCIClass(s string) (uint64, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, false
	}
	return v, true
}

// onRootBus reports whether a PCI address like 0000:00:02.0 sits on bus 0,
// where integrated graphics live.
func onRootBus(addr string) bool {
	parts := strings.Split(addr, ":")
	if len(parts) != 3 {
		return false
	}
	return parts[1] == "00"
}

func (s *Scanner) hasSwitcheroo() bool {
	_, err := os.Stat(filepath.Join(s.root, "kernel/debug/vgaswitcheroo/switch"))
	return err == nil
}

// parseIDPair splits "10DE:2684" or "46d/c52b/1201" into vendor and product.
func parseIDPair(s, sep string) (uint16, uint16) {
	parts := strings.Split(s, sep)
	if len(parts) < 2 {
		return 0, 0
	}
	return parseHex16(parts[0]), parseHex16(parts[1])
}

func parseHex16(s string) uint16 {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0
	}
	return uint16(v)
}

var vendorNames = map[uint16]string{
	0x1002: "AMD",
	0x10de: "NVIDIA",
	0x10ec: "Realtek",
	0x0bda: "Realtek",
	0x14e4: "Broadcom",
	0x0a5c: "Broadcom",
	0x8086: "Intel",
	0x8087: "Intel",
	0x045e: "Microsoft",
	0x046d: "Logitech",
	0x057e: "Nintendo",
	0x1af4: "Red Hat",
}

// vendorName is for display only.
func vendorName(id uint16) string {
	return vendorNames[id]
}
