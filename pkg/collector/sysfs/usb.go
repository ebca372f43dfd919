package sysfs

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/NVIDIA/hwmatch/pkg/device"
)

// USB class codes, as reported in decimal by the TYPE and INTERFACE uevent
// keys.
const (
	usbClassAudio    = 0x01
	usbClassHID      = 0x03
	usbClassImage    = 0x06
	usbClassPrinter  = 0x07
	usbClassStorage  = 0x08
	usbClassVideo    = 0x0e
	usbClassWireless = 0xe0
)

func usbClassType(class int) device.Type {
	switch class {
	case usbClassAudio:
		return device.TypeAudio
	case usbClassHID:
		return device.TypeHID
	case usbClassImage:
		return device.TypeImage
	case usbClassPrinter:
		return device.TypePrinter
	case usbClassStorage:
		return device.TypeStorage
	case usbClassVideo:
		return device.TypeVideo
	case usbClassWireless:
		return device.TypeWireless
	}
	return device.TypeAny
}

// scanUSB reports USB devices, each followed by its interfaces.
func (s *Scanner) scanUSB(ctx context.Context, lookup Lookup) ([]*device.Device, error) {
	dirs, err := s.listDir("bus/usb/devices")
	if err != nil {
		return nil, err
	}

	var devs []*device.Device
	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s.readUEvent(dir)["DEVTYPE"] != "usb_device" {
			continue
		}
		found, err := s.usbDevice(dir, lookup)
		if err != nil {
			return nil, err
		}
		devs = append(devs, found...)
	}
	return devs, nil
}

// usbDevice builds the device at dir and its interfaces. The device type
// is its own class plus every interface class.
func (s *Scanner) usbDevice(dir string, lookup Lookup) ([]*device.Device, error) {
	ue := s.readUEvent(dir)

	types := device.TypeUSB | usbClassType(firstField(ue["TYPE"]))
	ifaces := s.usbInterfaceDirs(dir)
	for _, iface := range ifaces {
		types |= usbClassType(firstField(s.readUEvent(iface)["INTERFACE"]))
	}

	var attrs device.Attribute
	if readAttr(dir, "removable") == "removable" {
		attrs |= device.AttrRemovable
	}

	vendorID, productID := parseIDPair(ue["PRODUCT"], "/")
	vendor := readAttr(dir, "manufacturer")
	if vendor == "" {
		vendor = vendorName(vendorID)
	}

	dev, err := device.New(dir, types,
		device.WithAttributes(attrs),
		device.WithIDs(vendorID, productID),
		device.WithVendor(vendor),
		device.WithName(readAttr(dir, "product")),
		device.WithDriver(driverOf(dir, ue)),
		device.WithParent(parentOf(dir, s.root, lookup)),
	)
	if err != nil {
		return nil, err
	}

	out := []*device.Device{dev}
	for _, iface := range ifaces {
		d, err := s.usbInterface(iface, dev)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *Scanner) usbInterface(dir string, parent *device.Device) (*device.Device, error) {
	ue := s.readUEvent(dir)
	types := device.TypeUSB | usbClassType(firstField(ue["INTERFACE"]))

	return device.New(dir, types,
		device.WithAttributes(device.AttrInterface|parent.Attributes()&device.AttrRemovable),
		device.WithIDs(parent.VendorID(), parent.ProductID()),
		device.WithVendor(parent.Vendor()),
		device.WithName(readAttr(dir, "interface")),
		withModalias(dir, ue["MODALIAS"]),
		device.WithDriver(driverOf(dir, ue)),
		device.WithParent(parent),
	)
}

// usbInterfaceDirs lists interface directories of a USB device, named
// "<device>:<config>.<interface>".
func (s *Scanner) usbInterfaceDirs(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	prefix := filepath.Base(dir) + ":"
	var out []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), prefix) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out
}

// firstField parses the first decimal field of "class/subclass/protocol".
func firstField(s string) int {
	head, _, _ := strings.Cut(s, "/")
	v, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil {
		return -1
	}
	return v
}
