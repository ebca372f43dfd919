package sysfs

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/NVIDIA/hwmatch/pkg/device"
)

func (s *Scanner) scanHID(ctx context.Context, lookup Lookup) ([]*device.Device, error) {
	return s.scanEach(ctx, "bus/hid/devices", lookup, s.hidDevice)
}

func (s *Scanner) scanBluetooth(ctx context.Context, lookup Lookup) ([]*device.Device, error) {
	return s.scanEach(ctx, "class/bluetooth", lookup, s.bluetoothDevice)
}

func (s *Scanner) scanEach(ctx context.Context, rel string, lookup Lookup,
	build func(string, Lookup) (*device.Device, error)) ([]*device.Device, error) {
	dirs, err := s.listDir(rel)
	if err != nil {
		return nil, err
	}
	var devs []*device.Device
	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d, err := build(dir, lookup)
		if err != nil {
			return nil, err
		}
		if d != nil {
			devs = append(devs, d)
		}
	}
	return devs, nil
}

// hidDevice reads a HID node such as 0003:046D:C52B.0001. HID_ID carries
// bus, vendor and product as 0003:0000046D:0000C52B.
func (s *Scanner) hidDevice(dir string, lookup Lookup) (*device.Device, error) {
	ue := s.readUEvent(dir)

	var vendorID, productID uint16
	if parts := strings.Split(ue["HID_ID"], ":"); len(parts) == 3 {
		vendorID, productID = parseHex16(trimTo4(parts[1])), parseHex16(trimTo4(parts[2]))
	}

	return device.New(dir, device.TypeHID,
		device.WithAttributes(device.AttrInterface),
		device.WithIDs(vendorID, productID),
		device.WithVendor(vendorName(vendorID)),
		device.WithName(ue["HID_NAME"]),
		withModalias(dir, ue["MODALIAS"]),
		device.WithDriver(driverOf(dir, ue)),
		device.WithParent(parentOf(dir, s.root, lookup)),
	)
}

// bluetoothDevice reads an hciN node. Controllers report DEVTYPE=host.
func (s *Scanner) bluetoothDevice(dir string, lookup Lookup) (*device.Device, error) {
	ue := s.readUEvent(dir)

	attrs := device.AttrInterface
	if ue["DEVTYPE"] == "host" {
		attrs |= device.AttrHost
	}

	parent := parentOf(dir, s.root, lookup)
	var vendorID, productID uint16
	vendor := ""
	if parent != nil {
		vendorID, productID, vendor = parent.VendorID(), parent.ProductID(), parent.Vendor()
	}

	return device.New(dir, device.TypeBluetooth,
		device.WithAttributes(attrs),
		device.WithIDs(vendorID, productID),
		device.WithVendor(vendor),
		device.WithName(filepath.Base(dir)),
		device.WithParent(parent),
	)
}

// scanDMI reports the machine itself as a platform device. Its dmi:
// modalias lets catalogs target specific laptop models.
func (s *Scanner) scanDMI(ctx context.Context, _ Lookup) ([]*device.Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir := s.canonical(filepath.Join(s.root, "class/dmi/id"))
	modalias := readAttr(dir, "modalias")
	if modalias == "" {
		return nil, nil
	}

	d, err := device.New(dir, device.TypePlatform,
		device.WithVendor(readAttr(dir, "sys_vendor")),
		device.WithName(readAttr(dir, "product_name")),
		withModalias(dir, modalias),
	)
	if err != nil {
		return nil, err
	}
	return []*device.Device{d}, nil
}

// trimTo4 keeps the low 16 bits of a zero padded 8 digit hex field.
func trimTo4(s string) string {
	if len(s) > 4 {
		return s[len(s)-4:]
	}
	return s
}
