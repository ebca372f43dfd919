package sysfs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	pathIGPU   = "devices/pci0000:00/0000:00:02.0"
	pathXHCI   = "devices/pci0000:00/0000:00:14.0"
	pathHDA    = "devices/pci0000:00/0000:00:1f.3"
	pathDGPU   = "devices/pci0000:00/0000:00:01.0/0000:01:00.0"
	pathDMI    = "devices/virtual/dmi/id"
	pathRecv   = pathXHCI + "/usb1/1-2"
	pathRecvIf = pathRecv + "/1-2:1.0"
	pathRecvAu = pathRecv + "/1-2:1.1"
	pathHIDDev = pathRecvIf + "/0003:046D:C52B.0001"
	pathBT     = pathXHCI + "/usb1/1-3"
	pathBTIf   = pathBT + "/1-3:1.0"
	pathHCI    = pathBTIf + "/bluetooth/hci0"
)

type fakeSysfs struct {
	t    *testing.T
	root string
}

func newFakeSysfs(t *testing.T) *fakeSysfs {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return &fakeSysfs{t: t, root: root}
}

func (f *fakeSysfs) abs(rel string) string {
	return filepath.Join(f.root, rel)
}

// dev creates a device directory with attribute files. The "uevent" entry
// is given as KEY=VALUE lines.
func (f *fakeSysfs) dev(rel, subsystem string, attrs map[string]string) {
	f.t.Helper()
	dir := f.abs(rel)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		f.t.Fatal(err)
	}
	for name, content := range attrs {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content+"\n"), 0o600); err != nil {
			f.t.Fatal(err)
		}
	}
	if subsystem != "" {
		bus := f.abs(filepath.Join("bus", subsystem))
		if err := os.MkdirAll(bus, 0o755); err != nil {
			f.t.Fatal(err)
		}
		if err := os.Symlink(bus, filepath.Join(dir, "subsystem")); err != nil {
			f.t.Fatal(err)
		}
	}
}

// link adds a bus or class listing entry pointing at a device directory.
func (f *fakeSysfs) link(listing, target string) {
	f.t.Helper()
	dir := f.abs(listing)
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		f.t.Fatal(err)
	}
	if err := os.Symlink(f.abs(target), dir); err != nil {
		f.t.Fatal(err)
	}
}

func uevent(lines ...string) string {
	return strings.Join(lines, "\n")
}

// laptop builds an Optimus laptop with a USB receiver. withBluetooth adds a
// USB Bluetooth adapter.
func (f *fakeSysfs) laptop(withBluetooth bool) {
	f.dev(pathIGPU, "pci", map[string]string{
		"uevent":   uevent("DRIVER=i915", "PCI_CLASS=30000", "PCI_ID=8086:3E92", "MODALIAS=pci:v00008086d00003E92sv000017AAsd00002292bc03sc00i00"),
		"boot_vga": "1",
	})
	f.dev(pathDGPU, "pci", map[string]string{
		"uevent":   uevent("PCI_CLASS=30200", "PCI_ID=10DE:1F91", "MODALIAS=pci:v000010DEd00001F91sv000017AAsd00002292bc03sc02i00"),
		"boot_vga": "0",
	})
	f.dev(pathHDA, "pci", map[string]string{
		"uevent": uevent("DRIVER=snd_hda_intel", "PCI_CLASS=40300", "PCI_ID=8086:A348"),
	})
	f.dev(pathXHCI, "pci", map[string]string{
		"uevent": uevent("DRIVER=xhci_hcd", "PCI_CLASS=C0330", "PCI_ID=8086:A36D"),
	})
	for _, p := range []string{pathIGPU, pathXHCI, pathHDA, pathDGPU} {
		f.link("bus/pci/devices/"+filepath.Base(p), p)
	}

	f.dev(pathDMI, "", map[string]string{
		"modalias":     "dmi:bvnLENOVO:bvrN2HET77W:svnLENOVO:pn20XW:",
		"sys_vendor":   "LENOVO",
		"product_name": "20XW",
	})
	f.link("class/dmi/id", pathDMI)

	f.dev(pathRecv, "usb", map[string]string{
		"uevent":       uevent("DEVTYPE=usb_device", "DRIVER=usb", "PRODUCT=46d/c52b/1201", "TYPE=0/0/0"),
		"manufacturer": "Logitech",
		"product":      "USB Receiver",
		"removable":    "removable",
	})
	f.dev(pathRecvIf, "usb", map[string]string{
		"uevent": uevent("DEVTYPE=usb_interface", "DRIVER=usbhid", "INTERFACE=3/1/1",
			"MODALIAS=usb:v046DpC52Bd1201dc00dsc00dp00ic03isc01ip01in00"),
	})
	f.dev(pathRecvAu, "usb", map[string]string{
		"uevent": uevent("DEVTYPE=usb_interface", "INTERFACE=1/1/0",
			"MODALIAS=usb:v046DpC52Bd1201dc00dsc00dp00ic01isc01ip00in01"),
	})
	for _, p := range []string{pathRecv, pathRecvIf, pathRecvAu} {
		f.link("bus/usb/devices/"+filepath.Base(p), p)
	}

	f.dev(pathHIDDev, "hid", map[string]string{
		"uevent": uevent("DRIVER=hid-generic", "HID_ID=0003:0000046D:0000C52B",
			"HID_NAME=Logitech USB Receiver", "MODALIAS=hid:b0003g0001v0000046Dp0000C52B"),
	})
	f.link("bus/hid/devices/"+filepath.Base(pathHIDDev), pathHIDDev)

	if withBluetooth {
		f.bluetooth()
	}
}

func (f *fakeSysfs) bluetooth() {
	f.dev(pathBT, "usb", map[string]string{
		"uevent":  uevent("DEVTYPE=usb_device", "PRODUCT=a5c/21e8/112", "TYPE=224/1/1"),
		"product": "BCM20702A0",
	})
	f.dev(pathBTIf, "usb", map[string]string{
		"uevent": uevent("DEVTYPE=usb_interface", "DRIVER=btusb", "INTERFACE=224/1/1",
			"MODALIAS=usb:v0A5Cp21E8d0112dcFFdsc01dp01icE0isc01ip01in00"),
	})
	f.dev(pathHCI, "bluetooth", map[string]string{
		"uevent": uevent("DEVTYPE=host"),
	})
	f.link("bus/usb/devices/1-3", pathBT)
	f.link("bus/usb/devices/1-3:1.0", pathBTIf)
	f.link("class/bluetooth/hci0", pathHCI)
}
