package sysfs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/hwmatch/pkg/collector/file"
	"github.com/NVIDIA/hwmatch/pkg/defaults"
	"github.com/NVIDIA/hwmatch/pkg/device"
)

// Lookup resolves an already known device by path.
type Lookup func(path string) (*device.Device, bool)

// Scanner reads devices from sysfs.
type Scanner struct {
	root   string
	uevent *file.Parser
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithRoot sets the sysfs mount point.
func WithRoot(root string) Option {
	return func(s *Scanner) {
		if root != "" {
			s.root = filepath.Clean(root)
		}
	}
}

// New returns a Scanner rooted at /sys unless overridden.
func New(opts ...Option) *Scanner {
	s := &Scanner{
		root: "/sys",
		uevent: file.NewParser(
			file.WithMaxSize(defaults.CollectorMaxFileSize),
			file.WithSkipComments(false),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	if resolved, err := filepath.EvalSymlinks(s.root); err == nil {
		s.root = resolved
	}
	return s
}

// Root returns the sysfs mount point.
func (s *Scanner) Root() string { return s.root }

type builder func(ctx context.Context, lookup Lookup) ([]*device.Device, error)

// Collect enumerates all supported devices. PCI and DMI are scanned first,
// then USB (parented to PCI controllers), then HID and Bluetooth (parented
// to USB interfaces). Subsystems within a stage are scanned concurrently.
// Ordering is deterministic: stage order, then subsystem order, then
// sysfs name order.
func (s *Scanner) Collect(ctx context.Context) ([]*device.Device, error) {
	ctx, cancel := context.WithTimeout(ctx, defaults.CollectorTimeout)
	defer cancel()

	known := make(map[string]*device.Device)
	lookup := func(path string) (*device.Device, bool) {
		d, ok := known[path]
		return d, ok
	}

	stages := [][]builder{
		{s.scanPCI, s.scanDMI},
		{s.scanUSB},
		{s.scanHID, s.scanBluetooth},
	}

	var all []*device.Device
	for _, stage := range stages {
		results := make([][]*device.Device, len(stage))
		g, gctx := errgroup.WithContext(ctx)
		for i, build := range stage {
			g.Go(func() error {
				devs, err := build(gctx, lookup)
				if err != nil {
					return err
				}
				results[i] = devs
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		for _, devs := range results {
			for _, d := range devs {
				if _, dup := known[d.Path()]; dup {
					continue
				}
				known[d.Path()] = d
				all = append(all, d)
			}
		}
	}

	slog.Debug("sysfs scan complete", "root", s.root, "devices", len(all))
	return all, nil
}

// DeviceAt builds the devices rooted at a sysfs directory, typically the
// target of an add uevent. A USB device yields itself plus its interfaces;
// a lone interface is only built once its USB device is known.
// Unsupported subsystems yield nothing.
func (s *Scanner) DeviceAt(dir string, lookup Lookup) ([]*device.Device, error) {
	dir = s.canonical(dir)
	switch subsystemOf(dir) {
	case "pci":
		d, err := s.pciDevice(dir, lookup)
		return single(d, err)
	case "usb":
		ue := s.readUEvent(dir)
		if ue["DEVTYPE"] == "usb_interface" {
			if lookup == nil {
				return nil, nil
			}
			parent, ok := lookup(filepath.Dir(dir))
			if !ok {
				return nil, nil
			}
			d, err := s.usbInterface(dir, parent)
			return single(d, err)
		}
		return s.usbDevice(dir, lookup)
	case "hid":
		d, err := s.hidDevice(dir, lookup)
		return single(d, err)
	case "bluetooth":
		d, err := s.bluetoothDevice(dir, lookup)
		return single(d, err)
	default:
		return nil, nil
	}
}

func single(d *device.Device, err error) ([]*device.Device, error) {
	if err != nil || d == nil {
		return nil, err
	}
	return []*device.Device{d}, nil
}

// listDir returns the canonical paths of the entries in a sysfs directory,
// sorted by entry name. A missing directory yields nothing.
func (s *Scanner) listDir(rel string) ([]string, error) {
	dir := filepath.Join(s.root, rel)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		paths = append(paths, s.canonical(filepath.Join(dir, e.Name())))
	}
	return paths, nil
}

func (s *Scanner) canonical(p string) string {
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		return resolved
	}
	return filepath.Clean(p)
}

// readUEvent parses the uevent attribute of dir. Unreadable files yield an
// empty map.
func (s *Scanner) readUEvent(dir string) map[string]string {
	m, err := s.uevent.GetMap(filepath.Join(dir, "uevent"))
	if err != nil {
		slog.Debug("uevent not readable", "dir", dir, "error", err)
		return map[string]string{}
	}
	return m
}

func readAttr(dir, name string) string {
	v, err := file.ReadString(filepath.Join(dir, name))
	if err != nil {
		slog.Debug("sysfs attribute not readable", "dir", dir, "attr", name, "error", err)
		return ""
	}
	return v
}

// subsystemOf returns the basename of the subsystem link of dir.
func subsystemOf(dir string) string {
	target, err := os.Readlink(filepath.Join(dir, "subsystem"))
	if err != nil {
		return ""
	}
	return filepath.Base(target)
}

// driverOf returns the bound driver of dir, preferring the uevent value.
func driverOf(dir string, ue map[string]string) string {
	if d := ue["DRIVER"]; d != "" {
		return d
	}
	target, err := os.Readlink(filepath.Join(dir, "driver"))
	if err != nil {
		return ""
	}
	return filepath.Base(target)
}

// withModalias drops a modalias the device grammar rejects so one odd
// attribute does not hide the device.
func withModalias(dir, modalias string) device.Option {
	modalias = strings.TrimSpace(modalias)
	if modalias != "" {
		if _, _, ok := device.SplitModalias(modalias); !ok {
			slog.Warn("ignoring malformed modalias", "path", dir, "modalias", modalias)
			modalias = ""
		}
	}
	return device.WithModalias(modalias)
}

// parentOf walks up from dir to the nearest known ancestor below root.
func parentOf(dir, root string, lookup Lookup) *device.Device {
	if lookup == nil {
		return nil
	}
	for p := filepath.Dir(dir); p != root && len(p) > len(root) && strings.HasPrefix(p, root); p = filepath.Dir(p) {
		if d, ok := lookup(p); ok {
			return d
		}
	}
	return nil
}
