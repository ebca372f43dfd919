package sysfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/NVIDIA/hwmatch/pkg/defaults"
	"github.com/NVIDIA/hwmatch/pkg/device"
)

// Source delivers raw uevent messages. Close must unblock a pending Receive,
// which then returns io.EOF.
type Source interface {
	Receive() ([]byte, error)
	Close() error
}

// Sink receives hotplugged devices. *manager.Manager satisfies it.
type Sink interface {
	AddDevice(dev *device.Device) bool
	Device(path string) (*device.Device, bool)
}

var monitoredSubsystems = map[string]bool{
	"pci":       true,
	"usb":       true,
	"hid":       true,
	"bluetooth": true,
}

// Monitor turns kernel add uevents into Sink.AddDevice calls.
type Monitor struct {
	scanner *Scanner
	source  Source
	settle  time.Duration
}

// MonitorOption configures a Monitor.
type MonitorOption func(*Monitor)

// WithSource replaces the netlink socket, mainly for tests.
func WithSource(src Source) MonitorOption {
	return func(m *Monitor) {
		m.source = src
	}
}

// WithSettleDelay sets how long to wait after an add event before reading
// the device from sysfs.
func WithSettleDelay(d time.Duration) MonitorOption {
	return func(m *Monitor) {
		m.settle = d
	}
}

// NewMonitor returns a Monitor that resolves events through scanner.
func NewMonitor(scanner *Scanner, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		scanner: scanner,
		settle:  defaults.MonitorSettleDelay,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run reads events until ctx is done or the source is exhausted. It opens
// the kernel netlink socket unless a source was injected.
func (m *Monitor) Run(ctx context.Context, sink Sink) error {
	src := m.source
	if src == nil {
		var err error
		if src, err = OpenNetlink(); err != nil {
			return err
		}
	}

	var once sync.Once
	closeSource := func() {
		once.Do(func() {
			if err := src.Close(); err != nil {
				slog.Debug("uevent source close failed", "error", err)
			}
		})
	}
	stop := context.AfterFunc(ctx, closeSource)
	defer func() {
		stop()
		closeSource()
	}()

	slog.Info("uevent monitor started", "root", m.scanner.Root())
	for {
		msg, err := src.Receive()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				slog.Info("uevent monitor stopped")
				return nil
			}
			return fmt.Errorf("failed to receive uevent: %w", err)
		}
		m.handle(ctx, msg, sink)
	}
}

func (m *Monitor) handle(ctx context.Context, msg []byte, sink Sink) {
	ev, err := ParseUEvent(msg)
	if err != nil {
		ueventErrors.Inc()
		slog.Debug("dropping uevent", "error", err)
		return
	}
	ueventsReceived.WithLabelValues(ev.Action, ev.Subsystem).Inc()

	if ev.Action != ActionAdd || !monitoredSubsystems[ev.Subsystem] {
		return
	}

	if m.settle > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(m.settle):
		}
	}

	dir := filepath.Join(m.scanner.Root(), ev.DevPath)
	devs, err := m.scanner.DeviceAt(dir, sink.Device)
	if err != nil {
		ueventErrors.Inc()
		slog.Warn("failed to read hotplugged device", "devpath", ev.DevPath, "error", err)
		return
	}

	for _, d := range devs {
		if sink.AddDevice(d) {
			hotplugDevices.Inc()
			slog.Debug("uevent applied", "path", d.Path(), "seqnum", ev.Seqnum)
		}
	}
}
