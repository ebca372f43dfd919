package sysfs

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/NVIDIA/hwmatch/pkg/collector/file"
	"github.com/NVIDIA/hwmatch/pkg/defaults"
)

// Uevent actions.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
	ActionChange = "change"
	ActionBind   = "bind"
	ActionUnbind = "unbind"
)

// udevMagic prefixes messages rebroadcast by udev on its own multicast
// group. Only kernel messages are parsed.
var udevMagic = []byte("libudev\x00")

// Event is a kernel uevent.
type Event struct {
	Action    string
	DevPath   string
	Subsystem string
	DevType   string
	Seqnum    uint64
	Env       map[string]string
}

var ueventParser = file.NewParser(
	file.WithDelimiter("\x00"),
	file.WithSkipComments(false),
	file.WithMaxSize(defaults.MonitorMessageSize),
)

// ParseUEvent decodes a kernel uevent message:
//
//	add@/devices/pci0000:00/0000:00:14.0/usb1/1-2\x00ACTION=add\x00DEVPATH=...\x00SUBSYSTEM=usb\x00...
func ParseUEvent(msg []byte) (*Event, error) {
	if bytes.HasPrefix(msg, udevMagic) {
		return nil, fmt.Errorf("udev message, not a kernel uevent")
	}

	header, payload, found := bytes.Cut(msg, []byte{0})
	if !found {
		return nil, fmt.Errorf("uevent has no payload")
	}
	action, devpath, ok := bytes.Cut(header, []byte("@"))
	if !ok || len(action) == 0 || len(devpath) == 0 {
		return nil, fmt.Errorf("malformed uevent header %q", header)
	}

	env, err := ueventParser.ParseMap(payload)
	if err != nil {
		return nil, fmt.Errorf("malformed uevent payload: %w", err)
	}

	ev := &Event{
		Action:    string(action),
		DevPath:   string(devpath),
		Subsystem: env["SUBSYSTEM"],
		DevType:   env["DEVTYPE"],
		Env:       env,
	}
	if a := env["ACTION"]; a != "" {
		ev.Action = a
	}
	if p := env["DEVPATH"]; p != "" {
		ev.DevPath = p
	}
	if seq := env["SEQNUM"]; seq != "" {
		if n, err := strconv.ParseUint(seq, 10, 64); err == nil {
			ev.Seqnum = n
		}
	}
	return ev, nil
}
