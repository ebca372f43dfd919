//go:build linux

package sysfs

import (
	"fmt"
	"io"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/NVIDIA/hwmatch/pkg/defaults"
	"github.com/NVIDIA/hwmatch/pkg/errors"
)

// kernelGroup is the multicast group of kernel originated uevents.
const kernelGroup = 1

// pollInterval bounds how long Receive blocks before rechecking Close.
const pollInterval = 250

type netlinkSource struct {
	fd     int
	buf    []byte
	closed atomic.Bool
}

// OpenNetlink subscribes to kernel uevents.
func OpenNetlink() (Source, error) {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_RAW|unix.SOCK_CLOEXEC, unix.NETLINK_KOBJECT_UEVENT)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, "failed to open uevent socket", err)
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUF, defaults.MonitorReceiveBuffer); err != nil {
		_ = unix.Close(fd)
		return nil, errors.Wrap(errors.ErrCodeUnavailable, "failed to size uevent socket buffer", err)
	}

	if err := unix.Bind(fd, &unix.SockaddrNetlink{Family: unix.AF_NETLINK, Groups: kernelGroup}); err != nil {
		_ = unix.Close(fd)
		return nil, errors.Wrap(errors.ErrCodeUnavailable, "failed to bind uevent socket", err)
	}

	return &netlinkSource{fd: fd, buf: make([]byte, defaults.MonitorMessageSize)}, nil
}

func (s *netlinkSource) Receive() ([]byte, error) {
	for {
		if s.closed.Load() {
			return nil, io.EOF
		}

		fds := []unix.PollFd{{Fd: int32(s.fd), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, pollInterval)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return nil, fmt.Errorf("poll uevent socket: %w", err)
		}
		if n == 0 || s.closed.Load() {
			continue
		}

		size, _, err := unix.Recvfrom(s.fd, s.buf, 0)
		if err != nil {
			if err == unix.EINTR || err == unix.EAGAIN {
				continue
			}
			if err == unix.ENOBUFS {
				// kernel dropped events; keep reading
				continue
			}
			return nil, fmt.Errorf("read uevent socket: %w", err)
		}

		msg := make([]byte, size)
		copy(msg, s.buf[:size])
		return msg, nil
	}
}

func (s *netlinkSource) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return unix.Close(s.fd)
}
