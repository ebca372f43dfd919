//go:build !linux

package sysfs

import (
	"github.com/NVIDIA/hwmatch/pkg/errors"
)

// OpenNetlink is only available on Linux.
func OpenNetlink() (Source, error) {
	return nil, errors.New(errors.ErrCodeUnavailable, "kernel uevents are only available on linux")
}
