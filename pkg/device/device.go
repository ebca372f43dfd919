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

package device

import (
	"fmt"
	"strings"

	"github.com/NVIDIA/hwmatch/pkg/errors"
)

// Device is a detected hardware unit. Values are immutable once built;
// all state is read through accessors.
type Device struct {
	path      string
	types     Type
	attrs     Attribute
	vendor    string
	name      string
	modalias  string
	driver    string
	vendorID  uint16
	productID uint16
	parent    *Device
}

// Option configures a Device during construction.
type Option func(*Device)

// WithVendor sets the human readable vendor name.
func WithVendor(vendor string) Option {
	return func(d *Device) {
		d.vendor = vendor
	}
}

// WithName sets the human readable product name.
func WithName(name string) Option {
	return func(d *Device) {
		d.name = name
	}
}

// WithAttributes ORs attrs into the attribute-set.
func WithAttributes(attrs Attribute) Option {
	return func(d *Device) {
		d.attrs |= attrs
	}
}

// WithModalias sets the raw bus modalias string.
func WithModalias(modalias string) Option {
	return func(d *Device) {
		d.modalias = strings.TrimSpace(modalias)
	}
}

// WithDriver records the kernel driver currently bound to the device.
func WithDriver(driver string) Option {
	return func(d *Device) {
		d.driver = driver
	}
}

// WithIDs sets the numeric PCI or USB vendor and product IDs.
func WithIDs(vendorID, productID uint16) Option {
	return func(d *Device) {
		d.vendorID = vendorID
		d.productID = productID
	}
}

// WithParent links the device to its parent. The parent is referenced,
// not owned.
func WithParent(parent *Device) Option {
	return func(d *Device) {
		d.parent = parent
	}
}

// New builds a Device. The path must be non-empty, types must name at
// least one class, and a modalias, when given, must have the
// "<bus>:<body>" shape.
func New(path string, types Type, opts ...Option) (*Device, error) {
	d := &Device{
		path:  strings.TrimSpace(path),
		types: types,
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.path == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "device path cannot be empty")
	}
	if d.types&typeAll == 0 {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"device type-set cannot be empty", map[string]any{"path": d.path})
	}
	if d.modalias != "" {
		if _, _, ok := SplitModalias(d.modalias); !ok {
			return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("malformed modalias %q", d.modalias), map[string]any{"path": d.path})
		}
	}
	if d.parent == d {
		d.parent = nil
	}
	return d, nil
}

// MustNew is like New but panics on error. Intended for tests and static
// fixtures.
func MustNew(path string, types Type, opts ...Option) *Device {
	d, err := New(path, types, opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// Path returns the unique identity of the device, usually its sysfs path.
func (d *Device) Path() string { return d.path }

// Types returns the full type-set.
func (d *Device) Types() Type { return d.types }

// HasType reports whether the type-set intersects mask.
func (d *Device) HasType(mask Type) bool { return d.types.Has(mask) }

// Attributes returns the attribute-set.
func (d *Device) Attributes() Attribute { return d.attrs }

// HasAttribute reports whether all bits of mask are set.
func (d *Device) HasAttribute(mask Attribute) bool { return d.attrs.Has(mask) }

// Vendor returns the vendor name, possibly empty.
func (d *Device) Vendor() string { return d.vendor }

// Name returns the product name, possibly empty.
func (d *Device) Name() string { return d.name }

// Modalias returns the raw modalias, or "" when the bus supplied none.
func (d *Device) Modalias() string { return d.modalias }

// Driver returns the bound kernel driver, or "".
func (d *Device) Driver() string { return d.driver }

// VendorID returns the numeric vendor ID, 0 when unknown.
func (d *Device) VendorID() uint16 { return d.vendorID }

// ProductID returns the numeric product ID, 0 when unknown.
func (d *Device) ProductID() uint16 { return d.productID }

// Parent returns the parent device or nil.
func (d *Device) Parent() *Device { return d.parent }

func (d *Device) String() string {
	if d == nil {
		return "<nil>"
	}
	label := d.name
	if label == "" {
		label = d.path
	}
	return fmt.Sprintf("%s [%s]", label, d.types)
}

// SplitModalias splits a modalias into its bus prefix and body. It reports
// false unless the bus is alphanumeric (or '_') and the body is non-empty
// printable ASCII without whitespace.
func SplitModalias(s string) (bus, body string, ok bool) {
	bus, body, found := strings.Cut(s, ":")
	if !found || bus == "" || body == "" {
		return "", "", false
	}
	for _, r := range bus {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_') {
			return "", "", false
		}
	}
	for _, r := range body {
		if r <= ' ' || r > '~' {
			return "", "", false
		}
	}
	return bus, body, true
}
