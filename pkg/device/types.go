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
	"math/bits"
	"strings"

	"github.com/NVIDIA/hwmatch/pkg/errors"
)

// Type is a bitmask of device classes. A device may belong to several
// classes at once, e.g. a USB headset is Audio|USB.
type Type uint32

const (
	// TypeAny is the query wildcard. It is never a valid device type-set.
	TypeAny Type = 0

	TypeAudio Type = 1 << iota
	TypeBluetooth
	TypeGPU
	TypeHID
	TypeImage
	TypePCI
	TypePlatform
	TypePrinter
	TypeStorage
	TypeVideo
	TypeWireless
	TypeUSB

	typeMax
)

// typeAll covers every defined class bit.
const typeAll = typeMax - TypeAudio

var typeNames = []struct {
	t    Type
	name string
}{
	{TypeAudio, "audio"},
	{TypeBluetooth, "bluetooth"},
	{TypeGPU, "gpu"},
	{TypeHID, "hid"},
	{TypeImage, "image"},
	{TypePCI, "pci"},
	{TypePlatform, "platform"},
	{TypePrinter, "printer"},
	{TypeStorage, "storage"},
	{TypeVideo, "video"},
	{TypeWireless, "wireless"},
	{TypeUSB, "usb"},
}

// Has reports whether t intersects mask. TypeAny matches everything.
func (t Type) Has(mask Type) bool {
	if mask == TypeAny {
		return true
	}
	return t&mask != 0
}

// Names returns the class names set in t, in declaration order.
func (t Type) Names() []string {
	names := make([]string, 0, bits.OnesCount32(uint32(t)))
	for _, tn := range typeNames {
		if t&tn.t != 0 {
			names = append(names, tn.name)
		}
	}
	return names
}

// String renders t as a comma separated list, or "any" for the wildcard.
func (t Type) String() string {
	if t == TypeAny {
		return "any"
	}
	return strings.Join(t.Names(), ",")
}

// ParseType parses a comma separated list of class names. "any" and the
// empty string yield TypeAny.
func ParseType(s string) (Type, error) {
	var t Type
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" || part == "any" {
			continue
		}
		found := false
		for _, tn := range typeNames {
			if tn.name == part {
				t |= tn.t
				found = true
				break
			}
		}
		if !found {
			return TypeAny, errors.NewWithContext(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("unknown device type %q", part),
				map[string]any{"supported": TypeNames()})
		}
	}
	return t, nil
}

// TypeNames returns every known class name.
func TypeNames() []string {
	return typeAll.Names()
}

// Attribute is a bitmask of device properties reported by the enumeration
// backend.
type Attribute uint32

const (
	// AttrBootVGA marks the adapter the firmware used for console output.
	AttrBootVGA Attribute = 1 << iota
	// AttrHost marks a host controller or the host side of a pairing.
	AttrHost
	// AttrInterface marks a USB interface rather than the parent device.
	AttrInterface
	// AttrRemovable marks hot-removable hardware.
	AttrRemovable
	// AttrDiscrete marks a discrete (add-in) GPU.
	AttrDiscrete
	// AttrPowerMux marks a GPU that is part of a muxed or render-offload
	// pairing (Optimus style).
	AttrPowerMux
)

var attrNames = []struct {
	a    Attribute
	name string
}{
	{AttrBootVGA, "boot-vga"},
	{AttrHost, "host"},
	{AttrInterface, "interface"},
	{AttrRemovable, "removable"},
	{AttrDiscrete, "discrete"},
	{AttrPowerMux, "power-mux"},
}

// Has reports whether every bit in mask is set.
func (a Attribute) Has(mask Attribute) bool {
	return a&mask == mask
}

// Names returns the attribute names set in a.
func (a Attribute) Names() []string {
	var names []string
	for _, an := range attrNames {
		if a&an.a != 0 {
			names = append(names, an.name)
		}
	}
	return names
}

func (a Attribute) String() string {
	return strings.Join(a.Names(), ",")
}

// ParseAttribute parses a comma separated list of attribute names.
func ParseAttribute(s string) (Attribute, error) {
	var a Attribute
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		found := false
		for _, an := range attrNames {
			if an.name == part {
				a |= an.a
				found = true
				break
			}
		}
		if !found {
			return 0, errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("unknown device attribute %q", part))
		}
	}
	return a, nil
}
