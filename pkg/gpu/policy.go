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

package gpu

import (
	"slices"

	"github.com/NVIDIA/hwmatch/pkg/device"
)

// Policy supplies the hardware heuristics the classifier relies on.
type Policy interface {
	// IsIntegrated reports whether dev is the integrated half of a hybrid pair.
	IsIntegrated(dev *device.Device) bool
	// IsDiscrete reports whether dev is the discrete half of a hybrid pair.
	IsDiscrete(dev *device.Device) bool
	// HasPairingMarker reports whether the pair is muxed or render-offload
	// linked, which makes a hybrid pair Optimus.
	HasPairingMarker(integrated, discrete *device.Device) bool
	// CompositeTag returns an extra tag (TypeSLI, TypeCrossfire) for a
	// composite pair, or TypeSimple for none.
	CompositeTag(primary, secondary *device.Device) Type
}

// AttributePolicy trusts the attributes set by the enumeration backend:
// AttrDiscrete marks discrete adapters and AttrPowerMux is the pairing
// marker.
type AttributePolicy struct{}

// IsIntegrated implements Policy.
func (AttributePolicy) IsIntegrated(dev *device.Device) bool {
	return !dev.HasAttribute(device.AttrDiscrete)
}

// IsDiscrete implements Policy.
func (AttributePolicy) IsDiscrete(dev *device.Device) bool {
	return dev.HasAttribute(device.AttrDiscrete)
}

// HasPairingMarker implements Policy.
func (AttributePolicy) HasPairingMarker(integrated, discrete *device.Device) bool {
	return integrated.HasAttribute(device.AttrPowerMux) || discrete.HasAttribute(device.AttrPowerMux)
}

// CompositeTag implements Policy.
func (AttributePolicy) CompositeTag(_, _ *device.Device) Type {
	return TypeSimple
}

// VendorPolicy classifies by PCI vendor ID and boot VGA state. The IDs
// come from configuration.
//
// The boot VGA adapter from IntegratedVendors pairs with a non boot VGA
// adapter from DiscreteVendors. The pair is Optimus when the discrete
// vendor is in MuxVendors or either adapter carries AttrPowerMux. Same
// vendor composites are tagged through CompositeTags.
type VendorPolicy struct {
	IntegratedVendors []uint16
	DiscreteVendors   []uint16
	MuxVendors        []uint16
	CompositeTags     map[uint16]Type
}

// IsIntegrated implements Policy.
func (p VendorPolicy) IsIntegrated(dev *device.Device) bool {
	return dev.HasAttribute(device.AttrBootVGA) && slices.Contains(p.IntegratedVendors, dev.VendorID())
}

// IsDiscrete implements Policy.
func (p VendorPolicy) IsDiscrete(dev *device.Device) bool {
	return !dev.HasAttribute(device.AttrBootVGA) && slices.Contains(p.DiscreteVendors, dev.VendorID())
}

// HasPairingMarker implements Policy.
func (p VendorPolicy) HasPairingMarker(integrated, discrete *device.Device) bool {
	if integrated.HasAttribute(device.AttrPowerMux) || discrete.HasAttribute(device.AttrPowerMux) {
		return true
	}
	return slices.Contains(p.MuxVendors, discrete.VendorID())
}

// CompositeTag implements Policy.
func (p VendorPolicy) CompositeTag(primary, secondary *device.Device) Type {
	if primary.VendorID() != secondary.VendorID() {
		return TypeSimple
	}
	return p.CompositeTags[primary.VendorID()]
}
