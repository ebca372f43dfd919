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
	"log/slog"

	"github.com/NVIDIA/hwmatch/pkg/device"
	"github.com/NVIDIA/hwmatch/pkg/plugin"
)

// DeviceSource lists devices by class. *manager.Manager satisfies it.
type DeviceSource interface {
	Devices(filter device.Type) []*device.Device
}

// Resolver resolves providers for a device. *manager.Manager satisfies it.
type Resolver interface {
	Providers(dev *device.Device) []*plugin.Provider
}

// Option configures classification.
type Option func(*Config)

// WithPolicy replaces the default AttributePolicy.
func WithPolicy(p Policy) Option {
	return func(c *Config) {
		if p != nil {
			c.policy = p
		}
	}
}

// Config is a read-only view of the GPUs present on the system and how
// they are wired together.
type Config struct {
	policy    Policy
	gpus      []*device.Device
	typ       Type
	primary   *device.Device
	secondary *device.Device
}

// New classifies the GPU-typed devices among devs. Order is preserved.
func New(devs []*device.Device, opts ...Option) *Config {
	c := &Config{policy: AttributePolicy{}}
	for _, opt := range opts {
		opt(c)
	}
	for _, d := range devs {
		if d != nil && d.HasType(device.TypeGPU) {
			c.gpus = append(c.gpus, d)
		}
	}
	c.analyze()
	return c
}

// FromSource classifies the GPUs known to src.
func FromSource(src DeviceSource, opts ...Option) *Config {
	return New(src.Devices(device.TypeGPU), opts...)
}

// analyze picks the first rule that applies: optimus, hybrid, composite,
// simple.
func (c *Config) analyze() {
	c.typ = TypeSimple
	if len(c.gpus) == 0 {
		slog.Debug("no GPUs discovered")
		return
	}
	c.primary = c.gpus[0]
	if len(c.gpus) == 1 {
		return
	}

	if integrated, discrete := c.hybridPair(); integrated != nil {
		c.primary, c.secondary = integrated, discrete
		c.typ = TypeHybrid
		if c.policy.HasPairingMarker(integrated, discrete) {
			c.typ |= TypeOptimus
		}
		return
	}

	c.primary = c.bootVGA()
	for _, g := range c.gpus {
		if g != c.primary {
			c.secondary = g
			break
		}
	}
	c.typ = TypeComposite | c.policy.CompositeTag(c.primary, c.secondary)
}

func (c *Config) hybridPair() (integrated, discrete *device.Device) {
	for _, g := range c.gpus {
		if integrated == nil && c.policy.IsIntegrated(g) && !c.policy.IsDiscrete(g) {
			integrated = g
			continue
		}
		if discrete == nil && c.policy.IsDiscrete(g) {
			discrete = g
		}
	}
	if integrated == nil || discrete == nil {
		return nil, nil
	}
	return integrated, discrete
}

func (c *Config) bootVGA() *device.Device {
	for _, g := range c.gpus {
		if g.HasAttribute(device.AttrBootVGA) {
			return g
		}
	}
	return c.gpus[0]
}

// Type returns the full classification.
func (c *Config) Type() Type { return c.typ }

// HasType reports whether the classification carries every tag in mask.
func (c *Config) HasType(mask Type) bool { return c.typ.Has(mask) }

// Count returns the number of GPUs.
func (c *Config) Count() int { return len(c.gpus) }

// Devices returns the GPUs in enumeration order.
func (c *Config) Devices() []*device.Device {
	out := make([]*device.Device, len(c.gpus))
	copy(out, c.gpus)
	return out
}

// Primary returns the main adapter: the integrated half of a hybrid pair,
// otherwise the boot VGA adapter. Nil without GPUs.
func (c *Config) Primary() *device.Device { return c.primary }

// Secondary returns the other adapter of a pair, or nil.
func (c *Config) Secondary() *device.Device { return c.secondary }

// DetectionDevice returns the adapter that driver detection should key
// on: the first GPU with AttrHost, else the first GPU. Nil without GPUs.
func (c *Config) DetectionDevice() *device.Device {
	for _, g := range c.gpus {
		if g.HasAttribute(device.AttrHost) {
			return g
		}
	}
	if len(c.gpus) == 0 {
		return nil
	}
	return c.gpus[0]
}

// Providers resolves the detection device through r.
func (c *Config) Providers(r Resolver) []*plugin.Provider {
	d := c.DetectionDevice()
	if d == nil {
		return []*plugin.Provider{}
	}
	return r.Providers(d)
}

// Info is the serializable view of a Config.
type Info struct {
	Type            string        `json:"type" yaml:"type"`
	Tags            []string      `json:"tags" yaml:"tags"`
	Count           int           `json:"count" yaml:"count"`
	Primary         string        `json:"primary,omitempty" yaml:"primary,omitempty"`
	Secondary       string        `json:"secondary,omitempty" yaml:"secondary,omitempty"`
	DetectionDevice string        `json:"detectionDevice,omitempty" yaml:"detectionDevice,omitempty"`
	Devices         []device.Info `json:"devices" yaml:"devices"`
}

// Info returns the serializable view of c.
func (c *Config) Info() Info {
	i := Info{
		Type:    c.typ.String(),
		Tags:    c.typ.Names(),
		Count:   len(c.gpus),
		Devices: device.Infos(c.gpus),
	}
	if c.primary != nil {
		i.Primary = c.primary.Path()
	}
	if c.secondary != nil {
		i.Secondary = c.secondary.Path()
	}
	if d := c.DetectionDevice(); d != nil {
		i.DetectionDevice = d.Path()
	}
	return i
}
