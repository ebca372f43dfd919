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

package plugin

import (
	"github.com/NVIDIA/hwmatch/pkg/device"
)

// Plugin recognizes devices and recommends a package for them.
//
// Match must not mutate the device and must return nil for devices it
// does not recognize. A non-nil Provider references this plugin and the
// queried device.
type Plugin interface {
	// Name identifies the plugin. Names are unique within a manager.
	Name() string
	// Match returns a Provider for dev, or nil.
	Match(dev *device.Device) *Provider
}

// Provider is a single (plugin, device, package) recommendation. It
// references the plugin and device without owning them.
type Provider struct {
	plugin  Plugin
	device  *device.Device
	pkgName string
}

// NewProvider builds a Provider. It returns nil when any part is missing
// so callers can return its result straight from Match.
func NewProvider(p Plugin, dev *device.Device, pkgName string) *Provider {
	if p == nil || dev == nil || pkgName == "" {
		return nil
	}
	return &Provider{plugin: p, device: dev, pkgName: pkgName}
}

// Plugin returns the plugin that produced the recommendation.
func (p *Provider) Plugin() Plugin { return p.plugin }

// Device returns the device the recommendation is for.
func (p *Provider) Device() *device.Device { return p.device }

// Package returns the recommended package name.
func (p *Provider) Package() string { return p.pkgName }

// Info is the serializable view of a Provider.
type Info struct {
	Plugin  string `json:"plugin" yaml:"plugin"`
	Device  string `json:"device" yaml:"device"`
	Package string `json:"package" yaml:"package"`
}

// Info returns the serializable view of p.
func (p *Provider) Info() Info {
	return Info{
		Plugin:  p.plugin.Name(),
		Device:  p.device.Path(),
		Package: p.pkgName,
	}
}

// Infos maps Info over providers.
func Infos(providers []*Provider) []Info {
	out := make([]Info, 0, len(providers))
	for _, p := range providers {
		out = append(out, p.Info())
	}
	return out
}
