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

// TypePlugin recommends a fixed package for every device whose type-set
// intersects Types and which carries all of Attributes.
type TypePlugin struct {
	PluginName string
	Types      device.Type
	Attributes device.Attribute
	Package    string
}

// NewTypePlugin returns a TypePlugin for the given class mask.
func NewTypePlugin(name string, types device.Type, pkgName string) *TypePlugin {
	return &TypePlugin{PluginName: name, Types: types, Package: pkgName}
}

// Name implements Plugin.
func (p *TypePlugin) Name() string { return p.PluginName }

// Match implements Plugin.
func (p *TypePlugin) Match(dev *device.Device) *Provider {
	if dev == nil || !dev.HasType(p.Types) || !dev.HasAttribute(p.Attributes) {
		return nil
	}
	return NewProvider(p, dev, p.Package)
}

// MatchFunc decides whether a device matches and which package to offer.
type MatchFunc func(dev *device.Device) (pkgName string, ok bool)

// Func adapts a MatchFunc to the Plugin interface.
type Func struct {
	name string
	fn   MatchFunc
}

// NewFunc wraps fn as a named Plugin.
func NewFunc(name string, fn MatchFunc) *Func {
	return &Func{name: name, fn: fn}
}

// Name implements Plugin.
func (f *Func) Name() string { return f.name }

// Match implements Plugin.
func (f *Func) Match(dev *device.Device) *Provider {
	if dev == nil || f.fn == nil {
		return nil
	}
	pkgName, ok := f.fn(dev)
	if !ok {
		return nil
	}
	return NewProvider(f, dev, pkgName)
}
