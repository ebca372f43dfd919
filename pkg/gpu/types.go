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

import "strings"

// Type classifies a multi-adapter configuration. Tags combine: an Optimus
// system is Hybrid|Optimus, an SLI system is Composite|SLI.
type Type uint32

const (
	// TypeSimple is a single adapter, or no adapter at all.
	TypeSimple Type = 0
	// TypeHybrid is an integrated adapter paired with a discrete one.
	TypeHybrid Type = 1 << (iota - 1)
	// TypeComposite is two or more adapters that do not form a hybrid pair.
	TypeComposite
	// TypeOptimus is a hybrid pair with a power mux or render offload link.
	TypeOptimus
	// TypeSLI is a composite of linked NVIDIA adapters.
	TypeSLI
	// TypeCrossfire is a composite of linked AMD adapters.
	TypeCrossfire
)

var typeNames = []struct {
	t    Type
	name string
}{
	{TypeHybrid, "hybrid"},
	{TypeComposite, "composite"},
	{TypeOptimus, "optimus"},
	{TypeSLI, "sli"},
	{TypeCrossfire, "crossfire"},
}

// Has reports whether every tag in mask is set. TypeSimple only matches a
// simple configuration.
func (t Type) Has(mask Type) bool {
	if mask == TypeSimple {
		return t == TypeSimple
	}
	return t&mask == mask
}

// Names lists the tags set in t, or "simple".
func (t Type) Names() []string {
	if t == TypeSimple {
		return []string{"simple"}
	}
	var names []string
	for _, tn := range typeNames {
		if t&tn.t != 0 {
			names = append(names, tn.name)
		}
	}
	return names
}

// String returns the most specific tag: optimus, sli and crossfire win over
// hybrid and composite.
func (t Type) String() string {
	switch {
	case t.Has(TypeOptimus):
		return "optimus"
	case t.Has(TypeSLI):
		return "sli"
	case t.Has(TypeCrossfire):
		return "crossfire"
	case t.Has(TypeHybrid):
		return "hybrid"
	case t.Has(TypeComposite):
		return "composite"
	case t == TypeSimple:
		return "simple"
	default:
		return strings.Join(t.Names(), "+")
	}
}
