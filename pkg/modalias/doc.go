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

// Package modalias implements the modalias-indexed plugin.
//
// A kernel modalias is a bus-prefixed identifier such as
//
//	pci:v000010DEd00001C60sv00001558sd000065A4bc03sc00i00
//
// Packages advertise the hardware they support either through capability
// strings ("modalias(nvidia-driver)=pci:v000010DEd*") or through
// .modaliases tables:
//
//	# <directive> <pattern> <kernel-module> <package>
//	alias pci:v000010DEd00001C60sv*sd*bc03sc*i* nvidia nvidia-glx-driver
//
// # Matching
//
// Every pattern is normalized and stored in a hash index, so a device
// whose modalias equals a registered pattern is resolved with one lookup.
// When that misses, the plugin's Policy decides whether a second pass
// runs:
//
//   - PolicyExact: no second pass (default)
//   - PolicyPrefix: longest registered prefix wins
//   - PolicyGlob: first registered wildcard pattern matching with fnmatch
//     semantics wins
//
// Devices without a modalias never match, and a device modalias that does
// not parse is treated as a non-match rather than an error.
//
// # Usage
//
//	p := modalias.New("nvidia-glx-driver", modalias.WithPolicy(modalias.PolicyGlob))
//	if err := p.AddModalias("pci:v000010DEd*sv*sd*bc03sc*i*", "nvidia-glx-driver"); err != nil {
//	    return err
//	}
//	if prov := p.Match(dev); prov != nil {
//	    fmt.Println(prov.Package())
//	}
//
// Tables can be loaded from disk with LoadFile and LoadDir, written back
// with WriteTo, or generated from a kernel modules.alias file with
// FromModulesAlias.
package modalias
