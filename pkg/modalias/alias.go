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

package modalias

import (
	"fmt"
	"strings"

	"github.com/NVIDIA/hwmatch/pkg/device"
	"github.com/NVIDIA/hwmatch/pkg/errors"
)

const capabilityPrefix = "modalias("

// busMarkers lists, for buses with a fixed layout, the field that must
// open the modalias body.
var busMarkers = map[string]string{
	"pci": "v",
	"usb": "v",
	"hid": "b",
}

// Alias maps a modalias pattern to the kernel module that binds it and
// the package shipping that module.
type Alias struct {
	Pattern string `json:"pattern" yaml:"pattern"`
	Driver  string `json:"driver,omitempty" yaml:"driver,omitempty"`
	Package string `json:"package" yaml:"package"`
}

// Normalize turns a raw modalias or package capability string into the
// canonical index key.
//
// Accepted forms:
//
//	pci:v000010DEd*sv*sd*bc03sc*i*
//	modalias(nvidia-driver)=pci:v000010DEd*sv*sd*bc03sc*i*
//	modalias(pci:v000010DEd*sv*sd*bc03sc*i*)
//	modalias(pci:v000010DEd*sv*sd*bc03sc*i*) = 535.104
//
// The wrapper and any whitespace separated suffix are dropped and the bus
// prefix is lowercased. Malformed input yields an INVALID_REQUEST error.
func Normalize(raw string) (string, error) {
	s := strings.TrimSpace(raw)

	bare := false
	if rest, ok := strings.CutPrefix(s, capabilityPrefix); ok {
		if _, pattern, found := strings.Cut(rest, ")="); found {
			s = strings.TrimSpace(pattern)
		} else {
			s = rest
			bare = true
		}
	}

	if i := strings.IndexAny(s, " \t"); i >= 0 {
		s = s[:i]
	}
	if bare {
		s = strings.TrimSuffix(s, ")")
	}

	bus, body, ok := device.SplitModalias(s)
	if !ok {
		return "", errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("malformed modalias %q", raw))
	}
	bus = strings.ToLower(bus)

	if marker, known := busMarkers[bus]; known && !strings.HasPrefix(body, marker) && !strings.HasPrefix(body, "*") {
		return "", errors.NewWithContext(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("malformed %s modalias %q", bus, raw),
			map[string]any{"expected_prefix": marker})
	}

	return bus + ":" + body, nil
}

// IsCapability reports whether s is a package-index modalias capability.
func IsCapability(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), capabilityPrefix)
}

// hasMeta reports whether pattern contains fnmatch metacharacters.
func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[")
}
