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

// Package version parses kernel release strings and evaluates the kernel
// constraints that catalog packages declare.
//
//	running, _ := version.ParseVersion("6.8.0-45-generic")
//	cs, _ := version.ParseConstraints(">= 5.15, < 7")
//	if cs.Check(running) { ... }
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Error types for version parsing failures
var (
	ErrEmptyVersion      = errors.New("version string is empty")
	ErrTooManyComponents = errors.New("version has more than 3 components")
	ErrNonNumeric        = errors.New("version component is not numeric")
	ErrNegativeComponent = errors.New("version component cannot be negative")
	ErrInvalidOperator   = errors.New("invalid constraint operator")
)

// Version is a kernel release split into Major, Minor and Patch. Precision
// records how many components were present (1, 2, or 3) and bounds
// comparisons, so "6.1" compares equal to any 6.1.x release. Distribution
// suffixes such as "-45-generic" are kept in Extras and never compared.
type Version struct {
	Major int `json:"major,omitempty" yaml:"major,omitempty"`
	Minor int `json:"minor,omitempty" yaml:"minor,omitempty"`
	Patch int `json:"patch,omitempty" yaml:"patch,omitempty"`

	Precision int `json:"precision,omitempty" yaml:"precision,omitempty"`

	Extras string `json:"extras,omitempty" yaml:"extras,omitempty"`
}

// NewVersion creates a Version with all three components significant.
func NewVersion(major, minor, patch int) Version {
	return Version{
		Major:     major,
		Minor:     minor,
		Patch:     patch,
		Precision: 3,
	}
}

// String returns the version respecting its precision. Extras are not included.
func (v Version) String() string {
	switch v.Precision {
	case 1:
		return fmt.Sprintf("%d", v.Major)
	case 2:
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	default:
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
}

// ParseVersion parses "6", "6.8", "6.8.0", "v6.8.0" or a full kernel
// release like "6.8.0-45-generic". Anything after a '-' or '+' that follows
// a digit is stored in Extras.
func ParseVersion(s string) (Version, error) {
	if s == "" {
		return Version{}, ErrEmptyVersion
	}

	s = strings.TrimPrefix(s, "v")
	var v Version

	// "-1" alone is a negative number, not a suffix
	mainPart := s
	for i, ch := range s {
		if (ch == '-' || ch == '+') && i > 0 {
			prevCh := s[i-1]
			if prevCh >= '0' && prevCh <= '9' {
				mainPart = s[:i]
				v.Extras = s[i:]
				break
			}
		}
	}

	parts := strings.Split(mainPart, ".")
	if len(parts) > 3 {
		return Version{}, ErrTooManyComponents
	}

	for i, part := range parts {
		if part == "" {
			return Version{}, fmt.Errorf("%w: empty component", ErrNonNumeric)
		}
		num, err := strconv.Atoi(part)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrNonNumeric, part)
		}
		if num < 0 {
			return Version{}, fmt.Errorf("%w: %d", ErrNegativeComponent, num)
		}

		switch i {
		case 0:
			v.Major = num
		case 1:
			v.Minor = num
		case 2:
			v.Patch = num
		}
	}

	v.Precision = len(parts)
	return v, nil
}

// MustParseVersion parses a version string and panics if parsing fails.
// Only use this for hardcoded strings or in tests.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(fmt.Sprintf("MustParseVersion: %v", err))
	}
	return v
}

// Compare returns -1, 0 or 1 comparing v to other up to the lower of the
// two precisions.
func (v Version) Compare(other Version) int {
	precision := min(v.Precision, other.Precision)

	pairs := [][2]int{{v.Major, other.Major}, {v.Minor, other.Minor}, {v.Patch, other.Patch}}
	for i := 0; i < precision && i < len(pairs); i++ {
		switch {
		case pairs[i][0] < pairs[i][1]:
			return -1
		case pairs[i][0] > pairs[i][1]:
			return 1
		}
	}
	return 0
}

// EqualsOrNewer returns true if v is equal to or newer than other.
func (v Version) EqualsOrNewer(other Version) bool {
	return v.Compare(other) >= 0
}

// IsValid returns true if all components are non-negative and precision
// is 1, 2, or 3.
func (v Version) IsValid() bool {
	if v.Major < 0 || v.Minor < 0 || v.Patch < 0 {
		return false
	}
	return v.Precision >= 1 && v.Precision <= 3
}

// Constraint is a single comparison against a version, e.g. ">= 5.15".
type Constraint struct {
	Op      string
	Version Version
}

var operators = []string{">=", "<=", "==", "!=", ">", "<", "="}

// ParseConstraint parses an operator followed by a version. A bare version
// means equality.
func ParseConstraint(s string) (Constraint, error) {
	s = strings.TrimSpace(s)
	op := "="
	for _, candidate := range operators {
		if strings.HasPrefix(s, candidate) {
			op = candidate
			s = strings.TrimSpace(s[len(candidate):])
			break
		}
	}
	if op == "==" {
		op = "="
	}
	if strings.ContainsAny(s, "<>=!") {
		return Constraint{}, fmt.Errorf("%w: %q", ErrInvalidOperator, s)
	}
	v, err := ParseVersion(s)
	if err != nil {
		return Constraint{}, err
	}
	return Constraint{Op: op, Version: v}, nil
}

// Check reports whether v satisfies the constraint.
func (c Constraint) Check(v Version) bool {
	cmp := v.Compare(c.Version)
	switch c.Op {
	case ">=":
		return cmp >= 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case "<":
		return cmp < 0
	case "!=":
		return cmp != 0
	default:
		return cmp == 0
	}
}

func (c Constraint) String() string {
	return c.Op + c.Version.String()
}

// Constraints is a conjunction of constraints.
type Constraints []Constraint

// ParseConstraints parses a comma separated list such as ">= 5.15, < 7".
// An empty string yields no constraints, which every version satisfies.
func ParseConstraints(s string) (Constraints, error) {
	var out Constraints
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		c, err := ParseConstraint(part)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Check reports whether v satisfies every constraint.
func (cs Constraints) Check(v Version) bool {
	for _, c := range cs {
		if !c.Check(v) {
			return false
		}
	}
	return true
}

func (cs Constraints) String() string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}
