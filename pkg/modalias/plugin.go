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
	"log/slog"
	"path"
	"strings"
	"sync"

	"github.com/NVIDIA/hwmatch/pkg/device"
	"github.com/NVIDIA/hwmatch/pkg/errors"
	"github.com/NVIDIA/hwmatch/pkg/plugin"
)

// Policy selects the fallback pass run when the exact lookup misses.
type Policy int

const (
	// PolicyExact only accepts exact key hits.
	PolicyExact Policy = iota
	// PolicyPrefix accepts the longest registered pattern that prefixes the
	// device modalias. A trailing '*' run in a pattern is ignored.
	PolicyPrefix
	// PolicyGlob accepts the first registered wildcard pattern that matches
	// the device modalias with fnmatch semantics.
	PolicyGlob
)

var policyNames = map[Policy]string{
	PolicyExact:  "exact",
	PolicyPrefix: "prefix",
	PolicyGlob:   "glob",
}

func (p Policy) String() string {
	if s, ok := policyNames[p]; ok {
		return s
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy parses "exact", "prefix" or "glob". Empty means exact.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exact":
		return PolicyExact, nil
	case "prefix":
		return PolicyPrefix, nil
	case "glob":
		return PolicyGlob, nil
	default:
		return PolicyExact, errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("unknown match policy %q", s))
	}
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithPolicy sets the fallback policy. Default is PolicyExact.
func WithPolicy(policy Policy) Option {
	return func(p *Plugin) {
		p.policy = policy
	}
}

// Plugin matches devices by modalias. Patterns are indexed by their
// normalized form so the common case is a single map lookup.
type Plugin struct {
	name   string
	policy Policy

	mu    sync.RWMutex
	exact map[string]Alias
	order []string
}

// New returns an empty Plugin named after its package source.
func New(name string, opts ...Option) *Plugin {
	p := &Plugin{
		name:   name,
		policy: PolicyExact,
		exact:  make(map[string]Alias),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements plugin.Plugin.
func (p *Plugin) Name() string { return p.name }

// Policy returns the fallback policy.
func (p *Plugin) Policy() Policy { return p.policy }

// Len returns the number of indexed patterns.
func (p *Plugin) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.exact)
}

// AddModalias indexes pattern for pkgName. The pattern may be given in
// capability form. Re-adding a pattern replaces its package.
func (p *Plugin) AddModalias(pattern, pkgName string) error {
	return p.AddAlias(Alias{Pattern: pattern, Package: pkgName})
}

// AddCapability indexes a raw package-index capability string such as
// "modalias(nvidia-driver)=pci:v000010DEd*".
func (p *Plugin) AddCapability(capability, pkgName string) error {
	return p.AddModalias(capability, pkgName)
}

// AddAlias indexes a full alias entry.
func (p *Plugin) AddAlias(a Alias) error {
	if strings.TrimSpace(a.Package) == "" {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest, "package name cannot be empty",
			map[string]any{"plugin": p.name, "pattern": a.Pattern})
	}
	key, err := Normalize(a.Pattern)
	if err != nil {
		return err
	}
	a.Pattern = key

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.exact[key]; !exists {
		p.order = append(p.order, key)
	}
	p.exact[key] = a
	return nil
}

// Aliases returns the indexed entries in insertion order.
func (p *Plugin) Aliases() []Alias {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Alias, 0, len(p.order))
	for _, k := range p.order {
		out = append(out, p.exact[k])
	}
	return out
}

// Lookup resolves a device modalias to the alias that would match it.
func (p *Plugin) Lookup(modalias string) (Alias, bool) {
	key, err := Normalize(modalias)
	if err != nil {
		return Alias{}, false
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if a, ok := p.exact[key]; ok {
		return a, true
	}

	switch p.policy {
	case PolicyPrefix:
		return p.lookupPrefix(key)
	case PolicyGlob:
		return p.lookupGlob(key)
	default:
		return Alias{}, false
	}
}

// Match implements plugin.Plugin. Devices without a modalias, or with one
// that does not parse, never match.
func (p *Plugin) Match(dev *device.Device) *plugin.Provider {
	if dev == nil || dev.Modalias() == "" {
		return nil
	}
	a, ok := p.Lookup(dev.Modalias())
	if !ok {
		return nil
	}
	slog.Debug("modalias matched",
		"plugin", p.name,
		"device", dev.Path(),
		"pattern", a.Pattern,
		"package", a.Package,
	)
	return plugin.NewProvider(p, dev, a.Package)
}

func (p *Plugin) lookupPrefix(key string) (Alias, bool) {
	var best Alias
	bestLen := -1
	for _, k := range p.order {
		prefix := strings.TrimRight(k, "*")
		if len(prefix) > bestLen && strings.HasPrefix(key, prefix) {
			best, bestLen = p.exact[k], len(prefix)
		}
	}
	return best, bestLen >= 0
}

func (p *Plugin) lookupGlob(key string) (Alias, bool) {
	for _, k := range p.order {
		if !hasMeta(k) {
			continue
		}
		// modaliases never contain '/', so path.Match behaves like fnmatch
		if ok, err := path.Match(k, key); err == nil && ok {
			return p.exact[k], true
		}
	}
	return Alias{}, false
}
