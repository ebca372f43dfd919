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

// Package catalog is a file-based package index. Each package lists the
// capability strings it provides; modalias capabilities become one
// modalias plugin per package.
//
//	packages:
//	  - name: nvidia-driver
//	    kernel: ">= 5.4"
//	    provides:
//	      - modalias(nvidia)=pci:v000010DEd*sv*sd*bc03sc00i00*
//
// A built-in catalog is embedded in the binary and can be layered under
// site catalogs with Merge.
package catalog

import (
	"bytes"
	"embed"
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"

	"github.com/NVIDIA/hwmatch/pkg/errors"
	"github.com/NVIDIA/hwmatch/pkg/header"
	"github.com/NVIDIA/hwmatch/pkg/modalias"
	"github.com/NVIDIA/hwmatch/pkg/serializer"
	"github.com/NVIDIA/hwmatch/pkg/version"
)

//go:embed data/catalog.yaml
var dataFS embed.FS

const builtinPath = "data/catalog.yaml"

// Package is one installable package and the capabilities it provides.
type Package struct {
	Name string `json:"name" yaml:"name"`

	// Kernel is an optional constraint on the running kernel release,
	// e.g. ">= 5.15, < 6.3".
	Kernel string `json:"kernel,omitempty" yaml:"kernel,omitempty"`

	Provides []string `json:"provides" yaml:"provides"`
}

// Modaliases returns the modalias capabilities among Provides.
func (p Package) Modaliases() []string {
	var out []string
	for _, c := range p.Provides {
		if modalias.IsCapability(c) {
			out = append(out, c)
		}
	}
	return out
}

// Catalog is an ordered list of packages.
type Catalog struct {
	header.Header `json:",inline" yaml:",inline"`

	Packages []Package `json:"packages" yaml:"packages"`
}

// Load reads a catalog file. The format follows the file extension.
func Load(path string) (*Catalog, error) {
	c, err := serializer.FromFile[Catalog](path, serializer.WithStrict(true))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, fmt.Sprintf("failed to load catalog %s", path), err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Parse decodes a catalog from YAML or JSON bytes.
func Parse(data []byte, format serializer.Format) (*Catalog, error) {
	r, err := serializer.NewReader(format, bytes.NewReader(data), serializer.WithStrict(true))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to create catalog reader", err)
	}
	var c Catalog
	if err := r.Deserialize(&c); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to parse catalog", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Builtin returns the catalog embedded in the binary.
func Builtin() (*Catalog, error) {
	b, err := dataFS.ReadFile(builtinPath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to read builtin catalog", err)
	}
	return Parse(b, serializer.FormatYAML)
}

// Layered returns the builtin catalog with the files at paths merged over
// it in order. Missing files are skipped with a warning; any other load
// error is returned.
func Layered(paths ...string) (*Catalog, error) {
	base, err := Builtin()
	if err != nil {
		return nil, err
	}
	layers := make([]*Catalog, 0, len(paths))
	for _, path := range paths {
		c, err := Load(path)
		if err != nil {
			if stderrors.Is(err, fs.ErrNotExist) {
				slog.Warn("catalog not found, skipping", "path", path)
				continue
			}
			return nil, err
		}
		layers = append(layers, c)
	}
	return base.Merge(layers...), nil
}

// Validate checks that every package has a unique name and a parsable
// kernel constraint.
func (c *Catalog) Validate() error {
	seen := make(map[string]struct{}, len(c.Packages))
	for i, p := range c.Packages {
		if p.Name == "" {
			return errors.NewWithContext(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("package at index %d has no name", i), map[string]any{"index": i})
		}
		if _, dup := seen[p.Name]; dup {
			return errors.NewWithContext(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("duplicate package %q", p.Name), map[string]any{"package": p.Name})
		}
		seen[p.Name] = struct{}{}
		if _, err := version.ParseConstraints(p.Kernel); err != nil {
			return errors.WrapWithContext(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("package %q has an invalid kernel constraint", p.Name), err,
				map[string]any{"package": p.Name, "kernel": p.Kernel})
		}
	}
	return nil
}

// Merge layers others over c and returns a new catalog. A package in a
// later catalog replaces an earlier package of the same name in place; new
// packages are appended. The header of c is kept.
func (c *Catalog) Merge(others ...*Catalog) *Catalog {
	out := &Catalog{Header: c.Header}
	index := make(map[string]int)
	add := func(p Package) {
		if i, ok := index[p.Name]; ok {
			out.Packages[i] = p
			return
		}
		index[p.Name] = len(out.Packages)
		out.Packages = append(out.Packages, p)
	}
	for _, p := range c.Packages {
		add(p)
	}
	for _, o := range others {
		if o == nil {
			continue
		}
		for _, p := range o.Packages {
			add(p)
		}
	}
	return out
}

// Plugins builds one modalias plugin per package that declares at least one
// modalias capability, in catalog order. When kernel is non-nil, packages
// whose constraint rejects it are skipped. Malformed capabilities are
// logged and skipped.
func (c *Catalog) Plugins(policy modalias.Policy, kernel *version.Version) []*modalias.Plugin {
	var plugins []*modalias.Plugin
	for _, p := range c.Packages {
		caps := p.Modaliases()
		if len(caps) == 0 {
			continue
		}

		if kernel != nil && p.Kernel != "" {
			cs, err := version.ParseConstraints(p.Kernel)
			if err != nil || !cs.Check(*kernel) {
				slog.Debug("package excluded by kernel constraint",
					"package", p.Name, "constraint", p.Kernel, "kernel", kernel.String())
				continue
			}
		}

		mp := modalias.New(p.Name, modalias.WithPolicy(policy))
		for _, capability := range caps {
			if err := mp.AddCapability(capability, p.Name); err != nil {
				slog.Warn("skipping malformed capability",
					"package", p.Name, "capability", capability, "error", err)
			}
		}
		if mp.Len() == 0 {
			continue
		}
		plugins = append(plugins, mp)
	}
	return plugins
}

// Columns implements serializer.Tabular.
func (c *Catalog) Columns() []string {
	return []string{"PACKAGE", "KERNEL", "MODALIASES", "PROVIDES"}
}

// Rows implements serializer.Tabular.
func (c *Catalog) Rows() [][]string {
	rows := make([][]string, 0, len(c.Packages))
	for _, p := range c.Packages {
		kernel := p.Kernel
		if kernel == "" {
			kernel = "*"
		}
		rows = append(rows, []string{
			p.Name,
			kernel,
			strconv.Itoa(len(p.Modaliases())),
			strconv.Itoa(len(p.Provides)),
		})
	}
	return rows
}
