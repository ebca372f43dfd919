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
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/NVIDIA/hwmatch/pkg/collector/file"
	"github.com/NVIDIA/hwmatch/pkg/errors"
)

// FileExt is the suffix of modalias table files.
const FileExt = ".modaliases"

const directiveAlias = "alias"

// LoadFile builds a Plugin from a .modaliases table. Each line reads
//
//	alias <pattern> <kernel-module> <package>
//
// Blank lines and '#' comments are skipped. Unknown directives and
// malformed lines are logged and skipped. The plugin is named after the
// file with the extension removed.
func LoadFile(path string, opts ...Option) (*Plugin, error) {
	lines, err := file.NewParser().GetLines(path)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeNotFound, "failed to load modalias table", err,
			map[string]any{"path": path})
	}

	p := New(strings.TrimSuffix(filepath.Base(path), FileExt), opts...)
	for i, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if fields[0] != directiveAlias {
			slog.Warn("unknown directive in modalias table",
				"path", path, "line", i+1, "directive", fields[0])
			continue
		}
		if len(fields) != 4 {
			slog.Warn("malformed alias line", "path", path, "line", i+1, "fields", len(fields))
			continue
		}
		if err := p.AddAlias(Alias{Pattern: fields[1], Driver: fields[2], Package: fields[3]}); err != nil {
			slog.Warn("invalid alias", "path", path, "line", i+1, "error", err)
		}
	}

	slog.Debug("loaded modalias table", "path", path, "plugin", p.Name(), "aliases", p.Len())
	return p, nil
}

// LoadDir loads every .modaliases file in dir, in lexical order. A missing
// directory yields no plugins and no error.
func LoadDir(dir string, opts ...Option) ([]*Plugin, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+FileExt))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid modalias directory", err)
	}
	sort.Strings(matches)

	plugins := make([]*Plugin, 0, len(matches))
	for _, m := range matches {
		p, err := LoadFile(m, opts...)
		if err != nil {
			return nil, err
		}
		plugins = append(plugins, p)
	}
	return plugins, nil
}

// WriteTo writes the plugin's aliases in .modaliases format.
func (p *Plugin) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	for _, a := range p.Aliases() {
		driver := a.Driver
		if driver == "" {
			driver = "-"
		}
		c, err := fmt.Fprintf(bw, "%s %s %s %s\n", directiveAlias, a.Pattern, driver, a.Package)
		n += int64(c)
		if err != nil {
			return n, err
		}
	}
	return n, bw.Flush()
}

// FromModulesAlias builds a Plugin for pkgName out of a kernel
// modules.alias table, keeping only aliases bound to one of modules.
// Aliases for other buses (e.g. "fs-", "char-major-") are skipped.
func FromModulesAlias(r io.Reader, name, pkgName string, modules []string, opts ...Option) (*Plugin, error) {
	want := make(map[string]struct{}, len(modules))
	for _, m := range modules {
		want[normalizeModule(m)] = struct{}{}
	}

	p := New(name, opts...)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) != 3 || fields[0] != directiveAlias {
			continue
		}
		if _, ok := want[normalizeModule(fields[2])]; !ok {
			continue
		}
		if err := p.AddAlias(Alias{Pattern: fields[1], Driver: fields[2], Package: pkgName}); err != nil {
			slog.Debug("skipping non-modalias alias", "alias", fields[1], "module", fields[2])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to read modules.alias", err)
	}
	return p, nil
}

// normalizeModule folds '-' to '_' as the kernel does for module names.
func normalizeModule(m string) string {
	return strings.ReplaceAll(strings.TrimSpace(m), "-", "_")
}
