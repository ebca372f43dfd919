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

package file

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"
)

// Options for configuring the Parser.
type Option func(*Parser)

// Parser splits delimited text (modalias tables, sysfs uevent files,
// netlink uevent payloads) into entries or key-value maps.
type Parser struct {
	delimiter       string
	maxSize         int
	skipComments    bool
	kvDelimiter     string
	vDefault        string
	vTrimChars      string
	skipEmptyValues bool
}

// WithDelimiter sets the delimiter used to split entries in the file.
// Default is newline ("\n").
func WithDelimiter(delim string) Option {
	return func(p *Parser) {
		p.delimiter = delim
	}
}

// WithMaxSize sets the maximum size (in bytes) of the file to be parsed.
// Default is 1MB.
func WithMaxSize(size int) Option {
	return func(p *Parser) {
		p.maxSize = size
	}
}

// WithSkipComments sets whether to skip comment lines in the file.
// Default is true.
func WithSkipComments(skip bool) Option {
	return func(p *Parser) {
		p.skipComments = skip
	}
}

// WithKVDelimiter sets the key-value delimiter used in GetMap.
// Default is "=".
func WithKVDelimiter(kvDelim string) Option {
	return func(p *Parser) {
		p.kvDelimiter = kvDelim
	}
}

// WithVDefault sets the default value to use when a key has no associated value.
// Default is an empty string.
func WithVDefault(vDefault string) Option {
	return func(p *Parser) {
		p.vDefault = vDefault
	}
}

// WithVTrimChars sets characters to trim from values in GetMap.
// Default is no trimming.
func WithVTrimChars(trimChars string) Option {
	return func(p *Parser) {
		p.vTrimChars = trimChars
	}
}

// WithSkipEmptyValues sets whether to skip empty values when parsing the file.
// Default is false.
func WithSkipEmptyValues(skip bool) Option {
	return func(p *Parser) {
		p.skipEmptyValues = skip
	}
}

// NewParser creates a new file parser with the provided options.
// Default settings: newline delimiter ("\n"), 1MB max file size.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		delimiter:       "\n",
		maxSize:         1 << 20, // 1MB default
		skipComments:    true,
		kvDelimiter:     "=",
		vDefault:        "",
		vTrimChars:      "",
		skipEmptyValues: false,
	}

	// Apply options
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GetMap reads the file at the given path and parses its content into a map.
// Each entry is split into key-value pairs using the configured KV delimiter.
// If an entry does not contain the delimiter, the value is set to vDefault.
// Returns an error if the file cannot be read or parsed.
func (p *Parser) GetMap(path string) (map[string]string, error) {
	b, err := p.read(path)
	if err != nil {
		return nil, err
	}
	return p.ParseMap(b)
}

// GetLines reads the file at the given path and splits its content into
// entries based on the configured delimiter. It returns a slice of
// non-empty entries. An error is returned if the file cannot be read,
// exceeds the maximum size, or contains invalid UTF-8 content.
func (p *Parser) GetLines(path string) ([]string, error) {
	b, err := p.read(path)
	if err != nil {
		return nil, err
	}
	return p.ParseLines(b)
}

// ParseMap is GetMap over an in-memory buffer, such as a netlink uevent
// payload or a sysfs attribute read by the caller.
func (p *Parser) ParseMap(b []byte) (map[string]string, error) {
	parts, err := p.ParseLines(b)
	if err != nil {
		return nil, err
	}

	result := make(map[string]string, len(parts))
	for _, part := range parts {
		key, value, found := strings.Cut(part, p.kvDelimiter)
		key = strings.TrimSpace(key)

		if !found {
			if p.skipEmptyValues && p.vDefault == "" {
				slog.Debug("skipping entry with key-only and empty default", "key", key)
				continue
			}
			result[key] = p.vDefault
			continue
		}

		value = strings.TrimSpace(value)
		if p.vTrimChars != "" {
			value = strings.Trim(value, p.vTrimChars)
		}

		if p.skipEmptyValues && value == "" {
			slog.Debug("skipping entry with empty value", "key", key)
			continue
		}

		result[key] = value
	}

	return result, nil
}

// ParseLines splits b on the configured delimiter, trimming each entry and
// dropping empty entries and, when enabled, '#' comments.
func (p *Parser) ParseLines(b []byte) ([]string, error) {
	if !utf8.Valid(b) {
		return nil, fmt.Errorf("content is not valid UTF-8")
	}
	if len(b) > p.maxSize {
		return nil, fmt.Errorf("content exceeds maximum size of %d bytes", p.maxSize)
	}

	parts := strings.Split(string(b), p.delimiter)

	result := make([]string, 0, len(parts))
	for _, part := range parts {
		cleanPart := strings.TrimSpace(part)
		if cleanPart == "" {
			continue
		}
		if p.skipComments && strings.HasPrefix(cleanPart, "#") {
			continue
		}
		result = append(result, cleanPart)
	}

	return result, nil
}

func (p *Parser) read(path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("file path cannot be empty")
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", path, err)
	}
	if len(b) > p.maxSize {
		return nil, fmt.Errorf("file %q exceeds maximum size of %d bytes", path, p.maxSize)
	}
	return b, nil
}

// ReadString returns the trimmed content of a single-value file such as a
// sysfs attribute. Missing files yield ("", nil) so optional attributes
// can be probed without branching on os.IsNotExist.
func ReadString(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read %q: %w", path, err)
	}
	return strings.TrimSpace(string(b)), nil
}
