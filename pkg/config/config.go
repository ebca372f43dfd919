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

// Package config loads the hwmatch configuration file.
//
// The file is located in this order: an explicit path (the --config flag),
// $HWMATCH_CONFIG, $HOME/.hwmatch.yaml, ./.hwmatch.yaml. When none exists
// the defaults apply. Command line flags are layered on top with Apply.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/NVIDIA/hwmatch/pkg/errors"
	"github.com/NVIDIA/hwmatch/pkg/gpu"
	"github.com/NVIDIA/hwmatch/pkg/modalias"
	"github.com/NVIDIA/hwmatch/pkg/serializer"
	"github.com/NVIDIA/hwmatch/pkg/version"
)

const (
	// EnvConfig names the environment variable holding the config path.
	EnvConfig = "HWMATCH_CONFIG"

	// FileName is the config file name looked up in $HOME and the working directory.
	FileName = ".hwmatch.yaml"
)

// GPU policy names.
const (
	GPUPolicyAttribute = "attribute"
	GPUPolicyVendor    = "vendor"
)

// Config is the on-disk configuration.
type Config struct {
	// SysfsRoot is the sysfs mount point. Tests point it at a fake tree.
	SysfsRoot string `json:"sysfsRoot" yaml:"sysfsRoot"`

	// ProcRoot is the procfs mount point, used to read the kernel release.
	ProcRoot string `json:"procRoot" yaml:"procRoot"`

	// Kernel overrides the detected kernel release for catalog constraints.
	Kernel string `json:"kernel,omitempty" yaml:"kernel,omitempty"`

	// Catalogs are package catalog files (YAML or JSON).
	Catalogs []string `json:"catalogs,omitempty" yaml:"catalogs,omitempty"`

	// ModaliasDirs are directories of *.modaliases files.
	ModaliasDirs []string `json:"modaliasDirs,omitempty" yaml:"modaliasDirs,omitempty"`

	// MatchPolicy is the modalias fallback after an exact miss: exact, prefix or glob.
	MatchPolicy string `json:"matchPolicy" yaml:"matchPolicy"`

	GPU    GPU    `json:"gpu" yaml:"gpu"`
	Server Server `json:"server" yaml:"server"`
}

// GPU configures the multi-adapter classifier.
type GPU struct {
	// Policy is "attribute" or "vendor".
	Policy  string  `json:"policy" yaml:"policy"`
	Vendors Vendors `json:"vendors" yaml:"vendors"`
}

// Vendors lists PCI vendor IDs for the vendor policy.
type Vendors struct {
	Integrated []uint16 `json:"integrated,omitempty" yaml:"integrated,omitempty"`
	Discrete   []uint16 `json:"discrete,omitempty" yaml:"discrete,omitempty"`
	Mux        []uint16 `json:"mux,omitempty" yaml:"mux,omitempty"`
	SLI        []uint16 `json:"sli,omitempty" yaml:"sli,omitempty"`
	Crossfire  []uint16 `json:"crossfire,omitempty" yaml:"crossfire,omitempty"`
}

// Server configures the query daemon.
type Server struct {
	Address        string  `json:"address" yaml:"address"`
	Port           int     `json:"port" yaml:"port"`
	RateLimit      float64 `json:"rateLimit" yaml:"rateLimit"`
	RateLimitBurst int     `json:"rateLimitBurst" yaml:"rateLimitBurst"`
}

// Option overrides a configuration value.
type Option func(*Config)

// WithSysfsRoot sets the sysfs mount point.
func WithSysfsRoot(root string) Option {
	return func(c *Config) {
		if root != "" {
			c.SysfsRoot = root
		}
	}
}

// WithProcRoot sets the procfs mount point.
func WithProcRoot(root string) Option {
	return func(c *Config) {
		if root != "" {
			c.ProcRoot = root
		}
	}
}

// WithKernel pins the kernel release used for catalog constraints.
func WithKernel(release string) Option {
	return func(c *Config) {
		if release != "" {
			c.Kernel = release
		}
	}
}

// WithCatalogs appends catalog files.
func WithCatalogs(paths ...string) Option {
	return func(c *Config) {
		c.Catalogs = append(c.Catalogs, paths...)
	}
}

// WithModaliasDirs appends modalias directories.
func WithModaliasDirs(dirs ...string) Option {
	return func(c *Config) {
		c.ModaliasDirs = append(c.ModaliasDirs, dirs...)
	}
}

// WithMatchPolicy sets the modalias match policy.
func WithMatchPolicy(policy string) Option {
	return func(c *Config) {
		if policy != "" {
			c.MatchPolicy = policy
		}
	}
}

// WithGPUPolicy sets the GPU classifier policy.
func WithGPUPolicy(policy string) Option {
	return func(c *Config) {
		if policy != "" {
			c.GPU.Policy = policy
		}
	}
}

// WithServerAddress sets the listen address and port. Zero values are ignored.
func WithServerAddress(address string, port int) Option {
	return func(c *Config) {
		if address != "" {
			c.Server.Address = address
		}
		if port != 0 {
			c.Server.Port = port
		}
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		SysfsRoot:    "/sys",
		ProcRoot:     "/proc",
		Catalogs:     []string{"/usr/share/hwmatch/catalog.yaml"},
		ModaliasDirs: []string{"/usr/share/hwmatch/modaliases"},
		MatchPolicy:  modalias.PolicyGlob.String(),
		GPU: GPU{
			Policy: GPUPolicyAttribute,
			Vendors: Vendors{
				Integrated: []uint16{0x8086, 0x1002},
				Discrete:   []uint16{0x10de, 0x1002},
				Mux:        []uint16{0x10de},
				SLI:        []uint16{0x10de},
				Crossfire:  []uint16{0x1002},
			},
		},
		Server: Server{
			Port:           8080,
			RateLimit:      100,
			RateLimitBurst: 200,
		},
	}
}

// Apply applies opts in order and returns c.
func (c *Config) Apply(opts ...Option) *Config {
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Find returns the config file to use, or "" when none exists. An explicit
// path is returned as is so a missing file surfaces as a load error.
func Find(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	var candidates []string
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, FileName))
	}
	candidates = append(candidates, FileName)
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	r, err := serializer.NewFileReaderAuto(path, serializer.WithStrict(true))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, fmt.Sprintf("failed to open config %s", path), err)
	}
	defer r.Close()

	if err := r.Deserialize(cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, fmt.Sprintf("failed to parse config %s", path), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolve finds and loads the config file, falling back to the defaults,
// then applies opts and validates.
func Resolve(explicit string, opts ...Option) (*Config, error) {
	cfg := Default()
	if path := Find(explicit); path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.Apply(opts...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var problems []string

	if c.SysfsRoot == "" {
		problems = append(problems, "sysfsRoot must not be empty")
	}
	if _, err := modalias.ParsePolicy(c.MatchPolicy); err != nil {
		problems = append(problems, fmt.Sprintf("matchPolicy: %v", err))
	}
	switch c.GPU.Policy {
	case GPUPolicyAttribute, GPUPolicyVendor:
	default:
		problems = append(problems, fmt.Sprintf("gpu.policy must be %q or %q, got %q",
			GPUPolicyAttribute, GPUPolicyVendor, c.GPU.Policy))
	}
	if c.Kernel != "" {
		if _, err := version.ParseVersion(c.Kernel); err != nil {
			problems = append(problems, fmt.Sprintf("kernel: %v", err))
		}
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port out of range: %d", c.Server.Port))
	}
	if c.Server.RateLimit < 0 || c.Server.RateLimitBurst < 0 {
		problems = append(problems, "server rate limits must not be negative")
	}

	if len(problems) > 0 {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"invalid configuration: "+strings.Join(problems, "; "),
			map[string]any{"problems": problems})
	}
	return nil
}

// ModaliasPolicy returns the parsed match policy.
func (c *Config) ModaliasPolicy() modalias.Policy {
	p, err := modalias.ParsePolicy(c.MatchPolicy)
	if err != nil {
		return modalias.PolicyExact
	}
	return p
}

// GPUPolicy builds the classifier policy.
func (c *Config) GPUPolicy() gpu.Policy {
	if c.GPU.Policy != GPUPolicyVendor {
		return gpu.AttributePolicy{}
	}
	v := c.GPU.Vendors
	tags := make(map[uint16]gpu.Type, len(v.SLI)+len(v.Crossfire))
	for _, id := range v.SLI {
		tags[id] = gpu.TypeSLI
	}
	for _, id := range v.Crossfire {
		tags[id] = gpu.TypeCrossfire
	}
	return gpu.VendorPolicy{
		IntegratedVendors: v.Integrated,
		DiscreteVendors:   v.Discrete,
		MuxVendors:        v.Mux,
		CompositeTags:     tags,
	}
}
