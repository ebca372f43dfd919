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
package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/NVIDIA/hwmatch/pkg/collector/host"
	"github.com/NVIDIA/hwmatch/pkg/device"
	"github.com/NVIDIA/hwmatch/pkg/errors"
	"github.com/NVIDIA/hwmatch/pkg/gpu"
	"github.com/NVIDIA/hwmatch/pkg/plugin"
	"github.com/NVIDIA/hwmatch/pkg/report"
	"github.com/NVIDIA/hwmatch/pkg/serializer"
	"github.com/NVIDIA/hwmatch/pkg/server"
)

// Registry is what the handlers query. *manager.Manager satisfies it.
type Registry interface {
	Devices(filter device.Type) []*device.Device
	Device(path string) (*device.Device, bool)
	Providers(dev *device.Device) []*plugin.Provider
}

// Handler serves device, provider and GPU reports from a Registry.
type Handler struct {
	registry  Registry
	gpuPolicy gpu.Policy
	host      *host.Info
	version   string
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithGPUPolicy sets the classifier used by /v1/gpu.
func WithGPUPolicy(p gpu.Policy) HandlerOption {
	return func(h *Handler) {
		if p != nil {
			h.gpuPolicy = p
		}
	}
}

// WithHost stamps reports with the host kernel and distribution.
func WithHost(info *host.Info) HandlerOption {
	return func(h *Handler) {
		h.host = info
	}
}

// WithReportVersion stamps reports with the daemon version.
func WithReportVersion(v string) HandlerOption {
	return func(h *Handler) {
		h.version = v
	}
}

// NewHandler returns a Handler over reg.
func NewHandler(reg Registry, opts ...HandlerOption) *Handler {
	h := &Handler{
		registry:  reg,
		gpuPolicy: gpu.AttributePolicy{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns the /v1 routes for server.WithHandler.
func (h *Handler) Routes() map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		"/v1/devices":   h.HandleDevices,
		"/v1/providers": h.HandleProviders,
		"/v1/gpu":       h.HandleGPU,
	}
}

func (h *Handler) reportOptions() []report.Option {
	return []report.Option{report.WithVersion(h.version), report.WithHost(h.host)}
}

// HandleDevices lists devices, optionally filtered by ?type=.
func (h *Handler) HandleDevices(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	filter := device.TypeAny
	if raw := r.URL.Query().Get("type"); raw != "" {
		t, err := device.ParseType(raw)
		if err != nil {
			slog.Debug("invalid device type filter", "type", raw, "error", err)
			server.WriteErrorFromErr(w, r, err, "invalid device type", map[string]any{"type": raw})
			return
		}
		filter = t
	}

	respond(w, r, report.Devices(h.registry, filter, h.reportOptions()...))
}

// HandleProviders lists the providers for the device named by ?path=.
func (h *Handler) HandleProviders(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	path := r.URL.Query().Get("path")
	if path == "" {
		server.WriteError(w, r, http.StatusBadRequest, errors.ErrCodeInvalidRequest,
			"path query parameter is required", false, nil)
		return
	}

	dev, ok := h.registry.Device(path)
	if !ok {
		server.WriteError(w, r, http.StatusNotFound, errors.ErrCodeNotFound,
			fmt.Sprintf("device %q not found", path), false, map[string]any{"path": path})
		return
	}

	respond(w, r, report.Providers(h.registry, []*device.Device{dev}, h.reportOptions()...))
}

// HandleGPU classifies the GPUs currently in the registry.
func (h *Handler) HandleGPU(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	cfg := gpu.FromSource(h.registry, gpu.WithPolicy(h.gpuPolicy))
	respond(w, r, report.GPU(cfg, h.registry, h.reportOptions()...))
}

func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet {
		return true
	}
	w.Header().Set("Allow", http.MethodGet)
	server.WriteError(w, r, http.StatusMethodNotAllowed, errors.ErrCodeMethodNotAllowed,
		"method not allowed", false, map[string]any{"method": r.Method})
	return false
}

// respond writes data as JSON unless ?format= asks for yaml or table.
func respond(w http.ResponseWriter, r *http.Request, data any) {
	format := serializer.FormatJSON
	if f := r.URL.Query().Get("format"); f != "" {
		format = serializer.Format(f)
	}
	if format.IsUnknown() {
		server.WriteError(w, r, http.StatusBadRequest, errors.ErrCodeInvalidRequest,
			fmt.Sprintf("unsupported format %q", format), false,
			map[string]any{"supported": serializer.SupportedFormats()})
		return
	}
	if err := serializer.Respond(r.Context(), w, http.StatusOK, format, data); err != nil {
		server.WriteErrorFromErr(w, r, err, "failed to render response", nil)
	}
}
