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

package manager

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	sourceInitial = "initial"
	sourceHotplug = "hotplug"
)

var (
	pluginRegistrations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hwmatch_plugin_registrations_total",
			Help: "Total number of plugins registered",
		},
	)

	deviceRegistrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hwmatch_device_registrations_total",
			Help: "Total number of devices added to the registry",
		},
		[]string{"source"}, // initial or hotplug
	)

	duplicateHotplugEvents = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hwmatch_hotplug_duplicates_total",
			Help: "Total number of hotplug events ignored because the device was already known",
		},
	)

	providersResolved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hwmatch_providers_resolved_total",
			Help: "Total number of providers returned by device resolution",
		},
	)

	providerResolutionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hwmatch_provider_resolution_duration_seconds",
			Help:    "Time taken to resolve providers for a single device",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
		},
	)
)
