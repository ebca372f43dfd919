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

package defaults

import "time"

// Collector timeouts for device enumeration.
const (
	// CollectorTimeout is the default timeout for a full sysfs scan.
	CollectorTimeout = 10 * time.Second

	// CollectorMaxFileSize caps reads of a single sysfs attribute.
	CollectorMaxFileSize = 64 * 1024
)

// Monitor settings for the kernel uevent listener.
const (
	// MonitorReceiveBuffer is the socket receive buffer requested for the
	// uevent netlink socket. Bursts at boot overflow the kernel default.
	MonitorReceiveBuffer = 1 << 20

	// MonitorMessageSize is the read buffer for a single uevent message.
	MonitorMessageSize = 8 * 1024

	// MonitorSettleDelay is how long the monitor waits after an add event
	// before reading the new device's attributes from sysfs.
	MonitorSettleDelay = 100 * time.Millisecond
)

// Handler timeouts for HTTP request processing.
const (
	// QueryHandlerTimeout is the timeout for device and provider queries.
	QueryHandlerTimeout = 15 * time.Second
)

// Server timeouts for HTTP server configuration.
const (
	// ServerReadTimeout is the maximum duration for reading request headers.
	ServerReadTimeout = 10 * time.Second

	// ServerReadHeaderTimeout prevents slow header attacks.
	ServerReadHeaderTimeout = 5 * time.Second

	// ServerWriteTimeout is the maximum duration for writing a response.
	ServerWriteTimeout = 30 * time.Second

	// ServerIdleTimeout is the maximum duration to wait for the next request.
	ServerIdleTimeout = 120 * time.Second

	// ServerShutdownTimeout is the maximum duration for graceful shutdown.
	ServerShutdownTimeout = 30 * time.Second
)
