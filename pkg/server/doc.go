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
// Package server is the HTTP layer of the hwmatch daemon.
//
// It serves API handlers supplied by the caller behind a fixed middleware
// chain, plus system endpoints that bypass it:
//
//	GET /health   liveness, always 200 while the process runs
//	GET /ready    readiness, 503 until listening and the ReadyCheck passes
//	GET /metrics  Prometheus exposition
//	GET /         name, version and route listing
//
// # Middleware
//
// Every API request passes, outermost first, through: Prometheus metrics
// (labeled by route pattern), API version negotiation via the
// application/vnd.nvidia.hwmatch.v1+json media type, X-Request-Id
// propagation, panic recovery, a server-wide token bucket
// (golang.org/x/time/rate) with a Retry-After hint, and one request log
// record per call carrying route, query and status (warn for 5xx).
//
// # Errors
//
// Handlers report failures with WriteErrorFromErr, which maps structured
// error codes from pkg/errors to HTTP status codes:
//
//	INVALID_REQUEST      400
//	NOT_FOUND            404
//	METHOD_NOT_ALLOWED   405
//	RATE_LIMIT_EXCEEDED  429
//	SERVICE_UNAVAILABLE  503
//	TIMEOUT              504
//	anything else        500
//
// # Usage
//
//	s := server.New(
//	    server.WithName("hwmatchd"),
//	    server.WithHandler(map[string]http.HandlerFunc{"/v1/devices": h.Devices}),
//	    server.WithTask(func(ctx context.Context) error { return mon.Run(ctx, mgr) }),
//	)
//	err := s.Run(ctx)
//
// Run stops on SIGINT or SIGTERM, drains connections within
// ShutdownTimeout and reports READY=1 and STOPPING=1 to systemd when
// started as a notify service.
package server
