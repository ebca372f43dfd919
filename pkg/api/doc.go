// Package api provides the HTTP API layer for the hwmatchd daemon.
//
// This package acts as a thin wrapper around the reusable pkg/server package,
// configuring it with the device query routes and a hotplug monitor task.
// The registry is populated once at startup from sysfs and kept current by
// the kernel uevent monitor for as long as the daemon runs.
//
// # Usage
//
// To start the API server:
//
//	package main
//
//	import (
//	    "log"
//	    "github.com/NVIDIA/hwmatch/pkg/api"
//	)
//
//	func main() {
//	    if err := api.Serve(); err != nil {
//	        log.Fatalf("server error: %v", err)
//	    }
//	}
//
// # Endpoints
//
//	GET /v1/devices              all devices and their packages
//	GET /v1/devices?type=gpu,usb devices intersecting the type mask
//	GET /v1/providers?path=...   providers for one device
//	GET /v1/gpu                  multi-GPU classification
//	GET /health, /ready          probes
//	GET /metrics                 Prometheus metrics
//
// Every /v1 endpoint accepts format=json (default), yaml or table.
//
// # Error Handling
//
// Errors use the server package's ErrorResponse envelope:
//
//	{
//	  "code": "INVALID_REQUEST",
//	  "message": "unknown device type \"gpuu\"",
//	  "details": {"type": "gpuu"},
//	  "requestId": "550e8400-e29b-41d4-a716-446655440000",
//	  "timestamp": "2025-01-15T10:30:00Z",
//	  "retryable": false
//	}
//
// # Configuration
//
// The daemon reads the same configuration file as the hwmatch CLI
// ($HWMATCH_CONFIG, ~/.hwmatch.yaml, ./.hwmatch.yaml). PORT overrides the
// listen port, LOG_LEVEL the log level.
//
// # Deployment
//
// The daemon notifies systemd when it is ready and when it stops, so it can
// run as a Type=notify unit.
package api
