// Package logging provides structured logging utilities for hwmatch binaries.
//
// # Overview
//
// This package wraps the standard library slog package with project defaults
// so the CLI and the query daemon log the same way. It supports
// environment-based log level configuration, module/version context injection,
// and source location tracking for debug logs.
//
// # Log Levels
//
// Supported log levels (case-insensitive):
//   - DEBUG: per-plugin match decisions, skipped sysfs entries (with source location)
//   - INFO: hotplug arrivals, server lifecycle (default)
//   - WARN/WARNING: unknown directives in .modaliases files, unreadable devices
//   - ERROR: failures requiring attention
//
// # Usage
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("hwmatch", version)
//	    slog.Info("scanning devices", "root", "/sys")
//	}
//
// Creating a custom logger:
//
//	logger := logging.NewStructuredLogger("hwmatchd", "v1.0.0", "debug")
//	logger.Info("server starting", "port", 8080)
//
// # Environment Configuration
//
// The LOG_LEVEL environment variable controls logging verbosity:
//
//	LOG_LEVEL=debug hwmatch providers --path /sys/devices/pci0000:00/0000:00:02.0
//
// If LOG_LEVEL is not set, defaults to INFO level.
//
// # Output Format
//
// All logs are written to stderr in JSON format:
//
//	{
//	    "time": "2025-01-15T10:30:00.123Z",
//	    "level": "INFO",
//	    "msg": "device added",
//	    "module": "hwmatchd",
//	    "version": "v1.0.0",
//	    "path": "/sys/devices/pci0000:00/0000:01:00.0"
//	}
package logging
