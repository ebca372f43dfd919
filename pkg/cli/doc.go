/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package cli implements the command-line interface for the hwmatch tool.
//
// # Overview
//
// The hwmatch CLI enumerates the devices of the local machine from sysfs,
// classifies multi-GPU configurations and resolves which packages provide
// drivers for each device. It is designed for distribution installers and
// administrators preparing GPU workstations and servers.
//
// # Commands
//
// devices - List devices and their packages:
//
//	hwmatch devices [--type gpu,usb] [--output FILE] [--format table|json|yaml]
//
// providers - List providers for all or one device:
//
//	hwmatch providers [--path /sys/devices/...]
//
// gpu - Classify the GPU configuration:
//
//	hwmatch gpu [--gpu-policy attribute|vendor]
//
// watch - Print devices as they are hotplugged:
//
//	hwmatch watch [--type usb] [--timeout 30s] [--existing]
//
// catalog - Print the effective package catalog:
//
//	hwmatch catalog --format yaml
//
// modaliases - Build a .modaliases table from modules.alias:
//
//	hwmatch modaliases --module nvidia --package nvidia-driver
//
// # Global Flags
//
//	--config, -c      Config file (default: $HOME/.hwmatch.yaml)
//	--log-level       Log level: debug, info, warn, error (default: warn)
//	--sysfs-root      sysfs mount point (default: /sys)
//	--proc-root       procfs mount point (default: /proc)
//	--kernel          Kernel release for catalog constraints
//	--catalog         Extra catalog file, repeatable
//	--modalias-dir    Extra .modaliases directory, repeatable
//	--match-policy    exact, prefix or glob
//	--gpu-policy      attribute or vendor
//
// # Environment Variables
//
//	HWMATCH_CONFIG      Config file path
//	HWMATCH_SYSFS_ROOT  sysfs mount point
//	HWMATCH_PROC_ROOT   procfs mount point
//	LOG_LEVEL           Log level
//
// # Exit Codes
//
//	0  Success
//	1  Any error (invalid arguments, scan failure, unknown device)
package cli
