/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/hwmatch/pkg/device"
	"github.com/NVIDIA/hwmatch/pkg/errors"
	"github.com/NVIDIA/hwmatch/pkg/gpu"
	"github.com/NVIDIA/hwmatch/pkg/report"
)

func typeFlag() cli.Flag {
	return &cli.StringFlag{
		Name: "type",
		Usage: fmt.Sprintf("Only devices of any of these comma separated types (supported values: %v)",
			device.TypeNames()),
	}
}

func devicesCmd() *cli.Command {
	return &cli.Command{
		Name:                  "devices",
		EnableShellCompletion: true,
		Usage:                 "List detected devices and the packages that support them",
		Description: `Scan sysfs for PCI, USB, HID, Bluetooth and DMI devices and resolve the
packages providing drivers for each one.

Examples:
  hwmatch devices
  hwmatch devices --type gpu,wireless --format yaml`,
		Flags: []cli.Flag{
			typeFlag(),
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			filter, err := device.ParseType(cmd.String("type"))
			if err != nil {
				return err
			}
			_, snap, err := takeSnapshot(ctx, cmd)
			if err != nil {
				return err
			}
			return writeResult(ctx, cmd, report.Devices(snap.Manager, filter,
				report.WithVersion(version), report.WithHost(snap.Host)))
		},
	}
}

func providersCmd() *cli.Command {
	return &cli.Command{
		Name:                  "providers",
		EnableShellCompletion: true,
		Usage:                 "List the package providers for devices",
		Description: `List every provider resolved for the selected devices. A provider names
the plugin that matched and the package it suggests.

Examples:
  hwmatch providers
  hwmatch providers --path /sys/devices/pci0000:00/0000:00:01.0/0000:01:00.0`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "path",
				Usage: "Sysfs path of a single device",
			},
			typeFlag(),
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			filter, err := device.ParseType(cmd.String("type"))
			if err != nil {
				return err
			}
			_, snap, err := takeSnapshot(ctx, cmd)
			if err != nil {
				return err
			}

			devs := snap.Manager.Devices(filter)
			if path := cmd.String("path"); path != "" {
				dev, ok := snap.Manager.Device(path)
				if !ok {
					return errors.NewWithContext(errors.ErrCodeNotFound,
						fmt.Sprintf("device %q not found", path), map[string]any{"path": path})
				}
				devs = []*device.Device{dev}
			}

			return writeResult(ctx, cmd, report.Providers(snap.Manager, devs,
				report.WithVersion(version), report.WithHost(snap.Host)))
		},
	}
}

func gpuCmd() *cli.Command {
	return &cli.Command{
		Name:                  "gpu",
		EnableShellCompletion: true,
		Usage:                 "Classify the GPU configuration",
		Description: `Classify the graphics adapters as simple, hybrid, optimus or composite
(sli, crossfire), identify the primary and secondary adapter and resolve the
driver packages for the detection device.

Examples:
  hwmatch gpu
  hwmatch gpu --gpu-policy vendor --format json`,
		Flags: []cli.Flag{
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			s, snap, err := takeSnapshot(ctx, cmd)
			if err != nil {
				return err
			}
			cfg := gpu.FromSource(snap.Manager, gpu.WithPolicy(s.Config.GPUPolicy()))
			return writeResult(ctx, cmd, report.GPU(cfg, snap.Manager,
				report.WithVersion(version), report.WithHost(snap.Host)))
		},
	}
}
