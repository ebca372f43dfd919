/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/hwmatch/pkg/config"
	"github.com/NVIDIA/hwmatch/pkg/logging"
	"github.com/NVIDIA/hwmatch/pkg/modalias"
)

const (
	name           = "hwmatch"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Execute runs the hwmatch command line. It is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cli.Command {
	return &cli.Command{
		Name:                  name,
		Version:               fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		EnableShellCompletion: true,
		ShellComplete:         commandLister,
		Usage:                 "Hardware detection and driver package resolution",
		Description: `hwmatch enumerates the devices on this machine, classifies multi-GPU
setups and resolves which packages provide drivers for each device.

Packages come from the builtin catalog, any catalogs listed in the config
file or --catalog, and .modaliases tables in the configured directories.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file (default: $HOME/" + config.FileName + ")",
				Sources: cli.EnvVars(config.EnvConfig),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "warn",
				Sources: cli.EnvVars(logging.EnvVarLogLevel),
			},
			&cli.StringFlag{
				Name:    "sysfs-root",
				Usage:   "sysfs mount point",
				Sources: cli.EnvVars("HWMATCH_SYSFS_ROOT"),
			},
			&cli.StringFlag{
				Name:    "proc-root",
				Usage:   "procfs mount point",
				Sources: cli.EnvVars("HWMATCH_PROC_ROOT"),
			},
			&cli.StringFlag{
				Name:  "kernel",
				Usage: "Kernel release used for catalog constraints (default: running kernel)",
			},
			&cli.StringSliceFlag{
				Name:  "catalog",
				Usage: "Additional catalog file, merged over the builtin catalog (can be repeated)",
			},
			&cli.StringSliceFlag{
				Name:  "modalias-dir",
				Usage: "Additional directory of .modaliases tables (can be repeated)",
			},
			&cli.StringFlag{
				Name: "match-policy",
				Usage: fmt.Sprintf("Modalias fallback after an exact miss (supported values: %s, %s, %s)",
					modalias.PolicyExact, modalias.PolicyPrefix, modalias.PolicyGlob),
			},
			&cli.StringFlag{
				Name: "gpu-policy",
				Usage: fmt.Sprintf("Multi-GPU classifier (supported values: %s, %s)",
					config.GPUPolicyAttribute, config.GPUPolicyVendor),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			level := cmd.String("log-level")
			logging.SetDefaultStructuredLoggerWithLevel(name, version, level)
			slog.Debug("starting",
				"name", name,
				"version", version,
				"commit", commit,
				"date", date,
				"logLevel", level)
			return ctx, nil
		},
		Commands: []*cli.Command{
			devicesCmd(),
			providersCmd(),
			gpuCmd(),
			watchCmd(),
			catalogCmd(),
			modaliasesCmd(),
		},
	}
}

// commandLister completes the visible subcommand names.
func commandLister(_ context.Context, cmd *cli.Command) {
	if cmd == nil {
		return
	}
	out := stdout(cmd)
	for _, c := range cmd.Commands {
		if c.Hidden {
			continue
		}
		fmt.Fprintln(out, c.Name)
	}
}
