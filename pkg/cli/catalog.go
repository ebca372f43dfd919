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
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/hwmatch/pkg/catalog"
	"github.com/NVIDIA/hwmatch/pkg/collector/host"
	"github.com/NVIDIA/hwmatch/pkg/errors"
	"github.com/NVIDIA/hwmatch/pkg/modalias"
)

func catalogCmd() *cli.Command {
	return &cli.Command{
		Name:                  "catalog",
		EnableShellCompletion: true,
		Usage:                 "Print the effective package catalog",
		Description: `Print the builtin catalog merged with the configured and --catalog files.
Use --format yaml to obtain a starting point for a site catalog.`,
		Flags: []cli.Flag{
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cat, err := catalog.Layered(cfg.Catalogs...)
			if err != nil {
				return err
			}
			return writeResult(ctx, cmd, cat)
		},
	}
}

func modaliasesCmd() *cli.Command {
	return &cli.Command{
		Name:                  "modaliases",
		EnableShellCompletion: true,
		Usage:                 "Generate a .modaliases table from the kernel's modules.alias",
		Description: `Extract the aliases of the given kernel modules from modules.alias and
write them as a .modaliases table attributing them to a package. Drop the
result into a modalias directory to make the package resolvable.

Examples:
  hwmatch modaliases --module nvidia --module nvidia_drm --package nvidia-driver \
    --output /usr/share/hwmatch/modaliases/nvidia-driver.modaliases`,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     "module",
				Aliases:  []string{"m"},
				Usage:    "Kernel module to extract (can be repeated)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "package",
				Aliases:  []string{"p"},
				Usage:    "Package that ships the modules",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "modules-alias",
				Usage: "Path to modules.alias (default: /lib/modules/<kernel>/modules.alias)",
			},
			outputFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.String("modules-alias")
			if path == "" {
				p, err := defaultModulesAlias(ctx, cmd)
				if err != nil {
					return err
				}
				path = p
			}

			f, err := os.Open(path)
			if err != nil {
				return errors.Wrap(errors.ErrCodeNotFound, fmt.Sprintf("failed to open %s", path), err)
			}
			defer f.Close()

			pkg := cmd.String("package")
			table, err := modalias.FromModulesAlias(f, pkg, pkg, cmd.StringSlice("module"))
			if err != nil {
				return err
			}
			if table.Len() == 0 {
				slog.Warn("no aliases found for modules", "modules", cmd.StringSlice("module"), "path", path)
			}

			out := stdout(cmd)
			if o := cmd.String("output"); o != "" {
				file, err := os.Create(o)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", o, err)
				}
				defer func() {
					if err := file.Close(); err != nil {
						slog.Warn("failed to close output", "path", o, "error", err)
					}
				}()
				out = file
			}
			_, err = table.WriteTo(out)
			return err
		},
	}
}

// defaultModulesAlias locates modules.alias for the pinned or running kernel.
func defaultModulesAlias(ctx context.Context, cmd *cli.Command) (string, error) {
	kernel := cmd.String("kernel")
	if kernel == "" {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return "", err
		}
		kernel = cfg.Kernel
		if kernel == "" {
			info, err := (&host.Collector{ProcRoot: cfg.ProcRoot}).Collect(ctx)
			if err != nil {
				return "", fmt.Errorf("failed to detect kernel release, use --modules-alias: %w", err)
			}
			kernel = info.Kernel
		}
	}
	return filepath.Join("/lib/modules", kernel, "modules.alias"), nil
}
