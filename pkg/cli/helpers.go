/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/hwmatch/pkg/config"
	"github.com/NVIDIA/hwmatch/pkg/serializer"
	"github.com/NVIDIA/hwmatch/pkg/snapshotter"
)

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output file path (default: stdout)",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Value:   string(serializer.FormatTable),
		Usage:   fmt.Sprintf("Output format (supported values: %v)", serializer.SupportedFormats()),
	}
}

// parseOutputFormat validates --format.
func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	f := serializer.Format(cmd.String("format"))
	if f.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q", f)
	}
	return f, nil
}

// loadConfig resolves the config file and layers the global flags over it.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Resolve(cmd.String("config"),
		config.WithSysfsRoot(cmd.String("sysfs-root")),
		config.WithProcRoot(cmd.String("proc-root")),
		config.WithKernel(cmd.String("kernel")),
		config.WithCatalogs(cmd.StringSlice("catalog")...),
		config.WithModaliasDirs(cmd.StringSlice("modalias-dir")...),
		config.WithMatchPolicy(cmd.String("match-policy")),
		config.WithGPUPolicy(cmd.String("gpu-policy")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// takeSnapshot scans the machine described by the resolved config.
func takeSnapshot(ctx context.Context, cmd *cli.Command) (*snapshotter.Snapshotter, *snapshotter.Snapshot, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	s := &snapshotter.Snapshotter{
		Version: version,
		Config:  cfg,
	}
	snap, err := s.Take(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scan devices: %w", err)
	}
	return s, snap, nil
}

// writeResult serializes data to --output in --format.
func writeResult(ctx context.Context, cmd *cli.Command, data any) error {
	format, err := parseOutputFormat(cmd)
	if err != nil {
		return err
	}

	path := cmd.String("output")
	var ser *serializer.Writer
	if path == "" {
		ser = serializer.NewWriter(format, stdout(cmd))
	} else {
		ser = serializer.NewFileWriterOrStdout(format, path)
	}
	defer func() {
		if err := ser.Close(); err != nil {
			slog.Warn("failed to close serializer", "error", err)
		}
	}()

	return ser.Serialize(ctx, data)
}

func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}
