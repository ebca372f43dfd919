/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/hwmatch/pkg/device"
	"github.com/NVIDIA/hwmatch/pkg/report"
	"github.com/NVIDIA/hwmatch/pkg/serializer"
)

func watchCmd() *cli.Command {
	return &cli.Command{
		Name:                  "watch",
		EnableShellCompletion: true,
		Usage:                 "Print devices as they are hotplugged",
		Description: `Take an initial scan, then listen for kernel uevents and print each newly
added device with the packages that support it. Devices already known are
not repeated. Runs until interrupted or until --timeout elapses.

Output is one line per device: tab separated columns in table format, one
JSON object per line in json format.

Examples:
  hwmatch watch --type usb
  hwmatch watch --format json --timeout 30s`,
		Flags: []cli.Flag{
			typeFlag(),
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Stop after this long (default: run until interrupted)",
			},
			&cli.BoolFlag{
				Name:  "existing",
				Usage: "Print the devices found by the initial scan first",
			},
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}
			if format == serializer.FormatYAML {
				return fmt.Errorf("watch supports %s and %s output", serializer.FormatTable, serializer.FormatJSON)
			}
			filter, err := device.ParseType(cmd.String("type"))
			if err != nil {
				return err
			}

			s, snap, err := takeSnapshot(ctx, cmd)
			if err != nil {
				return err
			}

			if d := cmd.Duration("timeout"); d > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, d)
				defer cancel()
			}

			p := &entryPrinter{w: stdout(cmd), format: format}
			if cmd.Bool("existing") {
				for _, dev := range snap.Manager.Devices(filter) {
					p.print(report.NewEntry(snap.Manager, dev))
				}
			}

			unsubscribe := snap.Manager.Subscribe(func(dev *device.Device) {
				if dev.HasType(filter) {
					p.print(report.NewEntry(snap.Manager, dev))
				}
			})
			defer unsubscribe()

			return s.Factory.CreateMonitor().Run(ctx, snap.Manager)
		},
	}
}

// entryPrinter writes one device per line.
type entryPrinter struct {
	mu     sync.Mutex
	w      io.Writer
	format serializer.Format
}

func (p *entryPrinter) print(e report.Entry) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var err error
	if p.format == serializer.FormatJSON {
		err = json.NewEncoder(p.w).Encode(struct {
			Time time.Time `json:"time"`
			report.Entry
		}{time.Now().UTC(), e})
	} else {
		_, err = fmt.Fprintf(p.w, "%s\t%s\t%s\n",
			e.Path, strings.Join(e.Types, ","), dashJoin(e.Packages))
	}
	if err != nil {
		slog.Warn("failed to print device", "path", e.Path, "error", err)
	}
}

func dashJoin(s []string) string {
	if len(s) == 0 {
		return "-"
	}
	return strings.Join(s, ",")
}
