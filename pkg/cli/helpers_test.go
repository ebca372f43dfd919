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

package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/hwmatch/pkg/report"
	"github.com/NVIDIA/hwmatch/pkg/serializer"
)

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		name       string
		format     string
		wantFormat serializer.Format
		wantErr    bool
	}{
		{
			name:       "valid yaml format",
			format:     "yaml",
			wantFormat: serializer.FormatYAML,
			wantErr:    false,
		},
		{
			name:       "valid json format",
			format:     "json",
			wantFormat: serializer.FormatJSON,
			wantErr:    false,
		},
		{
			name:       "valid table format",
			format:     "table",
			wantFormat: serializer.FormatTable,
			wantErr:    false,
		},
		{
			name:       "invalid format xml",
			format:     "xml",
			wantFormat: "",
			wantErr:    true,
		},
		{
			name:       "empty format",
			format:     "",
			wantFormat: "",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Create a minimal CLI command with the format flag
			cmd := &cli.Command{
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Value: tt.format,
					},
				},
				Action: func(_ context.Context, c *cli.Command) error {
					got, err := parseOutputFormat(c)
					if (err != nil) != tt.wantErr {
						t.Errorf("parseOutputFormat() error = %v, wantErr %v", err, tt.wantErr)
						return nil
					}
					if !tt.wantErr && got != tt.wantFormat {
						t.Errorf("parseOutputFormat() = %v, want %v", got, tt.wantFormat)
					}
					return nil
				},
			}

			// Run the command with the test format
			err := cmd.Run(context.Background(), []string{"test"})
			if err != nil {
				t.Fatalf("failed to run command: %v", err)
			}
		})
	}
}

func TestCommandLister(t *testing.T) {
	commandLister(context.Background(), nil)

	var buf bytes.Buffer
	rootCmd := &cli.Command{
		Name:   "root",
		Writer: &buf,
		Commands: []*cli.Command{
			{Name: "visible1", Hidden: false},
			{Name: "hidden", Hidden: true},
			{Name: "visible2", Hidden: false},
		},
	}
	commandLister(context.Background(), rootCmd)

	if got := buf.String(); got != "visible1\nvisible2\n" {
		t.Errorf("commandLister() wrote %q", got)
	}
}

func TestWriteResultToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "devices.yaml")

	cmd := &cli.Command{
		Flags: []cli.Flag{outputFlag(), formatFlag()},
		Action: func(ctx context.Context, c *cli.Command) error {
			return writeResult(ctx, c, &report.Report{Devices: []report.Entry{{Packages: []string{"pkg"}}}})
		},
	}
	if err := cmd.Run(context.Background(), []string{"test", "--output", out, "--format", "yaml"}); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "- pkg") {
		t.Errorf("unexpected output:\n%s", b)
	}
}

func TestEntryPrinter(t *testing.T) {
	e := report.Entry{Packages: []string{"a", "b"}}
	e.Path = "/sys/devices/x"
	e.Types = []string{"gpu", "pci"}

	tests := []struct {
		format serializer.Format
		want   string
	}{
		{serializer.FormatTable, "/sys/devices/x\tgpu,pci\ta,b\n"},
		{serializer.FormatJSON, `"path":"/sys/devices/x"`},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			p := &entryPrinter{w: &buf, format: tt.format}
			p.print(e)
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("print() = %q, want %q", buf.String(), tt.want)
			}
		})
	}

	if got := dashJoin(nil); got != "-" {
		t.Errorf("dashJoin(nil) = %q", got)
	}
}
