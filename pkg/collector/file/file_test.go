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

package file

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func TestNewParserDefaults(t *testing.T) {
	p := NewParser()
	if p.delimiter != "\n" {
		t.Errorf("delimiter = %q", p.delimiter)
	}
	if p.maxSize != 1<<20 {
		t.Errorf("maxSize = %d", p.maxSize)
	}
	if !p.skipComments {
		t.Error("skipComments should default to true")
	}
	if p.kvDelimiter != "=" {
		t.Errorf("kvDelimiter = %q", p.kvDelimiter)
	}
}

func TestGetLines(t *testing.T) {
	tests := []struct {
		name    string
		content string
		opts    []Option
		want    []string
		errMsg  string
	}{
		{
			name:    "modaliases table",
			content: "# generated\nalias pci:v000010DEd* nvidia nvidia-driver\n\n  alias usb:v0BDAp8179* r8188eu rtl-firmware  \n",
			want: []string{
				"alias pci:v000010DEd* nvidia nvidia-driver",
				"alias usb:v0BDAp8179* r8188eu rtl-firmware",
			},
		},
		{
			name:    "comments kept when disabled",
			content: "# a\nb",
			opts:    []Option{WithSkipComments(false)},
			want:    []string{"# a", "b"},
		},
		{
			name:    "custom delimiter",
			content: "a;b;;c",
			opts:    []Option{WithDelimiter(";")},
			want:    []string{"a", "b", "c"},
		},
		{
			name:    "too large",
			content: strings.Repeat("x", 32),
			opts:    []Option{WithMaxSize(16)},
			errMsg:  "exceeds maximum size",
		},
		{
			name:    "invalid utf8",
			content: "ok\n\xff\xfe",
			errMsg:  "not valid UTF-8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewParser(tt.opts...).GetLines(writeFile(t, tt.content))
			if tt.errMsg != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
					t.Fatalf("GetLines() error = %v, want error containing %q", err, tt.errMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetLines() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("GetLines() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetLines_PathErrors(t *testing.T) {
	p := NewParser()
	if _, err := p.GetLines(""); err == nil || !strings.Contains(err.Error(), "cannot be empty") {
		t.Errorf("expected empty path error, got %v", err)
	}
	if _, err := p.GetLines(filepath.Join(t.TempDir(), "missing")); err == nil || !strings.Contains(err.Error(), "failed to read file") {
		t.Errorf("expected read error, got %v", err)
	}
}

func TestGetMap(t *testing.T) {
	tests := []struct {
		name    string
		content string
		opts    []Option
		want    map[string]string
	}{
		{
			name:    "sysfs uevent",
			content: "DRIVER=nvidia\nPCI_CLASS=30000\nPCI_ID=10DE:1C8D\nMODALIAS=pci:v000010DEd00001C8Dsv00001028sd000007BEbc03sc00i00\n",
			want: map[string]string{
				"DRIVER":    "nvidia",
				"PCI_CLASS": "30000",
				"PCI_ID":    "10DE:1C8D",
				"MODALIAS":  "pci:v000010DEd00001C8Dsv00001028sd000007BEbc03sc00i00",
			},
		},
		{
			name:    "value keeps later delimiters",
			content: "MODALIAS=of:N*T*Cfoo=bar",
			want:    map[string]string{"MODALIAS": "of:N*T*Cfoo=bar"},
		},
		{
			name:    "key only uses default",
			content: "flag\nk=v",
			opts:    []Option{WithVDefault("true")},
			want:    map[string]string{"flag": "true", "k": "v"},
		},
		{
			name:    "skip empty values",
			content: "a=\nb=1\nc",
			opts:    []Option{WithSkipEmptyValues(true)},
			want:    map[string]string{"b": "1"},
		},
		{
			name:    "trim quotes",
			content: `NAME="Intel UHD 630"`,
			opts:    []Option{WithVTrimChars(`"`)},
			want:    map[string]string{"NAME": "Intel UHD 630"},
		},
		{
			name:    "custom kv delimiter",
			content: "vendor: 0x10de",
			opts:    []Option{WithKVDelimiter(":")},
			want:    map[string]string{"vendor": "0x10de"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewParser(tt.opts...).GetMap(writeFile(t, tt.content))
			if err != nil {
				t.Fatalf("GetMap() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("GetMap() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseMap_NulDelimited(t *testing.T) {
	payload := []byte("add@/devices/pci0000:00/0000:01:00.0\x00ACTION=add\x00DEVPATH=/devices/pci0000:00/0000:01:00.0\x00SUBSYSTEM=pci\x00SEQNUM=4120\x00")

	got, err := NewParser(WithDelimiter("\x00")).ParseMap(payload)
	if err != nil {
		t.Fatalf("ParseMap() unexpected error: %v", err)
	}
	if got["ACTION"] != "add" || got["SUBSYSTEM"] != "pci" || got["SEQNUM"] != "4120" {
		t.Errorf("ParseMap() = %v", got)
	}
	if v, ok := got["add@/devices/pci0000:00/0000:01:00.0"]; !ok || v != "" {
		t.Errorf("header should map to the empty default, got %q (present=%v)", v, ok)
	}
}

func TestReadString(t *testing.T) {
	path := writeFile(t, "0x10de\n")
	got, err := ReadString(path)
	if err != nil || got != "0x10de" {
		t.Errorf("ReadString() = %q, %v", got, err)
	}

	got, err = ReadString(filepath.Join(t.TempDir(), "absent"))
	if err != nil || got != "" {
		t.Errorf("ReadString(missing) = %q, %v; want empty, nil", got, err)
	}
}
