package serializer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string
	Count int
	Tags  []string
	Inner *inner
}

type inner struct {
	Enabled bool
}

type rows struct{}

func (rows) Columns() []string { return []string{"PATH", "PACKAGE"} }
func (rows) Rows() [][]string {
	return [][]string{{"/dev/a", "pkg-a"}, {"/dev/longer", "pkg-b"}}
}

func TestWriterFormats(t *testing.T) {
	data := sample{Name: "x", Count: 2, Tags: []string{"a"}, Inner: &inner{Enabled: true}}

	tests := []struct {
		format   Format
		contains []string
	}{
		{FormatJSON, []string{`"Name": "x"`, `"Count": 2`}},
		{FormatYAML, []string{"name: x", "count: 2", "enabled: true"}},
		{FormatTable, []string{"FIELD", "Count", "Inner.Enabled", "Tags.[0]"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			w := NewWriter(tt.format, &buf)
			if err := w.Serialize(context.Background(), data); err != nil {
				t.Fatalf("Serialize() error = %v", err)
			}
			for _, s := range tt.contains {
				if !strings.Contains(buf.String(), s) {
					t.Errorf("output missing %q:\n%s", s, buf.String())
				}
			}
		})
	}
}

func TestWriterUnknownFormatFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(Format("xml"), &buf)
	if err := w.Serialize(context.Background(), map[string]int{"a": 1}); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("want JSON, got %q", buf.String())
	}
}

func TestWriterTabular(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(FormatTable, &buf).Serialize(context.Background(), rows{}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("want 4 lines, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "PATH") || !strings.Contains(lines[3], "pkg-b") {
		t.Errorf("unexpected table:\n%s", buf.String())
	}
	// columns are aligned
	if strings.Index(lines[2], "pkg-a") != strings.Index(lines[3], "pkg-b") {
		t.Errorf("columns not aligned:\n%s", buf.String())
	}
}

func TestWriterEmptyTable(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(FormatTable, &buf).Serialize(context.Background(), struct{}{}); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "<empty>" {
		t.Errorf("got %q", buf.String())
	}
}

func TestWriterCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	if err := NewWriter(FormatJSON, &buf).Serialize(ctx, 1); err == nil {
		t.Error("expected error for canceled context")
	}
	if buf.Len() != 0 {
		t.Error("nothing should be written")
	}
}

func TestFileWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	w := NewFileWriterOrStdout(FormatJSON, path)
	if err := w.Serialize(context.Background(), []int{1, 2}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "2") {
		t.Errorf("file content = %q", b)
	}
}

func TestSupportedFormats(t *testing.T) {
	for _, f := range SupportedFormats() {
		if Format(f).IsUnknown() {
			t.Errorf("%q reported as unknown", f)
		}
	}
}
