package version

import (
	"errors"
	"testing"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in      string
		want    Version
		wantErr error
	}{
		{"6", Version{Major: 6, Precision: 1}, nil},
		{"v6.8", Version{Major: 6, Minor: 8, Precision: 2}, nil},
		{"6.8.0-45-generic", Version{Major: 6, Minor: 8, Precision: 3, Extras: "-45-generic"}, nil},
		{"6.18.44-fc-v139", Version{Major: 6, Minor: 18, Patch: 44, Precision: 3, Extras: "-fc-v139"}, nil},
		{"", Version{}, ErrEmptyVersion},
		{"6.8.0.1", Version{}, ErrTooManyComponents},
		{"6.x", Version{}, ErrNonNumeric},
		{"6..8", Version{}, ErrNonNumeric},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseVersion(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseVersion(%q) error = %v, want %v", tt.in, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseVersion(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseVersion(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCompareRespectsPrecision(t *testing.T) {
	running := MustParseVersion("6.1.55-generic")
	if running.Compare(MustParseVersion("6.1")) != 0 {
		t.Error("6.1.55 should equal 6.1 at precision 2")
	}
	if running.Compare(MustParseVersion("6.2")) != -1 {
		t.Error("6.1.55 should be older than 6.2")
	}
	if running.Compare(MustParseVersion("5")) != 1 {
		t.Error("6.1.55 should be newer than 5")
	}
	if !running.EqualsOrNewer(MustParseVersion("6.1.55")) {
		t.Error("EqualsOrNewer on identical version")
	}
}

func TestConstraints(t *testing.T) {
	running := MustParseVersion("6.8.0-45-generic")

	tests := []struct {
		in   string
		want bool
	}{
		{"", true},
		{">= 5.15", true},
		{">=6.9", false},
		{"< 7", true},
		{">= 5.15, < 6.8", false},
		{">= 5.15, < 7", true},
		{"6.8", true},
		{"== 6.8.0", true},
		{"!= 6.8", false},
		{"> 6.8", false},
		{"<= 6", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			cs, err := ParseConstraints(tt.in)
			if err != nil {
				t.Fatalf("ParseConstraints(%q) error = %v", tt.in, err)
			}
			if got := cs.Check(running); got != tt.want {
				t.Errorf("%q.Check(6.8.0) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseConstraintErrors(t *testing.T) {
	for _, in := range []string{">", "=>6", ">= six", ">=>6"} {
		if _, err := ParseConstraints(in); err == nil {
			t.Errorf("ParseConstraints(%q) expected error", in)
		}
	}
}

func TestConstraintsString(t *testing.T) {
	cs, err := ParseConstraints(">= 5.15,<7")
	if err != nil {
		t.Fatal(err)
	}
	if got := cs.String(); got != ">=5.15, <7" {
		t.Errorf("String() = %q", got)
	}
}
