package header

import (
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	h := New(WithKind(KindGPUReport), WithAPIVersion(APIVersion), WithMetadata("kernel", "6.8.0"))
	if h.GetKind() != KindGPUReport {
		t.Errorf("Kind = %q", h.GetKind())
	}
	if h.APIVersion != APIVersion {
		t.Errorf("APIVersion = %q", h.APIVersion)
	}
	if h.GetMetadata()["kernel"] != "6.8.0" {
		t.Errorf("Metadata = %v", h.GetMetadata())
	}
}

func TestKindIsValid(t *testing.T) {
	for _, k := range []Kind{KindDeviceReport, KindProviderReport, KindGPUReport, KindCatalog} {
		if !k.IsValid() {
			t.Errorf("%q should be valid", k)
		}
	}
	bogus := Kind("Recipe")
	if bogus.IsValid() {
		t.Error("unknown kind reported valid")
	}
}

func TestInit(t *testing.T) {
	h := New(WithMetadata("stale", "x"))
	h.Init(KindDeviceReport, APIVersion, "v1.2.3")

	if _, ok := h.Metadata["stale"]; ok {
		t.Error("Init must reset metadata")
	}
	if h.Metadata[MetadataVersion] != "v1.2.3" {
		t.Errorf("version = %q", h.Metadata[MetadataVersion])
	}
	if _, err := time.Parse(time.RFC3339, h.Metadata[MetadataTimestamp]); err != nil {
		t.Errorf("timestamp not RFC3339: %v", err)
	}

	h.Init(KindDeviceReport, APIVersion, "")
	if _, ok := h.Metadata[MetadataVersion]; ok {
		t.Error("empty version must not be recorded")
	}
}
