// Package gpu classifies the graphics adapters of a system.
//
// Classification is first match wins:
//
//  1. Optimus (reported as TypeHybrid|TypeOptimus): an integrated and a
//     discrete adapter with a pairing marker.
//  2. Hybrid: the same pair without the marker.
//  3. Composite: two or more adapters that are not a hybrid pair,
//     optionally tagged TypeSLI or TypeCrossfire.
//  4. Simple: one adapter or none.
//
// What counts as integrated, discrete or marked is decided by a Policy.
// AttributePolicy reads the attributes set by the enumeration backend.
// VendorPolicy uses boot VGA state and configured PCI vendor IDs.
//
//	cfg := gpu.FromSource(m, gpu.WithPolicy(policy))
//	if cfg.HasType(gpu.TypeOptimus) {
//	    providers := cfg.Providers(m)
//	    // ...
//	}
package gpu
