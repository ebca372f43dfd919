// Package plugin defines the matching protocol between devices and
// installable packages.
//
// A Plugin inspects a single device and either recommends a package,
// returning a Provider, or returns nil. Plugins never fail: not
// recognizing a device is the normal outcome.
//
// Two small implementations live here. TypePlugin matches on device class
// and attributes. Func adapts a closure. The modalias-indexed matcher lives
// in package modalias.
package plugin
