// Package manager ties devices and plugins together.
//
// A Manager holds an append-only, insertion-ordered device registry and an
// append-only plugin list whose order is match priority. Providers for a
// device are computed on every call by asking each plugin in turn:
//
//	m, err := manager.New(
//	    manager.WithDevices(devices...),
//	    manager.WithPlugins(plugins...),
//	)
//	for _, gpu := range m.Devices(device.TypeGPU) {
//	    for _, p := range m.Providers(gpu) {
//	        fmt.Println(p.Plugin().Name(), p.Package())
//	    }
//	}
//
// # Hotplug
//
// AddDevice registers devices that appear after startup. Known paths are
// ignored. New devices are delivered synchronously, in subscription order,
// to every Listener registered with Subscribe. Listeners run without the
// registry lock held and may query the manager. The function returned by
// Subscribe cancels the subscription.
//
// # Metrics
//
// Registrations, duplicate hotplug events and provider resolution latency
// are exported as Prometheus metrics with the hwmatch_ prefix.
package manager
