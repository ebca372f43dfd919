package sysfs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ueventsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hwmatch_uevents_received_total",
			Help: "Kernel uevents received by action and subsystem.",
		},
		[]string{"action", "subsystem"},
	)

	ueventErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hwmatch_uevent_errors_total",
			Help: "Uevent messages that could not be parsed or resolved to a device.",
		},
	)

	hotplugDevices = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hwmatch_hotplug_devices_total",
			Help: "Devices reported to the sink from add uevents.",
		},
	)
)
