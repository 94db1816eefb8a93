package device

import "github.com/prometheus/client_golang/prometheus"

var (
	deviceCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mmdevice",
			Subsystem: "device",
			Name:      "calls_total",
			Help:      "Adapter calls forwarded by device instances",
		},
		[]string{"type", "op", "result"},
	)

	deviceCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mmdevice",
			Subsystem: "device",
			Name:      "call_duration_seconds",
			Help:      "Duration of forwarded adapter calls in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"type", "op"},
	)

	deviceInstances = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "mmdevice",
			Subsystem: "device",
			Name:      "instances",
			Help:      "Device instances not yet destroyed",
		},
		[]string{"type"},
	)

	destroyWarningsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mmdevice",
			Subsystem: "device",
			Name:      "destroy_warnings_total",
			Help:      "Destroy calls that reported a nonzero status",
		},
	)
)

func init() {
	prometheus.MustRegister(deviceCallsTotal, deviceCallDuration, deviceInstances, destroyWarningsTotal)
}
