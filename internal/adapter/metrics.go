package adapter

import "github.com/prometheus/client_golang/prometheus"

var (
	modulesLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "mmdevice",
			Subsystem: "adapter",
			Name:      "modules_loaded",
			Help:      "Adapter modules currently loaded",
		},
	)

	moduleLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mmdevice",
			Subsystem: "adapter",
			Name:      "loads_total",
			Help:      "Adapter module load attempts by result",
		},
		[]string{"result"},
	)

	moduleRefs = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "mmdevice",
			Subsystem: "adapter",
			Name:      "module_refs",
			Help:      "Live references held on each loaded adapter module",
		},
		[]string{"module"},
	)
)

func init() {
	prometheus.MustRegister(modulesLoaded, moduleLoadsTotal, moduleRefs)
}
