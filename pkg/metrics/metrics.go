// Package metrics exposes prometheus collectors describing registry and backend setup activity.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const subsystem = "hlsflow"

var (
	passesRegistered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "passes_registered_total",
			Help:      "Count of optimization passes registered, by backend scope.",
		},
		[]string{"backend"},
	)
	flowsRegistered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "flows_registered_total",
			Help:      "Count of flows registered, by backend scope.",
		},
		[]string{"backend"},
	)
	extraPasses = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Subsystem: subsystem,
			Name:      "extra_passes",
			Help:      "Number of passes a backend registered outside its named core flows.",
		},
		[]string{"backend"},
	)
	setupFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "backend_setup_failures_total",
			Help:      "Count of aborted backend setups, by backend and stage.",
		},
		[]string{"backend", "stage"},
	)
)

// Register adds every collector to reg. Registering twice with the same
// registry is not an error. Collectors record even when never registered.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{passesRegistered, flowsRegistered, extraPasses, setupFailures} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}

// Reset drops every recorded series, so a later gather reports one build only.
func Reset() {
	passesRegistered.Reset()
	flowsRegistered.Reset()
	extraPasses.Reset()
	setupFailures.Reset()
}

func RecordPassRegistered(backend string) {
	passesRegistered.WithLabelValues(scopeLabel(backend)).Inc()
}

func RecordFlowRegistered(backend string) {
	flowsRegistered.WithLabelValues(scopeLabel(backend)).Inc()
}

func RecordExtraPasses(backend string, n int) {
	extraPasses.WithLabelValues(scopeLabel(backend)).Set(float64(n))
}

func RecordSetupFailure(backend, stage string) {
	setupFailures.WithLabelValues(scopeLabel(backend), stage).Inc()
}

func scopeLabel(backend string) string {
	if backend == "" {
		return "any"
	}
	return backend
}
