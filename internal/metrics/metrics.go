// Package metrics exposes Prometheus collectors for the controller's
// operations. Registration is optional; embedding callers wire the handler
// into their own mux.
package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	regOK atomic.Bool

	launches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "solarctl",
			Subsystem: "simulator",
			Name:      "launches_total",
			Help:      "Number of successful simulator launches.",
		}, []string{"slug"},
	)
	launchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "solarctl",
			Subsystem: "simulator",
			Name:      "launch_failures_total",
			Help:      "Number of failed simulator launches.",
		}, []string{"slug"},
	)
	directives = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "solarctl",
			Subsystem: "control",
			Name:      "directives_total",
			Help:      "Control directives written, by kind.",
		}, []string{"kind"},
	)
	captureTimeouts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "solarctl",
			Subsystem: "screenshot",
			Name:      "capture_timeouts_total",
			Help:      "On-demand captures that timed out.",
		},
	)
	logReads = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "solarctl",
			Subsystem: "logs",
			Name:      "reads_total",
			Help:      "Log tail reads served.",
		},
	)
)

// Register registers all metrics with the provided registerer. Safe to
// call multiple times.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{launches, launchFailures, directives, captureTimeouts, logReads}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Handler returns an http.Handler serving Prometheus metrics for the
// default gatherer.
func Handler() http.Handler { return promhttp.Handler() }

func IncLaunch(slug string)        { launches.WithLabelValues(slug).Inc() }
func IncLaunchFailure(slug string) { launchFailures.WithLabelValues(slug).Inc() }
func IncDirective(kind string)     { directives.WithLabelValues(kind).Inc() }
func IncCaptureTimeout()           { captureTimeouts.Inc() }
func IncLogRead()                  { logReads.Inc() }
