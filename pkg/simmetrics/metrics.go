// Package simmetrics tracks run-level Prometheus metrics for a cascadesim
// simulation. There is no HTTP listener: the registry is gathered into a
// plain text exposition block and appended to the trace log at run end.
package simmetrics

import (
	"bytes"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Registry holds the simulation's gauges and counters.
type Registry struct {
	reg *prometheus.Registry

	FailedServices prometheus.Gauge
	MeanHealth     prometheus.Gauge
	GlitchesTotal  prometheus.Counter
	HealsTotal     prometheus.Counter
	IncidentsTotal prometheus.Counter
}

// New registers and returns a fresh metric set.
func New() *Registry {
	r := &Registry{reg: prometheus.NewRegistry()}

	r.FailedServices = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cascadesim_failed_services",
		Help: "Number of services currently below the health threshold.",
	})
	r.MeanHealth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cascadesim_mean_health",
		Help: "Mean health across all services at the current tick.",
	})
	r.GlitchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cascadesim_glitches_total",
		Help: "Total number of glitch events injected over the run.",
	})
	r.HealsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cascadesim_heals_total",
		Help: "Total number of recovery heal events over the run.",
	})
	r.IncidentsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cascadesim_incidents_total",
		Help: "Total number of distinct root-cause incidents recorded.",
	})

	r.reg.MustRegister(r.FailedServices, r.MeanHealth, r.GlitchesTotal, r.HealsTotal, r.IncidentsTotal)
	return r
}

// SetTick updates the per-tick gauges from the current graph snapshot.
func (r *Registry) SetTick(failed int, meanHealth float64) {
	r.FailedServices.Set(float64(failed))
	r.MeanHealth.Set(meanHealth)
}

// Gather renders the registry as Prometheus text-exposition format,
// suitable for appending to the trace log under a [METRICS] tag.
func (r *Registry) Gather() (string, error) {
	families, err := r.reg.Gather()
	if err != nil {
		return "", fmt.Errorf("simmetrics: gather: %w", err)
	}

	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return "", fmt.Errorf("simmetrics: encode: %w", err)
		}
	}
	return buf.String(), nil
}
