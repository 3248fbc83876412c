// Package metrics counts what one run did and can dump it in the Prometheus
// text format.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run holds the metrics of a single invocation on a private registry.
type Run struct {
	registry *prometheus.Registry

	clones       *prometheus.CounterVec
	passes       prometheus.Counter
	scanFailures prometheus.Counter
	aliases      prometheus.Gauge
	emails       prometheus.Gauge
	timestamps   prometheus.Gauge
	repositories prometheus.Gauge
}

func NewRun() *Run {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Run{
		registry: reg,
		clones: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "githunt",
			Name:      "clones_total",
			Help:      "Repository clone attempts by outcome.",
		}, []string{"outcome"}),
		passes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "githunt",
			Name:      "expansion_passes_total",
			Help:      "Identity expansion passes run.",
		}),
		scanFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "githunt",
			Name:      "scan_failures_total",
			Help:      "Repository history reads that failed.",
		}),
		aliases: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "githunt",
			Name:      "aliases",
			Help:      "Aliases known after the last pass.",
		}),
		emails: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "githunt",
			Name:      "emails",
			Help:      "Emails known after the last pass.",
		}),
		timestamps: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "githunt",
			Name:      "timestamps",
			Help:      "Commit timestamps attributed after the last pass.",
		}),
		repositories: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "githunt",
			Name:      "repositories",
			Help:      "Repositories selected for cloning.",
		}),
	}
}

func (r *Run) ObserveClone(ok bool) {
	outcome := "failed"
	if ok {
		outcome = "ok"
	}
	r.clones.WithLabelValues(outcome).Inc()
}

func (r *Run) ObservePass(aliases, emails, timestamps int) {
	r.passes.Inc()
	r.aliases.Set(float64(aliases))
	r.emails.Set(float64(emails))
	r.timestamps.Set(float64(timestamps))
}

func (r *Run) ObserveScanFailure() {
	r.scanFailures.Inc()
}

func (r *Run) SetRepositories(n int) {
	r.repositories.Set(float64(n))
}

func (r *Run) Registry() *prometheus.Registry {
	return r.registry
}

// WriteFile writes every metric to path atomically.
func (r *Run) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}
