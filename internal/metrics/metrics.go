// Package metrics exposes the Prometheus instrumentation used both
// operationally and as the basis for the control plane's testable
// properties (at-most-one teardown, counter exactness).
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry bundles every gauge and counter the control plane updates. The
// zero value is not usable; use New.
type Registry struct {
	WorkersRunning    prometheus.Gauge
	Paused            prometheus.Gauge
	ChoppingBlockBusy prometheus.Gauge
	WorkersSpawned    prometheus.Counter
	WorkersReaped     prometheus.Counter
	ReaperAnomalies   prometheus.Counter
}

// New constructs a Registry and registers it with reg.
func New(reg prometheus.Registerer) *Registry {
	m := &Registry{
		WorkersRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ctree_workers_running",
			Help: "Number of client workers spawned but not yet reaped.",
		}),
		Paused: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ctree_paused",
			Help: "1 if the server is currently pausing all client dispatch, else 0.",
		}),
		ChoppingBlockBusy: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ctree_chopping_block_occupied",
			Help: "1 if a client is currently queued for teardown, else 0.",
		}),
		WorkersSpawned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ctree_workers_spawned_total",
			Help: "Total client workers spawned by the administrator.",
		}),
		WorkersReaped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ctree_workers_reaped_total",
			Help: "Total client workers reaped by the reaper.",
		}),
		ReaperAnomalies: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ctree_reaper_anomalies_total",
			Help: "Total joins whose outcome was not a clean cooperative exit.",
		}),
	}

	reg.MustRegister(
		m.WorkersRunning,
		m.Paused,
		m.ChoppingBlockBusy,
		m.WorkersSpawned,
		m.WorkersReaped,
		m.ReaperAnomalies,
	)
	return m
}

// NewUnregistered returns a Registry backed by its own private registry,
// for tests and for callers that don't want global /metrics exposure.
func NewUnregistered() *Registry {
	return New(prometheus.NewRegistry())
}
