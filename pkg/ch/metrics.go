package ch

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors a Contractor run publishes.
// One Metrics is created per process and handed to the Contractor;
// neither LevelDriver nor the workers touch it directly. Workers report
// through WorkerStats, LevelDriver.Run merges them, and
// Contractor.Contract folds the merged totals in after each level,
// matching the same main-thread-only update rule the edge registry
// follows.
type Metrics struct {
	registry *prometheus.Registry

	levelsRun        prometheus.Counter
	nodesContracted  prometheus.Counter
	shortcutsByReason *prometheus.CounterVec
	residualNodes    prometheus.Gauge
	levelDuration    prometheus.Histogram
}

// NewMetrics creates a fresh registry and collector set, namespaced
// under multich_ch so it can be merged into a larger exporter without
// colliding with other subsystems.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		levelsRun: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "multich",
			Subsystem: "ch",
			Name:      "levels_run_total",
			Help:      "Number of contraction levels completed.",
		}),
		nodesContracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "multich",
			Subsystem: "ch",
			Name:      "nodes_contracted_total",
			Help:      "Number of nodes removed from the residual graph.",
		}),
		shortcutsByReason: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "multich",
			Subsystem: "ch",
			Name:      "shortcuts_total",
			Help:      "Shortcuts emitted, broken down by the reason the LP loop settled.",
		}, []string{"reason"}),
		residualNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "multich",
			Subsystem: "ch",
			Name:      "residual_nodes",
			Help:      "Node count of the residual graph after the most recent level.",
		}),
		levelDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "multich",
			Subsystem: "ch",
			Name:      "level_duration_seconds",
			Help:      "Wall-clock duration of a single LevelDriver.Run call.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(m.levelsRun, m.nodesContracted, m.shortcutsByReason, m.residualNodes, m.levelDuration)
	return m
}

// Registry exposes the underlying prometheus.Registry so the CLI can
// serve it (promhttp.HandlerFor) or dump it to a textfile collector path.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// observeLevel folds one level's outcome into the collectors. Called
// once per level from Contractor.Contract, after LevelDriver.Run returns.
func (m *Metrics) observeLevel(contracted int, residual int, stats WorkerStats, seconds float64) {
	m.levelsRun.Inc()
	m.nodesContracted.Add(float64(contracted))
	m.residualNodes.Set(float64(residual))
	m.levelDuration.Observe(seconds)
	m.shortcutsByReason.WithLabelValues(ReasonShortestPath.String()).Add(float64(stats.ShortCount))
	m.shortcutsByReason.WithLabelValues(ReasonRepeatingConfig.String()).Add(float64(stats.SameCount))
	m.shortcutsByReason.WithLabelValues(ReasonUnknownReason.String()).Add(float64(stats.UnknownCount))
}
