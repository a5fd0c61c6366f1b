// Package metrics exposes Prometheus counters for the lineage engine: data
// inconsistencies met while resolving, trees built and navigation steps.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mesh-intelligence/lineage/internal/tree"
)

// Navigation actions.
const (
	ActionNavigate = "navigate"
	ActionBack     = "back"
	ActionForward  = "forward"
)

// Metrics holds the engine's collectors.
type Metrics struct {
	Inconsistencies   *prometheus.CounterVec
	TreesBuilt        *prometheus.CounterVec
	TreeBuildDuration prometheus.Histogram
	Navigations       *prometheus.CounterVec
	ActiveSessions    prometheus.Gauge
}

// New creates a Metrics instance with every collector registered on reg.
// Pass prometheus.DefaultRegisterer to expose them on the default /metrics
// handler, or a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Inconsistencies: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lineage_inconsistencies_total",
			Help: "Data inconsistencies met while resolving relationships",
		}, []string{"kind"}),
		TreesBuilt: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lineage_trees_built_total",
			Help: "Total number of ancestor trees assembled",
		}, []string{"depth"}),
		TreeBuildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "lineage_tree_build_duration_seconds",
			Help:    "Duration of ancestor tree assembly",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		Navigations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lineage_navigations_total",
			Help: "Navigation steps taken by browsing sessions",
		}, []string{"action"}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "lineage_sessions_active",
			Help: "Number of open browsing sessions",
		}),
	}
}

// IncrementInconsistency records one inconsistency of the given kind.
func (m *Metrics) IncrementInconsistency(kind string) {
	m.Inconsistencies.WithLabelValues(kind).Inc()
}

// IncrementTreesBuilt records one assembled tree of the given depth.
func (m *Metrics) IncrementTreesBuilt(depth int) {
	m.TreesBuilt.WithLabelValues(depthLabel(depth)).Inc()
}

// TreeBuilt counts t. It is shaped for tree.WithBuildHook.
func (m *Metrics) TreeBuilt(t tree.Tree) {
	m.IncrementTreesBuilt(t.Depth)
}

// ObserveTreeBuild records the duration of a tree build.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveTreeBuild(start time.Time) {
	m.TreeBuildDuration.Observe(time.Since(start).Seconds())
}

// IncrementNavigation records a navigation step that moved the focal point.
func (m *Metrics) IncrementNavigation(action string) {
	m.Navigations.WithLabelValues(action).Inc()
}

// SessionOpened and SessionClosed track the number of live sessions.
func (m *Metrics) SessionOpened() { m.ActiveSessions.Inc() }

func (m *Metrics) SessionClosed() { m.ActiveSessions.Dec() }

func depthLabel(depth int) string {
	switch depth {
	case 3:
		return "3"
	case 4:
		return "4"
	default:
		return "other"
	}
}
