// Package metrics exposes the Prometheus instrumentation for the
// configurator service. All helpers are nil-safe so wiring metrics stays
// optional in tests.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the collectors registered for the service.
type Metrics struct {
	RebuildDuration *prometheus.HistogramVec
	StorageOps      *prometheus.CounterVec
	SnapPoints      prometheus.Gauge
	Measurements    prometheus.Gauge
	ToolCalls       *prometheus.CounterVec
}

// New registers the collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RebuildDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rackforge",
			Name:      "scene_rebuild_duration_seconds",
			Help:      "Time spent rebuilding a scene subtree.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"subtree"}),
		StorageOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rackforge",
			Name:      "storage_operations_total",
			Help:      "Key/value storage operations by outcome.",
		}, []string{"operation", "status"}),
		SnapPoints: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "rackforge",
			Name:      "snap_points",
			Help:      "Snap points currently indexed.",
		}),
		Measurements: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "rackforge",
			Name:      "measurements",
			Help:      "Measurements currently held by the tool.",
		}),
		ToolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rackforge",
			Name:      "tool_calls_total",
			Help:      "MCP tool invocations by outcome.",
		}, []string{"tool", "status"}),
	}
}

// ObserveRebuild records one subtree rebuild.
func (m *Metrics) ObserveRebuild(subtree string, d time.Duration) {
	if m == nil {
		return
	}
	m.RebuildDuration.WithLabelValues(subtree).Observe(d.Seconds())
}

// IncStorageOp counts one storage operation.
func (m *Metrics) IncStorageOp(operation string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.StorageOps.WithLabelValues(operation, status).Inc()
}

// SetSnapPoints tracks the indexed snap point count.
func (m *Metrics) SetSnapPoints(n int) {
	if m == nil {
		return
	}
	m.SnapPoints.Set(float64(n))
}

// SetMeasurements tracks the live measurement count.
func (m *Metrics) SetMeasurements(n int) {
	if m == nil {
		return
	}
	m.Measurements.Set(float64(n))
}

// IncToolCall counts one MCP tool invocation.
func (m *Metrics) IncToolCall(tool string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.ToolCalls.WithLabelValues(tool, status).Inc()
}
