// Package metrics records pipeline run metrics on a private Prometheus
// registry. A batch run has no scrape endpoint, so the registry is written
// once at the end as a node-exporter textfile.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rotisserie/eris"
)

const namespace = "parcel_enrich"

// Recorder holds the run's metrics.
type Recorder struct {
	reg *prometheus.Registry

	stageDuration *prometheus.HistogramVec
	stageRows     *prometheus.GaugeVec
	stageRemoved  *prometheus.CounterVec
	unresolved    *prometheus.CounterVec
	expectedUnits *prometheus.GaugeVec
	lastSuccess   prometheus.Gauge
}

// New returns a Recorder on a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		reg: reg,
		stageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of each pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"stage"}),
		stageRows: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_rows",
			Help:      "Parcel rows after each stage.",
		}, []string{"stage"}),
		stageRemoved: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_rows_removed_total",
			Help:      "Parcel rows dropped by each stage.",
		}, []string{"stage"}),
		unresolved: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "join_unresolved_total",
			Help:      "Parcels no polygon of the layer contained.",
		}, []string{"layer"}),
		expectedUnits: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "expected_units",
			Help:      "Total expected new units by price scenario.",
		}, []string{"scenario"}),
		lastSuccess: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Completion time of the last successful run.",
		}),
	}
}

// ObserveStage records one stage execution.
func (r *Recorder) ObserveStage(stage string, before, after int, d time.Duration) {
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	r.stageRows.WithLabelValues(stage).Set(float64(after))
	r.stageRemoved.WithLabelValues(stage).Add(float64(max(before-after, 0)))
}

// ObserveJoin records the unresolved count of a spatial fill.
func (r *Recorder) ObserveJoin(layer string, unresolved int) {
	r.unresolved.WithLabelValues(layer).Add(float64(unresolved))
}

// SetExpectedUnits records the run totals.
func (r *Recorder) SetExpectedUnits(low, high float64) {
	r.expectedUnits.WithLabelValues("low").Set(low)
	r.expectedUnits.WithLabelValues("high").Set(high)
}

// MarkSuccess stamps the completion time.
func (r *Recorder) MarkSuccess(at time.Time) {
	r.lastSuccess.Set(float64(at.Unix()))
}

// Gatherer exposes the registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.reg
}

// WriteTextfile writes the registry in text exposition format to path.
func (r *Recorder) WriteTextfile(path string) error {
	return eris.Wrapf(prometheus.WriteToTextfile(path, r.reg), "metrics: write %s", path)
}
