// Package metrics declares the Prometheus collectors queuesim exposes,
// sampled once per scheduled job rather than on a ticker, since the
// scheduler has no wall clock of its own to tick on.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PoolSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "queuesim_pool_size",
		Help: "Current VM pool size by queue",
	}, []string{"queue"})

	FreeReal = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "queuesim_free_real",
		Help: "VMs that are boot-complete and idle, by queue",
	}, []string{"queue"})

	IdleFraction = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "queuesim_idle_fraction",
		Help: "free_ignoring_boot / pool_size, by queue",
	}, []string{"queue"})

	VMsLaunched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "queuesim_vms_launched_total",
		Help: "Total VMs launched, by queue",
	}, []string{"queue"})

	VMsRetired = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "queuesim_vms_retired_total",
		Help: "Total VMs retired, by queue",
	}, []string{"queue"})

	PlacementFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "queuesim_placement_failures_total",
		Help: "Jobs that could not be placed, by queue",
	}, []string{"queue"})

	PlacementDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "queuesim_placement_duration_seconds",
		Help:    "Wall-clock time spent inside one Schedule call",
		Buckets: prometheus.DefBuckets,
	})
)

// Timer measures the wall-clock duration of one Schedule call, the way
// warren's metrics.Timer wraps scheduleService.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed time into hist.
func (t *Timer) ObserveDuration(hist prometheus.Histogram) {
	hist.Observe(time.Since(t.start).Seconds())
}

// Handler serves the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
