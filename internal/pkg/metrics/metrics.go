package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	IntegrationRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_integration_runs_total",
			Help: "Total number of adapter runs",
		},
		[]string{"brand", "status"},
	)

	IntegrationRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scraper_integration_run_duration_seconds",
			Help:    "Adapter run duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"brand"},
	)

	ClassesFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_classes_fetched_total",
			Help: "Total number of normalized classes produced by adapters",
		},
		[]string{"brand"},
	)

	DataTierTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_data_tier_total",
			Help: "Successful runs by the tier their data came from (api, captured, html, mock)",
		},
		[]string{"brand", "tier"},
	)

	RetryAttemptsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_retry_attempts_total",
			Help: "Total number of retried upstream calls",
		},
	)

	PersistFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_persist_failures_total",
			Help: "Total number of failed persistence transactions",
		},
		[]string{"brand"},
	)

	LastSuccessTimestamp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scraper_last_success_timestamp_seconds",
			Help: "Unix time of the last persisted successful run",
		},
		[]string{"brand"},
	)

	PassDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scraper_pass_duration_seconds",
			Help:    "Duration of a full pass over all adapters",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		},
	)

	PassesSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_passes_skipped_total",
			Help: "Passes skipped because another pass held the lock",
		},
	)
)

// ObserveRun records one adapter run.
func ObserveRun(brand, status, tier string, d time.Duration, classes int) {
	IntegrationRunsTotal.WithLabelValues(brand, status).Inc()
	IntegrationRunDuration.WithLabelValues(brand).Observe(d.Seconds())
	if status != "success" {
		return
	}
	ClassesFetchedTotal.WithLabelValues(brand).Add(float64(classes))
	if tier != "" {
		DataTierTotal.WithLabelValues(brand, tier).Inc()
	}
}

// ObservePersisted marks a committed write for brand.
func ObservePersisted(brand string, at time.Time) {
	LastSuccessTimestamp.WithLabelValues(brand).Set(float64(at.Unix()))
}
