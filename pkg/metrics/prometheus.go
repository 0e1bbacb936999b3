package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	AppointmentsMapped prometheus.Counter
	RecordsSkipped     prometheus.Counter
	FullScans          prometheus.Counter
	RemapDuration      prometheus.Histogram
	Dispatches         *prometheus.CounterVec
	ErrorsCount        *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		AppointmentsMapped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointments_mapped_total",
			Help:      "The total number of raw records mapped to the canonical view",
		}),
		RecordsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_skipped_total",
			Help:      "The total number of raw records dropped during mapping",
		}),
		FullScans: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "full_collection_scans_total",
			Help:      "The total number of legacy fallback full-collection scans",
		}),
		RemapDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remap_duration_seconds",
			Help:      "Time taken to remap a live-sync batch",
			Buckets:   prometheus.DefBuckets,
		}),
		Dispatches: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatches_total",
			Help:      "The total number of notification channel deliveries",
		}, []string{"channel", "outcome"}),
		ErrorsCount: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
