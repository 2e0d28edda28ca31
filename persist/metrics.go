package persist

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	metricStreamsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "markerstream_persist_generated_total",
			Help: "Number of marker streams generated",
		},
		[]string{"kind"},
	)
	metricLastTimestamp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "markerstream_persist_stored_last_unix_seconds",
			Help: "UNIX timestamp of last stored marker stream",
		},
		[]string{"kind"},
	)
	metricLastSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "markerstream_persist_stored_last_size_bytes",
			Help: "Size of last stored marker stream in bytes",
		},
		[]string{"kind"},
	)
	metricResourcesWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "markerstream_persist_resources_written_total",
			Help: "Number of resource blocks written",
		},
		[]string{"kind"},
	)
	metricMarkersDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "markerstream_persist_markers_dropped_total",
			Help: "Number of non-persistent markers left out",
		},
		[]string{"kind"},
	)
	metricNullFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "markerstream_persist_null_fallbacks_total",
			Help: "Number of attribute values of unsupported kinds written as null",
		},
		[]string{"kind"},
	)
	metricSnapErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "markerstream_persist_snapshot_resource_errors_total",
			Help: "Number of resources that could not be snapshotted and stay dirty",
		},
	)
	metricStoreCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "markerstream_persist_store_calls_total",
			Help: "Number of store calls",
		},
		[]string{"kind"},
	)
	metricStoreFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "markerstream_persist_store_failed_attempts_total",
			Help: "Number of failed store attempts",
		},
		[]string{"kind"},
	)
	metricStoreFailedPermanently = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "markerstream_persist_store_failed_permanently_total",
			Help: "Number of permanent store failures",
		},
		[]string{"kind"},
	)
	metricStoreBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "markerstream_persist_store_bytes_total",
			Help: "Number of bytes stored successfully",
		},
	)
	metricBlocksRestored = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "markerstream_persist_restored_blocks_total",
			Help: "Number of resource blocks applied on restore",
		},
	)
	metricDeleteCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "markerstream_persist_delete_total",
			Help: "Number of cleaner delete calls",
		},
		[]string{"kind"},
	)
	metricDeleteFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "markerstream_persist_delete_failed_total",
			Help: "Number of failed cleaner delete calls",
		},
	)
)

func init() {
	prometheus.MustRegister(metricStreamsGenerated)
	prometheus.MustRegister(metricLastTimestamp)
	prometheus.MustRegister(metricLastSize)
	prometheus.MustRegister(metricResourcesWritten)
	prometheus.MustRegister(metricMarkersDropped)
	prometheus.MustRegister(metricNullFallbacks)
	prometheus.MustRegister(metricSnapErrors)
	prometheus.MustRegister(metricStoreCalls)
	prometheus.MustRegister(metricStoreFailed)
	prometheus.MustRegister(metricStoreFailedPermanently)
	prometheus.MustRegister(metricStoreBytes)
	prometheus.MustRegister(metricBlocksRestored)
	prometheus.MustRegister(metricDeleteCalls)
	prometheus.MustRegister(metricDeleteFailed)
}
