package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// длительность запросов к хранилищу (секунды)
	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "todo_store_query_duration_seconds",
			Help:    "Task store query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms .. ~1s
		},
		[]string{"backend", "operation"},
	)

	// мутации задач с результатом ok / not_found / failed
	TaskMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todo_task_mutations_total",
			Help: "Total number of task mutations by operation and result",
		},
		[]string{"operation", "result"},
	)

	WeatherLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todo_weather_lookups_total",
			Help: "Total number of weather icon lookups by result",
		},
		[]string{"result"}, // ok, unknown, failed, stale
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "todo_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "path", "status"},
	)
)

func ObserveStoreQuery(backend, operation string, start time.Time) {
	StoreQueryDuration.WithLabelValues(backend, operation).Observe(time.Since(start).Seconds())
}

func RecordTaskMutation(operation, result string) {
	TaskMutations.WithLabelValues(operation, result).Inc()
}

func RecordWeatherLookup(result string) {
	WeatherLookups.WithLabelValues(result).Inc()
}

func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}
