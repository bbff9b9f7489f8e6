package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blogly_http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "blogly_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	StoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blogly_store_operations_total",
			Help: "Total number of store operations by outcome",
		},
		[]string{"operation", "success"},
	)

	FlashOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blogly_flash_operations_total",
			Help: "Flash notice writes and reads by backend",
		},
		[]string{"operation", "backend"},
	)
)

// ObserveHTTP records one finished request.
func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveStore records the outcome of a store call.
func ObserveStore(operation string, err error) {
	StoreOperationsTotal.WithLabelValues(operation, strconv.FormatBool(err == nil)).Inc()
}

// ObserveFlash records a flash store access.
func ObserveFlash(operation, backend string) {
	FlashOperationsTotal.WithLabelValues(operation, backend).Inc()
}
