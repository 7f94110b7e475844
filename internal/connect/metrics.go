package connect

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connect_requests_total",
		Help: "Adobe Connect API requests by action and HTTP status.",
	}, []string{"action", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "connect_request_duration_seconds",
		Help:    "Adobe Connect API request latency by action.",
		Buckets: prometheus.DefBuckets,
	}, []string{"action"})
)

func observeRequest(action string, status int, d time.Duration) {
	requestsTotal.WithLabelValues(action, strconv.Itoa(status)).Inc()
	requestDuration.WithLabelValues(action).Observe(d.Seconds())
}
