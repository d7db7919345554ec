package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"path", "method", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"},
	)

	Solves = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solve_requests_total",
			Help: "Solve attempts by engine and outcome",
		}, []string{"engine", "status"},
	)

	// result: saved | failed | skipped
	HistoryWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "history_writes_total",
			Help: "History store writes by result",
		}, []string{"result"},
	)
)

func init() {
	prometheus.MustRegister(RequestCount, RequestDuration, Solves, HistoryWrites)
}
