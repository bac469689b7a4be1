package httpapi

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "draft_request_duration_seconds",
		Help:    "Latency of draft API handlers",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	requestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "draft_requests_total",
		Help: "Total draft API requests served",
	}, []string{"route", "status"})
)

func init() {
	prometheus.MustRegister(requestDuration, requestTotal)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withMetrics records request count and latency per route.
func withMetrics(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		requestDuration.WithLabelValues(route).Observe(time.Since(started).Seconds())
		requestTotal.WithLabelValues(route, http.StatusText(rec.status)).Inc()
	}
}
