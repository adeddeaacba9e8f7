package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/abakirov/storefront/internal/health"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storefront",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})

	// Auth metrics

	ResetTokensIssuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "reset_tokens_issued_total",
		Help:      "Password reset tokens issued.",
	})

	// Janitor metrics

	ResetTokensPurgedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "reset_tokens_purged_total",
		Help:      "Expired password reset tokens cleared by the janitor.",
	})

	JanitorCycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "storefront",
		Name:      "janitor_cycle_duration_seconds",
		Help:      "Time taken for one janitor purge cycle.",
		Buckets:   prometheus.DefBuckets,
	})

	// Upload metrics

	PhotoUploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "photo_uploads_total",
		Help:      "Store photo uploads, by outcome.",
	}, []string{"outcome"})
)

func Register() {
	prometheus.MustRegister(
		HTTPRequestDuration,
		HTTPRequestsTotal,
		ResetTokensIssuedTotal,
		ResetTokensPurgedTotal,
		JanitorCycleDuration,
		PhotoUploadsTotal,
	)
}

// NewServer exposes /metrics plus the health endpoints on a separate port so
// they never compete with API traffic.
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Liveness(r.Context()))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Readiness(r.Context()))
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func writeHealth(w http.ResponseWriter, result health.HealthResult) {
	w.Header().Set("Content-Type", "application/json")
	if result.Status != "up" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(result)
}
