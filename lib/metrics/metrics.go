// Package metrics holds the prometheus collectors shared by the services and the endpoint that exposes them.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var (
	// PageFetches counts name-service pages requested, by provider.
	PageFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "axelarscan_names_page_fetches_total",
		Help: "The total number of name-service pages requested",
	}, []string{"provider"})

	// PageFailures counts name-service pages that failed and halted pagination, by provider.
	PageFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "axelarscan_names_page_failures_total",
		Help: "The total number of name-service pages that failed",
	}, []string{"provider"})

	// Resolved counts addresses resolved, by provider and outcome (found or placeholder).
	Resolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "axelarscan_names_resolved_total",
		Help: "The total number of addresses resolved",
	}, []string{"provider", "outcome"})

	// Requests counts API requests, by route and status code.
	Requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "axelarscan_api_requests_total",
		Help: "The total number of API requests served",
	}, []string{"route", "code"})
)

// Serve exposes the default registry on addr under /metrics. It blocks.
func Serve(addr string) {
	log.WithField("addr", addr).Info("Serving metrics API")

	h := http.NewServeMux()
	h.Handle("/metrics", promhttp.Handler())

	if err := http.ListenAndServe(addr, h); err != nil { //nolint:gosec // metrics endpoint
		log.WithError(err).Warn("metrics server stopped")
	}
}
