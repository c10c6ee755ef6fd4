// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "terrageo_requests_total",
		Help: "HTTP requests served, by route and status class.",
	}, []string{"route", "status"})

	ArtifactHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "terrageo_artifact_hits_total",
		Help: "GeoJSON responses served from precomputed artifacts.",
	})

	ArtifactMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "terrageo_artifact_misses_total",
		Help: "GeoJSON responses that fell back to a live query.",
	})

	PrecomputeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "terrageo_precompute_failures_total",
		Help: "Entities whose artifact rebuild failed.",
	})

	QuarantinedRecords = promauto.NewCounter(prometheus.CounterOpts{
		Name: "terrageo_quarantined_records_total",
		Help: "Raw records set aside for review during reconciliation.",
	})
)

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
