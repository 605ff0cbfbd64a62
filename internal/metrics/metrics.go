package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PageFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glaze_page_fetches_total",
			Help: "Total storefront page fetches executed",
		},
		[]string{"domain", "status", "detected", "detection_src"},
	)

	PageFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "glaze_page_fetch_duration_seconds",
			Help:    "Duration of storefront page fetches in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"domain"},
	)

	PageBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glaze_page_bytes_total",
			Help: "Total bytes downloaded across all page fetches",
		},
		[]string{"domain"},
	)

	SearchQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glaze_search_queries_total",
			Help: "Search API queries issued, by enrichment field and outcome",
		},
		[]string{"field", "outcome"},
	)

	FactsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glaze_facts_total",
			Help: "Resolved enrichment facts by confidence level",
		},
		[]string{"field", "confidence"},
	)

	ProductsExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glaze_products_extracted_total",
			Help: "Product pages extracted, by outcome",
		},
		[]string{"outcome"},
	)

	ProxyFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glaze_proxy_failures_total",
			Help: "Proxy failures during page fetches",
		},
		[]string{"proxy_url"},
	)
)

// RecordFetch updates the page fetch metrics for one result.
func RecordFetch(domain, status string, detected bool, detectionSrc string, dur time.Duration, bodyBytes int) {
	detectedStr := "false"
	if detected {
		detectedStr = "true"
	}

	PageFetchesTotal.WithLabelValues(domain, status, detectedStr, detectionSrc).Inc()
	PageFetchDuration.WithLabelValues(domain).Observe(dur.Seconds())
	PageBytesTotal.WithLabelValues(domain).Add(float64(bodyBytes))
}

// Server exposes /metrics for Prometheus scraping during a run.
type Server struct {
	srv *http.Server
}

// Start begins listening on the given port.
func Start(port int) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("metrics server failed: %v\n", err)
		}
	}()

	return &Server{srv: srv}
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
