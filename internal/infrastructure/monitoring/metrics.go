package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pantrymatch/server/pkg/errors"
)

const namespace = "pantrymatch"

// MetricsCollector handles Prometheus metrics collection
type MetricsCollector struct {
	registry *prometheus.Registry
	logger   *zap.Logger

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpResponseSize    *prometheus.HistogramVec

	// Matcher metrics
	suggestionsTotal    *prometheus.CounterVec
	suggestionDuration  prometheus.Histogram
	resolvedIngredients prometheus.Histogram
	candidateRecipes    prometheus.Histogram
	returnedSuggestions prometheus.Histogram
	rateLimitedTotal    prometheus.Counter
}

// NewMetricsCollector creates a collector backed by its own registry, so that
// several collectors can live in one process (tests do this)
func NewMetricsCollector(logger *zap.Logger) *MetricsCollector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &MetricsCollector{
		registry: reg,
		logger:   logger,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status_code"},
		),
		httpResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_response_size_bytes",
				Help:      "HTTP response size in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "route"},
		),

		suggestionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "suggestions_total",
				Help:      "Suggestion runs by outcome",
			},
			[]string{"outcome"},
		),
		suggestionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "suggestion_duration_seconds",
				Help:      "Time spent producing suggestions",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
		),
		resolvedIngredients: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "suggestion_resolved_ingredients",
				Help:      "Pantry items resolved to canonical ingredients per run",
				Buckets:   prometheus.LinearBuckets(0, 5, 11),
			},
		),
		candidateRecipes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "suggestion_candidate_recipes",
				Help:      "Candidate recipes retrieved per run",
				Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 200},
			},
		),
		returnedSuggestions: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "suggestion_returned_recipes",
				Help:      "Suggestions returned per run",
				Buckets:   prometheus.LinearBuckets(0, 5, 11),
			},
		),
		rateLimitedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limited_requests_total",
				Help:      "Requests rejected by the rate limiter",
			},
		),
	}
}

// HTTPMiddleware records request counts, latency and response size labelled
// by chi route pattern
func (m *MetricsCollector) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := routePattern(r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		statusCode := strconv.Itoa(status)

		m.httpRequestsTotal.WithLabelValues(r.Method, route, statusCode).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, route, statusCode).Observe(time.Since(start).Seconds())
		m.httpResponseSize.WithLabelValues(r.Method, route).Observe(float64(ww.BytesWritten()))
	})
}

// routePattern keeps label cardinality bounded: unmatched paths share one label
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

// RecordSuggestion implements outbound.SuggestionMetrics
func (m *MetricsCollector) RecordSuggestion(resolved, candidates, returned int, duration time.Duration, err error) {
	m.suggestionsTotal.WithLabelValues(outcome(returned, err)).Inc()
	m.suggestionDuration.Observe(duration.Seconds())
	if err != nil {
		return
	}
	m.resolvedIngredients.Observe(float64(resolved))
	m.candidateRecipes.Observe(float64(candidates))
	m.returnedSuggestions.Observe(float64(returned))
}

func outcome(returned int, err error) string {
	switch {
	case err != nil:
		return "error_" + string(errors.GetCode(err))
	case returned == 0:
		return "empty"
	default:
		return "matched"
	}
}

// RateLimited counts a rejected request
func (m *MetricsCollector) RateLimited() {
	m.rateLimitedTotal.Inc()
}

// Registry exposes the underlying registry
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus metrics HTTP handler
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorLog: zap.NewStdLog(m.logger),
	})
}
