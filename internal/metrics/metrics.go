package metrics

import (
	"sync"
	"time"

	"github.com/logparts/backend/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "logparts"

var (
	registerOnce sync.Once

	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "Total number of catalog operations by operation and outcome",
	}, []string{"operation", "outcome"})
	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "request_duration_seconds",
		Help:      "Histogram of catalog operation durations in seconds by operation",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms up to ~4s
	}, []string{"operation"})
	repositoryFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "repository_failures_total",
		Help:      "Total number of failed product repository fetches by source",
	}, []string{"source"})
	cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Total number of response cache lookups by operation and result",
	}, []string{"operation", "result"})
	confidenceLevels = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "search_results_total",
		Help:      "Total number of scored search results by confidence level",
	}, []string{"level"})
	suggestionsReturned = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "suggestions_total",
		Help:      "Total number of suggestions returned by type",
	}, []string{"type"})
)

// Operation names
const (
	OpSearch          = "search"
	OpSuggest         = "suggest"
	OpPopularSearches = "popular_searches"
	OpListProducts    = "list_products"
	OpGetProduct      = "get_product"
)

// Register initializes metrics with the global Prometheus registry (idempotent)
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(requestsTotal, requestDuration, repositoryFailures,
			cacheLookups, confidenceLevels, suggestionsReturned)
	})
}

// ObserveRequest records one finished operation
func ObserveRequest(operation string, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	requestsTotal.WithLabelValues(operation, outcome).Inc()
	requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func IncRepositoryFailure(source string) { repositoryFailures.WithLabelValues(source).Inc() }

func IncCacheHit(operation string)  { cacheLookups.WithLabelValues(operation, "hit").Inc() }
func IncCacheMiss(operation string) { cacheLookups.WithLabelValues(operation, "miss").Inc() }

// AddConfidenceStats counts the levels of a scored result set
func AddConfidenceStats(stats domain.ConfidenceStats) {
	confidenceLevels.WithLabelValues(string(domain.LevelHigh)).Add(float64(stats.High))
	confidenceLevels.WithLabelValues(string(domain.LevelMedium)).Add(float64(stats.Medium))
	confidenceLevels.WithLabelValues(string(domain.LevelLow)).Add(float64(stats.Low))
}

// AddSuggestions counts returned suggestions per source type
func AddSuggestions(suggestions []domain.Suggestion) {
	for _, s := range suggestions {
		suggestionsReturned.WithLabelValues(string(s.Type)).Inc()
	}
}
