// Package metrics exposes prometheus collectors for matching and enhancement.
package metrics

import (
	"sync"
	"time"

	"github.com/nutrimatch/backend/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Enhancement outcomes
const (
	OutcomeExact       = "exact"
	OutcomeSubstituted = "substituted"
	OutcomeUnmatched   = "unmatched"
)

var (
	registerOnce sync.Once

	matchRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nutrimatch",
		Name:      "match_requests_total",
		Help:      "Total number of food-name matches by winning tier",
	}, []string{"tier"})
	matchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "nutrimatch",
		Name:      "match_duration_seconds",
		Help:      "Histogram of food-name match durations in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms up to ~1s
	})
	enhancedFoods = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nutrimatch",
		Name:      "enhanced_foods_total",
		Help:      "Total number of meal-plan foods processed by enhancement outcome",
	}, []string{"outcome"})
)

// Register registers all collectors with the default registry. Safe to call
// more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(matchRequests, matchDuration, enhancedFoods)
	})
}

// RecordMatch counts one match under its winning tier.
func RecordMatch(tier domain.MatchTier, elapsed time.Duration) {
	label := string(tier)
	if label == "" {
		label = "none"
	}
	matchRequests.WithLabelValues(label).Inc()
	matchDuration.Observe(elapsed.Seconds())
}

// RecordEnhancedFood counts one enhanced food under outcome.
func RecordEnhancedFood(outcome string) {
	enhancedFoods.WithLabelValues(outcome).Inc()
}
