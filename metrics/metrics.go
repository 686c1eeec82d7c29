package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// AnalysisRequestsTotal counts analysis calls by upstream and outcome kind.
	AnalysisRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "genzhealth",
		Subsystem: "analysis",
		Name:      "requests_total",
		Help:      "Total number of analysis requests, labeled by analysis kind, upstream provider and outcome.",
	}, []string{"kind", "provider", "outcome"})

	// AnalysisDurationSeconds is the time spent waiting on the upstream plus extraction.
	AnalysisDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "genzhealth",
		Subsystem: "analysis",
		Name:      "duration_seconds",
		Help:      "Time to complete one analysis request including payload extraction.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"kind", "provider"})

	// BookingsTotal counts booking attempts by outcome.
	BookingsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "genzhealth",
		Subsystem: "booking",
		Name:      "attempts_total",
		Help:      "Total number of booking attempts, labeled by outcome.",
	}, []string{"outcome"})

	// RemindersTotal counts processed reminder tasks by outcome.
	RemindersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "genzhealth",
		Subsystem: "booking",
		Name:      "reminders_total",
		Help:      "Total number of appointment reminders processed, labeled by outcome.",
	}, []string{"outcome"})

	// PaymentsTotal counts subscription payment confirmations by outcome.
	PaymentsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "genzhealth",
		Subsystem: "subscription",
		Name:      "payments_total",
		Help:      "Total number of subscription payment confirmations, labeled by plan and outcome.",
	}, []string{"plan", "outcome"})
)

// Register registers service metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			AnalysisRequestsTotal,
			AnalysisDurationSeconds,
			BookingsTotal,
			RemindersTotal,
			PaymentsTotal,
		)
	})
}
