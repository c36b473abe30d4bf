package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequestsTotal  *prometheus.CounterVec
	httpLatencySeconds *prometheus.HistogramVec
	httpErrorsTotal    *prometheus.CounterVec

	attemptsStartedTotal   prometheus.Counter
	attemptsRejectedTotal  *prometheus.CounterVec
	submissionsGradedTotal prometheus.Counter
	submissionScoreRatio   prometheus.Histogram
	formulaFallbacksTotal  prometheus.Counter
	eventsPublishedTotal   *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tutor_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tutor_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tutor_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		attemptsStartedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tutor_attempts_started_total",
			Help: "Assignment attempts rendered for students.",
		})

		attemptsRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tutor_attempts_rejected_total",
			Help: "Attempt starts or submissions refused, by reason.",
		}, []string{"reason"})

		submissionsGradedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tutor_submissions_graded_total",
			Help: "Submissions graded and persisted.",
		})

		submissionScoreRatio = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tutor_submission_score_ratio",
			Help:    "Share of correct answers per graded submission.",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		})

		formulaFallbacksTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tutor_formula_fallbacks_total",
			Help: "Formula answers that failed to evaluate and were compared literally.",
		})

		eventsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tutor_events_published_total",
			Help: "Domain events published to the message bus, by subject and result.",
		}, []string{"subject", "result"})

		prometheus.MustRegister(
			httpRequestsTotal, httpLatencySeconds, httpErrorsTotal,
			attemptsStartedTotal, attemptsRejectedTotal,
			submissionsGradedTotal, submissionScoreRatio, formulaFallbacksTotal,
			eventsPublishedTotal,
		)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the request latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the error response counter.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// AttemptsStarted counts rendered attempts.
func AttemptsStarted() prometheus.Counter {
	RegisterMetrics()
	return attemptsStartedTotal
}

// AttemptsRejected counts refused attempts by reason.
func AttemptsRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return attemptsRejectedTotal
}

// SubmissionsGraded counts persisted submissions.
func SubmissionsGraded() prometheus.Counter {
	RegisterMetrics()
	return submissionsGradedTotal
}

// SubmissionScoreRatio observes score / total per submission.
func SubmissionScoreRatio() prometheus.Histogram {
	RegisterMetrics()
	return submissionScoreRatio
}

// FormulaFallbacks counts literal comparisons caused by formula failures.
func FormulaFallbacks() prometheus.Counter {
	RegisterMetrics()
	return formulaFallbacksTotal
}

// EventsPublished counts bus publications.
func EventsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return eventsPublishedTotal
}
