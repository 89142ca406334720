// Package metrics exposes the Prometheus collectors of the service
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups every collector registered by the service
type Metrics struct {
	registry prometheus.Gatherer

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	authRejections *prometheus.CounterVec

	quizResults    *prometheus.CounterVec
	completions    *prometheus.CounterVec
	skippedRecords *prometheus.CounterVec
	fallbackReads  *prometheus.CounterVec
	remindersSent  *prometheus.CounterVec
}

// New creates the collectors and registers them on reg
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
		authRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_rejections_total",
				Help: "Total number of unauthorized requests",
			},
			[]string{"reason"},
		),
		quizResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coachpath_quiz_results_total",
				Help: "Quiz submissions by assigned pathway",
			},
			[]string{"pathway"},
		),
		completions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coachpath_lesson_completions_total",
				Help: "Lesson completions by pathway and day",
			},
			[]string{"pathway", "day"},
		),
		skippedRecords: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coachpath_aggregate_skipped_records_total",
				Help: "Malformed records left out of admin summaries",
			},
			[]string{"kind"},
		),
		fallbackReads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coachpath_progress_fallback_reads_total",
				Help: "Progress reads served from the last-known-good cache",
			},
			[]string{"result"},
		),
		remindersSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coachpath_reminders_total",
				Help: "Daily reminder emails by outcome",
			},
			[]string{"result"},
		),
	}

	reg.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.authRejections,
		m.quizResults,
		m.completions,
		m.skippedRecords,
		m.fallbackReads,
		m.remindersSent,
	)
	return m
}

// NewDefault registers the collectors on a fresh registry that also carries the Go and process collectors
func NewDefault() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return New(reg)
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// The recording methods are no-ops on a nil *Metrics.

// QuizScored counts one quiz result
func (m *Metrics) QuizScored(pathway string) {
	if m == nil {
		return
	}
	m.quizResults.WithLabelValues(pathway).Inc()
}

// LessonCompleted counts one completion
func (m *Metrics) LessonCompleted(pathway string, day int) {
	if m == nil {
		return
	}
	m.completions.WithLabelValues(pathway, strconv.Itoa(day)).Inc()
}

// RecordsSkipped counts malformed records of one kind
func (m *Metrics) RecordsSkipped(kind string, n int) {
	if m != nil && n > 0 {
		m.skippedRecords.WithLabelValues(kind).Add(float64(n))
	}
}

// FallbackRead counts a progress read answered from cache ("hit") or failed without one ("miss")
func (m *Metrics) FallbackRead(result string) {
	if m == nil {
		return
	}
	m.fallbackReads.WithLabelValues(result).Inc()
}

// ReminderSent counts one reminder attempt by outcome
func (m *Metrics) ReminderSent(result string) {
	if m == nil {
		return
	}
	m.remindersSent.WithLabelValues(result).Inc()
}

// Monitor wraps the router to track all request stats.
// The path label is the matched route pattern to keep cardinality bounded.
func (m *Metrics) Monitor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Initialize with 200 OK in case WriteHeader isn't called explicitly
		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(ww, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}

		m.httpRequests.WithLabelValues(path, r.Method, strconv.Itoa(ww.statusCode)).Inc()
		m.httpDuration.WithLabelValues(path, r.Method).Observe(time.Since(start).Seconds())

		switch ww.statusCode {
		case http.StatusUnauthorized:
			m.authRejections.WithLabelValues("401_unauthorized").Inc()
		case http.StatusForbidden:
			m.authRejections.WithLabelValues("403_forbidden").Inc()
		}
	})
}

// BasicAuth protects the metrics endpoint; with no user configured access is denied
func BasicAuth(user, pass string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || user == "" || u != user || p != pass {
			w.Header().Set("WWW-Authenticate", `Basic realm="Metrics"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
