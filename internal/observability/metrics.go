// Package observability holds the Prometheus metrics of the authentication
// engine.
package observability

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrijs2005/lifeauth/internal/autherr"
)

// Metrics holds all Prometheus metrics of the engine.
type Metrics struct {
	EnrollmentsTotal  *prometheus.CounterVec
	AuthAttemptsTotal *prometheus.CounterVec
	RebaselinesTotal  *prometheus.CounterVec
	LockoutsTotal     prometheus.Counter
	HealthAlertsTotal prometheus.Counter

	SimilarityScore prometheus.Histogram
	KDFDuration     prometheus.Histogram
	SampleDuration  prometheus.Histogram

	gatherer prometheus.Gatherer
}

// NewMetrics creates and registers all engine metrics. A nil registerer
// falls back to the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	gatherer := prometheus.Gatherer(prometheus.DefaultGatherer)
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	} else if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}
	auto := promauto.With(reg)

	return &Metrics{
		gatherer: gatherer,

		EnrollmentsTotal: auto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lifeauth_enrollments_total",
				Help: "Enrollment attempts by result",
			},
			[]string{"result"},
		),

		AuthAttemptsTotal: auto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lifeauth_auth_attempts_total",
				Help: "Authentication attempts by result",
			},
			[]string{"result"},
		),

		RebaselinesTotal: auto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lifeauth_rebaselines_total",
				Help: "Baseline refresh attempts by result",
			},
			[]string{"result"},
		),

		LockoutsTotal: auto.NewCounter(
			prometheus.CounterOpts{
				Name: "lifeauth_lockouts_total",
				Help: "Credentials locked after repeated failures",
			},
		),

		HealthAlertsTotal: auto.NewCounter(
			prometheus.CounterOpts{
				Name: "lifeauth_health_alerts_total",
				Help: "Successful authentications carrying a health alert",
			},
		),

		SimilarityScore: auto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "lifeauth_similarity_score",
				Help:    "Overall similarity of scored authentications",
				Buckets: []float64{0.5, 0.6, 0.7, 0.8, 0.85, 0.9, 0.95, 0.99, 1},
			},
		),

		KDFDuration: auto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "lifeauth_kdf_duration_seconds",
				Help:    "Password key derivation latency",
				Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
			},
		),

		SampleDuration: auto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "lifeauth_sample_duration_seconds",
				Help:    "Plasma sample acquisition latency",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 3, 5},
			},
		),
	}
}

// RecordEnrollment counts an enrollment attempt.
func (m *Metrics) RecordEnrollment(err error) {
	m.EnrollmentsTotal.WithLabelValues(resultLabel(err)).Inc()
}

// RecordAuthAttempt counts an authentication attempt.
func (m *Metrics) RecordAuthAttempt(err error) {
	m.AuthAttemptsTotal.WithLabelValues(resultLabel(err)).Inc()
}

// RecordRebaseline counts a baseline refresh attempt.
func (m *Metrics) RecordRebaseline(err error) {
	m.RebaselinesTotal.WithLabelValues(resultLabel(err)).Inc()
}

// RecordLockout counts a credential transitioning into the locked state.
func (m *Metrics) RecordLockout() {
	m.LockoutsTotal.Inc()
}

// RecordHealthAlert counts a successful authentication with a health alert.
func (m *Metrics) RecordHealthAlert() {
	m.HealthAlertsTotal.Inc()
}

// ObserveSimilarity records the overall similarity of a scored attempt.
func (m *Metrics) ObserveSimilarity(score float64) {
	m.SimilarityScore.Observe(score)
}

// ObserveKDFDuration records one key derivation.
func (m *Metrics) ObserveKDFDuration(seconds float64) {
	m.KDFDuration.Observe(seconds)
}

// ObserveSampleDuration records one sample acquisition.
func (m *Metrics) ObserveSampleDuration(seconds float64) {
	m.SampleDuration.Observe(seconds)
}

// Handler exposes the Prometheus metrics endpoint for the registry the
// metrics were registered with.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// resultLabel renders nil as success and taxonomy errors as their kind in
// label form, e.g. "profile_mismatch".
func resultLabel(err error) string {
	if err == nil {
		return "success"
	}
	if k, ok := autherr.KindOf(err); ok {
		return strings.ReplaceAll(strings.ToLower(k.String()), " ", "_")
	}
	return "error"
}
