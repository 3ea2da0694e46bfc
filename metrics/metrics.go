package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	StepTransitions  *prometheus.CounterVec
	Submissions      *prometheus.CounterVec
	PersistFailures  prometheus.Counter
	Exports          *prometheus.CounterVec
	ActiveSessions   prometheus.Gauge
	DraftsPurged     prometheus.Counter
	LiveConnections  prometheus.Gauge
	CountryDetection *prometheus.CounterVec
}

// New registers the wizard metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the wizard metrics on reg. Tests pass a fresh registry.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		StepTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "regwizard_step_transitions_total",
			Help: "Step navigation attempts by direction and result",
		}, []string{"direction", "result"}),
		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "regwizard_submissions_total",
			Help: "Submission attempts by outcome",
		}, []string{"outcome"}),
		PersistFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "regwizard_draft_persist_failures_total",
			Help: "Draft writes that failed and were ignored",
		}),
		Exports: f.NewCounterVec(prometheus.CounterOpts{
			Name: "regwizard_exports_total",
			Help: "Downloaded artifacts by format",
		}, []string{"format"}),
		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "regwizard_active_sessions",
			Help: "Wizard sessions currently held in memory",
		}),
		DraftsPurged: f.NewCounter(prometheus.CounterOpts{
			Name: "regwizard_drafts_purged_total",
			Help: "Stale drafts removed by the purge task",
		}),
		LiveConnections: f.NewGauge(prometheus.GaugeOpts{
			Name: "regwizard_live_connections",
			Help: "Open live websocket connections",
		}),
		CountryDetection: f.NewCounterVec(prometheus.CounterOpts{
			Name: "regwizard_country_detection_total",
			Help: "Country detection attempts by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) RecordStep(direction string, ok bool) {
	m.StepTransitions.WithLabelValues(direction, result(ok)).Inc()
}

func (m *Metrics) RecordSubmission(outcome string) {
	m.Submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementPersistFailures() {
	m.PersistFailures.Inc()
}

func (m *Metrics) RecordExport(format string) {
	m.Exports.WithLabelValues(format).Inc()
}

func (m *Metrics) SetActiveSessions(n int) {
	m.ActiveSessions.Set(float64(n))
}

func (m *Metrics) AddDraftsPurged(n int64) {
	m.DraftsPurged.Add(float64(n))
}

func (m *Metrics) RecordDetection(ok bool) {
	m.CountryDetection.WithLabelValues(result(ok)).Inc()
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "rejected"
}
