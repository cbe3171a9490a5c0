package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	decisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guardrail_decisions_total",
			Help: "Recorded guardrail decisions by status",
		},
		[]string{"status"},
	)

	rejectionReasonsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guardrail_rejection_reasons_total",
			Help: "Reason codes attached to rejected plans",
		},
		[]string{"reason"},
	)

	evaluationErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guardrail_evaluation_errors_total",
			Help: "Evaluations that ended without a recorded decision",
		},
		[]string{"kind"},
	)

	evaluationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "guardrail_evaluation_duration_seconds",
			Help:    "Time spent evaluating and recording one plan",
			Buckets: prometheus.DefBuckets,
		},
	)

	governorPaused = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "guardrail_governor_paused",
			Help: "1 while the governor is in LOCKDOWN, 0 otherwise",
		},
	)

	governorTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guardrail_governor_transitions_total",
			Help: "Governor records appended by resulting state",
		},
		[]string{"state"},
	)

	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guardrail_notifications_total",
			Help: "Notification attempts by channel and result",
		},
		[]string{"channel", "result"},
	)

	auditForwardFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "guardrail_audit_forward_failures_total",
			Help: "Audit events the remote sink did not accept",
		},
	)
)

func init() {
	prometheus.MustRegister(decisionsTotal)
	prometheus.MustRegister(rejectionReasonsTotal)
	prometheus.MustRegister(evaluationErrorsTotal)
	prometheus.MustRegister(evaluationDuration)
	prometheus.MustRegister(governorPaused)
	prometheus.MustRegister(governorTransitionsTotal)
	prometheus.MustRegister(notificationsTotal)
	prometheus.MustRegister(auditForwardFailuresTotal)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordDecision counts one recorded decision and its reasons.
func RecordDecision(status string, reasons []string, seconds float64) {
	decisionsTotal.WithLabelValues(status).Inc()
	for _, r := range reasons {
		rejectionReasonsTotal.WithLabelValues(r).Inc()
	}
	evaluationDuration.Observe(seconds)
}

// RecordEvaluationError counts an evaluation that produced no decision.
// kind is "malformed", "invalid_snapshot" or "persistence".
func RecordEvaluationError(kind string) {
	evaluationErrorsTotal.WithLabelValues(kind).Inc()
}

func SetGovernorPaused(paused bool) {
	if paused {
		governorPaused.Set(1)
		return
	}
	governorPaused.Set(0)
}

func RecordGovernorTransition(paused bool) {
	state := "NORMAL"
	if paused {
		state = "LOCKDOWN"
	}
	governorTransitionsTotal.WithLabelValues(state).Inc()
	SetGovernorPaused(paused)
}

func RecordNotification(channel string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	notificationsTotal.WithLabelValues(channel, result).Inc()
}

func RecordNotificationDropped(channel string) {
	notificationsTotal.WithLabelValues(channel, "dropped").Inc()
}

func RecordAuditForwardFailure() {
	auditForwardFailuresTotal.Inc()
}
