package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	messagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whatsapp_messages_received_total",
			Help: "Inbound WhatsApp messages by kind",
		},
		[]string{"kind"},
	)

	messagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whatsapp_messages_sent_total",
			Help: "Outbound WhatsApp messages by kind and result",
		},
		[]string{"kind", "status"},
	)

	stateTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "funnel_state_transitions_total",
			Help: "Session state transitions",
		},
		[]string{"from", "to"},
	)

	faqInterrupts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "funnel_faq_answers_total",
			Help: "FAQ answers sent, by topic",
		},
		[]string{"topic"},
	)

	sessionsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "funnel_sessions_expired_total",
			Help: "Sessions discarded after inactivity",
		},
	)

	salesRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_recorded_total",
			Help: "Completed sales by shipping type",
		},
		[]string{"shipping_type"},
	)

	flowErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "funnel_errors_total",
			Help: "Errors by taxonomy kind",
		},
		[]string{"kind"},
	)
)

func RecordHTTPRequest(method, path, status string, seconds float64) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(seconds)
}

func RecordMessageReceived(kind string) {
	messagesReceived.WithLabelValues(kind).Inc()
}

func RecordMessageSent(kind string, ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	messagesSent.WithLabelValues(kind, status).Inc()
}

func RecordTransition(from, to string) {
	if from == "" {
		from = "none"
	}
	if to == "" {
		to = "deleted"
	}
	stateTransitions.WithLabelValues(from, to).Inc()
}

func RecordFAQAnswer(topic string) {
	faqInterrupts.WithLabelValues(topic).Inc()
}

func RecordSessionExpired() {
	sessionsExpired.Inc()
}

func RecordSale(shippingType string) {
	salesRecorded.WithLabelValues(shippingType).Inc()
}

func RecordError(kind string) {
	flowErrors.WithLabelValues(kind).Inc()
}
