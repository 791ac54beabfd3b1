package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	EmailsSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "emails_sent_total",
			Help: "Total emails accepted by the mail provider",
		},
	)

	EmailFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "email_failures_total",
			Help: "Total per-recipient send failures",
		},
	)

	WebhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Webhook notifications processed, by event type",
		},
		[]string{"event_type"},
	)

	OpensTracked = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "email_opens_total",
			Help: "First-time open beacon hits",
		},
	)

	RepliesStored = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "email_replies_total",
			Help: "Inbound replies correlated and stored",
		},
	)
)

func Init() {
	prometheus.MustRegister(EmailsSent)
	prometheus.MustRegister(EmailFailures)
	prometheus.MustRegister(WebhookEvents)
	prometheus.MustRegister(OpensTracked)
	prometheus.MustRegister(RepliesStored)
}
