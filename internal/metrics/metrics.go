package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors used across the bot.
type Metrics struct {
	UpdatesTotal     *prometheus.CounterVec
	AlertsSent       *prometheus.CounterVec
	DigestsSent      prometheus.Counter
	ProviderRequests *prometheus.CounterVec
	CacheEvents      *prometheus.CounterVec
	SendFailures     prometheus.Counter
}

var (
	regOnce  sync.Once
	instance *Metrics
)

// Registry builds and registers the metrics singleton with the given
// namespace. Subsequent calls return the same instance.
func Registry(namespace string) *Metrics {
	regOnce.Do(func() {
		instance = &Metrics{
			UpdatesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "updates_total",
				Help:      "Inbound Telegram updates by type.",
			}, []string{"type"}),
			AlertsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "alerts_sent_total",
				Help:      "Holiday alert messages sent, by country.",
			}, []string{"country"}),
			DigestsSent: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "digests_sent_total",
				Help:      "Weekly digest messages sent.",
			}),
			ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_requests_total",
				Help:      "Calendarific API requests by outcome.",
			}, []string{"status"}),
			CacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "holiday_cache_events_total",
				Help:      "Holiday cache lookups by result.",
			}, []string{"result"}),
			SendFailures: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "send_failures_total",
				Help:      "Outbound Telegram messages that failed to send.",
			}),
		}

		prometheus.MustRegister(
			instance.UpdatesTotal,
			instance.AlertsSent,
			instance.DigestsSent,
			instance.ProviderRequests,
			instance.CacheEvents,
			instance.SendFailures,
		)
	})
	return instance
}
