package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	EventsPublishedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_events_published_total",
		Help: "Order events published to both destinations",
	})
	PublishErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_events_publish_errors_total",
		Help: "Failed sends by destination",
	}, []string{"destination"})
)

func init() {
	prometheus.MustRegister(EventsPublishedTotal, PublishErrorsTotal)
}
