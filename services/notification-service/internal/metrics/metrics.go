package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	MessagesProcessedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_messages_processed_total",
		Help: "Handler decisions by source channel and outcome",
	}, []string{"source", "outcome"})
	TransportErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_transport_errors_total",
		Help: "Transport-level consumer faults by source channel",
	}, []string{"source"})
)

func init() {
	prometheus.MustRegister(MessagesProcessedTotal, TransportErrorsTotal)
}
