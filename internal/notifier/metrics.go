package notifier

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	relayed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "notifier",
		Name:      "relayed_events_total",
		Help:      "Cart events moved between the local bus and the transport.",
	}, []string{"direction"})

	relayFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "notifier",
		Name:      "relay_failures_total",
		Help:      "Cart events the relay could not publish or decode.",
	}, []string{"reason"})
)
