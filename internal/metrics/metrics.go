// Package metrics holds the prometheus collectors for protocol traffic.
// They are served on the control socket at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "shmpaper"

var (
	EventsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dispatched_total",
		Help:      "Events routed to a live protocol object, by interface.",
	}, []string{"interface"})

	EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dropped_total",
		Help:      "Events addressed to unknown or destroyed objects.",
	})

	RequestsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_sent_total",
		Help:      "Requests queued for the compositor, by interface.",
	}, []string{"interface"})

	ConfiguresAcked = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "configures_acked_total",
		Help:      "Shell configure events acknowledged.",
	})

	PingsAnswered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pings_answered_total",
		Help:      "xdg_wm_base pings answered with a pong.",
	})

	DispatchCycles = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dispatch_cycles_total",
		Help:      "Blocking dispatch cycles completed.",
	})
)
