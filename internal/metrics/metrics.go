package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsReceivedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_events_received_total",
		Help: "Total number of inbound events received, by event name.",
	},
		[]string{"event"},
	)

	EventsDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_events_dropped_total",
		Help: "Total number of inbound events dropped on failed preconditions.",
	},
		[]string{"event", "reason"},
	)

	MessagesSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_messages_sent_total",
		Help: "Total number of outbound messages queued for delivery, by event name.",
	},
		[]string{"event"},
	)

	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dispatch_active_connections",
		Help: "Current number of open relay connections.",
	})

	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dispatch_active_rooms",
		Help: "Current number of rooms with at least one member.",
	})

	OrdersInStore = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dispatch_orders_in_store",
		Help: "Current number of orders held in the order store.",
	})
)
