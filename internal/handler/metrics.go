package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var eventsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "exile_events_received_total",
	Help: "Number of platform events received, by type",
}, []string{"event"})

var commandsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "exile_commands_received_total",
	Help: "Number of recognized commands, by name",
}, []string{"command"})

var marketTalkAlerts = promauto.NewCounter(prometheus.CounterOpts{
	Name: "exile_market_talk_alerts_total",
	Help: "Number of messages reported as market talk",
})

var handlersInFlight = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "exile_handlers_in_flight",
	Help: "Number of event handlers currently running",
})
