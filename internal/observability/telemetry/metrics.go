package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Dialogue metrics
	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "casa_dialogue_commands_total",
		Help: "Dialogue commands dispatched into the tree, by action and outcome",
	}, []string{"action", "outcome"})

	ConversationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "casa_dialogue_conversations_total",
		Help: "Conversations entered (wake word or prefixed command)",
	})

	WaitTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "casa_dialogue_wait_timeouts_total",
		Help: "Clarification waits that elapsed without a usable reply",
	})

	RepliesSpoken = promauto.NewCounter(prometheus.CounterOpts{
		Name: "casa_dialogue_replies_spoken_total",
		Help: "Replies handed to the speech output channel",
	})

	// Reminder metrics
	RemindersFired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "casa_reminders_fired_total",
		Help: "Reminders delivered by the due sweep",
	})

	RemindersPending = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "casa_reminders_pending",
		Help: "Reminders currently waiting to fire",
	})

	// Automation bus metrics
	CommandBusLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "casa_command_bus_latency_seconds",
		Help:    "Latency of field read/write and global action calls",
		Buckets: prometheus.DefBuckets,
	})

	CommandBusErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "casa_command_bus_errors_total",
		Help: "Automation bus calls that failed, by operation",
	}, []string{"op"})
)
